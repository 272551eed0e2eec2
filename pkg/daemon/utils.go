package daemon

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/export"
	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/plot"
	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/session"
)

var (
	ErrNoImage = &daemonError{"no image loaded"}
	ErrNoDrag  = &daemonError{"no prompt drag in progress"}
)

type daemonError struct{ msg string }

func (e *daemonError) Error() string { return e.msg }

// statusFor maps an error returned by the session to an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, plot.ErrDegenerateAxis),
		errors.Is(err, plot.ErrNonFinite),
		errors.Is(err, session.ErrOutOfCanvas),
		errors.Is(err, export.ErrUnknownFormat):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNotCalibrated),
		errors.Is(err, plot.ErrIncomplete),
		errors.Is(err, plot.ErrSingular),
		errors.Is(err, session.ErrPromptClosed),
		errors.Is(err, session.ErrDragReleased),
		errors.Is(err, ErrNoImage),
		errors.Is(err, ErrNoDrag):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError writes err as the JSON body and records it on the context so
// ginLogger picks it up.
func abortWithError(c *gin.Context, code int, err error) {
	c.IndentedJSON(code, err.Error())
	_ = c.AbortWithError(code, err)
}

// Logger is the logrus logger handler
func ginLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// other handler can change c.Path so:
		path := c.Request.URL.Path
		start := time.Now()
		c.Next()
		stop := time.Since(start)
		latency := int(math.Ceil(float64(stop.Nanoseconds()) / 1000000.0))
		statusCode := c.Writer.Status()
		dataLength := c.Writer.Size()
		if dataLength < 0 {
			dataLength = 0
		}

		entry := logger.WithFields(logrus.Fields{
			"statusCode": statusCode,
			"latency":    latency, // time to process
			"method":     c.Request.Method,
			"path":       path,
			"dataLength": dataLength,
		})

		if len(c.Errors) > 0 {
			entry.Error(c.Errors.ByType(gin.ErrorTypePrivate).String())
			return
		}

		msg := fmt.Sprintf("%s %s %d (%dms)", c.Request.Method, path, statusCode, latency)
		switch {
		case statusCode >= http.StatusInternalServerError:
			entry.Error(msg)
		case statusCode >= http.StatusBadRequest:
			entry.Warn(msg)
		default:
			entry.Debug(msg)
		}
	}
}
