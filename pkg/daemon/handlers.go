package daemon

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/canvas"
	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/config"
	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/export"
	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/plot"
	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/session"
	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/version"
)

func (s *server) getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}

func (s *server) getConfig(c *gin.Context) {
	fc, err := config.NewRawFileConfigFromConfig(s.conf)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, fc)
}

func (s *server) getStatus(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, s.sess.Status())
}

// persist saves the session state and writes a 500 response on failure. It
// returns false if the handler should stop.
func (s *server) persist(c *gin.Context) bool {
	if err := s.saveState(); err != nil {
		logrus.Errorf("saveState failed: %v", err)
		abortWithError(c, http.StatusInternalServerError, err)
		return false
	}
	return true
}

func (s *server) setImage(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	src, err := canvas.Decode(bytes.NewReader(data))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	img := canvas.Fit(src, s.conf.CanvasMaxWidth(), s.conf.CanvasMaxHeight())
	info := session.ImageInfo{
		Name:         c.DefaultQuery("name", "image"),
		Width:        src.Bounds().Dx(),
		Height:       src.Bounds().Dy(),
		CanvasWidth:  img.Bounds().Dx(),
		CanvasHeight: img.Bounds().Dy(),
	}

	s.imgMu.Lock()
	s.canvasImg = img
	s.imgMu.Unlock()
	s.sess.SetImage(info)

	if err := s.saveCanvas(); err != nil {
		logrus.Errorf("saveCanvas failed: %v", err)
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}
	if !s.persist(c) {
		return
	}

	logrus.WithFields(logrus.Fields{
		"name":   info.Name,
		"size":   fmt.Sprintf("%dx%d", info.Width, info.Height),
		"canvas": fmt.Sprintf("%dx%d", info.CanvasWidth, info.CanvasHeight),
	}).Info("image loaded")

	c.IndentedJSON(http.StatusCreated, info)
}

func (s *server) writePNG(c *gin.Context, withOverlay bool) {
	s.imgMu.RLock()
	img := s.canvasImg
	s.imgMu.RUnlock()
	if img == nil {
		abortWithError(c, statusFor(ErrNoImage), ErrNoImage)
		return
	}

	out := img
	if withOverlay {
		out = canvas.Render(img, overlayOf(s.sess.State()))
	}

	var buf bytes.Buffer
	if err := canvas.EncodePNG(&buf, out); err != nil {
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func overlayOf(st session.State) canvas.Overlay {
	var ov canvas.Overlay
	for _, slot := range plot.Slots {
		if p := st.References.Get(slot); p != nil {
			ov.References = append(ov.References, canvas.Marker{Label: string(slot), At: *p})
		}
	}
	for _, p := range st.Points {
		ov.Points = append(ov.Points, p.Pixel)
	}
	return ov
}

func (s *server) getImage(c *gin.Context) {
	s.writePNG(c, false)
}

func (s *server) getCanvas(c *gin.Context) {
	s.writePNG(c, true)
}

func (s *server) setPlotting(c *gin.Context) {
	var on bool
	if err := c.BindJSON(&on); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	s.sess.SetPlotting(on)
	s.plottingChanged(c, on)
}

func (s *server) togglePlotting(c *gin.Context) {
	s.plottingChanged(c, s.sess.TogglePlotting())
}

func (s *server) plottingChanged(c *gin.Context, on bool) {
	if !s.persist(c) {
		return
	}

	logrus.Infof("set plotting mode to %t", on)

	msg := "plotting mode off, clicks are ignored"
	if on {
		msg = fmt.Sprintf("plotting mode on, stage: %s", s.sess.Status().Stage)
	}
	c.IndentedJSON(http.StatusCreated, msg)
}

func (s *server) click(c *gin.Context) {
	var p plot.Point
	if err := c.BindJSON(&p); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	res, err := s.sess.Click(p)
	if err != nil {
		abortWithError(c, statusFor(err), err)
		return
	}
	if res.Kind != session.ClickIgnored && !s.persist(c) {
		return
	}

	c.IndentedJSON(http.StatusCreated, res)
}

func (s *server) getTransform(c *gin.Context) {
	t, err := s.sess.Transform()
	if err != nil {
		abortWithError(c, statusFor(err), err)
		return
	}
	c.IndentedJSON(http.StatusOK, t)
}

func (s *server) getActual(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, s.sess.Actual())
}

func (s *server) setActual(c *gin.Context) {
	var a plot.ActualCoordinates
	if err := c.BindJSON(&a); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	n, err := s.sess.SetActual(a)
	if err != nil {
		abortWithError(c, statusFor(err), err)
		return
	}
	if !s.persist(c) {
		return
	}

	c.IndentedJSON(http.StatusCreated, fmt.Sprintf("saved actual coordinates x1=%g y1=%g x2=%g y2=%g, remapped %d points", a.X1, a.Y1, a.X2, a.Y2, n))
}

func (s *server) getPoints(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, s.sess.Points())
}

func (s *server) getRelative(c *gin.Context) {
	rel, err := s.sess.Relative()
	if err != nil {
		abortWithError(c, statusFor(err), err)
		return
	}
	c.IndentedJSON(http.StatusOK, rel)
}

func (s *server) locate(c *gin.Context) {
	x, err := strconv.ParseFloat(c.Query("x"), 64)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Errorf("invalid x: %w", err))
		return
	}
	y, err := strconv.ParseFloat(c.Query("y"), 64)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Errorf("invalid y: %w", err))
		return
	}

	px, err := s.sess.Locate(plot.Pt(x, y))
	if err != nil {
		abortWithError(c, statusFor(err), err)
		return
	}
	c.IndentedJSON(http.StatusOK, px)
}

func (s *server) reset(c *gin.Context) {
	s.sess.Reset()
	if !s.persist(c) {
		return
	}
	c.IndentedJSON(http.StatusCreated, "reference and plotted points cleared, click x1 next")
}

func (s *server) openPrompt(c *gin.Context) {
	p := s.sess.OpenPrompt()
	if !s.persist(c) {
		return
	}
	c.IndentedJSON(http.StatusCreated, p)
}

func (s *server) closePrompt(c *gin.Context) {
	p := s.sess.ClosePrompt()
	if !s.persist(c) {
		return
	}
	c.IndentedJSON(http.StatusCreated, p)
}

func (s *server) startDrag(c *gin.Context) {
	var p plot.Point
	if err := c.BindJSON(&p); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if _, err := s.sess.BeginDrag(p); err != nil {
		abortWithError(c, statusFor(err), err)
		return
	}
	c.IndentedJSON(http.StatusCreated, s.sess.Prompt())
}

func (s *server) moveDrag(c *gin.Context) {
	var p plot.Point
	if err := c.BindJSON(&p); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	d := s.sess.ActiveDrag()
	if d == nil {
		abortWithError(c, statusFor(ErrNoDrag), ErrNoDrag)
		return
	}
	prompt, err := d.Move(p)
	if err != nil {
		abortWithError(c, statusFor(err), err)
		return
	}
	c.IndentedJSON(http.StatusCreated, prompt)
}

func (s *server) endDrag(c *gin.Context) {
	d := s.sess.ActiveDrag()
	if d == nil {
		abortWithError(c, statusFor(ErrNoDrag), ErrNoDrag)
		return
	}
	d.End()
	if !s.persist(c) {
		return
	}
	c.IndentedJSON(http.StatusCreated, s.sess.Prompt())
}

func (s *server) exportPoints(c *gin.Context) {
	f, err := export.ParseFormat(c.DefaultQuery("format", s.conf.ExportFormat()))
	if err != nil {
		abortWithError(c, statusFor(err), err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, f, s.sess.Points()); err != nil {
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, f.ContentType(), buf.Bytes())
}

type scheduleStatus struct {
	Schedule string `json:"schedule"`
	NextRun  string `json:"nextRun,omitempty"`
	Running  bool   `json:"running"`
}

func (s *server) getExportSchedule(c *gin.Context) {
	expr, next, running := s.scheduler.Status()
	st := scheduleStatus{Schedule: expr, Running: running}
	if !next.IsZero() {
		st.NextRun = next.Format(time.RFC3339)
	}
	c.IndentedJSON(http.StatusOK, st)
}

func (s *server) skipExport(c *gin.Context) {
	if err := s.scheduler.Skip(); err != nil {
		abortWithError(c, http.StatusConflict, err)
		return
	}
	_, next, _ := s.scheduler.Status()
	c.IndentedJSON(http.StatusCreated, fmt.Sprintf("next export skipped, following run at %s", next.Format(time.DateTime)))
}
