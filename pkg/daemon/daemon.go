package daemon

import (
	"context"
	"errors"
	"image"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/config"
	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/events"
	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/session"
)

// server owns everything a running daemon serves: the session, the canvas
// image it is shown on and the event hub clients subscribe to.
type server struct {
	conf      config.Config
	sess      *session.Session
	hub       *events.EventHub
	scheduler *Scheduler
	statePath string

	// saveMu orders state snapshots with the writes that put them on disk.
	saveMu sync.Mutex

	imgMu     sync.RWMutex
	canvasImg *image.NRGBA
}

func newServer(conf config.Config) *server {
	hub := events.NewEventHub()
	s := &server{
		conf:      conf,
		hub:       hub,
		sess:      session.New(hub.Publish),
		statePath: conf.StateFile(),
	}
	s.scheduler = s.newExportScheduler()
	return s
}

func (s *server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))

	router.GET("/version", s.getVersion)
	router.GET("/config", s.getConfig)
	router.GET("/status", s.getStatus)
	router.GET("/events", s.streamEvents)

	router.PUT("/image", s.setImage)
	router.GET("/image", s.getImage)
	router.GET("/canvas", s.getCanvas)

	router.PUT("/plotting", s.setPlotting)
	router.POST("/plotting/toggle", s.togglePlotting)
	router.POST("/click", s.click)
	router.POST("/reset", s.reset)

	router.GET("/transform", s.getTransform)
	router.GET("/actual", s.getActual)
	router.PUT("/actual", s.setActual)

	prompt := router.Group("/prompt")
	prompt.POST("/open", s.openPrompt)
	prompt.POST("/close", s.closePrompt)
	prompt.POST("/drag/start", s.startDrag)
	prompt.POST("/drag/move", s.moveDrag)
	prompt.POST("/drag/end", s.endDrag)

	router.GET("/points", s.getPoints)
	router.GET("/relative", s.getRelative)
	router.GET("/locate", s.locate)
	router.GET("/export", s.exportPoints)
	router.GET("/export/schedule", s.getExportSchedule)
	router.POST("/export/schedule/skip", s.skipExport)

	return router
}

func Run(configPath string, unixSocketPath string, allowNonRoot bool) error {
	conf, err := config.NewFile(configPath)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to parse config during startup")
	}
	logrus.WithFields(conf.LogrusFields()).Infof("config loaded")

	s := newServer(conf)
	if err := s.loadState(); err != nil {
		logrus.Errorf("failed to restore session, starting empty: %v", err)
	}

	s.scheduler.Start()
	s.applySchedule()

	// Receive SIGHUP to reload config
	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGHUP)
		for range sigc {
			err := conf.Load()
			if err != nil {
				logrus.Errorf("failed to reload config: %v", err)
				continue
			}
			logrus.WithFields(conf.LogrusFields()).Infof("config reloaded")
			s.applySchedule()
		}
	}()

	// Event streams never finish on their own; end them when shutting down.
	baseCtx, stopStreams := context.WithCancel(context.Background())
	srv := &http.Server{
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	srv.RegisterOnShutdown(stopStreams)

	// A socket left behind by a daemon that did not exit cleanly.
	if _, err := os.Stat(unixSocketPath); err == nil {
		logrus.Warnf("removing stale socket %s", unixSocketPath)
		if err := os.Remove(unixSocketPath); err != nil {
			return pkgerrors.Wrapf(err, "failed to remove stale socket %s", unixSocketPath)
		}
	}

	// Create the socket to listen on:
	l, err := net.Listen("unix", unixSocketPath)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to listen on %s", unixSocketPath)
	}

	if conf.AllowNonRootAccess() || allowNonRoot {
		logrus.Infof("non-root access is allowed, changing permissions of %s to 0777", unixSocketPath)
		err = os.Chmod(unixSocketPath, 0777)
		if err != nil {
			return pkgerrors.Wrapf(err, "failed to chmod %s", unixSocketPath)
		}
	}

	// Serve HTTP on unix socket
	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()

	// Handle common process-killing signals, so we can gracefully shut down:
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	// Wait for a SIGINT or SIGTERM:
	sig := <-sigc
	logrus.Infof("caught signal \"%s\": shutting down.", sig)

	logrus.Info("shutting down http server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = srv.Shutdown(ctx)
	if err != nil {
		logrus.Errorf("failed to shutdown http server: %v", err)
	}
	cancel()

	logrus.Info("stopping export scheduler")
	s.scheduler.Stop()

	if err := s.saveState(); err != nil {
		logrus.Errorf("failed to save session before exiting: %v", err)
	}

	logrus.Info("exiting")
	return nil
}
