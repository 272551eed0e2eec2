package daemon

import (
	"bytes"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/events"
	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/export"
	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/plot"
	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/session"
)

var errNothingToExport = &daemonError{"no plotted points to export"}

func (s *server) newExportScheduler() *Scheduler {
	return NewScheduler(s.runExport, s.exportPreCheck, s.onExportUpcoming, s.onExportError)
}

// applySchedule reads the export schedule from the config and installs it.
func (s *server) applySchedule() {
	expr := s.conf.ExportSchedule()
	if err := s.scheduler.Schedule(expr); err != nil {
		logrus.WithError(err).WithField("schedule", expr).Error("invalid export schedule, scheduled export disabled")
		_ = s.scheduler.Schedule("")
		return
	}
	if expr == "" {
		logrus.Debug("scheduled export disabled")
		return
	}
	_, next, _ := s.scheduler.Status()
	logrus.WithFields(logrus.Fields{
		"schedule": expr,
		"nextRun":  next.Format(time.DateTime),
	}).Info("scheduled export enabled")
}

func (s *server) exportPreCheck() error {
	if s.sess.Status().Stage != plot.StageCalibrated {
		return session.ErrNotCalibrated
	}
	if len(s.sess.Points()) == 0 {
		return errNothingToExport
	}
	return nil
}

// runExport writes the plotted points to the configured export path.
func (s *server) runExport() error {
	f, err := export.ParseFormat(s.conf.ExportFormat())
	if err != nil {
		return err
	}

	points := s.sess.Points()
	var buf bytes.Buffer
	if err := export.Write(&buf, f, points); err != nil {
		return err
	}

	path := s.conf.ExportPath()
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return pkgerrors.Wrapf(err, "failed to export points")
	}

	logrus.WithFields(logrus.Fields{
		"path":   path,
		"format": f,
		"points": len(points),
	}).Info("points exported")

	s.hub.Publish(events.ExportCompleted, events.ExportEvent{
		Path:   path,
		Points: len(points),
		Ts:     time.Now().Unix(),
	})
	return nil
}

func (s *server) onExportUpcoming(data any) {
	ev := events.ExportEvent{
		Path:    s.conf.ExportPath(),
		Message: "scheduled export is about to run",
		Ts:      time.Now().Unix(),
	}
	if runAt, ok := data.(time.Time); ok {
		ev.Message = "scheduled export runs at " + runAt.Format(time.DateTime)
	}
	s.hub.Publish(events.ExportUpcoming, ev)
}

func (s *server) onExportError(data any) {
	msg := "scheduled export failed"
	if err, ok := data.(error); ok {
		msg = err.Error()
	}
	logrus.WithField("path", s.conf.ExportPath()).Warn(msg)
	s.hub.Publish(events.ExportFailed, events.ExportEvent{
		Path:    s.conf.ExportPath(),
		Message: msg,
		Ts:      time.Now().Unix(),
	})
}
