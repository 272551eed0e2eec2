package daemon

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/canvas"
	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/session"
)

// canvasPath is where the fitted canvas image is kept, next to the state file.
func canvasPath(statePath string) string {
	return strings.TrimSuffix(statePath, filepath.Ext(statePath)) + ".png"
}

// writeFileAtomic writes data to a temporary file in the same directory and
// renames it over path.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return pkgerrors.Wrapf(err, "failed to create directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to create temporary file for %s", path)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return pkgerrors.Wrapf(err, "failed to write %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return pkgerrors.Wrapf(err, "failed to close %s", tmp.Name())
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return pkgerrors.Wrapf(err, "failed to chmod %s", tmp.Name())
	}

	return pkgerrors.Wrapf(os.Rename(tmp.Name(), path), "failed to rename %s to %s", tmp.Name(), path)
}

func (s *server) saveState() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	b, err := json.MarshalIndent(s.sess.State(), "", "  ")
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to marshal session state")
	}
	if err := writeFileAtomic(s.statePath, b); err != nil {
		return err
	}
	logrus.WithField("path", s.statePath).Debug("session state saved")
	return nil
}

func (s *server) saveCanvas() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.imgMu.RLock()
	img := s.canvasImg
	s.imgMu.RUnlock()
	if img == nil {
		return nil
	}

	var buf bytes.Buffer
	if err := canvas.EncodePNG(&buf, img); err != nil {
		return err
	}
	return writeFileAtomic(canvasPath(s.statePath), buf.Bytes())
}

// loadState restores the session saved by a previous daemon. A missing state
// file leaves the session empty. When the canvas image cannot be read back the
// image is dropped but the calibration is kept.
func (s *server) loadState() error {
	b, err := os.ReadFile(s.statePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to read state file %s", s.statePath)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil
	}

	var st session.State
	if err := json.Unmarshal(b, &st); err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal state file %s", s.statePath)
	}

	if st.Image != nil {
		img, err := canvas.Load(canvasPath(s.statePath))
		if err != nil {
			logrus.WithError(err).Warn("failed to restore canvas image, image dropped")
			st.Image = nil
		} else {
			s.imgMu.Lock()
			s.canvasImg = canvas.Fit(img, img.Bounds().Dx(), img.Bounds().Dy())
			s.imgMu.Unlock()
		}
	}

	s.sess.Restore(st)
	logrus.WithFields(logrus.Fields{
		"path":   s.statePath,
		"stage":  s.sess.Status().Stage,
		"points": len(st.Points),
	}).Info("session state restored")
	return nil
}
