package config

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/utils/ptr"
)

const (
	defaultStateFileName  = "coordplot-state.json"
	defaultExportFileName = "coordplot-points.csv"
)

var (
	defaultFileConfig = &RawFileConfig{
		CanvasMaxWidth:     ptr.To(800),
		CanvasMaxHeight:    ptr.To(600),
		AllowNonRootAccess: ptr.To(false),
		// Scheduled exports are off unless a cron expression is set.
		ExportSchedule: ptr.To(""),
		ExportFormat:   ptr.To("csv"),
	}
)

var _ Config = &File{}

type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = &RawFileConfig{}
	}

	f := &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}

	return f
}

type RawFileConfig struct {
	CanvasMaxWidth     *int    `json:"canvasMaxWidth,omitempty"`
	CanvasMaxHeight    *int    `json:"canvasMaxHeight,omitempty"`
	AllowNonRootAccess *bool   `json:"allowNonRootAccess,omitempty"`
	StateFile          *string `json:"stateFile,omitempty"`
	ExportSchedule     *string `json:"exportSchedule,omitempty"`
	ExportPath         *string `json:"exportPath,omitempty"`
	ExportFormat       *string `json:"exportFormat,omitempty"`
}

func NewRawFileConfigFromConfig(c Config) (*RawFileConfig, error) {
	if c == nil {
		return nil, pkgerrors.New("config is nil")
	}

	rawConfig := &RawFileConfig{
		CanvasMaxWidth:     ptr.To(c.CanvasMaxWidth()),
		CanvasMaxHeight:    ptr.To(c.CanvasMaxHeight()),
		AllowNonRootAccess: ptr.To(c.AllowNonRootAccess()),
		StateFile:          ptr.To(c.StateFile()),
		ExportSchedule:     ptr.To(c.ExportSchedule()),
		ExportPath:         ptr.To(c.ExportPath()),
		ExportFormat:       ptr.To(c.ExportFormat()),
	}

	return rawConfig, nil
}

// dir is where files without a configured path are kept: next to the
// config file.
func (f *File) dir() string {
	if f.filepath == "" {
		return "."
	}
	return filepath.Dir(f.filepath)
}

func (f *File) CanvasMaxWidth() int {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return ptr.Deref(f.c.CanvasMaxWidth, *defaultFileConfig.CanvasMaxWidth)
}

func (f *File) CanvasMaxHeight() int {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return ptr.Deref(f.c.CanvasMaxHeight, *defaultFileConfig.CanvasMaxHeight)
}

func (f *File) AllowNonRootAccess() bool {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return ptr.Deref(f.c.AllowNonRootAccess, *defaultFileConfig.AllowNonRootAccess)
}

func (f *File) StateFile() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.StateFile != nil && *f.c.StateFile != "" {
		return *f.c.StateFile
	}
	return filepath.Join(f.dir(), defaultStateFileName)
}

func (f *File) ExportSchedule() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return ptr.Deref(f.c.ExportSchedule, *defaultFileConfig.ExportSchedule)
}

func (f *File) ExportPath() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.ExportPath != nil && *f.c.ExportPath != "" {
		return *f.c.ExportPath
	}
	return filepath.Join(f.dir(), defaultExportFileName)
}

func (f *File) ExportFormat() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return ptr.Deref(f.c.ExportFormat, *defaultFileConfig.ExportFormat)
}

func (f *File) SetCanvasMaxSize(width, height int) {
	if f.c == nil {
		panic("config is nil")
	}

	if width <= 0 || height <= 0 {
		panic("canvas size must be positive")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.CanvasMaxWidth = &width
	f.c.CanvasMaxHeight = &height
}

func (f *File) SetAllowNonRootAccess(b bool) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.c.AllowNonRootAccess = &b
}

func (f *File) SetExportSchedule(s string) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.c.ExportSchedule = &s
}

func (f *File) SetExportPath(s string) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.c.ExportPath = &s
}

func (f *File) SetExportFormat(s string) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.c.ExportFormat = &s
}

func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// If the file does not exist, return the empty config.
			// Do not make f.c a nil.
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	// Since we want to tell if the file is empty, using json.Decoder will
	// not work.
	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}

	if strings.TrimSpace(string(b)) == "" {
		// If the file is empty, return the empty config.
		// Do not make f.c a nil.
		f.c = &RawFileConfig{}
		return nil
	}

	conf := RawFileConfig{}
	err = json.Unmarshal(b, &conf)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", f.filepath)
	}
	f.c = &conf

	return nil
}

func (f *File) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		return pkgerrors.New("config is nil")
	}

	if err := os.MkdirAll(f.dir(), 0755); err != nil {
		return pkgerrors.Wrapf(err, "failed to create config directory for %s", f.filepath)
	}

	fp, err := os.OpenFile(f.filepath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	enc := json.NewEncoder(fp)
	enc.SetIndent("", "  ")
	err = enc.Encode(f.c)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to encode config to file %s", f.filepath)
	}

	return nil
}

func (f *File) LogrusFields() logrus.Fields {
	if f.c == nil {
		panic("config is nil")
	}

	return logrus.Fields{
		"canvasMaxWidth":     f.CanvasMaxWidth(),
		"canvasMaxHeight":    f.CanvasMaxHeight(),
		"allowNonRootAccess": f.AllowNonRootAccess(),
		"stateFile":          f.StateFile(),
		"exportSchedule":     f.ExportSchedule(),
		"exportPath":         f.ExportPath(),
		"exportFormat":       f.ExportFormat(),
	}
}
