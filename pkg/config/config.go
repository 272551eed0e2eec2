package config

import "github.com/sirupsen/logrus"

type Config interface {
	CanvasMaxWidth() int
	CanvasMaxHeight() int
	AllowNonRootAccess() bool
	StateFile() string
	ExportSchedule() string
	ExportPath() string
	ExportFormat() string

	SetCanvasMaxSize(width, height int)
	SetAllowNonRootAccess(bool)
	SetExportSchedule(string)
	SetExportPath(string)
	SetExportFormat(string)

	LogrusFields() logrus.Fields

	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error
}
