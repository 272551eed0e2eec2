package session

import (
	"time"

	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/plot"
)

// PlottedPoint is one click made after calibration. The pixel is kept so the
// real value can be recomputed when the actual coordinates change.
type PlottedPoint struct {
	Pixel plot.Point `json:"pixel"`
	Real  plot.Point `json:"real"`
}

// ImageInfo describes the loaded image and the canvas it is displayed on.
// Clicks are expressed in canvas pixels.
type ImageInfo struct {
	Name         string `json:"name"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	CanvasWidth  int    `json:"canvasWidth"`
	CanvasHeight int    `json:"canvasHeight"`
}

// Contains reports whether p lies on the canvas.
func (i *ImageInfo) Contains(p plot.Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < float64(i.CanvasWidth) && p.Y < float64(i.CanvasHeight)
}

// Prompt is the draggable dialog asking for actual coordinates.
type Prompt struct {
	Open     bool       `json:"open"`
	Position plot.Point `json:"position"`
}

// DefaultPromptPosition is where the prompt first appears.
var DefaultPromptPosition = plot.Pt(100, 100)

// State holds the session state persisted to disk.
type State struct {
	Image      *ImageInfo             `json:"image,omitempty"`
	References plot.ReferencePoints   `json:"references"`
	Actual     plot.ActualCoordinates `json:"actual"`
	Points     []PlottedPoint         `json:"points"`
	Plotting   bool                   `json:"plotting"`
	Stage      plot.Stage             `json:"stage"`
	Prompt     Prompt                 `json:"prompt"`
	UpdatedAt  time.Time              `json:"updatedAt"`
}

// Status is a synthesized view of the session returned by the HTTP API.
// Transform is only populated once calibrated.
type Status struct {
	Stage      plot.Stage             `json:"stage"`
	Plotting   bool                   `json:"plotting"`
	Image      *ImageInfo             `json:"image,omitempty"`
	References plot.ReferencePoints   `json:"references"`
	Actual     plot.ActualCoordinates `json:"actual"`
	Transform  *plot.Transform        `json:"transform,omitempty"`
	Points     int                    `json:"points"`
	Prompt     Prompt                 `json:"prompt"`
	Dragging   bool                   `json:"dragging"`
	UpdatedAt  time.Time              `json:"updatedAt"`
}

// ClickKind tells what a click did.
type ClickKind string

const (
	ClickIgnored   ClickKind = "Ignored"
	ClickReference ClickKind = "Reference"
	ClickPlotted   ClickKind = "Plotted"
)

// ClickResult is the outcome of a single canvas click.
type ClickResult struct {
	Kind  ClickKind     `json:"kind"`
	Stage plot.Stage    `json:"stage"`
	Slot  plot.Slot     `json:"slot,omitempty"`
	Index int           `json:"index"`
	Point *PlottedPoint `json:"point,omitempty"`
	// PromptOpened is set on the click that completes calibration.
	PromptOpened bool `json:"promptOpened,omitempty"`
}

// Notifier receives session events. It is called without the session lock
// held, in the order the events happened.
type Notifier func(name string, payload any)
