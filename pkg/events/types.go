package events

import (
	"encoding/json"

	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/plot"
)

// Event name constants
const (
	StageChanged    = "stage.changed"
	ReferenceSet    = "reference.set"
	PointPlotted    = "point.plotted"
	ActualUpdated   = "actual.updated"
	SessionReset    = "session.reset"
	ImageLoaded     = "image.loaded"
	PromptOpened    = "prompt.opened"
	ExportUpcoming  = "export.upcoming"
	ExportCompleted = "export.completed"
	ExportFailed    = "export.failed"
)

// Event is a generic SSE event from daemon.
type Event struct {
	Name string          // SSE event name
	Data json.RawMessage // Raw JSON payload
}

// StageChangedEvent is the typed payload for stage.changed.
type StageChangedEvent struct {
	From string `json:"from"`
	To   string `json:"to"`
	Ts   int64  `json:"ts"`
}

// ReferenceSetEvent is the typed payload for reference.set.
type ReferenceSetEvent struct {
	Slot  string     `json:"slot"`
	Pixel plot.Point `json:"pixel"`
	Ts    int64      `json:"ts"`
}

// PointPlottedEvent is the typed payload for point.plotted.
type PointPlottedEvent struct {
	Index int        `json:"index"`
	Pixel plot.Point `json:"pixel"`
	Real  plot.Point `json:"real"`
	Ts    int64      `json:"ts"`
}

// ActualUpdatedEvent is the typed payload for actual.updated. Remapped is the
// number of plotted points recomputed with the new values.
type ActualUpdatedEvent struct {
	Actual   plot.ActualCoordinates `json:"actual"`
	Remapped int                    `json:"remapped"`
	Ts       int64                  `json:"ts"`
}

// ImageLoadedEvent is the typed payload for image.loaded.
type ImageLoadedEvent struct {
	Name         string `json:"name"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	CanvasWidth  int    `json:"canvasWidth"`
	CanvasHeight int    `json:"canvasHeight"`
	Ts           int64  `json:"ts"`
}

// ExportEvent is the typed payload for the export.* events.
type ExportEvent struct {
	Path    string `json:"path,omitempty"`
	Points  int    `json:"points,omitempty"`
	Message string `json:"message,omitempty"`
	Ts      int64  `json:"ts"`
}

// MessageEvent carries a human readable message, used by session.reset and
// prompt.opened.
type MessageEvent struct {
	Message string `json:"message"`
	Ts      int64  `json:"ts"`
}

// DecodeAs decodes the event payload into the caller-specified generic type T.
// It ignores the event name and simply unmarshals Data into T. If Data is empty,
// it returns the zero value of T with a nil error.
//
// Example:
//
//	payload, err := events.DecodeAs[events.StageChangedEvent](ev)
//	if err != nil { /* handle */ }
//	fmt.Println(payload.From, payload.To)
func DecodeAs[T any](e Event) (T, error) {
	var zero T
	if len(e.Data) == 0 {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return zero, err
	}
	return v, nil
}
