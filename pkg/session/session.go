package session

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/events"
	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/plot"
)

type pendingEvent struct {
	name    string
	payload any
}

// Session is a single annotation session: one image, one calibration and the
// points plotted against it. It is safe for concurrent use.
type Session struct {
	mu      sync.Mutex
	st      State
	drag    *Drag
	notify  Notifier
	pending []pendingEvent
}

// New returns an empty session. notify may be nil.
func New(notify Notifier) *Session {
	return &Session{
		st: State{
			Points: []PlottedPoint{},
			Stage:  plot.StageAwaitingX1,
			Prompt: Prompt{Position: DefaultPromptPosition},
		},
		notify: notify,
	}
}

// unlock releases the lock and dispatches the events queued while it was held.
func (s *Session) unlock() {
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	if s.notify == nil {
		return
	}
	for _, e := range pending {
		s.notify(e.name, e.payload)
	}
}

func (s *Session) emit(name string, payload any) {
	s.pending = append(s.pending, pendingEvent{name: name, payload: payload})
}

func (s *Session) touch() {
	s.st.UpdatedAt = time.Now()
}

func (s *Session) setStage(to plot.Stage) {
	from := s.st.Stage
	if from == to {
		return
	}
	s.st.Stage = to
	s.emit(events.StageChanged, events.StageChangedEvent{
		From: string(from),
		To:   string(to),
		Ts:   time.Now().Unix(),
	})
	logrus.WithFields(logrus.Fields{
		"from": from,
		"to":   to,
	}).Info("stage changed")
}

// SetPlotting turns plotting mode on or off. Clicks are ignored while it is off.
func (s *Session) SetPlotting(on bool) {
	s.mu.Lock()
	defer s.unlock()

	s.st.Plotting = on
	s.touch()
}

// TogglePlotting flips plotting mode and returns the new value.
func (s *Session) TogglePlotting() bool {
	s.mu.Lock()
	defer s.unlock()

	s.st.Plotting = !s.st.Plotting
	s.touch()
	return s.st.Plotting
}

// Plotting reports whether plotting mode is on.
func (s *Session) Plotting() bool {
	s.mu.Lock()
	defer s.unlock()

	return s.st.Plotting
}

// SetImage records the loaded image. References and points are kept.
func (s *Session) SetImage(info ImageInfo) {
	s.mu.Lock()
	defer s.unlock()

	s.st.Image = &info
	s.touch()
	s.emit(events.ImageLoaded, events.ImageLoadedEvent{
		Name:         info.Name,
		Width:        info.Width,
		Height:       info.Height,
		CanvasWidth:  info.CanvasWidth,
		CanvasHeight: info.CanvasHeight,
		Ts:           time.Now().Unix(),
	})
}

// Image returns the loaded image info, or nil.
func (s *Session) Image() *ImageInfo {
	s.mu.Lock()
	defer s.unlock()

	if s.st.Image == nil {
		return nil
	}
	info := *s.st.Image
	return &info
}

// Click interprets a click at canvas pixel p. While calibrating it fills the
// next reference slot; once calibrated it plots p.
func (s *Session) Click(p plot.Point) (ClickResult, error) {
	s.mu.Lock()
	defer s.unlock()

	if !s.st.Plotting {
		return ClickResult{Kind: ClickIgnored, Stage: s.st.Stage}, nil
	}
	if s.st.Image != nil && !s.st.Image.Contains(p) {
		return ClickResult{Kind: ClickIgnored, Stage: s.st.Stage}, ErrOutOfCanvas
	}

	if slot, ok := s.st.Stage.Slot(); ok {
		return s.setReference(slot, p)
	}
	return s.plot(p)
}

func (s *Session) setReference(slot plot.Slot, p plot.Point) (ClickResult, error) {
	if err := plot.CheckReference(s.st.References, slot, p); err != nil {
		return ClickResult{Kind: ClickIgnored, Stage: s.st.Stage}, err
	}

	s.st.References.Set(slot, p)
	s.touch()
	s.emit(events.ReferenceSet, events.ReferenceSetEvent{
		Slot:  string(slot),
		Pixel: p,
		Ts:    time.Now().Unix(),
	})
	logrus.WithFields(logrus.Fields{
		"slot":  slot,
		"pixel": p,
	}).Debug("reference point set")

	s.setStage(plot.Transition(s.st.Stage, plot.EventReference))

	res := ClickResult{Kind: ClickReference, Stage: s.st.Stage, Slot: slot}
	if s.st.Stage == plot.StageCalibrated {
		s.openPrompt()
		res.PromptOpened = true
	}
	return res, nil
}

func (s *Session) plot(p plot.Point) (ClickResult, error) {
	t, err := plot.ComputeTransform(s.st.References, s.st.Actual)
	if err != nil {
		return ClickResult{Kind: ClickIgnored, Stage: s.st.Stage}, err
	}

	mapped := t.Apply(p)
	if !mapped.Finite() {
		return ClickResult{Kind: ClickIgnored, Stage: s.st.Stage}, plot.ErrNonFinite
	}

	pp := PlottedPoint{Pixel: p, Real: mapped}
	s.st.Points = append(s.st.Points, pp)
	idx := len(s.st.Points) - 1
	s.touch()
	s.emit(events.PointPlotted, events.PointPlottedEvent{
		Index: idx,
		Pixel: pp.Pixel,
		Real:  pp.Real,
		Ts:    time.Now().Unix(),
	})

	return ClickResult{Kind: ClickPlotted, Stage: s.st.Stage, Index: idx, Point: &pp}, nil
}

// SetActual replaces the actual coordinates, closes the prompt and remaps
// every plotted point from its pixel. It returns the number of remapped points.
// Coordinates that overflow the transform or any remapped point are rejected
// with plot.ErrNonFinite and leave the session unchanged.
func (s *Session) SetActual(a plot.ActualCoordinates) (int, error) {
	s.mu.Lock()
	defer s.unlock()

	if err := plot.CheckActual(a); err != nil {
		return 0, err
	}

	var remappedReal []plot.Point
	t, err := plot.ComputeTransform(s.st.References, a)
	switch {
	case err == nil:
		remappedReal = make([]plot.Point, len(s.st.Points))
		for i, p := range s.st.Points {
			mapped := t.Apply(p.Pixel)
			if !mapped.Finite() {
				return 0, plot.ErrNonFinite
			}
			remappedReal[i] = mapped
		}
	case errors.Is(err, plot.ErrNonFinite):
		return 0, err
	}

	s.st.Actual = a
	s.closePrompt()
	for i, mapped := range remappedReal {
		s.st.Points[i].Real = mapped
	}
	remapped := len(remappedReal)

	s.touch()
	s.emit(events.ActualUpdated, events.ActualUpdatedEvent{
		Actual:   a,
		Remapped: remapped,
		Ts:       time.Now().Unix(),
	})
	logrus.WithFields(logrus.Fields{
		"actual":   a,
		"remapped": remapped,
	}).Info("actual coordinates updated")

	return remapped, nil
}

// Actual returns the current actual coordinates.
func (s *Session) Actual() plot.ActualCoordinates {
	s.mu.Lock()
	defer s.unlock()

	return s.st.Actual
}

// Reset clears the reference and plotted points. Actual coordinates, the
// image and plotting mode are kept.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.unlock()

	cleared := len(s.st.Points)
	s.st.References = plot.ReferencePoints{}
	s.st.Points = []PlottedPoint{}
	s.closePrompt()
	s.setStage(plot.Transition(s.st.Stage, plot.EventReset))
	s.touch()
	s.emit(events.SessionReset, events.MessageEvent{
		Message: "reference and plotted points cleared",
		Ts:      time.Now().Unix(),
	})
	logrus.WithField("clearedPoints", cleared).Info("session reset")
}

// Transform returns the current transform.
func (s *Session) Transform() (plot.Transform, error) {
	s.mu.Lock()
	defer s.unlock()

	return plot.ComputeTransform(s.st.References, s.st.Actual)
}

// Points returns a copy of the plotted points.
func (s *Session) Points() []PlottedPoint {
	s.mu.Lock()
	defer s.unlock()

	return append([]PlottedPoint{}, s.st.Points...)
}

// Relative returns each plotted point as an offset from the (x1, y1) actual
// coordinates. It requires a completed calibration.
func (s *Session) Relative() ([]plot.Point, error) {
	s.mu.Lock()
	defer s.unlock()

	if s.st.Stage != plot.StageCalibrated {
		return nil, ErrNotCalibrated
	}

	ret := make([]plot.Point, 0, len(s.st.Points))
	for _, p := range s.st.Points {
		rel := plot.Relative(p.Real, s.st.Actual)
		if !rel.Finite() {
			return nil, plot.ErrNonFinite
		}
		ret = append(ret, rel)
	}
	return ret, nil
}

// Locate maps real-world coordinates back to a canvas pixel.
func (s *Session) Locate(real plot.Point) (plot.Point, error) {
	s.mu.Lock()
	defer s.unlock()

	if s.st.Stage != plot.StageCalibrated {
		return plot.Point{}, ErrNotCalibrated
	}
	t, err := plot.ComputeTransform(s.st.References, s.st.Actual)
	if err != nil {
		return plot.Point{}, err
	}
	return t.Invert(real)
}

// Status returns a snapshot of the session.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.unlock()

	st := Status{
		Stage:      s.st.Stage,
		Plotting:   s.st.Plotting,
		References: copyRefs(s.st.References),
		Actual:     s.st.Actual,
		Points:     len(s.st.Points),
		Prompt:     s.st.Prompt,
		Dragging:   s.drag != nil,
		UpdatedAt:  s.st.UpdatedAt,
	}
	if s.st.Image != nil {
		info := *s.st.Image
		st.Image = &info
	}
	if t, err := plot.ComputeTransform(s.st.References, s.st.Actual); err == nil {
		st.Transform = &t
	}
	return st
}

// State returns a deep copy of the session state for persistence.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.unlock()

	st := s.st
	st.Points = append([]PlottedPoint{}, s.st.Points...)
	st.References = copyRefs(s.st.References)
	if s.st.Image != nil {
		info := *s.st.Image
		st.Image = &info
	}
	return st
}

// Restore replaces the session state. The stage is derived from the
// reference points rather than trusted from st.
func (s *Session) Restore(st State) {
	s.mu.Lock()
	defer s.unlock()

	st.References = copyRefs(st.References)
	st.Stage = plot.StageOf(st.References)
	st.Points = append([]PlottedPoint{}, st.Points...)
	if st.Image != nil {
		info := *st.Image
		st.Image = &info
	}
	s.st = st
	s.drag = nil
}

func copyRefs(r plot.ReferencePoints) plot.ReferencePoints {
	var out plot.ReferencePoints
	for _, slot := range plot.Slots {
		if p := r.Get(slot); p != nil {
			out.Set(slot, *p)
		}
	}
	return out
}
