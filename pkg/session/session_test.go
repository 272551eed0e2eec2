package session

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/events"
	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/plot"
)

type recorder struct {
	mu    sync.Mutex
	names []string
}

func (r *recorder) notify(name string, _ any) {
	r.mu.Lock()
	r.names = append(r.names, name)
	r.mu.Unlock()
}

func (r *recorder) count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, v := range r.names {
		if v == name {
			n++
		}
	}
	return n
}

// calibrated returns a plotting session with the reference pixels
// x1=(10,0) x2=(110,0) y1=(0,10) y2=(0,110).
func calibrated(t *testing.T, notify Notifier) *Session {
	t.Helper()

	s := New(notify)
	s.SetPlotting(true)
	for _, p := range []plot.Point{plot.Pt(10, 0), plot.Pt(110, 0), plot.Pt(0, 10), plot.Pt(0, 110)} {
		res, err := s.Click(p)
		if err != nil {
			t.Fatalf("calibration click %v failed: %v", p, err)
		}
		if res.Kind != ClickReference {
			t.Fatalf("expected reference click, got %s", res.Kind)
		}
	}
	return s
}

func TestClickIgnoredWhenNotPlotting(t *testing.T) {
	s := New(nil)
	res, err := s.Click(plot.Pt(1, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Kind != ClickIgnored {
		t.Fatalf("expected ignored click, got %s", res.Kind)
	}
	refs := s.State().References
	if n := refs.Count(); n != 0 {
		t.Fatalf("expected no reference points, got %d", n)
	}
}

func TestTogglePlotting(t *testing.T) {
	s := New(nil)
	if !s.TogglePlotting() || !s.Plotting() {
		t.Fatalf("expected plotting mode on after first toggle")
	}
	if s.TogglePlotting() || s.Plotting() {
		t.Fatalf("expected plotting mode off after second toggle")
	}
}

func TestCalibrationFlow(t *testing.T) {
	rec := &recorder{}
	s := New(rec.notify)
	s.SetPlotting(true)

	want := []struct {
		slot  plot.Slot
		stage plot.Stage
	}{
		{plot.SlotX1, plot.StageAwaitingX2},
		{plot.SlotX2, plot.StageAwaitingY1},
		{plot.SlotY1, plot.StageAwaitingY2},
		{plot.SlotY2, plot.StageCalibrated},
	}
	clicks := []plot.Point{plot.Pt(10, 0), plot.Pt(110, 0), plot.Pt(0, 10), plot.Pt(0, 110)}

	for i, p := range clicks {
		res, err := s.Click(p)
		if err != nil {
			t.Fatalf("click %d failed: %v", i, err)
		}
		if res.Slot != want[i].slot || res.Stage != want[i].stage {
			t.Fatalf("click %d: got slot %s stage %s, want %s %s", i, res.Slot, res.Stage, want[i].slot, want[i].stage)
		}
		if res.PromptOpened != (i == 3) {
			t.Fatalf("click %d: unexpected PromptOpened=%t", i, res.PromptOpened)
		}
	}

	if !s.Prompt().Open {
		t.Fatalf("expected prompt to be open after calibration")
	}
	if n := rec.count(events.PromptOpened); n != 1 {
		t.Fatalf("expected one prompt.opened event, got %d", n)
	}
	if n := rec.count(events.StageChanged); n != 4 {
		t.Fatalf("expected 4 stage.changed events, got %d", n)
	}

	remapped, err := s.SetActual(plot.ActualCoordinates{X1: 0, X2: 100, Y1: 0, Y2: 100})
	if err != nil {
		t.Fatalf("SetActual failed: %v", err)
	}
	if remapped != 0 {
		t.Fatalf("expected nothing to remap, got %d", remapped)
	}
	if s.Prompt().Open {
		t.Fatalf("expected prompt to close after saving actual coordinates")
	}

	res, err := s.Click(plot.Pt(60, 0))
	if err != nil {
		t.Fatalf("plot click failed: %v", err)
	}
	if res.Kind != ClickPlotted || res.Point == nil {
		t.Fatalf("expected plotted click, got %+v", res)
	}
	if res.Point.Real != plot.Pt(50, -10) {
		t.Fatalf("expected (50, -10), got %v", res.Point.Real)
	}
	if n := rec.count(events.PointPlotted); n != 1 {
		t.Fatalf("expected one point.plotted event, got %d", n)
	}
}

func TestDegenerateClickRejected(t *testing.T) {
	s := New(nil)
	s.SetPlotting(true)

	if _, err := s.Click(plot.Pt(10, 0)); err != nil {
		t.Fatalf("x1 click failed: %v", err)
	}
	res, err := s.Click(plot.Pt(10, 80))
	if !errors.Is(err, plot.ErrDegenerateAxis) {
		t.Fatalf("expected ErrDegenerateAxis, got %v", err)
	}
	if res.Kind != ClickIgnored || res.Stage != plot.StageAwaitingX2 {
		t.Fatalf("expected ignored click still awaiting x2, got %+v", res)
	}

	// A distinct pixel is accepted afterwards.
	res, err = s.Click(plot.Pt(11, 80))
	if err != nil {
		t.Fatalf("x2 click failed: %v", err)
	}
	if res.Slot != plot.SlotX2 {
		t.Fatalf("expected x2 slot, got %s", res.Slot)
	}
}

func TestClickOutsideCanvas(t *testing.T) {
	s := New(nil)
	s.SetImage(ImageInfo{Name: "a.png", Width: 200, Height: 100, CanvasWidth: 800, CanvasHeight: 400})
	s.SetPlotting(true)

	for _, p := range []plot.Point{plot.Pt(-1, 5), plot.Pt(800, 5), plot.Pt(5, 400)} {
		if _, err := s.Click(p); !errors.Is(err, ErrOutOfCanvas) {
			t.Fatalf("click %v: expected ErrOutOfCanvas, got %v", p, err)
		}
	}
	if _, err := s.Click(plot.Pt(799.5, 399.5)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestResetPreservesActual(t *testing.T) {
	s := calibrated(t, nil)
	actual := plot.ActualCoordinates{X1: 1, X2: 2, Y1: 3, Y2: 4}
	s.SetActual(actual)
	if _, err := s.Click(plot.Pt(50, 50)); err != nil {
		t.Fatalf("plot click failed: %v", err)
	}

	s.Reset()

	st := s.State()
	if len(st.Points) != 0 {
		t.Fatalf("expected points to be cleared, got %d", len(st.Points))
	}
	if st.References.Count() != 0 {
		t.Fatalf("expected references to be cleared, got %d", st.References.Count())
	}
	if st.Stage != plot.StageAwaitingX1 {
		t.Fatalf("expected stage %s, got %s", plot.StageAwaitingX1, st.Stage)
	}
	if st.Actual != actual {
		t.Fatalf("expected actual coordinates %+v to survive reset, got %+v", actual, st.Actual)
	}
	if !st.Plotting {
		t.Fatalf("expected plotting mode to survive reset")
	}
	if _, err := s.Transform(); !errors.Is(err, plot.ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete after reset, got %v", err)
	}
}

func TestSetActualRemapsPoints(t *testing.T) {
	s := calibrated(t, nil)
	s.SetActual(plot.ActualCoordinates{X1: 0, X2: 100, Y1: 0, Y2: 100})

	for _, p := range []plot.Point{plot.Pt(60, 0), plot.Pt(110, 110)} {
		if _, err := s.Click(p); err != nil {
			t.Fatalf("plot click failed: %v", err)
		}
	}

	remapped, err := s.SetActual(plot.ActualCoordinates{X1: 0, X2: 200, Y1: 100, Y2: 0})
	if err != nil {
		t.Fatalf("SetActual failed: %v", err)
	}
	if remapped != 2 {
		t.Fatalf("expected 2 remapped points, got %d", remapped)
	}

	points := s.Points()
	if points[0].Real != plot.Pt(100, 110) {
		t.Fatalf("expected first point at (100, 110), got %v", points[0].Real)
	}
	if points[1].Real != plot.Pt(200, 0) {
		t.Fatalf("expected second point at (200, 0), got %v", points[1].Real)
	}
	if points[0].Pixel != plot.Pt(60, 0) {
		t.Fatalf("pixel must not change, got %v", points[0].Pixel)
	}
	if s.Status().Stage != plot.StageCalibrated {
		t.Fatalf("editing actual coordinates must not change the stage")
	}
}

func TestRelative(t *testing.T) {
	s := New(nil)
	if _, err := s.Relative(); !errors.Is(err, ErrNotCalibrated) {
		t.Fatalf("expected ErrNotCalibrated, got %v", err)
	}

	s = calibrated(t, nil)
	s.SetActual(plot.ActualCoordinates{X1: 5, X2: 105, Y1: 5, Y2: 105})
	if _, err := s.Click(plot.Pt(60, 60)); err != nil {
		t.Fatalf("plot click failed: %v", err)
	}

	rel, err := s.Relative()
	if err != nil {
		t.Fatalf("Relative failed: %v", err)
	}
	if len(rel) != 1 || rel[0] != plot.Pt(50, 50) {
		t.Fatalf("expected [(50, 50)], got %v", rel)
	}
}

func TestLocate(t *testing.T) {
	s := calibrated(t, nil)
	if _, err := s.Locate(plot.Pt(1, 1)); !errors.Is(err, plot.ErrSingular) {
		t.Fatalf("expected ErrSingular with zero actual coordinates, got %v", err)
	}

	s.SetActual(plot.ActualCoordinates{X1: 0, X2: 100, Y1: 0, Y2: 100})
	px, err := s.Locate(plot.Pt(50, -10))
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if math.Abs(px.X-60) > 1e-9 || math.Abs(px.Y) > 1e-9 {
		t.Fatalf("expected (60, 0), got %v", px)
	}
}

func TestRestoreDerivesStage(t *testing.T) {
	src := calibrated(t, nil)
	src.SetActual(plot.ActualCoordinates{X2: 10, Y2: 10})
	st := src.State()
	st.Stage = plot.StageAwaitingX1

	dst := New(nil)
	dst.Restore(st)

	if got := dst.Status().Stage; got != plot.StageCalibrated {
		t.Fatalf("expected %s, got %s", plot.StageCalibrated, got)
	}
	if dst.Actual() != src.Actual() {
		t.Fatalf("actual coordinates not restored")
	}

	// The restored copy must not alias the source.
	src.Reset()
	dstRefs := dst.State().References
	if dstRefs.Count() != 4 {
		t.Fatalf("restored references were modified through the source session")
	}
}

func TestSetActualRejectsOverflow(t *testing.T) {
	rec := &recorder{}
	s := calibrated(t, rec.notify)
	prev := plot.ActualCoordinates{X1: 0, X2: 100, Y1: 0, Y2: 100}
	if _, err := s.SetActual(prev); err != nil {
		t.Fatalf("SetActual failed: %v", err)
	}
	if _, err := s.Click(plot.Pt(1e4, 0)); err != nil {
		t.Fatalf("plot click failed: %v", err)
	}
	before := s.Points()
	updates := rec.count(events.ActualUpdated)

	for _, a := range []plot.ActualCoordinates{
		{X1: -1e308, X2: 1e308, Y1: 0, Y2: 100},
		// finite transform, but the plotted pixel (1e4, 0) overflows
		{X1: 0, X2: 1e308, Y1: 0, Y2: 100},
	} {
		if _, err := s.SetActual(a); !errors.Is(err, plot.ErrNonFinite) {
			t.Fatalf("SetActual(%+v): expected ErrNonFinite, got %v", a, err)
		}
	}

	if s.Actual() != prev {
		t.Fatalf("expected actual coordinates to stay %+v, got %+v", prev, s.Actual())
	}
	if after := s.Points(); len(after) != 1 || after[0] != before[0] {
		t.Fatalf("expected plotted points to be unchanged, got %+v", after)
	}
	if n := rec.count(events.ActualUpdated); n != updates {
		t.Fatalf("expected no actual.updated event for a rejected update, got %d more", n-updates)
	}
}

func TestClickRejectsOverflow(t *testing.T) {
	s := calibrated(t, nil)
	if _, err := s.SetActual(plot.ActualCoordinates{X1: 0, X2: 1e308, Y1: 0, Y2: 100}); err != nil {
		t.Fatalf("SetActual failed: %v", err)
	}

	res, err := s.Click(plot.Pt(1e4, 0))
	if !errors.Is(err, plot.ErrNonFinite) {
		t.Fatalf("expected ErrNonFinite, got %v", err)
	}
	if res.Kind != ClickIgnored {
		t.Fatalf("expected ignored click, got %s", res.Kind)
	}
	if n := len(s.Points()); n != 0 {
		t.Fatalf("expected no plotted points, got %d", n)
	}
}
