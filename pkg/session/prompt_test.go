package session

import (
	"errors"
	"testing"

	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/plot"
)

func TestDragKeepsPointerOffset(t *testing.T) {
	s := New(nil)
	if _, err := s.BeginDrag(plot.Pt(0, 0)); !errors.Is(err, ErrPromptClosed) {
		t.Fatalf("expected ErrPromptClosed, got %v", err)
	}

	s.OpenPrompt()
	if pos := s.Prompt().Position; pos != DefaultPromptPosition {
		t.Fatalf("expected default position %v, got %v", DefaultPromptPosition, pos)
	}

	d, err := s.BeginDrag(plot.Pt(130, 110))
	if err != nil {
		t.Fatalf("BeginDrag failed: %v", err)
	}
	if d.Offset() != plot.Pt(30, 10) {
		t.Fatalf("expected offset (30, 10), got %v", d.Offset())
	}

	p, err := d.Move(plot.Pt(300, 200))
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if p.Position != plot.Pt(270, 190) {
		t.Fatalf("expected position (270, 190), got %v", p.Position)
	}
	if s.ActiveDrag() != d {
		t.Fatalf("expected drag to be active")
	}

	d.End()
	if _, err := d.Move(plot.Pt(0, 0)); !errors.Is(err, ErrDragReleased) {
		t.Fatalf("expected ErrDragReleased, got %v", err)
	}
	if s.Prompt().Position != plot.Pt(270, 190) {
		t.Fatalf("released drag must not move the prompt")
	}
	if s.ActiveDrag() != nil {
		t.Fatalf("expected no active drag")
	}
}

func TestNewDragReleasesPrevious(t *testing.T) {
	s := New(nil)
	s.OpenPrompt()

	first, err := s.BeginDrag(plot.Pt(100, 100))
	if err != nil {
		t.Fatalf("BeginDrag failed: %v", err)
	}
	second, err := s.BeginDrag(plot.Pt(100, 100))
	if err != nil {
		t.Fatalf("BeginDrag failed: %v", err)
	}

	if _, err := first.Move(plot.Pt(5, 5)); !errors.Is(err, ErrDragReleased) {
		t.Fatalf("expected first drag to be released, got %v", err)
	}
	// Ending a stale drag must not release the current one.
	first.End()
	if s.ActiveDrag() != second {
		t.Fatalf("expected second drag to stay active")
	}
}

func TestClosingPromptReleasesDrag(t *testing.T) {
	s := calibrated(t, nil)
	d, err := s.BeginDrag(plot.Pt(120, 120))
	if err != nil {
		t.Fatalf("BeginDrag failed: %v", err)
	}

	s.SetActual(plot.ActualCoordinates{X2: 1, Y2: 1})
	if _, err := d.Move(plot.Pt(0, 0)); !errors.Is(err, ErrDragReleased) {
		t.Fatalf("expected ErrDragReleased after the prompt closed, got %v", err)
	}
}
