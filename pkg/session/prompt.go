package session

import (
	"time"

	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/events"
	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/plot"
)

// Drag is a pointer held down on the prompt. It is created on pointer-down
// with the pointer's offset from the prompt origin, moves the prompt on every
// pointer-move, and is released on pointer-up.
type Drag struct {
	s *Session
	// offset is pointer minus prompt position at pointer-down. Never changes.
	offset plot.Point
}

// Offset returns the pointer offset captured at pointer-down.
func (d *Drag) Offset() plot.Point {
	return d.offset
}

// Move places the prompt so that it keeps its offset to pointer.
func (d *Drag) Move(pointer plot.Point) (Prompt, error) {
	s := d.s
	s.mu.Lock()
	defer s.unlock()

	if s.drag != d {
		return s.st.Prompt, ErrDragReleased
	}
	s.st.Prompt.Position = plot.Pt(pointer.X-d.offset.X, pointer.Y-d.offset.Y)
	s.touch()
	return s.st.Prompt, nil
}

// End releases the drag. Further moves fail with ErrDragReleased.
func (d *Drag) End() {
	s := d.s
	s.mu.Lock()
	defer s.unlock()

	if s.drag == d {
		s.drag = nil
	}
}

// BeginDrag starts dragging the prompt with the pointer at pointer. A drag
// already in progress is released.
func (s *Session) BeginDrag(pointer plot.Point) (*Drag, error) {
	s.mu.Lock()
	defer s.unlock()

	if !s.st.Prompt.Open {
		return nil, ErrPromptClosed
	}

	pos := s.st.Prompt.Position
	d := &Drag{
		s:      s,
		offset: plot.Pt(pointer.X-pos.X, pointer.Y-pos.Y),
	}
	s.drag = d
	return d, nil
}

// ActiveDrag returns the drag in progress, or nil.
func (s *Session) ActiveDrag() *Drag {
	s.mu.Lock()
	defer s.unlock()

	return s.drag
}

// OpenPrompt shows the actual coordinates prompt.
func (s *Session) OpenPrompt() Prompt {
	s.mu.Lock()
	defer s.unlock()

	s.openPrompt()
	return s.st.Prompt
}

// ClosePrompt hides the prompt without changing the actual coordinates.
func (s *Session) ClosePrompt() Prompt {
	s.mu.Lock()
	defer s.unlock()

	s.closePrompt()
	return s.st.Prompt
}

// Prompt returns the prompt state.
func (s *Session) Prompt() Prompt {
	s.mu.Lock()
	defer s.unlock()

	return s.st.Prompt
}

func (s *Session) openPrompt() {
	if s.st.Prompt.Open {
		return
	}
	s.st.Prompt.Open = true
	s.touch()
	s.emit(events.PromptOpened, events.MessageEvent{
		Message: "enter actual coordinates for x1, y1, x2, y2",
		Ts:      time.Now().Unix(),
	})
}

func (s *Session) closePrompt() {
	s.st.Prompt.Open = false
	s.drag = nil
}
