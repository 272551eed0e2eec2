package plot

import "fmt"

// Point is a position either in canvas pixel space or in real-world space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Finite reports whether neither coordinate is an infinity or NaN.
func (p Point) Finite() bool {
	return finite(p.X, p.Y)
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// Slot names one of the four reference points.
type Slot string

const (
	SlotX1 Slot = "x1"
	SlotX2 Slot = "x2"
	SlotY1 Slot = "y1"
	SlotY2 Slot = "y2"
)

// Slots lists the reference slots in the order clicks fill them.
var Slots = []Slot{SlotX1, SlotX2, SlotY1, SlotY2}

// ReferencePoints holds the pixel positions of the four calibration clicks.
// An unset slot is nil.
type ReferencePoints struct {
	X1 *Point `json:"x1"`
	X2 *Point `json:"x2"`
	Y1 *Point `json:"y1"`
	Y2 *Point `json:"y2"`
}

// Get returns the point stored in slot, or nil.
func (r *ReferencePoints) Get(slot Slot) *Point {
	switch slot {
	case SlotX1:
		return r.X1
	case SlotX2:
		return r.X2
	case SlotY1:
		return r.Y1
	case SlotY2:
		return r.Y2
	}
	return nil
}

// Set stores p in slot.
func (r *ReferencePoints) Set(slot Slot, p Point) {
	switch slot {
	case SlotX1:
		r.X1 = &p
	case SlotX2:
		r.X2 = &p
	case SlotY1:
		r.Y1 = &p
	case SlotY2:
		r.Y2 = &p
	}
}

// Next returns the first unset slot. ok is false when all four are set.
func (r *ReferencePoints) Next() (slot Slot, ok bool) {
	for _, s := range Slots {
		if r.Get(s) == nil {
			return s, true
		}
	}
	return "", false
}

// Count returns the number of set slots.
func (r *ReferencePoints) Count() int {
	n := 0
	for _, s := range Slots {
		if r.Get(s) != nil {
			n++
		}
	}
	return n
}

// Complete reports whether all four slots are set.
func (r *ReferencePoints) Complete() bool {
	return r.Count() == len(Slots)
}

// ActualCoordinates are the real-world values the user assigns to the
// reference points: X1/X2 for the x1/x2 clicks, Y1/Y2 for the y1/y2 clicks.
type ActualCoordinates struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Transform is an independent linear map per axis:
//
//	real = pixel * scale + offset
type Transform struct {
	ScaleX  float64 `json:"scaleX"`
	ScaleY  float64 `json:"scaleY"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}
