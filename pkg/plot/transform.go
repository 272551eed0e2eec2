package plot

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrIncomplete is returned when fewer than four reference points are set.
	ErrIncomplete = errors.New("reference points incomplete")

	// ErrDegenerateAxis is returned when both references of an axis share the
	// same pixel coordinate on that axis, which leaves the scale undefined.
	ErrDegenerateAxis = errors.New("reference points of an axis share the same pixel coordinate")

	// ErrNonFinite is returned when a transform or a mapped point overflows to
	// an infinity or NaN.
	ErrNonFinite = errors.New("coordinates overflow the float64 range")

	// ErrSingular is returned when a transform cannot be inverted because one
	// of its scales is zero.
	ErrSingular = errors.New("transform is not invertible")
)

// ComputeTransform derives the per-axis transform that maps refs onto actual.
// The x1/x2 references calibrate the X axis by their pixel x, the y1/y2
// references calibrate the Y axis by their pixel y.
func ComputeTransform(refs ReferencePoints, actual ActualCoordinates) (Transform, error) {
	if !refs.Complete() {
		return Transform{}, ErrIncomplete
	}

	spanX := refs.X2.X - refs.X1.X
	spanY := refs.Y2.Y - refs.Y1.Y
	if spanX == 0 || spanY == 0 {
		return Transform{}, ErrDegenerateAxis
	}

	scaleX := (actual.X2 - actual.X1) / spanX
	scaleY := (actual.Y2 - actual.Y1) / spanY

	t := Transform{
		ScaleX:  scaleX,
		ScaleY:  scaleY,
		OffsetX: actual.X1 - refs.X1.X*scaleX,
		OffsetY: actual.Y1 - refs.Y1.Y*scaleY,
	}
	if !finite(t.ScaleX, t.ScaleY, t.OffsetX, t.OffsetY) {
		return Transform{}, ErrNonFinite
	}
	return t, nil
}

// CheckActual reports whether the actual coordinates, or the span between
// them on either axis, overflow.
func CheckActual(a ActualCoordinates) error {
	if !finite(a.X1, a.Y1, a.X2, a.Y2, a.X2-a.X1, a.Y2-a.Y1) {
		return ErrNonFinite
	}
	return nil
}

// PlotPoint maps a canvas pixel to real-world coordinates. It fails with the
// same errors as ComputeTransform when no transform is available.
func PlotPoint(refs ReferencePoints, actual ActualCoordinates, pixel Point) (Point, error) {
	t, err := ComputeTransform(refs, actual)
	if err != nil {
		return Point{}, err
	}
	p := t.Apply(pixel)
	if !p.Finite() {
		return Point{}, ErrNonFinite
	}
	return p, nil
}

// CheckReference reports whether storing p in slot would leave its axis
// degenerate. Only the second reference of an axis can fail.
func CheckReference(refs ReferencePoints, slot Slot, p Point) error {
	switch slot {
	case SlotX2:
		if refs.X1 != nil && refs.X1.X == p.X {
			return ErrDegenerateAxis
		}
	case SlotY2:
		if refs.Y1 != nil && refs.Y1.Y == p.Y {
			return ErrDegenerateAxis
		}
	}
	return nil
}

// Apply maps a pixel to real-world coordinates.
func (t Transform) Apply(pixel Point) Point {
	return Point{
		X: pixel.X*t.ScaleX + t.OffsetX,
		Y: pixel.Y*t.ScaleY + t.OffsetY,
	}
}

// Matrix returns the transform in 3x3 homogeneous form.
func (t Transform) Matrix() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		t.ScaleX, 0, t.OffsetX,
		0, t.ScaleY, t.OffsetY,
		0, 0, 1,
	})
}

// Invert maps real-world coordinates back to the canvas pixel they came from.
func (t Transform) Invert(real Point) (Point, error) {
	if t.ScaleX == 0 || t.ScaleY == 0 {
		return Point{}, ErrSingular
	}

	var inv mat.Dense
	if err := inv.Inverse(t.Matrix()); err != nil {
		return Point{}, ErrSingular
	}

	var out mat.VecDense
	out.MulVec(&inv, mat.NewVecDense(3, []float64{real.X, real.Y, 1}))

	pixel := Point{X: out.AtVec(0), Y: out.AtVec(1)}
	if !pixel.Finite() {
		return Point{}, ErrNonFinite
	}
	return pixel, nil
}

// Relative returns real as an offset from the (X1, Y1) anchor of actual.
func Relative(real Point, actual ActualCoordinates) Point {
	return Point{X: real.X - actual.X1, Y: real.Y - actual.Y1}
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return false
		}
	}
	return true
}
