package canvas

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/plot"
)

const markerSize = 4

var (
	ReferenceColor = color.NRGBA{R: 255, A: 255}
	PointColor     = color.NRGBA{A: 255}
)

// Marker is a labelled reference point.
type Marker struct {
	Label string
	At    plot.Point
}

// Overlay is what gets drawn on top of the canvas image.
type Overlay struct {
	References []Marker
	Points     []plot.Point
}

// Render draws ov on a copy of img. Plotted points are drawn as small black
// squares, reference points as red squares labelled to their right.
func Render(img image.Image, ov Overlay) *image.NRGBA {
	dst := imaging.Clone(img)

	for _, p := range ov.Points {
		drawMarker(dst, p, PointColor)
	}
	for _, m := range ov.References {
		drawMarker(dst, m.At, ReferenceColor)
		drawLabel(dst, m.At, m.Label, ReferenceColor)
	}
	return dst
}

func drawMarker(img *image.NRGBA, at plot.Point, c color.NRGBA) {
	x0 := int(math.Round(at.X)) - markerSize/2
	y0 := int(math.Round(at.Y)) - markerSize/2
	r := image.Rect(x0, y0, x0+markerSize, y0+markerSize).Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

func drawLabel(img *image.NRGBA, at plot.Point, label string, c color.NRGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(int(math.Round(at.X))+5, int(math.Round(at.Y))),
	}
	d.DrawString(label)
}
