package canvas

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/chai2010/webp"

	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/plot"
)

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestLayout(t *testing.T) {
	tests := []struct {
		name       string
		srcW, srcH int
		w, h       int
		scale      float64
	}{
		{"downscale", 1600, 1200, 800, 600, 0.5},
		{"upscale limited by width", 100, 50, 800, 400, 8},
		{"height bound", 300, 600, 300, 600, 1},
		{"empty", 0, 10, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, scale := Layout(tt.srcW, tt.srcH, DefaultMaxWidth, DefaultMaxHeight)
			if w != tt.w || h != tt.h || scale != tt.scale {
				t.Errorf("Layout() = %d, %d, %g, want %d, %d, %g", w, h, scale, tt.w, tt.h, tt.scale)
			}
		})
	}
}

func TestFit(t *testing.T) {
	img := Fit(solid(40, 30, color.White), 800, 600)
	if b := img.Bounds(); b.Dx() != 800 || b.Dy() != 600 {
		t.Fatalf("expected 800x600 canvas, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestDecodeAndLoad(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, solid(7, 5, color.Black)); err != nil {
		t.Fatalf("png encode failed: %v", err)
	}

	img, err := Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 7 || b.Dy() != 5 {
		t.Fatalf("expected 7x5, got %dx%d", b.Dx(), b.Dy())
	}

	path := filepath.Join(t.TempDir(), "img.png")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestDecodeWebP(t *testing.T) {
	var buf bytes.Buffer
	if err := webp.Encode(&buf, solid(9, 4, color.White), &webp.Options{Lossless: true}); err != nil {
		t.Fatalf("webp encode failed: %v", err)
	}

	img, err := Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 9 || b.Dy() != 4 {
		t.Fatalf("expected 9x4, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Fatalf("expected error for garbage input")
	}
	if _, err := Decode(bytes.NewReader(nil)); err == nil {
		t.Fatalf("expected error for empty input")
	}
}

func TestRenderMarkers(t *testing.T) {
	base := solid(100, 100, color.White)
	out := Render(base, Overlay{
		References: []Marker{{Label: "x1", At: plot.Pt(10, 10)}},
		Points:     []plot.Point{plot.Pt(50, 50), plot.Pt(-20, -20)},
	})

	if got := out.NRGBAAt(10, 10); got != ReferenceColor {
		t.Fatalf("expected reference color at (10,10), got %v", got)
	}
	if got := out.NRGBAAt(50, 50); got != PointColor {
		t.Fatalf("expected point color at (50,50), got %v", got)
	}
	if got := out.NRGBAAt(90, 90); got != (color.NRGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Fatalf("expected untouched pixel at (90,90), got %v", got)
	}
	if got := base.NRGBAAt(50, 50); got != (color.NRGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Fatalf("Render must not modify its input")
	}

	var buf bytes.Buffer
	if err := EncodePNG(&buf, out); err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Fatalf("encoded output is not a png: %v", err)
	}
}
