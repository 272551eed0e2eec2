package canvas

import (
	"bytes"
	"image"
	"io"
	"math"
	"os"

	// Registers "webp" with image.Decode, so imaging.Decode handles WebP
	// through the libwebp decoder.
	_ "github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	pkgerrors "github.com/pkg/errors"
)

// Defaults for the display canvas.
const (
	DefaultMaxWidth  = 800
	DefaultMaxHeight = 600
)

// Decode decodes an image in any format imaging understands, WebP included.
func Decode(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to read image")
	}
	if len(data) == 0 {
		return nil, pkgerrors.New("image is empty")
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to decode image")
	}
	return img, nil
}

// Load decodes the image file at path.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to open image %s", path)
	}
	defer f.Close()

	img, err := Decode(f)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to decode image %s", path)
	}
	return img, nil
}

// Layout returns the canvas size for a srcW x srcH image shown within
// maxW x maxH. The aspect ratio is preserved and small images are scaled up.
func Layout(srcW, srcH, maxW, maxH int) (w, h int, scale float64) {
	if srcW <= 0 || srcH <= 0 {
		return 0, 0, 0
	}
	if maxW <= 0 {
		maxW = DefaultMaxWidth
	}
	if maxH <= 0 {
		maxH = DefaultMaxHeight
	}

	scale = math.Min(float64(maxW)/float64(srcW), float64(maxH)/float64(srcH))
	w = int(math.Round(float64(srcW) * scale))
	h = int(math.Round(float64(srcH) * scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h, scale
}

// Fit resizes img to its canvas size within maxW x maxH.
func Fit(img image.Image, maxW, maxH int) *image.NRGBA {
	b := img.Bounds()
	w, h, _ := Layout(b.Dx(), b.Dy(), maxW, maxH)
	if w == b.Dx() && h == b.Dy() {
		return imaging.Clone(img)
	}
	return imaging.Resize(img, w, h, imaging.Lanczos)
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		return pkgerrors.Wrapf(err, "failed to encode png")
	}
	return nil
}
