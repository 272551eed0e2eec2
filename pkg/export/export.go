// Package export writes plotted points to CSV or JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/session"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ErrUnknownFormat is returned for formats other than csv and json.
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat parses a format name, case-insensitively. Empty means csv.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", pkgerrors.Wrapf(ErrUnknownFormat, "%q", s)
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "text/csv"
}

// Row is one exported point.
type Row struct {
	Index  int     `json:"index"`
	PixelX float64 `json:"pixelX"`
	PixelY float64 `json:"pixelY"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// Rows numbers points in plotting order.
func Rows(points []session.PlottedPoint) []Row {
	rows := make([]Row, 0, len(points))
	for i, p := range points {
		rows = append(rows, Row{
			Index:  i,
			PixelX: p.Pixel.X,
			PixelY: p.Pixel.Y,
			X:      p.Real.X,
			Y:      p.Real.Y,
		})
	}
	return rows
}

// Write writes points to w in format f.
func Write(w io.Writer, f Format, points []session.PlottedPoint) error {
	rows := Rows(points)

	switch f {
	case FormatCSV:
		return writeCSV(w, rows)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rows); err != nil {
			return pkgerrors.Wrapf(err, "failed to encode points")
		}
		return nil
	}
	return pkgerrors.Wrapf(ErrUnknownFormat, "%q", f)
}

func writeCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"index", "pixel_x", "pixel_y", "x", "y"}); err != nil {
		return pkgerrors.Wrapf(err, "failed to write csv header")
	}

	ff := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for _, r := range rows {
		rec := []string{strconv.Itoa(r.Index), ff(r.PixelX), ff(r.PixelY), ff(r.X), ff(r.Y)}
		if err := cw.Write(rec); err != nil {
			return pkgerrors.Wrapf(err, "failed to write csv row %d", r.Index)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return pkgerrors.Wrapf(err, "failed to flush csv")
	}
	return nil
}
