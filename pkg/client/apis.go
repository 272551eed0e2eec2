package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	pkgerrors "github.com/pkg/errors"

	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/config"
	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/plot"
	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/session"
)

// ExportSchedule is the state of the scheduled export.
type ExportSchedule struct {
	Schedule string `json:"schedule"`
	NextRun  string `json:"nextRun,omitempty"`
	Running  bool   `json:"running"`
}

func decodeAs[T any](ret string, what string) (T, error) {
	var v T
	if err := json.Unmarshal([]byte(ret), &v); err != nil {
		return v, pkgerrors.Wrapf(err, "failed to unmarshal %s", what)
	}
	return v, nil
}

func getAs[T any](c *Client, path string, what string) (T, error) {
	ret, err := c.Get(path)
	if err != nil {
		var zero T
		return zero, pkgerrors.Wrapf(err, "failed to get %s", what)
	}
	return decodeAs[T](ret, what)
}

// message decodes the JSON string most mutating endpoints respond with.
func message(ret string, err error) (string, error) {
	if err != nil {
		return "", err
	}
	var msg string
	if err := json.Unmarshal([]byte(ret), &msg); err != nil {
		return ret, nil
	}
	return msg, nil
}

func pointBody(p plot.Point) string {
	b, _ := json.Marshal(p)
	return string(b)
}

func (c *Client) GetVersion() (string, error) {
	return getAs[string](c, "/version", "version")
}

func (c *Client) GetConfig() (*config.RawFileConfig, error) {
	conf, err := getAs[config.RawFileConfig](c, "/config", "config")
	if err != nil {
		return nil, err
	}
	return &conf, nil
}

func (c *Client) GetStatus() (*session.Status, error) {
	st, err := getAs[session.Status](c, "/status", "status")
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// LoadImage uploads raw image bytes. name is only used for display.
func (c *Client) LoadImage(name string, data []byte) (*session.ImageInfo, error) {
	ret, err := c.Put("/image?name="+url.QueryEscape(name), string(data))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to load image %s", name)
	}
	info, err := decodeAs[session.ImageInfo](ret, "image info")
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// GetImage returns the canvas as PNG, with the reference and plotted points
// drawn on it when overlay is set.
func (c *Client) GetImage(overlay bool) ([]byte, error) {
	path := "/image"
	if overlay {
		path = "/canvas"
	}
	ret, err := c.Get(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get canvas image")
	}
	return []byte(ret), nil
}

func (c *Client) SetPlotting(on bool) (string, error) {
	return message(c.Put("/plotting", strconv.FormatBool(on)))
}

func (c *Client) TogglePlotting() (string, error) {
	return message(c.Post("/plotting/toggle", ""))
}

func (c *Client) Click(p plot.Point) (*session.ClickResult, error) {
	ret, err := c.Post("/click", pointBody(p))
	if err != nil {
		return nil, err
	}
	res, err := decodeAs[session.ClickResult](ret, "click result")
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Reset() (string, error) {
	return message(c.Post("/reset", ""))
}

func (c *Client) GetTransform() (*plot.Transform, error) {
	t, err := getAs[plot.Transform](c, "/transform", "transform")
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) GetActual() (plot.ActualCoordinates, error) {
	return getAs[plot.ActualCoordinates](c, "/actual", "actual coordinates")
}

func (c *Client) SetActual(a plot.ActualCoordinates) (string, error) {
	payload, err := json.Marshal(a)
	if err != nil {
		return "", err
	}
	return message(c.Put("/actual", string(payload)))
}

func (c *Client) GetPoints() ([]session.PlottedPoint, error) {
	return getAs[[]session.PlottedPoint](c, "/points", "plotted points")
}

func (c *Client) GetRelative() ([]plot.Point, error) {
	return getAs[[]plot.Point](c, "/relative", "relative coordinates")
}

// Locate returns the canvas pixel of real-world coordinates.
func (c *Client) Locate(real plot.Point) (plot.Point, error) {
	q := url.Values{}
	q.Set("x", strconv.FormatFloat(real.X, 'g', -1, 64))
	q.Set("y", strconv.FormatFloat(real.Y, 'g', -1, 64))
	return getAs[plot.Point](c, "/locate?"+q.Encode(), "pixel")
}

func (c *Client) promptCall(path string, body string) (*session.Prompt, error) {
	ret, err := c.Post(path, body)
	if err != nil {
		return nil, err
	}
	p, err := decodeAs[session.Prompt](ret, "prompt")
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) OpenPrompt() (*session.Prompt, error) {
	return c.promptCall("/prompt/open", "")
}

func (c *Client) ClosePrompt() (*session.Prompt, error) {
	return c.promptCall("/prompt/close", "")
}

func (c *Client) StartDrag(pointer plot.Point) (*session.Prompt, error) {
	return c.promptCall("/prompt/drag/start", pointBody(pointer))
}

func (c *Client) MoveDrag(pointer plot.Point) (*session.Prompt, error) {
	return c.promptCall("/prompt/drag/move", pointBody(pointer))
}

func (c *Client) EndDrag() (*session.Prompt, error) {
	return c.promptCall("/prompt/drag/end", "")
}

// MovePrompt drags the prompt by its origin to pos.
func (c *Client) MovePrompt(pos plot.Point) (*session.Prompt, error) {
	p, err := c.OpenPrompt()
	if err != nil {
		return nil, err
	}
	if _, err := c.StartDrag(p.Position); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to grab prompt")
	}
	if _, err := c.MoveDrag(pos); err != nil {
		_, _ = c.EndDrag()
		return nil, pkgerrors.Wrapf(err, "failed to move prompt")
	}
	return c.EndDrag()
}

// Export returns the plotted points in format (csv or json).
func (c *Client) Export(format string) (string, error) {
	ret, err := c.Get("/export?format=" + url.QueryEscape(format))
	if err != nil {
		return "", fmt.Errorf("failed to export points: %w", err)
	}
	return ret, nil
}

func (c *Client) GetExportSchedule() (*ExportSchedule, error) {
	s, err := getAs[ExportSchedule](c, "/export/schedule", "export schedule")
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) SkipExport() (string, error) {
	return message(c.Post("/export/schedule/skip", ""))
}
