package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/events"
)

const reconnectDelay = 2 * time.Second

// SubscribeEvents streams daemon events until ctx is done. The stream is
// re-established if the daemon goes away. The returned channel is closed
// once ctx is done.
func (c *Client) SubscribeEvents(ctx context.Context) <-chan events.Event {
	ch := make(chan events.Event, 16)

	go func() {
		defer close(ch)
		for {
			err := c.readEvents(ctx, ch)
			if ctx.Err() != nil {
				return
			}
			logrus.WithError(err).Debug("event stream ended, reconnecting")

			select {
			case <-ctx.Done():
				return
			case <-time.After(reconnectDelay):
			}
		}
	}()

	return ch
}

func (c *Client) readEvents(ctx context.Context, ch chan<- events.Event) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://unix/events", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return parseEvents(ctx, bufio.NewScanner(resp.Body), ch)
}

// parseEvents reads server-sent events. Multiple data lines are joined with
// newlines; comments and unknown fields are ignored.
func parseEvents(ctx context.Context, sc *bufio.Scanner, ch chan<- events.Event) error {
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var name string
	var data []string
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			if name != "" || len(data) > 0 {
				ev := events.Event{Name: name, Data: []byte(strings.Join(data, "\n"))}
				select {
				case ch <- ev:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			name, data = "", nil
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return errors.New("event stream closed")
}
