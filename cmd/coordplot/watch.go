package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/events"
)

func NewWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "watch",
		Short:   "Print session events as they happen",
		GroupID: gAdvanced,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			for ev := range apiClient.SubscribeEvents(ctx) {
				logrus.WithFields(logrus.Fields{
					"event": ev.Name,
					"data":  string(ev.Data),
				}).Debug("new event")

				cmd.Printf("%s %s %s\n", time.Now().Format(time.Kitchen), color.CyanString("%-16s", ev.Name), describeEvent(ev))
			}
			return nil
		},
	}
}

// describeEvent renders the payload of known events, and the raw payload
// otherwise.
func describeEvent(ev events.Event) string {
	var desc string
	var err error

	switch ev.Name {
	case events.StageChanged:
		var p events.StageChangedEvent
		if p, err = events.DecodeAs[events.StageChangedEvent](ev); err == nil {
			desc = p.From + " -> " + bold("%s", p.To)
		}
	case events.ReferenceSet:
		var p events.ReferenceSetEvent
		if p, err = events.DecodeAs[events.ReferenceSetEvent](ev); err == nil {
			desc = p.Slot + " at " + formatPoint(p.Pixel)
		}
	case events.PointPlotted:
		var p events.PointPlottedEvent
		if p, err = events.DecodeAs[events.PointPlottedEvent](ev); err == nil {
			desc = formatPoint(p.Pixel) + " -> " + color.GreenString("%s", formatPoint(p.Real))
		}
	case events.ActualUpdated:
		var p events.ActualUpdatedEvent
		if p, err = events.DecodeAs[events.ActualUpdatedEvent](ev); err == nil {
			desc = bold("x1=%g y1=%g x2=%g y2=%g", p.Actual.X1, p.Actual.Y1, p.Actual.X2, p.Actual.Y2) + fmt.Sprintf(", remapped %d points", p.Remapped)
		}
	case events.ImageLoaded:
		var p events.ImageLoadedEvent
		if p, err = events.DecodeAs[events.ImageLoadedEvent](ev); err == nil {
			desc = bold("%s", p.Name) + fmt.Sprintf(" %dx%d", p.CanvasWidth, p.CanvasHeight)
		}
	case events.ExportUpcoming, events.ExportCompleted:
		var p events.ExportEvent
		if p, err = events.DecodeAs[events.ExportEvent](ev); err == nil {
			desc = p.Path
			if p.Message != "" {
				desc += ": " + p.Message
			}
		}
	case events.ExportFailed:
		var p events.ExportEvent
		if p, err = events.DecodeAs[events.ExportEvent](ev); err == nil {
			desc = color.RedString("%s", p.Message)
		}
	case events.SessionReset, events.PromptOpened:
		var p events.MessageEvent
		if p, err = events.DecodeAs[events.MessageEvent](ev); err == nil {
			desc = p.Message
		}
	default:
		desc = string(ev.Data)
	}

	if err != nil {
		logrus.WithError(err).WithField("event", ev.Name).Warn("failed to decode event")
		return string(ev.Data)
	}
	return desc
}
