package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/plot"
	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/session"
	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/version"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   "Print version",
		GroupID: gBasic,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s %s\n", version.Version, version.GitCommit)
		},
	}
}

func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		GroupID: gBasic,
		Short:   "Get the current status of the session",
		Long:    `Get the calibration stage, reference points, actual coordinates and plotted point count.`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := apiClient.GetStatus()
			if err != nil {
				return fmt.Errorf("failed to get status: %w", err)
			}
			printStatus(cmd, st)
			return nil
		},
	}
}

func printStatus(cmd *cobra.Command, st *session.Status) {
	cmd.Println(bold("Session:"))
	cmd.Printf("  Stage: %s\n", bold("%s", st.Stage))
	cmd.Printf("  Plotting mode: %s\n", bool2Text(st.Plotting))
	if st.Image != nil {
		cmd.Printf("  Image: %s (%dx%d, shown at %dx%d)\n", st.Image.Name, st.Image.Width, st.Image.Height, st.Image.CanvasWidth, st.Image.CanvasHeight)
	} else {
		cmd.Println("  Image: none")
	}

	cmd.Println()
	cmd.Println(bold("Reference points:"))
	for _, slot := range plot.Slots {
		if p := st.References.Get(slot); p != nil {
			cmd.Printf("  %s: %s\n", slot, formatPoint(*p))
		} else {
			cmd.Printf("  %s: %s\n", slot, color.YellowString("not set"))
		}
	}

	cmd.Println()
	cmd.Println(bold("Actual coordinates:"))
	cmd.Printf("  x1=%g y1=%g x2=%g y2=%g\n", st.Actual.X1, st.Actual.Y1, st.Actual.X2, st.Actual.Y2)
	if st.Transform != nil {
		cmd.Printf("  Transform: x' = %g*x %+g, y' = %g*y %+g\n", st.Transform.ScaleX, st.Transform.OffsetX, st.Transform.ScaleY, st.Transform.OffsetY)
	}

	cmd.Println()
	cmd.Printf("Plotted points: %s\n", bold("%d", st.Points))
	cmd.Printf("Coordinate prompt: open %s, at %s\n", bool2Text(st.Prompt.Open), formatPoint(st.Prompt.Position))
}

func NewLoadCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "load <image>",
		Short:   "Load an image to annotate",
		GroupID: gBasic,
		Long: `Load an image to annotate.

The image is scaled to fit the canvas (800x600 by default, see canvasMaxWidth and
canvasMaxHeight in the config). Clicks are given in canvas pixels. Reference and
plotted points are kept when a new image is loaded.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read image: %w", err)
			}

			info, err := apiClient.LoadImage(filepath.Base(args[0]), data)
			if err != nil {
				return err
			}

			cmd.Printf("loaded %s (%dx%d), canvas is %dx%d\n", info.Name, info.Width, info.Height, info.CanvasWidth, info.CanvasHeight)
			return nil
		},
	}
}

func NewPlotCommand() *cobra.Command {
	cmd := newOnOffCommand(
		"plot", "Turn plotting mode on or off", gBasic,
		"start", "stop",
		func() (string, error) { return apiClient.SetPlotting(true) },
		func() (string, error) { return apiClient.SetPlotting(false) },
	)
	cmd.AddCommand(&cobra.Command{
		Use:   "toggle",
		Short: "Toggle plotting mode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ret, err := apiClient.TogglePlotting()
			if err != nil {
				return fmt.Errorf("failed to toggle plotting mode: %w", err)
			}
			cmd.Println(ret)
			return nil
		},
	})
	return cmd
}

func NewClickCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "click <x> <y>",
		Short:   "Click on the canvas",
		GroupID: gBasic,
		Long: `Click on the canvas at pixel (x, y).

The first four clicks set the reference points x1, x2, y1 and y2. After that,
every click is plotted in real-world coordinates.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePointArgs(args, "pixel")
			if err != nil {
				return err
			}

			res, err := apiClient.Click(p)
			if err != nil {
				return fmt.Errorf("failed to click: %w", err)
			}

			switch res.Kind {
			case session.ClickIgnored:
				logrus.Warn("plotting mode is off, click ignored. Run 'coordplot plot start' first.")
			case session.ClickReference:
				cmd.Printf("set %s at %s\n", bold("%s", res.Slot), formatPoint(p))
				if slot, ok := res.Stage.Slot(); ok {
					cmd.Printf("next: click %s\n", slot)
				}
				if res.PromptOpened {
					cmd.Println("all reference points set. Enter their actual values with 'coordplot actual set'.")
				}
			case session.ClickPlotted:
				cmd.Printf("plotted #%d: pixel %s -> %s\n", res.Index, formatPoint(res.Point.Pixel), color.GreenString("%s", formatPoint(res.Point.Real)))
			}
			return nil
		},
	}
}

func NewResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "reset",
		Short:   "Clear reference and plotted points",
		GroupID: gBasic,
		Long: `Clear reference and plotted points and start calibrating from x1 again.

Actual coordinates, the loaded image and plotting mode are kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ret, err := apiClient.Reset()
			if err != nil {
				return fmt.Errorf("failed to reset: %w", err)
			}
			cmd.Println(ret)
			return nil
		},
	}
}
