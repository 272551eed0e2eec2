package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/export"
)

func NewPointsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "points",
		Short:   "List plotted points",
		GroupID: gPoints,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			points, err := apiClient.GetPoints()
			if err != nil {
				return fmt.Errorf("failed to get points: %w", err)
			}
			if len(points) == 0 {
				cmd.Println("no points plotted yet")
				return nil
			}
			for i, p := range points {
				cmd.Printf("%3d  pixel %-20s real %s\n", i, formatPoint(p.Pixel), bold("%s", formatPoint(p.Real)))
			}
			return nil
		},
	}
}

func NewRelativeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "relative",
		Short:   "List plotted points relative to (x1, y1)",
		GroupID: gPoints,
		Long: `List plotted points as offsets from the actual values of the x1 and y1
reference points. Requires a completed calibration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rel, err := apiClient.GetRelative()
			if err != nil {
				return fmt.Errorf("failed to get relative coordinates: %w", err)
			}
			for i, p := range rel {
				cmd.Printf("%3d  %s\n", i, formatPoint(p))
			}
			return nil
		},
	}
}

func NewLocateCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "locate <x> <y>",
		Short:   "Find the canvas pixel of real-world coordinates",
		GroupID: gPoints,
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, err := parsePointArgs(args, "coordinate")
			if err != nil {
				return err
			}
			px, err := apiClient.Locate(coord)
			if err != nil {
				return fmt.Errorf("failed to locate %s: %w", formatPoint(coord), err)
			}
			cmd.Printf("%s is at pixel %s\n", formatPoint(coord), bold("%s", formatPoint(px)))
			return nil
		},
	}
}

func NewExportCommand() *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:     "export",
		Short:   "Export plotted points as csv or json",
		GroupID: gPoints,
		Long: `Export plotted points as csv or json.

Points can also be exported on a schedule: set exportSchedule (a cron
expression), exportPath and exportFormat in the config and send SIGHUP to the
daemon.`,
		Example: `  coordplot export > points.csv
  coordplot export -f json -o points.json
  coordplot export schedule
  coordplot export skip`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := export.ParseFormat(format); err != nil {
				return err
			}

			ret, err := apiClient.Export(format)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				cmd.Print(ret)
				return nil
			}
			if err := os.WriteFile(output, []byte(ret), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			cmd.Printf("exported points to %s\n", output)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&format, "format", "f", "csv", "export format (csv, json)")
	f.StringVarP(&output, "output", "o", "", "output file, stdout if empty")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "schedule",
			Short: "Show the export schedule",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				s, err := apiClient.GetExportSchedule()
				if err != nil {
					return fmt.Errorf("failed to get export schedule: %w", err)
				}
				if s.Schedule == "" {
					cmd.Println("scheduled export is disabled")
					return nil
				}
				cmd.Printf("Schedule: %s\n", bold("%s", s.Schedule))
				cmd.Printf("Next run: %s\n", s.NextRun)
				return nil
			},
		},
		&cobra.Command{
			Use:   "skip",
			Short: "Skip the next scheduled export",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				ret, err := apiClient.SkipExport()
				if err != nil {
					return fmt.Errorf("failed to skip export: %w", err)
				}
				cmd.Println(ret)
				return nil
			},
		},
	)

	return cmd
}

func NewRenderCommand() *cobra.Command {
	var output string
	var plain bool

	cmd := &cobra.Command{
		Use:     "render",
		Short:   "Save the canvas as PNG",
		GroupID: gPoints,
		Long: `Save the canvas as PNG with reference points drawn in red and plotted
points in black. Use --plain for the canvas image alone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			png, err := apiClient.GetImage(!plain)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, png, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			cmd.Printf("saved canvas to %s\n", output)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "canvas.png", "output file")
	f.BoolVar(&plain, "plain", false, "do not draw reference and plotted points")

	return cmd
}
