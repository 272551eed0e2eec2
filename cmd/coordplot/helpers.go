package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/plot"
)

// parsePointArgs parses "<x> <y>".
func parsePointArgs(args []string, valueName string) (plot.Point, error) {
	if len(args) != 2 {
		return plot.Point{}, fmt.Errorf("invalid number of arguments, expected <x> <y>")
	}

	x, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return plot.Point{}, fmt.Errorf("invalid %s x: %v", valueName, err)
	}
	y, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return plot.Point{}, fmt.Errorf("invalid %s y: %v", valueName, err)
	}

	return plot.Pt(x, y), nil
}

func formatPoint(p plot.Point) string {
	return fmt.Sprintf("(%s, %s)", strconv.FormatFloat(p.X, 'g', 6, 64), strconv.FormatFloat(p.Y, 'g', 6, 64))
}

func bool2Text(b bool) string {
	if b {
		return color.New(color.Bold, color.FgGreen).Sprint("✔")
	}
	return color.New(color.Bold, color.FgRed).Sprint("✘")
}

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}

// newOnOffCommand builds a command with on/off style subcommands that call
// the daemon and print its response.
func newOnOffCommand(
	use, short, group string,
	on, off string,
	onFunc, offFunc func() (string, error),
) *cobra.Command {
	cmd := &cobra.Command{
		Use:     use,
		Short:   short,
		GroupID: group,
	}

	sub := func(name string, fn func() (string, error)) *cobra.Command {
		return &cobra.Command{
			Use:   name,
			Short: short + ": " + name,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				ret, err := fn()
				if err != nil {
					return fmt.Errorf("failed to %s %s: %w", name, use, err)
				}
				if ret != "" {
					cmd.Println(ret)
				}
				return nil
			},
		}
	}

	cmd.AddCommand(sub(on, onFunc), sub(off, offFunc))
	return cmd
}
