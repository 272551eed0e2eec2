package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/session"
)

func NewActualCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "actual",
		Short:   "Show or set the actual coordinates of the reference points",
		GroupID: gCalibration,
	}

	var x1, y1, x2, y2 float64
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Set actual coordinates",
		Long: `Set the real-world values of the reference points.

Only the given flags change; the others keep their current value. Points that
were already plotted are recomputed with the new values.`,
		Example: `  coordplot actual set --x1 0 --x2 100 --y1 0 --y2 50
  coordplot actual set --y2 75`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := apiClient.GetActual()
			if err != nil {
				return fmt.Errorf("failed to get actual coordinates: %w", err)
			}

			f := cmd.Flags()
			if f.Changed("x1") {
				a.X1 = x1
			}
			if f.Changed("y1") {
				a.Y1 = y1
			}
			if f.Changed("x2") {
				a.X2 = x2
			}
			if f.Changed("y2") {
				a.Y2 = y2
			}

			ret, err := apiClient.SetActual(a)
			if err != nil {
				return fmt.Errorf("failed to set actual coordinates: %w", err)
			}
			cmd.Println(ret)
			return nil
		},
	}
	f := setCmd.Flags()
	f.Float64Var(&x1, "x1", 0, "actual x value of reference point x1")
	f.Float64Var(&y1, "y1", 0, "actual y value of reference point y1")
	f.Float64Var(&x2, "x2", 0, "actual x value of reference point x2")
	f.Float64Var(&y2, "y2", 0, "actual y value of reference point y2")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show actual coordinates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := apiClient.GetActual()
			if err != nil {
				return fmt.Errorf("failed to get actual coordinates: %w", err)
			}
			cmd.Printf("x1: %s\ny1: %s\nx2: %s\ny2: %s\n", bold("%g", a.X1), bold("%g", a.Y1), bold("%g", a.X2), bold("%g", a.Y2))
			return nil
		},
	}

	cmd.AddCommand(setCmd, showCmd)
	return cmd
}

func NewTransformCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "transform",
		Short:   "Show the pixel to real-world transform",
		GroupID: gCalibration,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := apiClient.GetTransform()
			if err != nil {
				return fmt.Errorf("failed to get transform: %w", err)
			}
			cmd.Printf("x' = %s * x %+g\n", bold("%g", t.ScaleX), t.OffsetX)
			cmd.Printf("y' = %s * y %+g\n", bold("%g", t.ScaleY), t.OffsetY)
			return nil
		},
	}
}

func NewPromptCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "prompt",
		Short:   "Open, close or move the actual coordinates prompt",
		GroupID: gCalibration,
	}

	printPrompt := func(cmd *cobra.Command, p *session.Prompt) {
		cmd.Printf("prompt open %s at %s\n", bool2Text(p.Open), formatPoint(p.Position))
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "open",
			Short: "Open the prompt",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				p, err := apiClient.OpenPrompt()
				if err != nil {
					return fmt.Errorf("failed to open prompt: %w", err)
				}
				printPrompt(cmd, p)
				return nil
			},
		},
		&cobra.Command{
			Use:   "close",
			Short: "Close the prompt without saving",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				p, err := apiClient.ClosePrompt()
				if err != nil {
					return fmt.Errorf("failed to close prompt: %w", err)
				}
				printPrompt(cmd, p)
				return nil
			},
		},
		&cobra.Command{
			Use:   "move <x> <y>",
			Short: "Drag the prompt so its top-left corner is at (x, y)",
			RunE: func(cmd *cobra.Command, args []string) error {
				pos, err := parsePointArgs(args, "position")
				if err != nil {
					return err
				}
				p, err := apiClient.MovePrompt(pos)
				if err != nil {
					return err
				}
				printPrompt(cmd, p)
				return nil
			},
		},
	)

	return cmd
}
