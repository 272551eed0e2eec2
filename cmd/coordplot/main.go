package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/client"
	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/version"
)

var (
	logLevel       = "info"
	unixSocketPath = filepath.Join(os.TempDir(), "coordplot.sock")
	configPath     = defaultConfigPath()
)

var apiClient *client.Client

var (
	gBasic        = "Basic:"
	gCalibration  = "Calibration:"
	gPoints       = "Points:"
	gAdvanced     = "Advanced:"
	commandGroups = []string{
		gBasic,
		gCalibration,
		gPoints,
		gAdvanced,
	}
)

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "coordplot.json"
	}
	return filepath.Join(dir, "coordplot", "config.json")
}

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	}

	return nil
}

func handleCmdError(err error) {
	var respErr *client.ResponseError
	switch {
	case errors.Is(err, client.ErrDaemonNotRunning):
		fmt.Fprintln(os.Stderr, "\nError: coordplot daemon is not running")
		fmt.Fprintf(os.Stderr, "Start it with 'coordplot daemon --daemon-socket %s'\n", unixSocketPath)
	case errors.Is(err, client.ErrPermissionDenied):
		fmt.Fprintln(os.Stderr, "\nError: Permission Denied")
		fmt.Fprintln(os.Stderr, "  - Try running the command again as the user running the daemon")
		fmt.Fprintln(os.Stderr, "  - Or restart the daemon with '--always-allow-non-root-access'")
	case errors.As(err, &respErr):
		fmt.Fprintf(os.Stderr, "\nThe daemon rejected the request: %s\n", respErr.Message())
	}
}

// getVersion returns the versions of this binary and of the running daemon.
func getVersion() (string, string, error) {
	daemonVersion, err := apiClient.GetVersion()
	if err != nil {
		return version.Version, "", err
	}
	return version.Version, daemonVersion, nil
}

func main() {
	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		handleCmdError(err)
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coordplot",
		Short: "coordplot maps clicks on an image to real-world coordinates",
		Long: `coordplot maps clicks on an image to real-world coordinates.

Load an image, click four reference points (x1, x2 on the x axis, y1, y2 on
the y axis), enter their actual values, and every following click is plotted
in real-world coordinates.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			err := setupLogger()
			if err != nil {
				return err
			}

			apiClient = client.NewClient(unixSocketPath)

			// The daemon itself has nothing to compare against.
			if cmd.Name() == "daemon" {
				return nil
			}

			if clientVersion, daemonVersion, err := getVersion(); err == nil {
				if daemonVersion != clientVersion {
					logrus.WithFields(logrus.Fields{
						"clientVersion": clientVersion,
						"daemonVersion": daemonVersion,
					}).Warn("Version mismatch between client and daemon. coordplot may not work as expected. Restart the daemon after upgrading.")
				}
			} else if errors.Is(err, client.ErrNotFound) {
				logrus.Error("coordplot daemon is too old to report its version. Restart the daemon after upgrading.")
			}

			return nil
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error, fatal, panic)")
	globalFlags.StringVar(&configPath, "config", configPath, "config file path")
	globalFlags.StringVar(&unixSocketPath, "daemon-socket", unixSocketPath, "coordplot daemon unix socket path")

	for _, i := range commandGroups {
		cmd.AddGroup(&cobra.Group{
			ID:    i,
			Title: i,
		})
	}

	cmd.AddCommand(
		NewDaemonCommand(),
		NewVersionCommand(),
		NewStatusCommand(),
		NewLoadCommand(),
		NewPlotCommand(),
		NewClickCommand(),
		NewResetCommand(),
		NewActualCommand(),
		NewTransformCommand(),
		NewPromptCommand(),
		NewPointsCommand(),
		NewRelativeCommand(),
		NewLocateCommand(),
		NewExportCommand(),
		NewRenderCommand(),
		NewWatchCommand(),
	)

	return cmd
}
