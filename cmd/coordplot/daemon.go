package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/daemon"
	"github.com/gsrikarreddy/image-coordinate-plotter/pkg/version"
)

var (
	// alwaysAllowNonRootAccess indicates whether to always allow other users to access the daemon.
	alwaysAllowNonRootAccess = false
)

// NewDaemonCommand .
func NewDaemonCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "daemon",
		Hidden:  true,
		Short:   "Run coordplot daemon in the foreground",
		GroupID: gAdvanced,
		Args:    cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			logrus.WithFields(logrus.Fields{
				"version": version.Version,
				"commit":  version.GitCommit,
			}).Info("coordplot daemon starting")
			return daemon.Run(configPath, unixSocketPath, alwaysAllowNonRootAccess)
		},
	}

	f := cmd.Flags()

	f.BoolVar(&alwaysAllowNonRootAccess, "always-allow-non-root-access", false,
		"Always allow other users to access the daemon.")

	return cmd
}
