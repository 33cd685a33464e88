package main

import (
	"runtime"

	"github.com/spf13/cobra"

	"mercator-hq/wiretap/pkg/cli"
	"mercator-hq/wiretap/pkg/telemetry/health"
)

var (
	// Version is the semantic version (set by build flags)
	Version = "0.1.0"
	// GitCommit is the git commit hash (set by build flags)
	GitCommit = "unknown"
	// BuildDate is the build timestamp (set by build flags)
	BuildDate = "unknown"
)

var versionFlags struct {
	format string
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print detailed version information including Git commit and build date.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := cli.ParseOutputFormat(versionFlags.format)
		if err != nil {
			return err
		}
		return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), versionReport(buildInfo()))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().StringVar(&versionFlags.format, "format", "text", "output format: text, json")
}

// buildInfo describes this binary. It is also served on /version.
func buildInfo() health.VersionInfo {
	return health.VersionInfo{
		Version:   Version,
		Commit:    GitCommit,
		BuildTime: BuildDate,
		GoVersion: runtime.Version(),
	}
}

type versionReport health.VersionInfo

func (v versionReport) Lines() []string {
	return []string{
		"Wiretap " + v.Version,
		"Git Commit: " + v.Commit,
		"Build Date: " + v.BuildTime,
		"Go Version: " + v.GoVersion,
		"OS/Arch: " + runtime.GOOS + "/" + runtime.GOARCH,
	}
}
