package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/wiretap/pkg/cli"
	"mercator-hq/wiretap/pkg/config"
)

const defaultConfigFile = "wiretap.yaml"

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "wiretap",
	Short: "Wiretap - call logging for HTTP and gRPC endpoints",
	Long: `Wiretap logs every call to its endpoints: the arguments a call was
made with, the request it was made from, how long it took and what it
returned or the error it failed with. Sensitive arguments are redacted.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return cli.ExitCode(err)
	}
	return cli.ExitOK
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", defaultConfigFile, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads the configuration file named by --config into the
// process-wide configuration. When the default file does not exist and
// --config was not given, defaults and environment variables are used.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	explicit := cmd.Flags().Changed("config")

	if _, err := os.Stat(cfgFile); errors.Is(err, fs.ErrNotExist) && !explicit {
		cfg, err := config.LoadFromEnv()
		if err != nil {
			return nil, configError(err)
		}
		config.SetConfig(cfg)
		return cfg, nil
	}

	if err := config.Initialize(cfgFile); err != nil {
		return nil, configError(err)
	}
	// Initialize only loads once per process.
	if config.ConfigPath() != cfgFile {
		if err := config.ReloadConfig(cfgFile); err != nil {
			return nil, configError(err)
		}
	}
	return config.GetConfig(), nil
}

// configError reports the first invalid field of err.
func configError(err error) error {
	errs := cli.ConfigErrors(err)
	if len(errs) == 1 && errs[0].Field == "" {
		return errs[0]
	}
	first := errs[0]
	if len(errs) > 1 {
		return cli.NewConfigError(first.Field, fmt.Sprintf("%s (and %d more)", first.Message, len(errs)-1))
	}
	return first
}
