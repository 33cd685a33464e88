package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/wiretap/pkg/cli"
	"mercator-hq/wiretap/pkg/config"
)

var runFlags struct {
	listenAddress string
	grpcAddress   string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the wiretap server",
	Long: `Start the wiretap server with the specified configuration.

The server listens for HTTP requests on the configured address and, when
server.grpc_address is set, for gRPC calls. Every call to the user service
is logged with its arguments, duration and result.

Examples:
  # Start with default config
  wiretap run

  # Start with custom config
  wiretap run --config /etc/wiretap/wiretap.yaml

  # Override listen addresses and log results
  wiretap run --listen 0.0.0.0:8080 --grpc-listen 0.0.0.0:9090 --log-level debug

  # Validate config without starting server
  wiretap run --dry-run`,
	Args: cobra.NoArgs,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override HTTP listen address")
	runCmd.Flags().StringVar(&runFlags.grpcAddress, "grpc-listen", "", "override gRPC listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.grpcAddress != "" {
		cfg.Server.GRPCAddress = runFlags.grpcAddress
	}
	if runFlags.logLevel != "" {
		cfg.Logging.Level = runFlags.logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return configError(err)
	}

	if runFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration valid")
		return nil
	}

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	a, err := newApp(ctx, cfg, os.Stdout)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer a.close()

	if verbose {
		a.logger.Info("starting wiretap",
			"version", Version,
			"config", config.ConfigPath(),
			"log_level", cfg.Logging.Level,
			"scrubbing", cfg.Scrubbing.Enabled,
			"metrics", cfg.Metrics.Enabled,
			"watch", cfg.Watch.Enabled,
		)
	}

	if err := a.run(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	return nil
}
