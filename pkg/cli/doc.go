/*
Package cli provides helpers shared by the wiretap commands.

Output Formatting:

Commands print results as text or JSON depending on --format:

	format, err := cli.ParseOutputFormat(flagValue)
	if err != nil {
		return err
	}
	if err := cli.NewFormatter(format).FormatTo(os.Stdout, result); err != nil {
		return err
	}

Errors:

ConfigError and CommandError distinguish bad configuration from runtime
failures; ExitCode maps them to the process exit status.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
