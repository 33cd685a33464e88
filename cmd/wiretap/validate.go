package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/wiretap/pkg/cli"
	"mercator-hq/wiretap/pkg/config"
)

var validateFlags struct {
	format string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Check a configuration file against the configuration schema and
validation rules, including environment variable overrides.

Every invalid field is reported. The exit code is 2 when the file is
invalid.

Examples:
  # Validate ./wiretap.yaml
  wiretap validate

  # Validate another file and print JSON
  wiretap validate --config staging.yaml --format json`,
	Args: cobra.NoArgs,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")
}

// validationReport is the result printed by validate.
type validationReport struct {
	Path   string             `json:"path"`
	Valid  bool               `json:"valid"`
	Errors []*cli.ConfigError `json:"errors,omitempty"`
}

func (r validationReport) Lines() []string {
	if r.Valid {
		return []string{fmt.Sprintf("✓ %s is valid", r.Path)}
	}
	lines := []string{fmt.Sprintf("✗ %s is invalid", r.Path)}
	for _, e := range r.Errors {
		if e.Field == "" {
			lines = append(lines, "  - "+e.Message)
			continue
		}
		lines = append(lines, fmt.Sprintf("  - %s: %s", e.Field, e.Message))
	}
	return lines
}

func validateConfig(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(validateFlags.format)
	if err != nil {
		return err
	}

	_, loadErr := config.LoadConfigWithEnvOverrides(cfgFile)
	report := validationReport{
		Path:   cfgFile,
		Valid:  loadErr == nil,
		Errors: cli.ConfigErrors(loadErr),
	}

	if err := cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), report); err != nil {
		return err
	}
	if loadErr != nil {
		return configError(loadErr)
	}
	if verbose {
		fmt.Fprintln(cmd.ErrOrStderr(), "configuration loaded with environment overrides applied")
	}
	return nil
}
