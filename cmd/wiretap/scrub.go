package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/wiretap/pkg/cli"
	"mercator-hq/wiretap/pkg/config"
)

var scrubFlags struct {
	format string
}

var scrubCmd = &cobra.Command{
	Use:   "scrub NAME...",
	Short: "Show which parameter names are redacted",
	Long: `Report, for each parameter name, whether its value would be replaced
in logs under the scrubbing section of the configuration.

Examples:
  wiretap scrub password username api_key
  wiretap scrub --config wiretap.yaml --format json pin`,
	Args: cobra.MinimumNArgs(1),
	RunE: checkScrubbing,
}

func init() {
	rootCmd.AddCommand(scrubCmd)
	scrubCmd.Flags().StringVar(&scrubFlags.format, "format", "text", "output format: text, json")
}

type scrubResult struct {
	Name        string `json:"name"`
	Blacklisted bool   `json:"blacklisted"`
	Scrubbed    bool   `json:"scrubbed"`
	Logged      string `json:"logged"`
}

type scrubReport []scrubResult

func (r scrubReport) Lines() []string {
	lines := make([]string, len(r))
	for i, res := range r {
		verdict := "logged"
		if res.Scrubbed {
			verdict = "scrubbed"
		}
		lines[i] = fmt.Sprintf("%s: %s as [%s]", res.Name, verdict, res.Logged)
		if res.Blacklisted && !res.Scrubbed {
			lines[i] += " (blacklisted, scrubbing disabled)"
		}
	}
	return lines
}

func checkScrubbing(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(scrubFlags.format)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	scrubber, err := config.NewScrubber(cfg.Scrubbing)
	if err != nil {
		return configError(err)
	}

	report := make(scrubReport, len(args))
	for i, name := range args {
		logged, scrubbed := scrubber.Scrub(name, "value")
		report[i] = scrubResult{
			Name:        name,
			Blacklisted: scrubber.IsBlacklisted(name),
			Scrubbed:    scrubbed,
			Logged:      fmt.Sprint(logged),
		}
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), report)
}
