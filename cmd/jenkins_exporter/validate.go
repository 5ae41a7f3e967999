package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/jenkins-exporter/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long: `Load the configuration file, environment overrides and flags, and report
every invalid field. Jenkins is not contacted.

Examples:
  jenkins_exporter validate --config /etc/jenkins_exporter.yml

  # Check the environment-only setup used in containers
  JENKINS_EXPORTER_JENKINS_URL=http://jenkins:8080 jenkins_exporter validate`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		var verr config.ValidationError
		if errors.As(err, &verr) {
			out := cmd.ErrOrStderr()
			fmt.Fprintf(out, "✗ %d invalid field(s):\n", len(verr.Errors))
			for _, fe := range verr.Errors {
				fmt.Fprintf(out, "  - %s: %s\n", fe.Field, fe.Message)
			}
		}
		return err
	}

	if _, err := exporterConfig(cfg); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	source := cfgFile
	if source == "" {
		source = "environment and flags"
	}
	fmt.Fprintf(out, "✓ Configuration valid (%s)\n", source)
	fmt.Fprintf(out, "  Jenkins:  %s\n", cfg.Jenkins.URL)
	fmt.Fprintf(out, "  Listen:   %s%s\n", cfg.Exporter.ListenAddress, cfg.Exporter.MetricsPath)
	fmt.Fprintf(out, "  Timers:   %s\n", cfg.Exporter.TimerMode)
	fmt.Fprintf(out, "  Histos:   %s\n", cfg.Exporter.HistogramMode)
	return nil
}
