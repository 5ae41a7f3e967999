package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/jenkins-exporter/pkg/cli"
)

// programName names the binary in build info and version output.
const programName = "jenkins_exporter"

var (
	// Global flags
	cfgFile     string
	globalFlags struct {
		jenkinsURL string
		apiKey     string
		logLevel   string
	}
)

var rootCmd = &cobra.Command{
	Use:   programName,
	Short: "Prometheus exporter for Jenkins",
	Long: `jenkins_exporter polls a Jenkins server and exposes what it finds as
Prometheus metrics:
  - job status: last build number, duration and timestamp per status kind
  - the metrics plugin document: gauges, meters, timers and histograms
  - stage durations of the last build of every pipeline job

Configuration comes from an optional YAML file, JENKINS_EXPORTER_* environment
variables and command-line flags, in increasing order of precedence.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with the status matching the error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file path (optional)")
	flags.StringVar(&globalFlags.jenkinsURL, "jenkins-url", "", "Jenkins base URL, overrides jenkins.url")
	flags.StringVar(&globalFlags.apiKey, "api-key", "", "metrics plugin access key, overrides jenkins.api_key")
	flags.StringVar(&globalFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
}
