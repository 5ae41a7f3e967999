package main

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"mercator-hq/jenkins-exporter/pkg/cli"
	"mercator-hq/jenkins-exporter/pkg/exporter"
	"mercator-hq/jenkins-exporter/pkg/jenkins"
)

var collectFlags struct {
	output string
}

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Run one scrape and print the result",
	Long: `Run one scrape against Jenkins and print the families to stdout.

Logs go to stderr so the output can be piped. A failed metrics endpoint exits
non-zero after printing nothing.

Examples:
  # Text exposition format
  jenkins_exporter collect --jenkins-url http://jenkins:8080 --api-key $KEY

  # JSON
  jenkins_exporter collect --config exporter.yml --output json`,
	RunE: runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)

	collectCmd.Flags().StringVarP(&collectFlags.output, "output", "o", "text", "output format: text, openmetrics, json")
}

func runCollect(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(collectFlags.output)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}

	expCfg, err := exporterConfig(cfg)
	if err != nil {
		return err
	}

	client, err := jenkins.NewClient(cfg.Jenkins.ClientConfig(), jenkins.WithLogger(logger))
	if err != nil {
		return cli.WrapConfigError(err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(exporter.New(client, expCfg, exporter.WithLogger(logger)))

	families, err := registry.Gather()
	if err != nil {
		return cli.NewJenkinsError("collect", err)
	}

	if err := cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), families); err != nil {
		return cli.NewCommandError("collect", err)
	}
	return nil
}
