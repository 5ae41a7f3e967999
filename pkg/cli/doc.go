/*
Package cli provides helpers shared by the jenkins_exporter commands.

Errors:

ConfigError and CommandError classify failures, and ExitCode maps them to the
process exit status:

	if err := rootCmd.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}

Output Formatting:

The collect command prints gathered families as text exposition,
OpenMetrics or JSON:

	format, err := cli.ParseOutputFormat(outputFlag)
	if err != nil {
		return err
	}
	families, _ := registry.Gather()
	return cli.NewFormatter(format).FormatTo(os.Stdout, families)

Signal Handling:

SetupSignalHandler cancels a context on SIGINT/SIGTERM; ReloadSignal delivers
SIGHUP for configuration reloads.
*/
package cli
