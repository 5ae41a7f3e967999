package main

import (
	"fmt"

	"github.com/prometheus/common/version"
	"github.com/spf13/cobra"
)

// Build information is injected with -ldflags into
// github.com/prometheus/common/version, e.g.
//
//	-X github.com/prometheus/common/version.Version=1.2.0
//	-X github.com/prometheus/common/version.Revision=$(git rev-parse HEAD)
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print version, revision, branch, build user and date, and the Go toolchain.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.Print(programName))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
