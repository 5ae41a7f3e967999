package main

import (
	"os"
	"path/filepath"
	"testing"
)

// resetFlags clears command-line state shared by the commands.
func resetFlags(t *testing.T) {
	t.Helper()

	reset := func() {
		cfgFile = ""
		globalFlags.jenkinsURL = ""
		globalFlags.apiKey = ""
		globalFlags.logLevel = ""
		runFlags.listenAddress = ""
		runFlags.port = 0
		runFlags.watchConfig = false
		runFlags.dryRun = false
		collectFlags.output = "text"
	}
	reset()
	t.Cleanup(reset)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "jenkins_exporter.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

const baseConfigYAML = `
jenkins:
  url: "http://jenkins:8080"
  api_key: "file-key"
exporter:
  listen_address: ":9118"
  timer_mode: fixed
`
