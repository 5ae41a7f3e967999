package cli

import (
	"errors"
	"fmt"
	"testing"
)

func TestConfigError(t *testing.T) {
	tests := []struct {
		name     string
		err      *ConfigError
		expected string
	}{
		{
			name:     "with field",
			err:      NewConfigError("jenkins.url", "missing required field"),
			expected: "config error in jenkins.url: missing required field",
		},
		{
			name:     "wrapped",
			err:      WrapConfigError(errors.New("open /etc/jenkins_exporter.yml: no such file")),
			expected: "config error: open /etc/jenkins_exporter.yml: no such file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestWrapConfigError_Unwrap(t *testing.T) {
	cause := errors.New("bad yaml")
	err := WrapConfigError(cause)
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestCommandError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewCommandError("collect", cause)

	expected := "command collect failed: connection refused"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil", err: nil, expected: ExitOK},
		{name: "plain error", err: errors.New("boom"), expected: ExitFailure},
		{name: "config error", err: NewConfigError("exporter.timer_mode", "invalid"), expected: ExitConfigErr},
		{name: "wrapped config error", err: fmt.Errorf("run: %w", WrapConfigError(errors.New("x"))), expected: ExitConfigErr},
		{name: "command error", err: NewCommandError("run", errors.New("listen")), expected: ExitFailure},
		{name: "jenkins error", err: NewJenkinsError("run", errors.New("403")), expected: ExitJenkinsErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.expected {
				t.Errorf("ExitCode() = %d, want %d", got, tt.expected)
			}
		})
	}
}
