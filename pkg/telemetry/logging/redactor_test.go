package logging

import (
	"errors"
	"log/slog"
	"testing"
)

func TestRedactor_RedactString(t *testing.T) {
	redactor := NewRedactor("abc123", "")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"no secrets", "GET /api/json", "GET /api/json"},
		{"api key in path", "GET /metrics/abc123/metrics", "GET /metrics/***/metrics"},
		{"user info", "https://bob:pw@jenkins.example.com/api/json", "https://***@jenkins.example.com/api/json"},
		{"user only", "http://bob@jenkins/", "http://***@jenkins/"},
		{"email is not user info", "mail bob@example.com", "mail bob@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := redactor.RedactString(tt.input); got != tt.want {
				t.Errorf("RedactString(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRedactor_ReplaceAttr(t *testing.T) {
	redactor := NewRedactor("abc123")

	tests := []struct {
		name string
		attr slog.Attr
		want string
	}{
		{"sensitive key", slog.String("api_key", "anything"), Mask},
		{"sensitive key any value", slog.Int("password_len", 12), Mask},
		{"empty sensitive value stays empty", slog.String("password", ""), ""},
		{"case insensitive key", slog.String("Authorization", "Basic xyz"), Mask},
		{"string value", slog.String("url", "/metrics/abc123/ping"), "/metrics/***/ping"},
		{"error value", slog.Any("error", errors.New("fetch /metrics/abc123 failed")), "fetch /metrics/*** failed"},
		{"untouched int", slog.Int("count", 3), "3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := redactor.ReplaceAttr(nil, tt.attr)
			if got.Value.String() != tt.want {
				t.Errorf("ReplaceAttr(%v) = %q, want %q", tt.attr, got.Value.String(), tt.want)
			}
			if got.Key != tt.attr.Key {
				t.Errorf("key changed from %q to %q", tt.attr.Key, got.Key)
			}
		})
	}
}
