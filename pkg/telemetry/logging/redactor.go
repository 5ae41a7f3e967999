package logging

import (
	"log/slog"
	"regexp"
	"strings"
)

// Mask replaces redacted values.
const Mask = "***"

// userInfoPattern matches credentials embedded in a URL.
var userInfoPattern = regexp.MustCompile(`(https?://)[^/@\s]+@`)

// sensitiveKeys are attribute keys whose values are always masked.
var sensitiveKeys = []string{
	"password", "passwd",
	"secret", "token", "api_key", "apikey",
	"authorization",
}

// Redactor masks secrets in log attributes.
type Redactor struct {
	secrets  []string
	replacer *strings.Replacer
}

// NewRedactor creates a Redactor for the given literal secrets. Empty values
// are ignored.
func NewRedactor(secrets ...string) *Redactor {
	r := &Redactor{}
	var pairs []string
	for _, s := range secrets {
		if s == "" {
			continue
		}
		r.secrets = append(r.secrets, s)
		pairs = append(pairs, s, Mask)
	}
	if len(pairs) > 0 {
		r.replacer = strings.NewReplacer(pairs...)
	}
	return r
}

// RedactString masks configured secrets and URL user-info in value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}
	if r.replacer != nil {
		value = r.replacer.Replace(value)
	}
	return userInfoPattern.ReplaceAllString(value, "${1}"+Mask+"@")
}

// ReplaceAttr is a slog.HandlerOptions.ReplaceAttr hook. Values of sensitive
// keys are masked entirely; strings and errors are scrubbed.
func (r *Redactor) ReplaceAttr(_ []string, a slog.Attr) slog.Attr {
	if isSensitiveKey(a.Key) {
		if a.Value.Kind() == slog.KindString && a.Value.String() == "" {
			return a
		}
		return slog.String(a.Key, Mask)
	}

	switch a.Value.Kind() {
	case slog.KindString:
		if s := a.Value.String(); s != "" {
			a.Value = slog.StringValue(r.RedactString(s))
		}
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok && err != nil {
			a.Value = slog.StringValue(r.RedactString(err.Error()))
		}
	}
	return a
}

// isSensitiveKey checks if a key name indicates sensitive data.
func isSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)
	for _, sensitive := range sensitiveKeys {
		if strings.Contains(lowerKey, sensitive) {
			return true
		}
	}
	return false
}
