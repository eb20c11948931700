package config

import (
	"errors"
	"strings"

	"github.com/samber/lo"
)

// ErrInvalid matches every *ConfigError with errors.Is.
var ErrInvalid = errors.New("invalid config")

// ConfigError lists what kept a config file from loading. Missing holds
// unresolved ${VAR} references, Errors the failed field checks.
type ConfigError struct {
	Path    string
	Missing []string
	Errors  []string
}

// Error renders one line per problem, missing variables first.
func (e *ConfigError) Error() string {
	if !e.HasErrors() {
		return ""
	}

	var b strings.Builder
	if len(e.Missing) > 0 {
		b.WriteString("missing environment variables: ")
		b.WriteString(strings.Join(e.Missing, ", "))
	}
	if len(e.Errors) > 0 {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("validation failed:\n")
		b.WriteString(strings.Join(lo.Map(e.Errors, func(s string, _ int) string { return "  - " + s }), "\n"))
	}
	return b.String()
}

func (e *ConfigError) Is(target error) bool { return target == ErrInvalid }

// HasErrors reports whether any problem was recorded.
func (e *ConfigError) HasErrors() bool {
	return len(e.Missing)+len(e.Errors) > 0
}
