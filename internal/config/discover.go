package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvConfig names the environment variable that pins the config path.
const EnvConfig = "POSTERSYNC_CONFIG"

// ErrNotFound is returned by Discover when no candidate path exists.
var ErrNotFound = errors.New("config not found")

// DefaultPath is the per-user config location under $XDG_CONFIG_HOME,
// falling back to ~/.config.
func DefaultPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "postersync", "config.toml")
}

// SearchPaths lists the locations Discover tries, in order.
func SearchPaths() []string {
	return []string{"config.toml", DefaultPath(), "/etc/postersync/config.toml"}
}

// Discover returns the config file to load. $POSTERSYNC_CONFIG wins when
// set and must exist; otherwise the first existing entry of SearchPaths.
func Discover() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("%s=%s: %w", EnvConfig, p, err)
		}
		return p, nil
	}

	candidates := SearchPaths()
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w (tried %s); run postersync init", ErrNotFound, strings.Join(candidates, ", "))
}
