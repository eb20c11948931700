package config

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigError_Error_Empty(t *testing.T) {
	e := &ConfigError{Path: "/etc/postersync/config.toml"}
	assert.Empty(t, e.Error())
	assert.False(t, e.HasErrors())
}

func TestConfigError_Error_MissingVars(t *testing.T) {
	e := &ConfigError{
		Path:    "/etc/postersync/config.toml",
		Missing: []string{"PLEX_TOKEN", "TMDB_API_KEY"},
	}
	got := e.Error()
	assert.Contains(t, got, "missing environment variables")
	assert.Contains(t, got, "PLEX_TOKEN")
	assert.Contains(t, got, "TMDB_API_KEY")
	assert.True(t, e.HasErrors())
}

func TestConfigError_Error_ValidationErrors(t *testing.T) {
	e := &ConfigError{
		Path:   "/etc/postersync/config.toml",
		Errors: []string{"plex.page_size: must be between 1 and 1000, got 0", "posters.root: required"},
	}
	got := e.Error()
	assert.Contains(t, got, "validation failed")
	assert.Contains(t, got, "plex.page_size")
	assert.Contains(t, got, "posters.root")
}

func TestConfigError_Error_Both(t *testing.T) {
	e := &ConfigError{
		Path:    "/etc/postersync/config.toml",
		Missing: []string{"PLEX_TOKEN"},
		Errors:  []string{"schedule.interval: invalid"},
	}
	got := e.Error()
	assert.Contains(t, got, "missing environment variables")
	assert.Contains(t, got, "validation failed")
}

func TestConfigError_Error_Layout(t *testing.T) {
	e := &ConfigError{
		Missing: []string{"PLEX_TOKEN"},
		Errors:  []string{"posters.root: required", "plex.url: required"},
	}
	assert.Equal(t, "missing environment variables: PLEX_TOKEN\n"+
		"validation failed:\n"+
		"  - posters.root: required\n"+
		"  - plex.url: required", e.Error())
}

func TestConfigError_IsInvalid(t *testing.T) {
	var err error = &ConfigError{Errors: []string{"plex.url: required"}}
	wrapped := fmt.Errorf("config /tmp/x.toml: %w", err)

	assert.ErrorIs(t, wrapped, ErrInvalid)
	assert.False(t, errors.Is(errors.New("other"), ErrInvalid))
}
