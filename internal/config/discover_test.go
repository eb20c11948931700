package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPath(t *testing.T) {
	// Clear XDG var to test default
	t.Setenv("XDG_CONFIG_HOME", "")

	path := DefaultPath()
	assert.Contains(t, path, ".config/postersync/config.toml")
}

func TestDefaultPath_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")

	path := DefaultPath()
	assert.Equal(t, "/custom/config/postersync/config.toml", path)
}

func TestDiscover_POSTERSYNC_CONFIG(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "custom.toml")
	err := os.WriteFile(cfgPath, []byte("[plex]"), 0644)
	require.NoError(t, err, "failed to create test config")

	t.Setenv("POSTERSYNC_CONFIG", cfgPath)

	path, err := Discover()
	require.NoError(t, err)
	assert.Equal(t, cfgPath, path)
}

func TestDiscover_POSTERSYNC_CONFIG_NotFound(t *testing.T) {
	t.Setenv("POSTERSYNC_CONFIG", "/nonexistent/config.toml")

	_, err := Discover()
	require.Error(t, err, "expected error for missing POSTERSYNC_CONFIG")
	assert.Contains(t, err.Error(), "POSTERSYNC_CONFIG")
}

func TestDiscover_CurrentDir(t *testing.T) {
	// Save current dir
	origDir, err := os.Getwd()
	require.NoError(t, err, "failed to get working directory")
	defer func() {
		err := os.Chdir(origDir)
		assert.NoError(t, err, "failed to restore working directory")
	}()

	t.Setenv("POSTERSYNC_CONFIG", "")

	// Create temp dir with config
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "config.toml")
	err = os.WriteFile(cfgPath, []byte("[plex]"), 0644)
	require.NoError(t, err, "failed to create test config")
	err = os.Chdir(tmp)
	require.NoError(t, err, "failed to change directory")

	path, err := Discover()
	require.NoError(t, err)
	assert.True(t, filepath.Base(path) == "config.toml", "expected config.toml, got %s", path)
}

func TestDiscover_NotFound(t *testing.T) {
	// Save current dir
	origDir, err := os.Getwd()
	require.NoError(t, err, "failed to get working directory")
	defer func() {
		err := os.Chdir(origDir)
		assert.NoError(t, err, "failed to restore working directory")
	}()

	t.Setenv("POSTERSYNC_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/nonexistent/xdg")

	tmp := t.TempDir() // Empty temp dir
	err = os.Chdir(tmp)
	require.NoError(t, err, "failed to change directory")

	_, err = Discover()
	require.Error(t, err, "expected error when no config found")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "config not found")
	assert.Contains(t, err.Error(), "/nonexistent/xdg/postersync/config.toml")
}

func TestDiscover_SkipsDirectory(t *testing.T) {
	origDir, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(origDir) })

	t.Setenv(EnvConfig, "")
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	require.NoError(t, os.MkdirAll(filepath.Join(xdg, "postersync"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(xdg, "postersync", "config.toml"), []byte("[plex]"), 0644))

	tmp := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(tmp, "config.toml"), 0755))
	require.NoError(t, os.Chdir(tmp))

	path, err := Discover()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(xdg, "postersync", "config.toml"), path)
}

func TestSearchPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	assert.Equal(t, []string{
		"config.toml",
		"/custom/config/postersync/config.toml",
		"/etc/postersync/config.toml",
	}, SearchPaths())
}
