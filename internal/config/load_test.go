package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	frerrors "github.com/flakeradar/flakeradar/internal/errors"
)

// TestLoad_DefaultsOnly tests loading with no config file
func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, int64(100*1024*1024), cfg.MaxFileSizeBytes)
	assert.Equal(t, 5*time.Minute, cfg.Timeout)
	assert.Equal(t, 3, cfg.Concurrency)
	assert.True(t, cfg.StreamingEnabled)
}

// TestLoad_ConfigFileOverridesDefaults tests file precedence over defaults
func TestLoad_ConfigFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flakeradar.yaml")
	content := `
concurrency: 7
timeout: 90s
retry:
  max_attempts: 5
  base_delay: 2s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Concurrency)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Retry.BaseDelay)
	// Untouched keys keep defaults.
	assert.Equal(t, 30*time.Second, cfg.Retry.MaxDelay)
}

// TestLoad_EnvOverridesFile tests environment precedence over config file
func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flakeradar.yaml")
	require.NoError(t, os.WriteFile(path, []byte("concurrency: 4\n"), 0o600))

	t.Setenv("FLAKERADAR_CONCURRENCY", "9")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Concurrency)
}

// TestLoad_MissingExplicitFile tests that a named but absent file errors
func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	require.Error(t, err)
	// viper reports an open error rather than ConfigFileNotFoundError for
	// explicit paths; either way the load must fail loudly.
	assert.NotErrorIs(t, err, frerrors.ErrConfigNil)
}

// TestLoad_MalformedFile tests that invalid YAML surfaces an error
func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flakeradar.yaml")
	require.NoError(t, os.WriteFile(path, []byte("concurrency: [unclosed\n"), 0o600))

	_, err := Load(path)

	require.Error(t, err)
}
