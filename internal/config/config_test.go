package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CTXPROBE_BASE_URL", "CTXPROBE_SNAPSHOT_DATE", "CTXPROBE_TIMEOUT",
		"CTXPROBE_LOG_LEVEL", "CTXPROBE_LOG_FORMAT", "CTXPROBE_OUTPUT", "CTXPROBE_CONTEXT_LINES",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.Introspector.BaseURL)
	assert.Equal(t, DefaultSnapshotDate, cfg.Introspector.SnapshotDate)
	assert.Equal(t, DefaultTimeout, cfg.Introspector.Timeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Output.Format)
	assert.Equal(t, DefaultContextLines, cfg.Output.ContextLines)
}

func TestLoadConfig_YAMLAndEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
introspector:
  base_url: http://mirror.local/introspector
  snapshot_date: "20231201"
  timeout: 2s
logging:
  level: debug
  format: json
output:
  format: json
  context_lines: 4
`), 0o644))

	t.Run("File values", func(t *testing.T) {
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "http://mirror.local/introspector", cfg.Introspector.BaseURL)
		assert.Equal(t, "20231201", cfg.Introspector.SnapshotDate)
		assert.Equal(t, 2*time.Second, cfg.Introspector.Timeout)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "json", cfg.Output.Format)
		assert.Equal(t, 4, cfg.Output.ContextLines)
	})

	t.Run("Env overrides file", func(t *testing.T) {
		t.Setenv("CTXPROBE_SNAPSHOT_DATE", "20240131")
		t.Setenv("CTXPROBE_TIMEOUT", "750ms")
		t.Setenv("CTXPROBE_OUTPUT", "text")

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "20240131", cfg.Introspector.SnapshotDate)
		assert.Equal(t, 750*time.Millisecond, cfg.Introspector.Timeout)
		assert.Equal(t, "text", cfg.Output.Format)
	})
}

func TestLoadConfig_Invalid(t *testing.T) {
	clearEnv(t)
	missing := filepath.Join(t.TempDir(), "absent.yaml")

	t.Run("Bad snapshot date", func(t *testing.T) {
		t.Setenv("CTXPROBE_SNAPSHOT_DATE", "2024-01-31")
		_, err := LoadConfig(missing)
		assert.ErrorContains(t, err, "YYYYMMDD")
	})

	t.Run("Bad output format", func(t *testing.T) {
		t.Setenv("CTXPROBE_OUTPUT", "xml")
		_, err := LoadConfig(missing)
		assert.ErrorContains(t, err, "output format")
	})

	t.Run("Bad timeout", func(t *testing.T) {
		t.Setenv("CTXPROBE_TIMEOUT", "soon")
		_, err := LoadConfig(missing)
		assert.Error(t, err)
	})

	t.Run("Negative context lines", func(t *testing.T) {
		t.Setenv("CTXPROBE_CONTEXT_LINES", "-1")
		_, err := LoadConfig(missing)
		assert.ErrorContains(t, err, "context_lines")
	})

	t.Run("Malformed YAML", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("introspector: [unterminated"), 0o644))
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})
}

func TestLoadConfig_ZeroContextLines(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	t.Run("Explicit zero in file is kept", func(t *testing.T) {
		path := filepath.Join(dir, "zero.yaml")
		require.NoError(t, os.WriteFile(path, []byte("output:\n  context_lines: 0\n"), 0o644))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 0, cfg.Output.ContextLines)
		assert.Equal(t, "text", cfg.Output.Format, "sibling keys keep their defaults")
	})

	t.Run("Explicit zero in env is kept", func(t *testing.T) {
		t.Setenv("CTXPROBE_CONTEXT_LINES", "0")

		cfg, err := LoadConfig(filepath.Join(dir, "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, 0, cfg.Output.ContextLines)
	})

	t.Run("Absent key uses the default", func(t *testing.T) {
		path := filepath.Join(dir, "other.yaml")
		require.NoError(t, os.WriteFile(path, []byte("output:\n  format: json\n"), 0o644))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, DefaultContextLines, cfg.Output.ContextLines)
		assert.Equal(t, "json", cfg.Output.Format)
	})
}
