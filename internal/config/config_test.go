package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 100*time.Millisecond, cfg.Scheduler.Budget)
	assert.Equal(t, 500*time.Millisecond, cfg.Scheduler.Interval)
	assert.True(t, cfg.Scheduler.AutoUpdate)
	assert.Equal(t, "cycler.db", cfg.Store.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cycler.yaml")
	data := `
scheduler:
  budget: 250ms
  auto_update: false
store:
  path: /tmp/curves.db
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.Scheduler.Budget)
	assert.Equal(t, 500*time.Millisecond, cfg.Scheduler.Interval)
	assert.False(t, cfg.Scheduler.AutoUpdate)
	assert.Equal(t, "/tmp/curves.db", cfg.Store.Path)
	assert.Equal(t, "json", cfg.Log.Format)

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cycler.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"metrics": {"enabled": true}}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CYCLER_SCHEDULER_INTERVAL", "2s")
	t.Setenv("CYCLER_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Scheduler.Interval)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/cycler.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  string
		val  string
		want string
	}{
		{"budget", "CYCLER_SCHEDULER_BUDGET", "0s", "scheduler.budget"},
		{"interval", "CYCLER_SCHEDULER_INTERVAL", "-1s", "scheduler.interval"},
		{"level", "CYCLER_LOG_LEVEL", "loud", "log.level"},
		{"format", "CYCLER_LOG_FORMAT", "xml", "log.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.val)
			_, err := Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNew_IndependentInstances(t *testing.T) {
	a := New()
	b := New()
	a.Set("store.path", "a.db")

	assert.Equal(t, "a.db", a.GetString("store.path"))
	assert.Equal(t, "cycler.db", b.GetString("store.path"))
}
