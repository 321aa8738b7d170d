package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/romshark/todosim/config"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "todosim.yml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
db_path: /tmp/demo.db
success_rate: 0.5
max_delay_ms: 100
workload:
  interval_ms: 10
  seed: 42
  duration_s: 3
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, config.Config{
		DBPath:           "/tmp/demo.db",
		SuccessRate:      0.5,
		MaxDelay:         100 * time.Millisecond,
		WorkloadInterval: 10 * time.Millisecond,
		WorkloadSeed:     42,
		WorkloadDuration: 3 * time.Second,
	}, cfg)
}

func TestLoadFilePartial(t *testing.T) {
	path := writeFile(t, `success_rate: 1`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	expect := config.Default()
	expect.SuccessRate = 1
	require.Equal(t, expect, cfg)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}

func TestLoadFileInvalid(t *testing.T) {
	for name, contents := range map[string]string{
		"not yaml":        `{{{`,
		"rate too high":   `success_rate: 1.5`,
		"rate negative":   `success_rate: -0.1`,
		"delay negative":  `max_delay_ms: -1`,
		"interval zero":   "workload:\n  interval_ms: 0",
		"duration negative": "workload:\n  duration_s: -2",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := config.Load(writeFile(t, contents))
			require.Error(t, err)
		})
	}
}
