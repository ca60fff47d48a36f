package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  port: 9090\n"))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 8, cfg.Calendar.StartHour)
	assert.Equal(t, 18, cfg.Calendar.EndHour)
	assert.Equal(t, 30, cfg.Calendar.SlotDuration)
	assert.Equal(t, DataSourceMemory, cfg.Data.Source)
	assert.Equal(t, 250*time.Millisecond, cfg.Data.Latency)
	assert.Equal(t, CacheBackendMemory, cfg.Cache.Backend)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, []string{"GET", "OPTIONS"}, cfg.CORS.AllowedMethods)
	assert.False(t, cfg.Database.Enabled)
}

func TestLoadSampleFile(t *testing.T) {
	cfg, err := Load("config.yml")
	require.NoError(t, err)
	assert.True(t, cfg.Prefetch.Enabled)
	assert.Equal(t, time.Minute, cfg.Prefetch.Interval)
	assert.Equal(t, "scheduler:", cfg.Redis.Prefix)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SCHEDULER_PORT", "7000")
	t.Setenv("SCHEDULER_DATA_SOURCE", "POSTGRES")
	t.Setenv("SCHEDULER_DB_HOST", "db.internal")
	t.Setenv("SCHEDULER_LATENCY", "0s")
	t.Setenv("SCHEDULER_CACHE_BACKEND", "redis")
	t.Setenv("SCHEDULER_TIMEZONE", "UTC")

	cfg, err := Load(writeConfig(t, "log:\n  level: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, DataSourcePostgres, cfg.Data.Source)
	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Zero(t, cfg.Data.Latency)
	assert.Equal(t, CacheBackendRedis, cfg.Cache.Backend)
	assert.Equal(t, "debug", cfg.Log.Level)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown data source", "data:\n  source: csv\n"},
		{"inverted calendar", "calendar:\n  start_hour: 18\n  end_hour: 8\n"},
		{"zero slot", "calendar:\n  slot_duration: 0\n"},
		{"unknown cache backend", "cache:\n  backend: memcached\n"},
		{"unknown timezone", "data:\n  timezone: Mars/Olympus\n"},
		{"bad log format", "log:\n  format: xml\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestInvalidLatencyEnv(t *testing.T) {
	t.Setenv("SCHEDULER_LATENCY", "soon")
	_, err := Load(writeConfig(t, ""))
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "h", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=n sslmode=disable", d.DSN())
}
