package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// clearEnv blanks every variable Load reads so host settings don't leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"NTFY_URL", "NTFY_TITLE_PREFIX", "NTFY_TIMEOUT", "WATCH_NAMESPACE",
		"JOB_NAME_PREFIX", "RESTART_DELAY", "NODE_LOOKUP_TIMEOUT",
		"STARTUP_NOTIFICATION", "METRICS_BIND_ADDRESS",
		"HEALTH_PROBE_BIND_ADDRESS", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "", cfg.NtfyURL)
		assert.False(t, cfg.NotificationsEnabled())
		assert.Equal(t, "K3s Upgrade", cfg.NtfyTitlePrefix)
		assert.Equal(t, 10*time.Second, cfg.NtfyTimeout)
		assert.Equal(t, "system-upgrade", cfg.WatchNamespace)
		assert.Equal(t, "apply-", cfg.JobNamePrefix)
		assert.Equal(t, 10*time.Second, cfg.RestartDelay)
		assert.Equal(t, 10*time.Second, cfg.NodeLookupTimeout)
		assert.True(t, cfg.StartupNotification)
		assert.Equal(t, ":8080", cfg.MetricsBindAddress)
		assert.Equal(t, ":8081", cfg.HealthProbeBindAddress)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("EnvOverrides", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("NTFY_URL", "  https://ntfy.example.com/k3s  ")
		t.Setenv("NTFY_TITLE_PREFIX", "Homelab")
		t.Setenv("NTFY_TIMEOUT", "3s")
		t.Setenv("WATCH_NAMESPACE", "upgrades")
		t.Setenv("RESTART_DELAY", "1m")
		t.Setenv("STARTUP_NOTIFICATION", "false")
		t.Setenv("METRICS_BIND_ADDRESS", "0")
		t.Setenv("LOG_LEVEL", "debug")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "https://ntfy.example.com/k3s", cfg.NtfyURL)
		assert.True(t, cfg.NotificationsEnabled())
		assert.Equal(t, "Homelab", cfg.NtfyTitlePrefix)
		assert.Equal(t, 3*time.Second, cfg.NtfyTimeout)
		assert.Equal(t, "upgrades", cfg.WatchNamespace)
		assert.Equal(t, time.Minute, cfg.RestartDelay)
		assert.False(t, cfg.StartupNotification)
		assert.Equal(t, "0", cfg.MetricsBindAddress)

		level, err := cfg.ZapLevel()
		require.NoError(t, err)
		assert.Equal(t, zapcore.DebugLevel, level)
	})

	t.Run("InvalidURL", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("NTFY_URL", "ntfy.sh/k3s")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "NTFY_URL")
	})

	t.Run("InvalidDuration", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("RESTART_DELAY", "soon")

		_, err := Load()
		require.Error(t, err)
	})

	t.Run("InvalidLogLevel", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("LOG_LEVEL", "chatty")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "LOG_LEVEL")
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			WatchNamespace:    "system-upgrade",
			JobNamePrefix:     "apply-",
			RestartDelay:      time.Second,
			NtfyTimeout:       time.Second,
			NodeLookupTimeout: time.Second,
			LogLevel:          "info",
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name    string
		mutate  func(*Config)
		message string
	}{
		{"empty namespace", func(c *Config) { c.WatchNamespace = "" }, "WATCH_NAMESPACE"},
		{"empty prefix", func(c *Config) { c.JobNamePrefix = "" }, "JOB_NAME_PREFIX"},
		{"zero restart delay", func(c *Config) { c.RestartDelay = 0 }, "RESTART_DELAY"},
		{"negative ntfy timeout", func(c *Config) { c.NtfyTimeout = -time.Second }, "NTFY_TIMEOUT"},
		{"zero lookup timeout", func(c *Config) { c.NodeLookupTimeout = 0 }, "NODE_LOOKUP_TIMEOUT"},
		{"bad url host", func(c *Config) { c.NtfyURL = "http://" }, "NTFY_URL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}
