// Package config loads the monitor's settings from the environment.
//
// There is no configuration file and no command-line flags. Every setting
// has a default, so an empty environment yields a working monitor with
// notifications disabled.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/kimiroo/k3s-upgrade-monitor/internal/notifier"
)

// Config holds all monitor settings.
type Config struct {
	NtfyURL         string        `mapstructure:"ntfy_url"`
	NtfyTitlePrefix string        `mapstructure:"ntfy_title_prefix"`
	NtfyTimeout     time.Duration `mapstructure:"ntfy_timeout"`

	WatchNamespace      string        `mapstructure:"watch_namespace"`
	JobNamePrefix       string        `mapstructure:"job_name_prefix"`
	RestartDelay        time.Duration `mapstructure:"restart_delay"`
	NodeLookupTimeout   time.Duration `mapstructure:"node_lookup_timeout"`
	StartupNotification bool          `mapstructure:"startup_notification"`

	MetricsBindAddress     string `mapstructure:"metrics_bind_address"`
	HealthProbeBindAddress string `mapstructure:"health_probe_bind_address"`
	LogLevel               string `mapstructure:"log_level"`
}

var defaults = map[string]any{
	"ntfy_url":                  "",
	"ntfy_title_prefix":         "K3s Upgrade",
	"ntfy_timeout":              "10s",
	"watch_namespace":           "system-upgrade",
	"job_name_prefix":           "apply-",
	"restart_delay":             "10s",
	"node_lookup_timeout":       "10s",
	"startup_notification":      true,
	"metrics_bind_address":      ":8080",
	"health_probe_bind_address": ":8081",
	"log_level":                 "info",
}

// Load reads the configuration from environment variables named after the
// upper-cased keys (NTFY_URL, WATCH_NAMESPACE, ...).
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	cfg := &Config{}
	decodeHook := viper.DecodeHook(mapstructure.StringToTimeDurationHookFunc())
	if err := v.Unmarshal(cfg, decodeHook); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.NtfyURL = strings.TrimSpace(cfg.NtfyURL)
	cfg.NtfyTitlePrefix = strings.TrimSpace(cfg.NtfyTitlePrefix)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the loaded values for consistency.
func (c *Config) Validate() error {
	if c.NtfyURL != "" {
		if err := notifier.ValidateURL(c.NtfyURL); err != nil {
			return fmt.Errorf("NTFY_URL: %w", err)
		}
	}
	if c.WatchNamespace == "" {
		return fmt.Errorf("WATCH_NAMESPACE must not be empty")
	}
	if c.JobNamePrefix == "" {
		return fmt.Errorf("JOB_NAME_PREFIX must not be empty")
	}
	if c.RestartDelay <= 0 {
		return fmt.Errorf("RESTART_DELAY must be positive, got %s", c.RestartDelay)
	}
	if c.NtfyTimeout <= 0 {
		return fmt.Errorf("NTFY_TIMEOUT must be positive, got %s", c.NtfyTimeout)
	}
	if c.NodeLookupTimeout <= 0 {
		return fmt.Errorf("NODE_LOOKUP_TIMEOUT must be positive, got %s", c.NodeLookupTimeout)
	}
	if _, err := c.ZapLevel(); err != nil {
		return err
	}
	return nil
}

// ZapLevel parses LogLevel.
func (c *Config) ZapLevel() (zapcore.Level, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}

// NotificationsEnabled reports whether a notification endpoint is configured.
func (c *Config) NotificationsEnabled() bool {
	return c.NtfyURL != ""
}
