package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aleister1102/sitewatch/internal/common/errorwrapper"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewDefaultGlobalConfig(t *testing.T) {
	cfg := NewDefaultGlobalConfig()

	assert.Equal(t, ModeContinuous, cfg.Mode)
	assert.Equal(t, DefaultSitesFile, cfg.MonitorConfig.SitesFile)
	assert.Equal(t, TransportBot, cfg.NotificationConfig.Transport)
	assert.Equal(t, OutputModeEmbed, cfg.RenderConfig.OutputMode)
	assert.Nil(t, cfg.RenderConfig.EmbedMessage)
	assert.Equal(t, 5*time.Second, cfg.ProbeConfig.Timeout())
	assert.Equal(t, 10*time.Second, cfg.MonitorConfig.MinDelay())
	assert.Equal(t, DefaultSQLitePath, cfg.StorageConfig.SQLitePath)
}

func TestLoadGlobalConfig_NoConfigFile(t *testing.T) {
	t.Setenv(ConfigPathEnv, "")

	cfg, err := LoadGlobalConfig("", zerolog.Nop())

	require.NoError(t, err)
	assert.Equal(t, ModeContinuous, cfg.Mode)
	assert.Empty(t, cfg.SourcePath)
}

func TestLoadGlobalConfig_NonExistentFile(t *testing.T) {
	cfg, err := LoadGlobalConfig("/nonexistent/config.json", zerolog.Nop())

	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.True(t, errors.Is(err, errorwrapper.ErrInvalidConfiguration))
	assert.Contains(t, err.Error(), "config file does not exist")
}

func TestLoadGlobalConfig_JSONFile(t *testing.T) {
	configFile := writeFile(t, t.TempDir(), "config.json", `{
		"mode": "onetime",
		"log_config": {"log_level": "debug"},
		"render_config": {"output_mode": "markdown", "embed_message": ""},
		"probe_config": {"header_preset": "curl", "custom_headers": {"X-Probe": "1"}}
	}`)

	cfg, err := LoadGlobalConfig(configFile, zerolog.Nop())

	require.NoError(t, err)
	assert.Equal(t, ModeOnetime, cfg.Mode)
	assert.Equal(t, "debug", cfg.LogConfig.LogLevel)
	assert.Equal(t, OutputModeMarkdown, cfg.RenderConfig.OutputMode)
	require.NotNil(t, cfg.RenderConfig.EmbedMessage)
	assert.Equal(t, "", *cfg.RenderConfig.EmbedMessage)
	assert.Equal(t, "curl", cfg.ProbeConfig.HeaderPreset)
	assert.Equal(t, "1", cfg.ProbeConfig.CustomHeaders["X-Probe"])
	assert.Equal(t, configFile, cfg.SourcePath)
	// Sections absent from the file keep their defaults.
	assert.Equal(t, DefaultCheckIntervalSeconds, cfg.MonitorConfig.CheckIntervalSeconds)
	assert.Equal(t, 1, cfg.MaxCycles())
}

func TestLoadGlobalConfig_YAMLFile(t *testing.T) {
	configFile := writeFile(t, t.TempDir(), "config.yaml", `
mode: continuous
log_config:
  log_level: warn
  log_format: json
monitor_config:
  sites_file: websites.yaml
  check_interval_seconds: 120
  cron_schedule: "@every 5m"
notification_config:
  transport: webhook
  artificial_delay_millis: 1500
  revalidate_after_seconds: 900
storage_config:
  sqlite_path: /tmp/state.db
  prune_removed_sites: false
metrics_config:
  enabled: true
  listen_address: 127.0.0.1:9999
`)

	cfg, err := LoadGlobalConfig(configFile, zerolog.Nop())

	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogConfig.LogLevel)
	assert.Equal(t, "json", cfg.LogConfig.LogFormat)
	assert.Equal(t, "websites.yaml", cfg.MonitorConfig.SitesFile)
	assert.Equal(t, 2*time.Minute, cfg.MonitorConfig.CheckInterval())
	assert.Equal(t, "@every 5m", cfg.MonitorConfig.CronSchedule)
	assert.Equal(t, TransportWebhook, cfg.NotificationConfig.Transport)
	assert.Equal(t, 1500*time.Millisecond, cfg.NotificationConfig.ArtificialDelay())
	assert.Equal(t, 15*time.Minute, cfg.NotificationConfig.RevalidateAfter())
	assert.Equal(t, "/tmp/state.db", cfg.StorageConfig.SQLitePath)
	assert.False(t, cfg.StorageConfig.PruneRemovedSites)
	assert.True(t, cfg.MetricsConfig.Enabled)
	assert.Equal(t, DefaultMetricsPath, cfg.MetricsConfig.Path)
	assert.Equal(t, 0, cfg.MaxCycles())
}

func TestLoadGlobalConfig_InvalidJSON(t *testing.T) {
	configFile := writeFile(t, t.TempDir(), "invalid.json", `{"mode": "onetime",}`)

	cfg, err := LoadGlobalConfig(configFile, zerolog.Nop())

	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to unmarshal JSON")
}

func TestLoadGlobalConfig_InvalidYAML(t *testing.T) {
	configFile := writeFile(t, t.TempDir(), "invalid.yaml", `
mode: onetime
  invalid_indent: value
`)

	cfg, err := LoadGlobalConfig(configFile, zerolog.Nop())

	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to unmarshal YAML")
}

func TestGetConfigPath_EnvVariable(t *testing.T) {
	configFile := writeFile(t, t.TempDir(), "custom.yaml", "mode: onetime\n")
	t.Setenv(ConfigPathEnv, configFile)

	assert.Equal(t, configFile, GetConfigPath(""))
	assert.Equal(t, configFile, GetConfigPath("/does/not/exist.yaml"))
}

func TestIsYAMLFile(t *testing.T) {
	tests := []struct {
		ext      string
		expected bool
	}{
		{".yaml", true},
		{".yml", true},
		{".json", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			assert.Equal(t, tt.expected, isYAMLFile(tt.ext))
		})
	}
}

func TestMonitorConfig_CheckIntervalClampedToMinDelay(t *testing.T) {
	cfg := NewDefaultMonitorConfig()
	cfg.CheckIntervalSeconds = 2
	cfg.MinDelayBetweenChecksSeconds = 10

	assert.Equal(t, 10*time.Second, cfg.CheckInterval())
}

func TestGlobalConfig_ResolvePath(t *testing.T) {
	dir := t.TempDir()
	configFile := writeFile(t, dir, "config.yaml", "mode: onetime\n")
	sitesFile := writeFile(t, dir, "my-sites.json", "[]")

	cfg := NewDefaultGlobalConfig()
	cfg.SourcePath = configFile

	assert.Equal(t, sitesFile, cfg.ResolvePath("my-sites.json"))
	assert.Equal(t, "missing.json", cfg.ResolvePath("missing.json"))
	assert.Equal(t, sitesFile, cfg.ResolvePath(sitesFile))
}

func TestApplyEnvOverrides(t *testing.T) {
	env := map[string]string{
		EnvLegacyToken:     "legacy",
		EnvSitesFile:       "from-env.json",
		EnvOutputMode:      "RAW",
		EnvArtificialDelay: "1.5",
	}
	cfg := NewDefaultGlobalConfig()

	warnings := ApplyEnvOverrides(cfg, func(k string) string { return env[k] })

	assert.Empty(t, warnings)
	assert.Equal(t, "legacy", cfg.NotificationConfig.BotToken)
	assert.Equal(t, "from-env.json", cfg.MonitorConfig.SitesFile)
	assert.Equal(t, OutputModeRaw, cfg.RenderConfig.OutputMode)
	assert.Equal(t, 1500, cfg.NotificationConfig.ArtificialDelayMillis)

	env[EnvBotToken] = "preferred"
	env[EnvOutputMode] = "fancy"
	env[EnvArtificialDelay] = "soon"
	warnings = ApplyEnvOverrides(cfg, func(k string) string { return env[k] })

	assert.Equal(t, "preferred", cfg.NotificationConfig.BotToken)
	assert.Equal(t, OutputModeRaw, cfg.RenderConfig.OutputMode)
	assert.Len(t, warnings, 2)
}
