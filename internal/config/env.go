package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Environment variables honoured on top of the configuration file.
const (
	EnvBotToken        = "DISCORD_BOT_TOKEN"
	EnvLegacyToken     = "TOKEN"
	EnvSitesFile       = "CONFIG_FILE"
	EnvOutputMode      = "OUTPUT_MODE"
	EnvArtificialDelay = "ARTIFICIAL_DELAY"
)

// ApplyEnvOverrides copies environment values over the loaded configuration.
// Unusable values are skipped and returned as warnings rather than errors.
func ApplyEnvOverrides(cfg *GlobalConfig, getenv func(string) string) []string {
	var warnings []string

	if token := getenv(EnvBotToken); token != "" {
		cfg.NotificationConfig.BotToken = token
	} else if token := getenv(EnvLegacyToken); token != "" {
		cfg.NotificationConfig.BotToken = token
	}

	if sites := getenv(EnvSitesFile); sites != "" {
		cfg.MonitorConfig.SitesFile = sites
	}

	if mode := strings.TrimSpace(getenv(EnvOutputMode)); mode != "" {
		if normalized, ok := NormalizeOutputMode(mode); ok {
			cfg.RenderConfig.OutputMode = normalized
		} else {
			warnings = append(warnings, fmt.Sprintf("%s: unknown output mode '%s'", EnvOutputMode, mode))
		}
	}

	if delay := strings.TrimSpace(getenv(EnvArtificialDelay)); delay != "" {
		seconds, err := strconv.ParseFloat(delay, 64)
		if err != nil || seconds < 0 {
			warnings = append(warnings, fmt.Sprintf("%s: '%s' is not a non-negative number of seconds", EnvArtificialDelay, delay))
		} else {
			cfg.NotificationConfig.ArtificialDelayMillis = int(seconds * 1000)
		}
	}

	return warnings
}

// NormalizeOutputMode accepts an output mode in any case.
func NormalizeOutputMode(mode string) (string, bool) {
	switch m := strings.ToLower(strings.TrimSpace(mode)); m {
	case OutputModeRaw, OutputModeMarkdown, OutputModeEmbed:
		return m, true
	}
	return "", false
}
