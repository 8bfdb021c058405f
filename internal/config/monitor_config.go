package config

import (
	"time"
)

// MonitorConfig controls the driver loop.
type MonitorConfig struct {
	SitesFile                    string `json:"sites_file,omitempty" yaml:"sites_file,omitempty" validate:"required"`
	CheckIntervalSeconds         int    `json:"check_interval_seconds,omitempty" yaml:"check_interval_seconds,omitempty" validate:"omitempty,min=1"`
	MinDelayBetweenChecksSeconds int    `json:"min_delay_between_checks_seconds,omitempty" yaml:"min_delay_between_checks_seconds,omitempty" validate:"omitempty,min=0"`
	MaxConcurrentChecks          int    `json:"max_concurrent_checks,omitempty" yaml:"max_concurrent_checks,omitempty" validate:"omitempty,min=1,max=256"`
	ShutdownTimeoutSeconds       int    `json:"shutdown_timeout_seconds,omitempty" yaml:"shutdown_timeout_seconds,omitempty" validate:"omitempty,min=1"`
	// CronSchedule replaces the fixed interval when set (standard 5-field syntax or descriptors like "@every 2m").
	CronSchedule   string `json:"cron_schedule,omitempty" yaml:"cron_schedule,omitempty" validate:"omitempty,cronspec"`
	MaxCycles      int    `json:"max_cycles,omitempty" yaml:"max_cycles,omitempty" validate:"omitempty,min=0"`
	WatchSitesFile bool   `json:"watch_sites_file" yaml:"watch_sites_file"`
}

// NewDefaultMonitorConfig creates default monitor configuration
func NewDefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		SitesFile:                    DefaultSitesFile,
		CheckIntervalSeconds:         DefaultCheckIntervalSeconds,
		MinDelayBetweenChecksSeconds: DefaultMinDelayBetweenChecksSeconds,
		MaxConcurrentChecks:          DefaultMaxConcurrentChecks,
		ShutdownTimeoutSeconds:       DefaultShutdownTimeoutSeconds,
		MaxCycles:                    0, // 0 means run until stopped
		WatchSitesFile:               true,
	}
}

// MinDelay is the shortest allowed gap between two checks of the same site.
func (c MonitorConfig) MinDelay() time.Duration {
	return time.Duration(c.MinDelayBetweenChecksSeconds) * time.Second
}

// CheckInterval returns the configured interval, never shorter than MinDelay.
func (c MonitorConfig) CheckInterval() time.Duration {
	interval := time.Duration(c.CheckIntervalSeconds) * time.Second
	if interval < c.MinDelay() {
		return c.MinDelay()
	}
	if interval <= 0 {
		return DefaultCheckIntervalSeconds * time.Second
	}
	return interval
}

// ShutdownTimeout bounds how long in-flight checks may run after a stop request.
func (c MonitorConfig) ShutdownTimeout() time.Duration {
	if c.ShutdownTimeoutSeconds <= 0 {
		return DefaultShutdownTimeoutSeconds * time.Second
	}
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}
