package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/aleister1102/sitewatch/internal/common/errorwrapper"
	"github.com/aleister1102/sitewatch/internal/logger"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const maxConfigFileSize = 10 * 1024 * 1024

// GlobalConfig contains all configuration sections for the application
type GlobalConfig struct {
	LogConfig          logger.FileLogConfig `json:"log_config,omitempty" yaml:"log_config,omitempty"`
	Mode               string               `json:"mode,omitempty" yaml:"mode,omitempty" validate:"required,mode"`
	MonitorConfig      MonitorConfig        `json:"monitor_config,omitempty" yaml:"monitor_config,omitempty"`
	ProbeConfig        ProbeConfig          `json:"probe_config,omitempty" yaml:"probe_config,omitempty"`
	NotificationConfig NotificationConfig   `json:"notification_config,omitempty" yaml:"notification_config,omitempty"`
	RenderConfig       RenderConfig         `json:"render_config,omitempty" yaml:"render_config,omitempty"`
	StorageConfig      StorageConfig        `json:"storage_config,omitempty" yaml:"storage_config,omitempty"`
	MetricsConfig      MetricsConfig        `json:"metrics_config,omitempty" yaml:"metrics_config,omitempty"`

	// SourcePath is the file the configuration was read from, empty for defaults.
	SourcePath string `json:"-" yaml:"-"`
}

// NewDefaultGlobalConfig creates a new GlobalConfig with default values
func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		LogConfig:          logger.NewDefaultFileLogConfig(),
		Mode:               ModeContinuous,
		MonitorConfig:      NewDefaultMonitorConfig(),
		ProbeConfig:        NewDefaultProbeConfig(),
		NotificationConfig: NewDefaultNotificationConfig(),
		RenderConfig:       NewDefaultRenderConfig(),
		StorageConfig:      NewDefaultStorageConfig(),
		MetricsConfig:      NewDefaultMetricsConfig(),
	}
}

// LoadGlobalConfig loads the configuration from a file or default locations.
// It determines the config file path using GetConfigPath, supports both JSON and YAML formats.
// YAML is used if the file extension is .yaml or .yml. With no file found the defaults are returned.
func LoadGlobalConfig(providedPath string, log zerolog.Logger) (*GlobalConfig, error) {
	cfg := NewDefaultGlobalConfig()

	if providedPath != "" && !fileExists(providedPath) {
		return nil, errorwrapper.NewConfigurationError(providedPath, []string{"config file does not exist"}, errorwrapper.ErrNotFound)
	}

	filePath := GetConfigPath(providedPath)
	if filePath == "" {
		log.Info().Msg("No config file found, using defaults")
		return cfg, nil
	}

	data, err := readConfigFile(filePath)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to load config file content")
	}

	if err := parseConfigContent(data, filePath, cfg); err != nil {
		return nil, errorwrapper.NewConfigurationError(filePath, nil, err)
	}

	cfg.SourcePath = filePath
	log.Info().Str("path", filePath).Msg("Configuration loaded")
	return cfg, nil
}

// readConfigFile reads a configuration or sites file, refusing oversized input.
func readConfigFile(filePath string) ([]byte, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, errorwrapper.NewError("'%s' is a directory", filePath)
	}
	if info.Size() > maxConfigFileSize {
		return nil, errorwrapper.NewError("'%s' is larger than %d bytes", filePath, maxConfigFileSize)
	}
	return os.ReadFile(filePath)
}

// parseConfigContent parses the config content based on file extension
func parseConfigContent(data []byte, filePath string, cfg *GlobalConfig) error {
	if isYAMLFile(filepath.Ext(filePath)) {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return errorwrapper.NewError("failed to unmarshal YAML from '%s': %w", filePath, err)
		}
		return nil
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return errorwrapper.NewError("failed to unmarshal JSON from '%s': %w", filePath, err)
	}
	return nil
}

// isYAMLFile checks if the file extension indicates a YAML file
func isYAMLFile(ext string) bool {
	return ext == ".yaml" || ext == ".yml"
}

// ResolvePath makes a relative path from the configuration file usable from
// any working directory: it is tried as given first, then next to the config file.
func (c *GlobalConfig) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) || fileExists(p) || c.SourcePath == "" {
		return p
	}
	candidate := filepath.Join(filepath.Dir(c.SourcePath), p)
	if fileExists(candidate) {
		return candidate
	}
	return p
}

// MaxCycles returns how many cycles the scheduler runs; 0 means forever.
func (c *GlobalConfig) MaxCycles() int {
	if c.Mode == ModeOnetime {
		return 1
	}
	return c.MonitorConfig.MaxCycles
}
