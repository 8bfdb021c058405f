package config

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled       bool   `json:"enabled" yaml:"enabled"`
	ListenAddress string `json:"listen_address,omitempty" yaml:"listen_address,omitempty" validate:"required_if=Enabled true"`
	Path          string `json:"path,omitempty" yaml:"path,omitempty" validate:"omitempty,startswith=/"`
}

// NewDefaultMetricsConfig creates default metrics configuration
func NewDefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:       false,
		ListenAddress: DefaultMetricsListenAddress,
		Path:          DefaultMetricsPath,
	}
}
