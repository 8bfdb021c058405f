package config

import "time"

// ProbeConfig controls how websites are fetched.
type ProbeConfig struct {
	TimeoutSeconds     int               `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty" validate:"omitempty,min=1,max=300"`
	HeaderPreset       string            `json:"header_preset,omitempty" yaml:"header_preset,omitempty" validate:"omitempty,headerpreset"`
	CustomHeaders      map[string]string `json:"custom_headers,omitempty" yaml:"custom_headers,omitempty"`
	InsecureSkipVerify bool              `json:"insecure_skip_verify" yaml:"insecure_skip_verify"`
	FollowRedirects    bool              `json:"follow_redirects" yaml:"follow_redirects"`
	MaxRedirects       int               `json:"max_redirects,omitempty" yaml:"max_redirects,omitempty" validate:"omitempty,min=0,max=30"`
	MaxContentSize     int64             `json:"max_content_size,omitempty" yaml:"max_content_size,omitempty" validate:"omitempty,min=1"`
	EnableHTTP2        bool              `json:"enable_http2" yaml:"enable_http2"`
	Proxy              string            `json:"proxy,omitempty" yaml:"proxy,omitempty" validate:"omitempty,url"`
	// ResponseLogSize is how much of a body goes into debug logs; -1 logs it all.
	ResponseLogSize int         `json:"response_log_size,omitempty" yaml:"response_log_size,omitempty" validate:"omitempty,min=-1"`
	Retry           RetryConfig `json:"retry,omitempty" yaml:"retry,omitempty"`
}

// NewDefaultProbeConfig creates default probe configuration
func NewDefaultProbeConfig() ProbeConfig {
	return ProbeConfig{
		TimeoutSeconds:  DefaultProbeTimeoutSeconds,
		HeaderPreset:    DefaultHeaderPreset,
		CustomHeaders:   map[string]string{},
		FollowRedirects: true,
		MaxRedirects:    DefaultMaxRedirects,
		MaxContentSize:  DefaultMaxContentSize,
		EnableHTTP2:     true,
		ResponseLogSize: DefaultResponseLogSize,
		Retry:           NewDefaultRetryConfig(),
	}
}

// Timeout is the per-probe deadline.
func (c ProbeConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultProbeTimeoutSeconds * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
