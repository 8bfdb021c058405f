package config

// RetryConfig defines configuration for probe retries
type RetryConfig struct {
	// Extra attempts after the first request; 0 disables retrying
	MaxRetries int `json:"max_retries,omitempty" yaml:"max_retries,omitempty" validate:"omitempty,min=0,max=10"`
	// Base delay in milliseconds for exponential backoff
	BaseDelayMillis int `json:"base_delay_millis,omitempty" yaml:"base_delay_millis,omitempty" validate:"omitempty,min=1,max=60000"`
	// Maximum delay in milliseconds for exponential backoff
	MaxDelayMillis int `json:"max_delay_millis,omitempty" yaml:"max_delay_millis,omitempty" validate:"omitempty,min=1,max=300000"`
	// Enable jitter to randomize delays slightly
	EnableJitter bool `json:"enable_jitter" yaml:"enable_jitter"`
	// HTTP status codes that trigger another attempt
	RetryStatusCodes []int `json:"retry_status_codes,omitempty" yaml:"retry_status_codes,omitempty" validate:"omitempty,dive,min=100,max=599"`
}

// NewDefaultRetryConfig creates default retry configuration. Retrying is off:
// a single probe per cycle is the classification input.
func NewDefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:       0,
		BaseDelayMillis:  500,
		MaxDelayMillis:   2000,
		EnableJitter:     true,
		RetryStatusCodes: []int{429},
	}
}
