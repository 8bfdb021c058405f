package models

import "time"

// ProbeResult is the normalized outcome of one HTTP fetch.
// Succeeded is false only when no HTTP response was received.
type ProbeResult struct {
	Succeeded  bool          `json:"succeeded"`
	StatusCode int           `json:"status_code,omitempty"` // 0 when no response was received
	Body       string        `json:"body,omitempty"`
	Err        error         `json:"-"`
	Duration   time.Duration `json:"duration,omitempty"`
	CheckedAt  time.Time     `json:"checked_at"`
}

// NewFailedProbe builds the result of a transport failure.
func NewFailedProbe(err error, checkedAt time.Time, duration time.Duration) ProbeResult {
	return ProbeResult{
		Succeeded: false,
		Err:       err,
		CheckedAt: checkedAt,
		Duration:  duration,
	}
}
