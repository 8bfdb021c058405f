package httpclient

import (
	"context"
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/aleister1102/sitewatch/internal/common/errorwrapper"
	"github.com/rs/zerolog"
)

// RetryHandler handles HTTP request retries with exponential backoff
type RetryHandler struct {
	maxRetries       int
	baseDelay        time.Duration
	maxDelay         time.Duration
	enableJitter     bool
	retryStatusCodes map[int]bool
	logger           zerolog.Logger
}

// RetryHandlerConfig configuration for retry handler
type RetryHandlerConfig struct {
	MaxRetries       int           `json:"max_retries"`
	BaseDelay        time.Duration `json:"base_delay"`
	MaxDelay         time.Duration `json:"max_delay"`
	EnableJitter     bool          `json:"enable_jitter"`
	RetryStatusCodes []int         `json:"retry_status_codes"`
}

// NewRetryHandler creates a new retry handler
func NewRetryHandler(config RetryHandlerConfig, logger zerolog.Logger) *RetryHandler {
	statusCodeMap := make(map[int]bool)
	for _, code := range config.RetryStatusCodes {
		statusCodeMap[code] = true
	}

	return &RetryHandler{
		maxRetries:       config.MaxRetries,
		baseDelay:        config.BaseDelay,
		maxDelay:         config.MaxDelay,
		enableJitter:     config.EnableJitter,
		retryStatusCodes: statusCodeMap,
		logger:           logger.With().Str("component", "RetryHandler").Logger(),
	}
}

// ShouldRetry determines if a request should be retried based on status code
func (rh *RetryHandler) ShouldRetry(statusCode int, attempt int) bool {
	if attempt >= rh.maxRetries {
		return false
	}
	return rh.retryStatusCodes[statusCode]
}

// CalculateDelay calculates the delay for the next retry attempt using exponential backoff
func (rh *RetryHandler) CalculateDelay(attempt int) time.Duration {
	delay := rh.baseDelay
	if attempt > 0 {
		delay = rh.baseDelay * time.Duration(math.Pow(2, float64(attempt)))
	}

	if rh.maxDelay > 0 && delay > rh.maxDelay {
		delay = rh.maxDelay
	}

	if rh.enableJitter {
		if spread := delay.Milliseconds() / 10; spread > 0 {
			delay += time.Duration(rand.Int63n(spread)) * time.Millisecond
		}
	}

	return delay
}

// retryAfter reads a Retry-After header given in seconds, capped at maxDelay.
func (rh *RetryHandler) retryAfter(resp *HTTPResponse) (time.Duration, bool) {
	if resp == nil {
		return 0, false
	}
	raw := resp.Header("Retry-After")
	if raw == "" {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil || seconds < 0 {
		return 0, false
	}
	delay := time.Duration(seconds * float64(time.Second))
	if rh.maxDelay > 0 && delay > rh.maxDelay {
		delay = rh.maxDelay
	}
	return delay, true
}

func (rh *RetryHandler) wait(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// DoWithRetry executes an HTTP request with retry logic.
// Requests with a body are sent once, since the reader cannot be replayed.
func (rh *RetryHandler) DoWithRetry(ctx context.Context, doFunc func(*HTTPRequest) (*HTTPResponse, error), req *HTTPRequest) (*HTTPResponse, error) {
	if req.Body != nil {
		return doFunc(req)
	}

	var lastResp *HTTPResponse
	var lastErr error

	for attempt := 0; attempt <= rh.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := doFunc(req)
		lastResp, lastErr = resp, err

		if err == nil && !rh.retryStatusCodes[resp.StatusCode] {
			return resp, nil
		}
		if attempt >= rh.maxRetries {
			break
		}

		delay := rh.CalculateDelay(attempt)
		event := rh.logger.Warn().Str("url", req.URL).Int("attempt", attempt+1).Int("max_retries", rh.maxRetries)
		if err != nil {
			event.Err(err).Dur("delay", delay).Msg("Request failed, waiting before retry")
		} else {
			if hinted, ok := rh.retryAfter(resp); ok {
				delay = hinted
			}
			event.Int("status_code", resp.StatusCode).Dur("delay", delay).Msg("Retryable status, waiting before retry")
		}

		if err := rh.wait(ctx, delay); err != nil {
			return nil, err
		}
	}

	if lastErr != nil {
		return nil, lastErr
	}

	err := NewHTTPErrorWithURL(lastResp.StatusCode, string(lastResp.Body), req.URL)
	return lastResp, errorwrapper.WrapError(err, "all retry attempts failed")
}
