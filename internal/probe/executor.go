// Package probe fetches monitored websites.
package probe

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aleister1102/sitewatch/internal/common/errorwrapper"
	"github.com/aleister1102/sitewatch/internal/config"
	"github.com/aleister1102/sitewatch/internal/httpclient"
	"github.com/aleister1102/sitewatch/internal/models"
	"github.com/rs/zerolog"
)

// Executor issues one GET per site and normalizes the outcome.
type Executor struct {
	client  *httpclient.HTTPClient
	timeout time.Duration
	logSize int
	logger  zerolog.Logger
	now     func() time.Time
}

// NewExecutor builds the HTTP client described by cfg.
func NewExecutor(cfg config.ProbeConfig, logger zerolog.Logger) (*Executor, error) {
	logger = logger.With().Str("component", "ProbeExecutor").Logger()

	client, err := httpclient.NewHTTPClientBuilder(logger).
		WithConfig(clientConfig(cfg)).
		WithRetry(retryConfig(cfg.Retry)).
		Build()
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to create probe HTTP client")
	}

	return &Executor{
		client:  client,
		timeout: cfg.Timeout(),
		logSize: cfg.ResponseLogSize,
		logger:  logger,
		now:     time.Now,
	}, nil
}

func clientConfig(cfg config.ProbeConfig) httpclient.HTTPClientConfig {
	hc := httpclient.DefaultHTTPClientConfig()
	hc.Timeout = cfg.Timeout()
	hc.InsecureSkipVerify = cfg.InsecureSkipVerify
	hc.FollowRedirects = cfg.FollowRedirects
	hc.MaxRedirects = cfg.MaxRedirects
	hc.Proxy = cfg.Proxy
	hc.HeaderPreset = cfg.HeaderPreset
	hc.CustomHeaders = cfg.CustomHeaders
	hc.MaxContentSize = cfg.MaxContentSize
	hc.EnableHTTP2 = cfg.EnableHTTP2
	return hc
}

func retryConfig(cfg config.RetryConfig) httpclient.RetryHandlerConfig {
	return httpclient.RetryHandlerConfig{
		MaxRetries:       cfg.MaxRetries,
		BaseDelay:        time.Duration(cfg.BaseDelayMillis) * time.Millisecond,
		MaxDelay:         time.Duration(cfg.MaxDelayMillis) * time.Millisecond,
		EnableJitter:     cfg.EnableJitter,
		RetryStatusCodes: cfg.RetryStatusCodes,
	}
}

// Probe fetches site.URL. It never returns an error: a failed fetch is a
// result with Succeeded=false and a TransportError.
func (e *Executor) Probe(ctx context.Context, site models.Site) models.ProbeResult {
	checkedAt := e.now().UTC()
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.client.Do(&httpclient.HTTPRequest{
		URL:     site.URL,
		Method:  http.MethodGet,
		Context: ctx,
	})
	duration := time.Since(start)

	// An exhausted retry still carries the last response.
	if resp == nil {
		var transportErr *errorwrapper.TransportError
		if !errors.As(err, &transportErr) {
			err = errorwrapper.NewTransportError(site.URL, "request failed", err)
		}
		e.logger.Warn().Err(err).Str("site", site.Name).Str("url", site.URL).Dur("duration", duration).Msg("Probe failed")
		return models.NewFailedProbe(err, checkedAt, duration)
	}

	result := models.ProbeResult{
		Succeeded:  true,
		StatusCode: resp.StatusCode,
		Body:       string(resp.Body),
		Duration:   duration,
		CheckedAt:  checkedAt,
	}

	e.logger.Debug().
		Str("site", site.Name).
		Str("url", site.URL).
		Int("status_code", resp.StatusCode).
		Int("body_size", len(resp.Body)).
		Bool("truncated", resp.Truncated).
		Dur("duration", duration).
		Str("body", e.logExcerpt(result.Body)).
		Msg("Probe completed")

	return result
}

func (e *Executor) logExcerpt(body string) string {
	switch {
	case e.logSize < 0:
		return body
	case e.logSize == 0:
		return ""
	case len(body) > e.logSize:
		return body[:e.logSize] + "..."
	default:
		return body
	}
}
