package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aleister1102/sitewatch/internal/common/errorwrapper"
	"github.com/aleister1102/sitewatch/internal/config"
	"github.com/aleister1102/sitewatch/internal/httpclient"
	"github.com/aleister1102/sitewatch/internal/models"
	"github.com/aleister1102/sitewatch/internal/notifier/discord"
	"github.com/rs/zerolog"
)

// WebhookMessenger posts status messages through Discord webhooks.
// Destinations are webhook URLs.
type WebhookMessenger struct {
	client    *httpclient.HTTPClient
	username  string
	avatarURL string
	logger    zerolog.Logger
}

// webhookMessage is the subset of Discord's message object we read back.
type webhookMessage struct {
	ID string `json:"id"`
}

// webhookError is Discord's JSON error body.
type webhookError struct {
	Message    string  `json:"message"`
	Code       int     `json:"code"`
	RetryAfter float64 `json:"retry_after"`
}

// NewWebhookMessenger creates a messenger with a dedicated HTTP client.
func NewWebhookMessenger(cfg config.NotificationConfig, logger zerolog.Logger) (*WebhookMessenger, error) {
	logger = logger.With().Str("component", "WebhookMessenger").Logger()

	client, err := httpclient.NewHTTPClientBuilder(logger).
		WithTimeout(cfg.RemoteTimeout()).
		WithFollowRedirects(true).
		WithMaxRedirects(3).
		WithHTTP2(true).
		Build()
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to create webhook HTTP client")
	}

	return &WebhookMessenger{
		client:    client,
		username:  cfg.WebhookUsername,
		avatarURL: cfg.WebhookAvatarURL,
		logger:    logger,
	}, nil
}

// Send executes the webhook with wait=true so Discord returns the created message.
func (w *WebhookMessenger) Send(ctx context.Context, destination string, content models.RenderedContent) (models.MessageHandle, error) {
	handle := models.MessageHandle{Destination: destination}

	endpoint, err := webhookEndpoint(destination, "")
	if err != nil {
		return handle, err
	}

	resp, err := w.do(ctx, http.MethodPost, endpoint, w.payload(content, true))
	if err != nil {
		return handle, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return handle, classifyWebhookResponse(opSend, handle, resp)
	}

	var msg webhookMessage
	if err := json.Unmarshal(resp.Body, &msg); err != nil || msg.ID == "" {
		return handle, errorwrapper.NewRemoteError(opSend, resp.StatusCode, 0, "webhook response did not contain a message id")
	}

	handle.MessageID = msg.ID
	w.logger.Debug().Str("message_id", msg.ID).Msg("Webhook message created")
	return handle, nil
}

// Edit patches a message previously created by the same webhook.
func (w *WebhookMessenger) Edit(ctx context.Context, handle models.MessageHandle, content models.RenderedContent) error {
	endpoint, err := webhookEndpoint(handle.Destination, handle.MessageID)
	if err != nil {
		return err
	}

	// Username and avatar are fixed at creation and rejected on edit.
	resp, err := w.do(ctx, http.MethodPatch, endpoint, w.payload(content, false))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classifyWebhookResponse(opEdit, handle, resp)
	}

	w.logger.Debug().Str("message_id", handle.MessageID).Msg("Webhook message edited")
	return nil
}

// Start has nothing to connect for webhooks.
func (w *WebhookMessenger) Start(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

// Close is a no-op.
func (w *WebhookMessenger) Close() error {
	return nil
}

func (w *WebhookMessenger) payload(content models.RenderedContent, withIdentity bool) models.DiscordMessagePayload {
	builder := discord.NewDiscordMessagePayloadBuilder().WithRendered(content)
	if withIdentity {
		builder.WithUsername(w.username).WithAvatarURL(w.avatarURL)
	}
	return builder.Build()
}

func (w *WebhookMessenger) do(ctx context.Context, method, endpoint string, payload models.DiscordMessagePayload) (*httpclient.HTTPResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to marshal webhook payload")
	}

	resp, err := w.client.Do(&httpclient.HTTPRequest{
		URL:     endpoint,
		Method:  method,
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    bytes.NewReader(body),
		Context: ctx,
	})
	if err != nil {
		op := opSend
		if method == http.MethodPatch {
			op = opEdit
		}
		// The client error quotes the endpoint, which carries the webhook token.
		reason := "request failed"
		var transportErr *errorwrapper.TransportError
		if errors.As(err, &transportErr) {
			reason = transportErr.Reason
		}
		cause := fmt.Errorf("webhook %s %s: %s", method, models.RedactDestination(endpoint), reason)
		return nil, errorwrapper.NewRemoteTransientError(op, 0, 0, cause)
	}
	return resp, nil
}

// webhookEndpoint builds the execute URL (messageID empty) or the message URL.
func webhookEndpoint(webhookURL, messageID string) (string, error) {
	parsed, err := url.ParseRequestURI(webhookURL)
	if err != nil || parsed.Host == "" {
		return "", errorwrapper.NewValidationError("channel", webhookURL, "not a valid webhook URL")
	}

	query := parsed.Query()
	if messageID == "" {
		query.Set("wait", "true")
	} else {
		parsed.Path = strings.TrimSuffix(parsed.Path, "/") + "/messages/" + url.PathEscape(messageID)
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func classifyWebhookResponse(op string, handle models.MessageHandle, resp *httpclient.HTTPResponse) error {
	var apiErr webhookError
	_ = json.Unmarshal(resp.Body, &apiErr)

	retryAfter := time.Duration(apiErr.RetryAfter * float64(time.Second))
	if retryAfter == 0 {
		if seconds, err := time.ParseDuration(resp.Header("Retry-After") + "s"); err == nil {
			retryAfter = seconds
		}
	}

	cause := fmt.Errorf("discord webhook answered %d: %s", resp.StatusCode, strings.TrimSpace(string(resp.Body)))
	return classifyStatus(op, handle, resp.StatusCode, apiErr.Code, apiErr.Message, retryAfter, cause)
}
