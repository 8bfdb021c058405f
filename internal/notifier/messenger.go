// Package notifier delivers status messages to Discord.
package notifier

import (
	"context"
	"fmt"

	"github.com/aleister1102/sitewatch/internal/config"
	"github.com/aleister1102/sitewatch/internal/models"
	"github.com/rs/zerolog"
)

// Messenger creates and edits one status message.
type Messenger interface {
	Send(ctx context.Context, destination string, content models.RenderedContent) (models.MessageHandle, error)
	Edit(ctx context.Context, handle models.MessageHandle, content models.RenderedContent) error
	// Start connects whatever long-lived session the transport needs and blocks until ctx ends.
	Start(ctx context.Context) error
	Close() error
}

// NewMessenger builds the messenger selected by cfg.Transport.
func NewMessenger(cfg config.NotificationConfig, logger zerolog.Logger) (Messenger, error) {
	switch cfg.Transport {
	case "", config.TransportBot:
		return NewBotMessenger(cfg, logger)
	case config.TransportWebhook:
		return NewWebhookMessenger(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown notification transport '%s'", cfg.Transport)
	}
}
