package reconciler

import (
	"context"

	"github.com/aleister1102/sitewatch/internal/models"
)

// Messenger creates and edits remote status messages.
// Edit must return an error matching errorwrapper.ErrRemoteMessageNotFound when
// the message is gone, and one matching errorwrapper.ErrRemoteTransient for
// rate limits and other failures worth retrying later.
type Messenger interface {
	Send(ctx context.Context, destination string, content models.RenderedContent) (models.MessageHandle, error)
	Edit(ctx context.Context, handle models.MessageHandle, content models.RenderedContent) error
}

// StateStore persists one record per site and serializes work per site.
// Get must return an error matching errorwrapper.ErrNotFound for unknown sites.
type StateStore interface {
	Lock(siteID string) (unlock func())
	Get(ctx context.Context, siteID string) (models.NotificationRecord, error)
	Put(ctx context.Context, record models.NotificationRecord) error
}

// Renderer draws a status report.
type Renderer interface {
	Render(report models.StatusReport) (models.RenderedContent, error)
}
