// Package reconciler keeps exactly one live status message per site.
package reconciler

import (
	"context"
	"errors"
	"time"

	"github.com/aleister1102/sitewatch/internal/classifier"
	"github.com/aleister1102/sitewatch/internal/common/errorwrapper"
	"github.com/aleister1102/sitewatch/internal/models"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Reconciler drives the create-or-edit protocol for status messages.
type Reconciler struct {
	store         StateStore
	messenger     Messenger
	renderer      Renderer
	logger        zerolog.Logger
	throttle      *rate.Limiter
	remoteTimeout time.Duration
	revalidate    time.Duration
	isConfigured  func(siteID string) bool
	now           func() time.Time
}

// errSiteRemoved is reported when a site leaves the configuration mid-cycle.
var errSiteRemoved = errors.New("site is no longer configured")

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithThrottle spaces remote calls by at least delay. Zero disables throttling.
func WithThrottle(delay time.Duration) Option {
	return func(r *Reconciler) {
		if delay > 0 {
			r.throttle = rate.NewLimiter(rate.Every(delay), 1)
		}
	}
}

// WithRemoteTimeout bounds every send and edit call.
func WithRemoteTimeout(timeout time.Duration) Option {
	return func(r *Reconciler) {
		r.remoteTimeout = timeout
	}
}

// WithRevalidateAfter re-sends an unchanged message once its record is older
// than after, so a message deleted while the status is stable gets repaired.
// Zero disables revalidation.
func WithRevalidateAfter(after time.Duration) Option {
	return func(r *Reconciler) {
		r.revalidate = after
	}
}

// WithSiteGuard is consulted under the site lock before any remote call or
// write. Sites for which it returns false are skipped.
func WithSiteGuard(isConfigured func(siteID string) bool) Option {
	return func(r *Reconciler) {
		r.isConfigured = isConfigured
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) {
		r.now = now
	}
}

// New creates a Reconciler.
func New(store StateStore, messenger Messenger, renderer Renderer, logger zerolog.Logger, opts ...Option) *Reconciler {
	r := &Reconciler{
		store:     store,
		messenger: messenger,
		renderer:  renderer,
		logger:    logger.With().Str("component", "Reconciler").Logger(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile classifies the probe and brings the site's remote message in line
// with it. It never panics or returns an error: failures are reported in the result.
func (r *Reconciler) Reconcile(ctx context.Context, site models.Site, probe models.ProbeResult) models.ReconcileResult {
	siteID := site.ID()
	status := classifier.Classify(probe, site.Rules)
	log := r.logger.With().Str("site", site.Name).Str("url", site.URL).Str("status", string(status)).Logger()

	unlock := r.store.Lock(siteID)
	defer unlock()

	if r.isConfigured != nil && !r.isConfigured(siteID) {
		log.Debug().Msg("Site left the configuration, skipping")
		return models.ReconcileResult{SiteID: siteID, Outcome: models.OutcomeSkipped, Status: status, Reason: errSiteRemoved.Error()}
	}

	record, found, err := r.load(ctx, siteID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load notification record")
		return failed(siteID, status, "load record", err)
	}
	if record.HasHandle() {
		// Stored destinations are redacted; the configured one is authoritative.
		record.Handle.Destination = site.Destination
	}

	since := r.statusSince(record, found, status, probe)
	content, err := r.renderer.Render(models.StatusReport{Site: site, Status: status, Since: since})
	if err != nil {
		log.Error().Err(err).Msg("Failed to render status message")
		return failed(siteID, status, "render", err)
	}
	hash := content.Hash()

	next := models.NotificationRecord{
		SiteID:           siteID,
		LastStatus:       status,
		LastRenderedHash: hash,
		StatusSince:      since,
	}

	if !found || !record.HasHandle() {
		return r.create(ctx, log, site, next, models.OutcomeCreated, content)
	}

	unchanged := record.LastRenderedHash == hash
	if unchanged && !r.due(record) {
		log.Debug().Msg("Status message unchanged")
		return models.ReconcileResult{SiteID: siteID, Outcome: models.OutcomeUnchanged, Status: status, Handle: record.Handle}
	}

	err = r.edit(ctx, record.Handle, content)
	switch {
	case err == nil:
		next.Handle = record.Handle
		if perr := r.save(ctx, next); perr != nil {
			log.Error().Err(perr).Msg("Message edited but record could not be saved")
			return failed(siteID, status, "save record", perr)
		}
		if unchanged {
			log.Debug().Str("message_id", record.Handle.MessageID).Msg("Status message revalidated")
			return models.ReconcileResult{SiteID: siteID, Outcome: models.OutcomeUnchanged, Status: status, Handle: record.Handle}
		}
		log.Info().Str("message_id", record.Handle.MessageID).Msg("Status message updated")
		return models.ReconcileResult{SiteID: siteID, Outcome: models.OutcomeUpdated, Status: status, Handle: record.Handle}

	case errorwrapper.IsRemoteNotFound(err):
		log.Warn().Str("message_id", record.Handle.MessageID).Msg("Status message was deleted remotely, recreating it")
		// Drop the dead handle first so a failed send does not leave it stored.
		cleared := next
		cleared.Handle = models.MessageHandle{}
		if perr := r.save(ctx, cleared); perr != nil {
			log.Error().Err(perr).Msg("Failed to clear handle of deleted message")
			return failed(siteID, status, "save record", perr)
		}
		return r.create(ctx, log, site, next, models.OutcomeRepaired, content)

	case errorwrapper.IsTransient(err):
		log.Warn().Err(err).Msg("Transient failure editing status message, will retry next cycle")
		return failed(siteID, status, "edit", err)

	default:
		log.Error().Err(err).Msg("Failed to edit status message")
		return failed(siteID, status, "edit", err)
	}
}

// create sends a new message and stores its handle. outcome is Created or Repaired.
func (r *Reconciler) create(ctx context.Context, log zerolog.Logger, site models.Site, next models.NotificationRecord, outcome models.ReconcileOutcome, content models.RenderedContent) models.ReconcileResult {
	handle, err := r.send(ctx, site.Destination, content)
	if err != nil {
		if errorwrapper.IsTransient(err) {
			log.Warn().Err(err).Msg("Transient failure sending status message, will retry next cycle")
		} else {
			log.Error().Err(err).Msg("Failed to send status message")
		}
		return failed(next.SiteID, next.LastStatus, "send", err)
	}

	next.Handle = handle
	if err := r.save(ctx, next); err != nil {
		// The message exists remotely but nothing points at it; the next cycle
		// will send another one.
		log.Error().Err(err).Str("message_id", handle.MessageID).Msg("Message sent but record could not be saved")
		return failed(next.SiteID, next.LastStatus, "save record", err)
	}

	log.Info().Str("message_id", handle.MessageID).Str("outcome", string(outcome)).Msg("Status message sent")
	return models.ReconcileResult{SiteID: next.SiteID, Outcome: outcome, Status: next.LastStatus, Handle: handle}
}

func (r *Reconciler) load(ctx context.Context, siteID string) (models.NotificationRecord, bool, error) {
	record, err := r.store.Get(ctx, siteID)
	if err == nil {
		return record, true, nil
	}
	if errors.Is(err, errorwrapper.ErrNotFound) {
		return models.NotificationRecord{}, false, nil
	}
	if !errorwrapper.IsPersistence(err) {
		err = errorwrapper.NewPersistenceError("get", siteID, err)
	}
	return models.NotificationRecord{}, false, err
}

// due reports whether an unchanged message should be re-sent to confirm it still exists.
func (r *Reconciler) due(record models.NotificationRecord) bool {
	return r.revalidate > 0 && r.now().Sub(record.UpdatedAt) >= r.revalidate
}

func (r *Reconciler) save(ctx context.Context, record models.NotificationRecord) error {
	record.UpdatedAt = r.now()
	if record.HasHandle() {
		record.Handle.Destination = models.RedactDestination(record.Handle.Destination)
	}
	if err := r.store.Put(ctx, record); err != nil {
		if !errorwrapper.IsPersistence(err) {
			err = errorwrapper.NewPersistenceError("put", record.SiteID, err)
		}
		return err
	}
	return nil
}

// statusSince carries the first-seen time of an unchanged status forward so
// that identical checks render identical messages.
func (r *Reconciler) statusSince(record models.NotificationRecord, found bool, status models.Status, probe models.ProbeResult) time.Time {
	if found && record.LastStatus == status && !record.StatusSince.IsZero() {
		return record.StatusSince
	}
	if !probe.CheckedAt.IsZero() {
		return probe.CheckedAt.UTC()
	}
	return r.now().UTC()
}

func (r *Reconciler) send(ctx context.Context, destination string, content models.RenderedContent) (models.MessageHandle, error) {
	callCtx, cancel, err := r.remoteContext(ctx)
	if err != nil {
		return models.MessageHandle{}, err
	}
	defer cancel()
	return r.messenger.Send(callCtx, destination, content)
}

func (r *Reconciler) edit(ctx context.Context, handle models.MessageHandle, content models.RenderedContent) error {
	callCtx, cancel, err := r.remoteContext(ctx)
	if err != nil {
		return err
	}
	defer cancel()
	return r.messenger.Edit(callCtx, handle, content)
}

// remoteContext waits for the throttle and applies the per-call timeout.
func (r *Reconciler) remoteContext(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if r.throttle != nil {
		if err := r.throttle.Wait(ctx); err != nil {
			return nil, nil, errorwrapper.NewRemoteTransientError("throttle", 0, 0, err)
		}
	}
	if r.remoteTimeout > 0 {
		callCtx, cancel := context.WithTimeout(ctx, r.remoteTimeout)
		return callCtx, cancel, nil
	}
	return ctx, func() {}, nil
}

func failed(siteID string, status models.Status, step string, err error) models.ReconcileResult {
	return models.ReconcileResult{
		SiteID:    siteID,
		Outcome:   models.OutcomeFailed,
		Status:    status,
		Reason:    step + ": " + err.Error(),
		Transient: errorwrapper.IsTransient(err),
		Err:       err,
	}
}
