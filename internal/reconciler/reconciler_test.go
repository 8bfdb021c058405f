package reconciler

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aleister1102/sitewatch/internal/common/errorwrapper"
	"github.com/aleister1102/sitewatch/internal/config"
	"github.com/aleister1102/sitewatch/internal/models"
	"github.com/aleister1102/sitewatch/internal/render"
	"github.com/aleister1102/sitewatch/internal/store"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessenger struct {
	mu       sync.Mutex
	next     int
	sends    int
	edits    int
	messages map[string]models.RenderedContent
	sendErr  error
	editErr  error
	lastEdit models.MessageHandle
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{messages: make(map[string]models.RenderedContent)}
}

func (f *fakeMessenger) Send(_ context.Context, destination string, content models.RenderedContent) (models.MessageHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends++
	if f.sendErr != nil {
		return models.MessageHandle{}, f.sendErr
	}
	f.next++
	id := fmt.Sprintf("msg-%d", f.next)
	f.messages[id] = content
	return models.MessageHandle{Destination: destination, MessageID: id}, nil
}

func (f *fakeMessenger) Edit(_ context.Context, handle models.MessageHandle, content models.RenderedContent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits++
	f.lastEdit = handle
	if f.editErr != nil {
		return f.editErr
	}
	if _, ok := f.messages[handle.MessageID]; !ok {
		return errorwrapper.NewRemoteMessageNotFound(handle.Destination, handle.MessageID)
	}
	f.messages[handle.MessageID] = content
	return nil
}

func (f *fakeMessenger) deleteAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = make(map[string]models.RenderedContent)
}

func (f *fakeMessenger) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sends, f.edits
}

// failingStore wraps a real store and fails writes on demand.
type failingStore struct {
	StateStore
	putErr error
	getErr error
}

func (s *failingStore) Get(ctx context.Context, siteID string) (models.NotificationRecord, error) {
	if s.getErr != nil {
		return models.NotificationRecord{}, s.getErr
	}
	return s.StateStore.Get(ctx, siteID)
}

func (s *failingStore) Put(ctx context.Context, record models.NotificationRecord) error {
	if s.putErr != nil {
		return s.putErr
	}
	return s.StateStore.Put(ctx, record)
}

func newStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "state.sqlite3"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newRenderer(t *testing.T, mode string) *render.Renderer {
	t.Helper()
	r, err := render.NewRenderer(config.RenderConfig{OutputMode: mode})
	require.NoError(t, err)
	return r
}

func testSite() models.Site {
	return models.Site{
		Name:        "Docs",
		URL:         "https://docs.example.com",
		Destination: "chan-1",
		Rules:       models.RuleSet{ExpectedContent: "<head>", ExpectedStatus: 200},
	}
}

var checkedAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func probeAt(code int, body string, at time.Time) models.ProbeResult {
	return models.ProbeResult{Succeeded: true, StatusCode: code, Body: body, CheckedAt: at}
}

func upProbe(at time.Time) models.ProbeResult {
	return probeAt(200, "<html><head></head></html>", at)
}

func downProbe(at time.Time) models.ProbeResult {
	return probeAt(200, "maintenance", at)
}

func TestReconcile_FirstObservationCreates(t *testing.T) {
	st := newStore(t)
	messenger := newFakeMessenger()
	r := New(st, messenger, newRenderer(t, config.OutputModeEmbed), zerolog.Nop())

	result := r.Reconcile(context.Background(), testSite(), upProbe(checkedAt))

	require.Equal(t, models.OutcomeCreated, result.Outcome, result.Reason)
	assert.Equal(t, models.StatusUp, result.Status)
	assert.Equal(t, "chan-1", result.Handle.Destination)

	record, err := st.Get(context.Background(), testSite().ID())
	require.NoError(t, err)
	assert.Equal(t, result.Handle, record.Handle)
	assert.Equal(t, models.StatusUp, record.LastStatus)
	assert.Equal(t, checkedAt, record.StatusSince)
	assert.Equal(t, messenger.messages[result.Handle.MessageID].Hash(), record.LastRenderedHash)
}

func TestReconcile_UnchangedStatusMakesNoRemoteCalls(t *testing.T) {
	st := newStore(t)
	messenger := newFakeMessenger()
	r := New(st, messenger, newRenderer(t, config.OutputModeEmbed), zerolog.Nop())
	site := testSite()

	first := r.Reconcile(context.Background(), site, upProbe(checkedAt))
	require.Equal(t, models.OutcomeCreated, first.Outcome)
	before, err := st.Get(context.Background(), site.ID())
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		result := r.Reconcile(context.Background(), site, upProbe(checkedAt.Add(time.Duration(i)*time.Minute)))
		assert.Equal(t, models.OutcomeUnchanged, result.Outcome)
		assert.Equal(t, first.Handle, result.Handle)
	}

	sends, edits := messenger.calls()
	assert.Equal(t, 1, sends)
	assert.Equal(t, 0, edits)

	after, err := st.Get(context.Background(), site.ID())
	require.NoError(t, err)
	assert.Equal(t, before, after, "unchanged reconciles must not write the record")
}

func TestReconcile_StatusChangeEditsInPlace(t *testing.T) {
	st := newStore(t)
	messenger := newFakeMessenger()
	r := New(st, messenger, newRenderer(t, config.OutputModeMarkdown), zerolog.Nop())
	site := testSite()

	first := r.Reconcile(context.Background(), site, upProbe(checkedAt))
	require.Equal(t, models.OutcomeCreated, first.Outcome)

	later := checkedAt.Add(5 * time.Minute)
	result := r.Reconcile(context.Background(), site, downProbe(later))

	require.Equal(t, models.OutcomeUpdated, result.Outcome, result.Reason)
	assert.Equal(t, models.StatusDown, result.Status)
	assert.Equal(t, first.Handle, result.Handle)

	record, err := st.Get(context.Background(), site.ID())
	require.NoError(t, err)
	assert.Equal(t, models.StatusDown, record.LastStatus)
	assert.Equal(t, later, record.StatusSince)
	assert.Contains(t, messenger.messages[first.Handle.MessageID].Content, "DOWN")

	sends, edits := messenger.calls()
	assert.Equal(t, 1, sends)
	assert.Equal(t, 1, edits)
}

func TestReconcile_RenderingChangeEditsEvenWithSameStatus(t *testing.T) {
	st := newStore(t)
	messenger := newFakeMessenger()
	site := testSite()

	first := New(st, messenger, newRenderer(t, config.OutputModeRaw), zerolog.Nop()).
		Reconcile(context.Background(), site, upProbe(checkedAt))
	require.Equal(t, models.OutcomeCreated, first.Outcome)

	result := New(st, messenger, newRenderer(t, config.OutputModeEmbed), zerolog.Nop()).
		Reconcile(context.Background(), site, upProbe(checkedAt.Add(time.Minute)))
	assert.Equal(t, models.OutcomeUpdated, result.Outcome)
	assert.NotNil(t, messenger.messages[first.Handle.MessageID].Embed)
}

func TestReconcile_DeletedMessageIsRepaired(t *testing.T) {
	st := newStore(t)
	messenger := newFakeMessenger()
	r := New(st, messenger, newRenderer(t, config.OutputModeEmbed), zerolog.Nop())
	site := testSite()

	first := r.Reconcile(context.Background(), site, upProbe(checkedAt))
	require.Equal(t, models.OutcomeCreated, first.Outcome)

	messenger.deleteAll()

	result := r.Reconcile(context.Background(), site, downProbe(checkedAt.Add(time.Minute)))
	require.Equal(t, models.OutcomeRepaired, result.Outcome, result.Reason)
	assert.NotEqual(t, first.Handle.MessageID, result.Handle.MessageID)

	record, err := st.Get(context.Background(), site.ID())
	require.NoError(t, err)
	assert.Equal(t, result.Handle, record.Handle)
	assert.Equal(t, models.StatusDown, record.LastStatus)

	again := r.Reconcile(context.Background(), site, downProbe(checkedAt.Add(2*time.Minute)))
	assert.Equal(t, models.OutcomeUnchanged, again.Outcome)
}

func TestReconcile_TransientEditFailureLeavesRecord(t *testing.T) {
	st := newStore(t)
	messenger := newFakeMessenger()
	r := New(st, messenger, newRenderer(t, config.OutputModeEmbed), zerolog.Nop())
	site := testSite()

	require.Equal(t, models.OutcomeCreated, r.Reconcile(context.Background(), site, upProbe(checkedAt)).Outcome)
	before, err := st.Get(context.Background(), site.ID())
	require.NoError(t, err)

	messenger.editErr = errorwrapper.NewRemoteTransientError("edit", 429, 2*time.Second, nil)
	result := r.Reconcile(context.Background(), site, downProbe(checkedAt.Add(time.Minute)))

	assert.Equal(t, models.OutcomeFailed, result.Outcome)
	assert.True(t, result.Transient)
	assert.True(t, result.Failed())

	after, err := st.Get(context.Background(), site.ID())
	require.NoError(t, err)
	assert.Equal(t, before, after)

	sends, _ := messenger.calls()
	assert.Equal(t, 1, sends, "a transient failure must not create a second message")

	messenger.editErr = nil
	retry := r.Reconcile(context.Background(), site, downProbe(checkedAt.Add(2*time.Minute)))
	assert.Equal(t, models.OutcomeUpdated, retry.Outcome)
}

func TestReconcile_PermanentEditFailure(t *testing.T) {
	st := newStore(t)
	messenger := newFakeMessenger()
	r := New(st, messenger, newRenderer(t, config.OutputModeEmbed), zerolog.Nop())
	site := testSite()

	require.Equal(t, models.OutcomeCreated, r.Reconcile(context.Background(), site, upProbe(checkedAt)).Outcome)

	messenger.editErr = errorwrapper.NewRemoteError("edit", 403, 50013, "Missing Permissions")
	result := r.Reconcile(context.Background(), site, downProbe(checkedAt.Add(time.Minute)))

	assert.Equal(t, models.OutcomeFailed, result.Outcome)
	assert.False(t, result.Transient)
	assert.Contains(t, result.Reason, "Missing Permissions")
}

func TestReconcile_SendFailure(t *testing.T) {
	st := newStore(t)
	messenger := newFakeMessenger()
	messenger.sendErr = errorwrapper.NewRemoteTransientError("send", 503, 0, errors.New("unavailable"))
	r := New(st, messenger, newRenderer(t, config.OutputModeEmbed), zerolog.Nop())
	site := testSite()

	result := r.Reconcile(context.Background(), site, upProbe(checkedAt))
	assert.Equal(t, models.OutcomeFailed, result.Outcome)
	assert.True(t, result.Transient)

	_, err := st.Get(context.Background(), site.ID())
	assert.ErrorIs(t, err, errorwrapper.ErrNotFound)
}

func TestReconcile_PersistenceFailures(t *testing.T) {
	t.Run("get", func(t *testing.T) {
		messenger := newFakeMessenger()
		fs := &failingStore{StateStore: newStore(t), getErr: errors.New("database is locked")}
		r := New(fs, messenger, newRenderer(t, config.OutputModeEmbed), zerolog.Nop())

		result := r.Reconcile(context.Background(), testSite(), upProbe(checkedAt))
		assert.Equal(t, models.OutcomeFailed, result.Outcome)
		assert.True(t, errorwrapper.IsPersistence(result.Err))

		sends, edits := messenger.calls()
		assert.Zero(t, sends+edits, "no remote call when the record cannot be read")
	})

	t.Run("put", func(t *testing.T) {
		messenger := newFakeMessenger()
		fs := &failingStore{StateStore: newStore(t), putErr: errors.New("disk full")}
		r := New(fs, messenger, newRenderer(t, config.OutputModeEmbed), zerolog.Nop())

		result := r.Reconcile(context.Background(), testSite(), upProbe(checkedAt))
		assert.Equal(t, models.OutcomeFailed, result.Outcome)
		assert.True(t, errorwrapper.IsPersistence(result.Err))
		assert.Contains(t, result.Reason, "disk full")
	})
}

func TestReconcile_TransportFailureReportsDown(t *testing.T) {
	st := newStore(t)
	messenger := newFakeMessenger()
	r := New(st, messenger, newRenderer(t, config.OutputModeRaw), zerolog.Nop())

	probe := models.NewFailedProbe(errorwrapper.NewTransportError("https://docs.example.com", "timeout", context.DeadlineExceeded), checkedAt, 5*time.Second)
	result := r.Reconcile(context.Background(), testSite(), probe)

	require.Equal(t, models.OutcomeCreated, result.Outcome)
	assert.Equal(t, models.StatusDown, result.Status)
	assert.Contains(t, messenger.messages[result.Handle.MessageID].Content, "DOWN")
}

func TestReconcile_ConcurrentCallsForOneSiteCreateOnce(t *testing.T) {
	st := newStore(t)
	messenger := newFakeMessenger()
	r := New(st, messenger, newRenderer(t, config.OutputModeEmbed), zerolog.Nop())
	site := testSite()

	var wg sync.WaitGroup
	results := make([]models.ReconcileResult, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.Reconcile(context.Background(), site, upProbe(checkedAt))
		}(i)
	}
	wg.Wait()

	created := 0
	for _, result := range results {
		switch result.Outcome {
		case models.OutcomeCreated:
			created++
		default:
			assert.Equal(t, models.OutcomeUnchanged, result.Outcome)
		}
	}
	assert.Equal(t, 1, created)
	sends, _ := messenger.calls()
	assert.Equal(t, 1, sends)
}

func TestReconcile_ThrottleWaitBeyondDeadline(t *testing.T) {
	st := newStore(t)
	messenger := newFakeMessenger()
	r := New(st, messenger, newRenderer(t, config.OutputModeEmbed), zerolog.Nop(), WithThrottle(time.Hour))

	require.Equal(t, models.OutcomeCreated, r.Reconcile(context.Background(), testSite(), upProbe(checkedAt)).Outcome)

	other := testSite()
	other.Name = "Blog"
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	result := r.Reconcile(ctx, other, upProbe(checkedAt))
	assert.Equal(t, models.OutcomeFailed, result.Outcome)
	assert.True(t, result.Transient)
}

func TestReconcile_StableStatusRevalidatesDeletedMessage(t *testing.T) {
	st := newStore(t)
	messenger := newFakeMessenger()
	now := checkedAt
	r := New(st, messenger, newRenderer(t, config.OutputModeEmbed), zerolog.Nop(),
		WithClock(func() time.Time { return now }),
		WithRevalidateAfter(time.Hour))
	site := testSite()

	first := r.Reconcile(context.Background(), site, upProbe(checkedAt))
	require.Equal(t, models.OutcomeCreated, first.Outcome)

	now = checkedAt.Add(10 * time.Minute)
	quiet := r.Reconcile(context.Background(), site, upProbe(now))
	assert.Equal(t, models.OutcomeUnchanged, quiet.Outcome)
	sends, edits := messenger.calls()
	assert.Equal(t, 1, sends)
	assert.Zero(t, edits, "no remote call before the revalidation interval")

	now = checkedAt.Add(2 * time.Hour)
	confirmed := r.Reconcile(context.Background(), site, upProbe(now))
	assert.Equal(t, models.OutcomeUnchanged, confirmed.Outcome)
	assert.Equal(t, first.Handle, confirmed.Handle)
	_, edits = messenger.calls()
	assert.Equal(t, 1, edits)

	record, err := st.Get(context.Background(), site.ID())
	require.NoError(t, err)
	assert.True(t, record.UpdatedAt.Equal(now), "revalidation refreshes the record")

	messenger.deleteAll()
	now = checkedAt.Add(4 * time.Hour)
	repaired := r.Reconcile(context.Background(), site, upProbe(now))
	require.Equal(t, models.OutcomeRepaired, repaired.Outcome, repaired.Reason)
	assert.NotEqual(t, first.Handle.MessageID, repaired.Handle.MessageID)

	record, err = st.Get(context.Background(), site.ID())
	require.NoError(t, err)
	assert.Equal(t, repaired.Handle, record.Handle)
	assert.Equal(t, models.StatusUp, record.LastStatus)

	again := r.Reconcile(context.Background(), site, upProbe(now.Add(time.Minute)))
	assert.Equal(t, models.OutcomeUnchanged, again.Outcome)
	sends, _ = messenger.calls()
	assert.Equal(t, 2, sends)
}

func TestReconcile_FailedRecreateClearsStaleHandle(t *testing.T) {
	st := newStore(t)
	messenger := newFakeMessenger()
	r := New(st, messenger, newRenderer(t, config.OutputModeEmbed), zerolog.Nop())
	site := testSite()

	require.Equal(t, models.OutcomeCreated, r.Reconcile(context.Background(), site, upProbe(checkedAt)).Outcome)

	messenger.deleteAll()
	messenger.sendErr = errorwrapper.NewRemoteTransientError("send", 503, 0, errors.New("unavailable"))
	result := r.Reconcile(context.Background(), site, downProbe(checkedAt.Add(time.Minute)))
	require.Equal(t, models.OutcomeFailed, result.Outcome)
	assert.True(t, result.Transient)

	record, err := st.Get(context.Background(), site.ID())
	require.NoError(t, err)
	assert.False(t, record.HasHandle(), "the deleted message must not stay referenced")

	messenger.sendErr = nil
	retry := r.Reconcile(context.Background(), site, downProbe(checkedAt.Add(2*time.Minute)))
	require.Equal(t, models.OutcomeCreated, retry.Outcome, retry.Reason)

	_, edits := messenger.calls()
	assert.Equal(t, 1, edits, "the retry sends directly instead of editing the dead message")
}

func TestReconcile_SkipsSiteNoLongerConfigured(t *testing.T) {
	st := newStore(t)
	messenger := newFakeMessenger()
	configured := true
	r := New(st, messenger, newRenderer(t, config.OutputModeEmbed), zerolog.Nop(),
		WithSiteGuard(func(string) bool { return configured }))
	site := testSite()

	configured = false
	result := r.Reconcile(context.Background(), site, upProbe(checkedAt))
	assert.Equal(t, models.OutcomeSkipped, result.Outcome)
	assert.False(t, result.Failed())

	sends, edits := messenger.calls()
	assert.Zero(t, sends+edits)
	_, err := st.Get(context.Background(), site.ID())
	assert.ErrorIs(t, err, errorwrapper.ErrNotFound, "a removed site must not get its record back")

	configured = true
	assert.Equal(t, models.OutcomeCreated, r.Reconcile(context.Background(), site, upProbe(checkedAt)).Outcome)
}

func TestReconcile_WebhookTokenIsNotPersisted(t *testing.T) {
	const token = "s3cr3t-webhook-token"
	st := newStore(t)
	messenger := newFakeMessenger()
	r := New(st, messenger, newRenderer(t, config.OutputModeEmbed), zerolog.Nop())
	site := testSite()
	site.Destination = "https://discord.com/api/webhooks/123/" + token

	created := r.Reconcile(context.Background(), site, upProbe(checkedAt))
	require.Equal(t, models.OutcomeCreated, created.Outcome)
	assert.NotContains(t, created.SiteID, token)

	ids, err := st.ListSiteIDs(context.Background())
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.NotContains(t, ids[0], token)

	record, err := st.Get(context.Background(), site.ID())
	require.NoError(t, err)
	assert.NotContains(t, record.Handle.Destination, token)
	assert.Equal(t, created.Handle.MessageID, record.Handle.MessageID)

	updated := r.Reconcile(context.Background(), site, downProbe(checkedAt.Add(time.Minute)))
	require.Equal(t, models.OutcomeUpdated, updated.Outcome, updated.Reason)
	assert.Equal(t, site.Destination, messenger.lastEdit.Destination, "edits go to the configured webhook")
}
