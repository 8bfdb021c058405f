// Package store persists one notification record per monitored site.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aleister1102/sitewatch/internal/common/errorwrapper"
	"github.com/aleister1102/sitewatch/internal/models"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps notification records in a SQLite database.
// It is safe for concurrent use.
type SQLiteStore struct {
	db     *sql.DB
	locks  *SiteMutexManager
	logger zerolog.Logger
	now    func() time.Time
}

// NewSQLiteStore opens (creating if needed) the database at path and ensures the schema.
func NewSQLiteStore(path string, logger zerolog.Logger) (*SQLiteStore, error) {
	logger = logger.With().Str("component", "SQLiteStore").Logger()
	logger.Info().Str("db_path", path).Msg("Opening notification state database")

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errorwrapper.NewPersistenceError("open", "", fmt.Errorf("failed to create database directory %s: %w", dir, err))
		}
	}

	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errorwrapper.NewPersistenceError("open", "", fmt.Errorf("sql.Open failed for %s: %w", path, err))
	}
	// One connection: SQLite serializes writers anyway and this avoids SQLITE_BUSY between our own goroutines.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{
		db:     db,
		locks:  NewSiteMutexManager(logger),
		logger: logger,
		now:    time.Now,
	}

	if err := s.InitSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info().Str("db_path", path).Msg("Database initialized and schema verified")
	return s, nil
}

// InitSchema creates the notification_records table if it doesn't already exist.
func (s *SQLiteStore) InitSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS notification_records (
			site_identity      TEXT PRIMARY KEY,
			destination        TEXT NOT NULL DEFAULT '',
			message_id         TEXT,
			last_status        TEXT NOT NULL,
			last_rendered_hash TEXT NOT NULL,
			status_since       INTEGER NOT NULL,
			updated_at         INTEGER NOT NULL
		)`,
		// Two sites can never own the same remote message.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_notification_records_handle
			ON notification_records (destination, message_id)
			WHERE message_id IS NOT NULL`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			s.logger.Error().Err(err).Msg("Failed to initialize schema")
			return errorwrapper.NewPersistenceError("init schema", "", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Lock serializes all work on one site. The returned function releases it.
func (s *SQLiteStore) Lock(siteID string) func() {
	return s.locks.Lock(siteID)
}

// ForgetLocks releases bookkeeping for sites that are no longer configured.
func (s *SQLiteStore) ForgetLocks(activeSiteIDs []string) {
	s.locks.CleanupUnusedMutexes(activeSiteIDs)
}

// Get returns the record of a site, or an error matching errorwrapper.ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, siteID string) (models.NotificationRecord, error) {
	const query = `
	SELECT destination, message_id, last_status, last_rendered_hash, status_since, updated_at
	FROM notification_records WHERE site_identity = ?`

	var (
		destination string
		messageID   sql.NullString
		status      string
		hash        string
		since       int64
		updated     int64
	)
	err := s.db.QueryRowContext(ctx, query, siteID).Scan(&destination, &messageID, &status, &hash, &since, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return models.NotificationRecord{}, fmt.Errorf("record for site '%s': %w", siteID, errorwrapper.ErrNotFound)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("site", siteID).Msg("Failed to read notification record")
		return models.NotificationRecord{}, errorwrapper.NewPersistenceError("get", siteID, err)
	}

	record := models.NotificationRecord{
		SiteID:           siteID,
		LastStatus:       models.Status(status),
		LastRenderedHash: hash,
		StatusSince:      time.Unix(0, since).UTC(),
		UpdatedAt:        time.Unix(0, updated).UTC(),
	}
	if messageID.Valid {
		record.Handle = models.MessageHandle{Destination: destination, MessageID: messageID.String}
	}
	return record, nil
}

// Put inserts or replaces the record of a site in one transaction.
func (s *SQLiteStore) Put(ctx context.Context, record models.NotificationRecord) error {
	if record.SiteID == "" {
		return errorwrapper.NewPersistenceError("put", "", errors.New("record has no site identity"))
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = s.now()
	}

	var messageID sql.NullString
	if record.HasHandle() {
		messageID = sql.NullString{String: record.Handle.MessageID, Valid: true}
	}

	const upsert = `
	INSERT INTO notification_records
		(site_identity, destination, message_id, last_status, last_rendered_hash, status_since, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(site_identity) DO UPDATE SET
		destination = excluded.destination,
		message_id = excluded.message_id,
		last_status = excluded.last_status,
		last_rendered_hash = excluded.last_rendered_hash,
		status_since = excluded.status_since,
		updated_at = excluded.updated_at`

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errorwrapper.NewPersistenceError("put", record.SiteID, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, upsert,
		record.SiteID,
		record.Handle.Destination,
		messageID,
		string(record.LastStatus),
		record.LastRenderedHash,
		record.StatusSince.UnixNano(),
		record.UpdatedAt.UnixNano(),
	); err != nil {
		s.logger.Error().Err(err).Str("site", record.SiteID).Msg("Failed to write notification record")
		return errorwrapper.NewPersistenceError("put", record.SiteID, err)
	}

	if err := tx.Commit(); err != nil {
		return errorwrapper.NewPersistenceError("put", record.SiteID, err)
	}
	return nil
}

// Delete removes the record of a site. Deleting a missing record is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, siteID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM notification_records WHERE site_identity = ?`, siteID); err != nil {
		return errorwrapper.NewPersistenceError("delete", siteID, err)
	}
	return nil
}

// ListSiteIDs returns the identities of every stored record, sorted.
func (s *SQLiteStore) ListSiteIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT site_identity FROM notification_records ORDER BY site_identity`)
	if err != nil {
		return nil, errorwrapper.NewPersistenceError("list", "", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errorwrapper.NewPersistenceError("list", "", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, errorwrapper.NewPersistenceError("list", "", err)
	}
	return ids, nil
}

// PruneExcept deletes the records of every site not in keep and returns the deleted identities.
// Each delete holds the site lock, so it never interleaves with a reconcile of that site.
func (s *SQLiteStore) PruneExcept(ctx context.Context, keep []string) ([]string, error) {
	stored, err := s.ListSiteIDs(ctx)
	if err != nil {
		return nil, err
	}

	active := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		active[id] = struct{}{}
	}

	var removed []string
	for _, id := range stored {
		if _, ok := active[id]; ok {
			continue
		}
		unlock := s.locks.Lock(id)
		err := s.Delete(ctx, id)
		unlock()
		if err != nil {
			return removed, err
		}
		removed = append(removed, id)
	}

	if len(removed) > 0 {
		s.logger.Info().Int("removed", len(removed)).Msg("Pruned records of sites no longer configured")
	}
	return removed, nil
}
