package config

import (
	"context"
	"crypto/sha256"
	"fmt"
	"path/filepath"
	"time"

	"github.com/aleister1102/sitewatch/internal/models"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultReloadDelay debounces bursts of write events from editors.
const DefaultReloadDelay = 500 * time.Millisecond

// SitesWatcher reloads the sites file when it changes on disk.
// A file that fails to load is logged and the previous site list stays active.
type SitesWatcher struct {
	path        string
	logger      zerolog.Logger
	reloadDelay time.Duration
	onChange    func([]models.Site)
	lastDigest  [sha256.Size]byte
}

// NewSitesWatcher creates a watcher for path. onChange runs on the watcher's goroutine.
func NewSitesWatcher(path string, onChange func([]models.Site), logger zerolog.Logger) *SitesWatcher {
	return &SitesWatcher{
		path:        filepath.Clean(path),
		logger:      logger.With().Str("component", "SitesWatcher").Str("path", path).Logger(),
		reloadDelay: DefaultReloadDelay,
		onChange:    onChange,
	}
}

// WithReloadDelay overrides the debounce delay.
func (w *SitesWatcher) WithReloadDelay(d time.Duration) *SitesWatcher {
	w.reloadDelay = d
	return w
}

// Run blocks until ctx is cancelled.
func (w *SitesWatcher) Run(ctx context.Context) error {
	if data, err := readConfigFile(w.path); err == nil {
		w.lastDigest = sha256.Sum256(data)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Watching the directory survives editors that save by renaming a temp file over the original.
	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch sites directory '%s': %w", dir, err)
	}
	w.logger.Info().Msg("Watching sites file for changes")

	reloadTimer := time.NewTimer(0)
	if !reloadTimer.Stop() {
		<-reloadTimer.C
	}
	defer reloadTimer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("Sites watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.logger.Debug().Str("op", event.Op.String()).Msg("Sites file change detected")
			reloadTimer.Reset(w.reloadDelay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error().Err(err).Msg("File watcher error")

		case <-reloadTimer.C:
			w.reload()
		}
	}
}

func (w *SitesWatcher) reload() {
	data, err := readConfigFile(w.path)
	if err != nil {
		w.logger.Error().Err(err).Msg("Failed to read sites file, keeping previous sites")
		return
	}

	digest := sha256.Sum256(data)
	if digest == w.lastDigest {
		w.logger.Debug().Msg("Sites file content unchanged, skipping reload")
		return
	}

	sites, err := ParseSites(data, w.path)
	if err != nil {
		w.logger.Error().Err(err).Msg("Sites reload failed, keeping previous sites")
		return
	}

	w.lastDigest = digest
	w.logger.Info().Int("sites", len(sites)).Msg("Sites file reloaded")
	w.onChange(sites)
}
