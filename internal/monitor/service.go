// Package monitor drives periodic probing and reconciliation of every site.
package monitor

import (
	"context"
	"sync"

	"github.com/aleister1102/sitewatch/internal/metrics"
	"github.com/aleister1102/sitewatch/internal/models"
	"github.com/rs/zerolog"
)

// Prober fetches a site.
type Prober interface {
	Probe(ctx context.Context, site models.Site) models.ProbeResult
}

// SiteReconciler brings a site's status message in line with a probe.
type SiteReconciler interface {
	Reconcile(ctx context.Context, site models.Site, probe models.ProbeResult) models.ReconcileResult
}

// RecordPruner removes state of sites that left the configuration.
type RecordPruner interface {
	PruneExcept(ctx context.Context, keep []string) ([]string, error)
	ForgetLocks(activeSiteIDs []string)
}

// MonitoringService holds the site set and checks individual sites.
type MonitoringService struct {
	prober     Prober
	reconciler SiteReconciler
	records    RecordPruner
	metrics    *metrics.Recorder
	logger     zerolog.Logger

	sitesMutex sync.RWMutex
	sites      []models.Site
	siteIDs    map[string]struct{}
}

// NewMonitoringService creates a new instance of MonitoringService.
// recorder may be nil.
func NewMonitoringService(prober Prober, reconciler SiteReconciler, records RecordPruner, recorder *metrics.Recorder, logger zerolog.Logger) *MonitoringService {
	return &MonitoringService{
		prober:     prober,
		reconciler: reconciler,
		records:    records,
		metrics:    recorder,
		logger:     logger.With().Str("component", "MonitoringService").Logger(),
	}
}

// SetSites replaces the site set without touching stored records.
func (s *MonitoringService) SetSites(sites []models.Site) {
	copied := append([]models.Site(nil), sites...)
	ids := make(map[string]struct{}, len(copied))
	for _, site := range copied {
		ids[site.ID()] = struct{}{}
	}

	s.sitesMutex.Lock()
	s.sites = copied
	s.siteIDs = ids
	s.sitesMutex.Unlock()

	s.metrics.SetMonitoredSites(len(copied))
}

// UpdateSites swaps in a reloaded site list and deletes the records of
// sites that are no longer configured.
func (s *MonitoringService) UpdateSites(ctx context.Context, sites []models.Site) {
	previous := s.Sites()
	s.SetSites(sites)

	added, removed := diffSites(previous, sites)
	s.logger.Info().
		Int("sites", len(sites)).
		Int("added", len(added)).
		Int("removed", len(removed)).
		Msg("Site list updated")

	if len(removed) > 0 {
		if _, err := s.PruneRemovedSites(ctx); err != nil {
			s.logger.Error().Err(err).Msg("Failed to prune records of removed sites")
		}
	}
}

// PruneRemovedSites deletes records of every site not in the current set.
func (s *MonitoringService) PruneRemovedSites(ctx context.Context) ([]string, error) {
	if s.records == nil {
		return nil, nil
	}
	keep := models.SiteIDs(s.Sites())

	pruned, err := s.records.PruneExcept(ctx, keep)
	if err != nil {
		return nil, err
	}
	s.records.ForgetLocks(keep)

	for _, siteID := range pruned {
		s.logger.Info().Str("site_id", siteID).Msg("Removed notification record of unconfigured site")
	}
	return pruned, nil
}

// Sites returns a copy of the current site set.
func (s *MonitoringService) Sites() []models.Site {
	s.sitesMutex.RLock()
	defer s.sitesMutex.RUnlock()
	return append([]models.Site(nil), s.sites...)
}

// IsConfigured reports whether siteID belongs to the current site set.
func (s *MonitoringService) IsConfigured(siteID string) bool {
	s.sitesMutex.RLock()
	defer s.sitesMutex.RUnlock()
	_, ok := s.siteIDs[siteID]
	return ok
}

// checkSite probes then reconciles one site. Failures are logged and
// counted, never propagated.
func (s *MonitoringService) checkSite(ctx context.Context, site models.Site) models.ReconcileResult {
	log := s.logger.With().Str("site", site.Name).Str("url", site.URL).Logger()
	log.Debug().Msg("Checking site")

	probe := s.prober.Probe(ctx, site)
	result := s.reconciler.Reconcile(ctx, site, probe)

	s.metrics.ObserveProbe(result.Status, probe.Duration)
	s.metrics.ObserveOutcome(result.Outcome)

	event := log.Info()
	if result.Failed() {
		event = log.Warn().Bool("transient", result.Transient).Str("reason", result.Reason)
	}
	event.
		Str("status", string(result.Status)).
		Str("outcome", string(result.Outcome)).
		Int("http_status", probe.StatusCode).
		Dur("duration", probe.Duration).
		Msg("Site checked")

	return result
}

func diffSites(previous, current []models.Site) (added, removed []string) {
	before := make(map[string]struct{}, len(previous))
	for _, site := range previous {
		before[site.ID()] = struct{}{}
	}
	after := make(map[string]struct{}, len(current))
	for _, site := range current {
		id := site.ID()
		after[id] = struct{}{}
		if _, ok := before[id]; !ok {
			added = append(added, id)
		}
	}
	for id := range before {
		if _, ok := after[id]; !ok {
			removed = append(removed, id)
		}
	}
	return added, removed
}
