package store

import (
	"sync"

	"github.com/rs/zerolog"
)

// SiteMutexManager hands out one mutex per site identity so that work on a
// single site is serialized while different sites proceed in parallel.
type SiteMutexManager struct {
	logger   zerolog.Logger
	mutexes  map[string]*sync.Mutex
	mapMutex sync.RWMutex
}

// NewSiteMutexManager creates a new SiteMutexManager
func NewSiteMutexManager(logger zerolog.Logger) *SiteMutexManager {
	return &SiteMutexManager{
		logger:  logger.With().Str("component", "SiteMutexManager").Logger(),
		mutexes: make(map[string]*sync.Mutex),
	}
}

// GetMutex gets or creates the mutex of a site using double-checked locking
func (smm *SiteMutexManager) GetMutex(siteID string) *sync.Mutex {
	smm.mapMutex.RLock()
	mutex := smm.mutexes[siteID]
	smm.mapMutex.RUnlock()
	if mutex != nil {
		return mutex
	}

	smm.mapMutex.Lock()
	defer smm.mapMutex.Unlock()

	// Another goroutine might have created it in between.
	if mutex, exists := smm.mutexes[siteID]; exists {
		return mutex
	}
	mutex = &sync.Mutex{}
	smm.mutexes[siteID] = mutex
	return mutex
}

// Lock acquires the site's mutex and returns its release function.
func (smm *SiteMutexManager) Lock(siteID string) func() {
	mutex := smm.GetMutex(siteID)
	mutex.Lock()
	return mutex.Unlock
}

// CleanupUnusedMutexes drops mutexes of sites that are no longer monitored.
// A mutex that is currently held is kept until the next cleanup.
func (smm *SiteMutexManager) CleanupUnusedMutexes(activeSiteIDs []string) int {
	active := make(map[string]struct{}, len(activeSiteIDs))
	for _, id := range activeSiteIDs {
		active[id] = struct{}{}
	}

	smm.mapMutex.Lock()
	defer smm.mapMutex.Unlock()

	removed := 0
	for id, mutex := range smm.mutexes {
		if _, isActive := active[id]; isActive {
			continue
		}
		if !mutex.TryLock() {
			continue
		}
		delete(smm.mutexes, id)
		mutex.Unlock()
		removed++
	}

	if removed > 0 {
		smm.logger.Debug().
			Int("removed_mutexes", removed).
			Int("remaining_mutexes", len(smm.mutexes)).
			Msg("Cleaned up unused site mutexes")
	}
	return removed
}

// GetMutexCount returns the current number of mutexes
func (smm *SiteMutexManager) GetMutexCount() int {
	smm.mapMutex.RLock()
	defer smm.mapMutex.RUnlock()
	return len(smm.mutexes)
}
