package monitor

import (
	"sync"
	"time"

	"github.com/aleister1102/sitewatch/internal/models"
	"github.com/google/uuid"
)

// CycleSummary describes one finished monitoring cycle.
type CycleSummary struct {
	CycleID   string
	Checked   int
	Skipped   int
	Outcomes  map[models.ReconcileOutcome]int
	Statuses  map[models.Status]int
	Failures  []string // site IDs whose reconcile failed
	StartedAt time.Time
	Duration  time.Duration
}

// CycleTracker counts cycles and aggregates results within the current one.
type CycleTracker struct {
	mutex          sync.RWMutex
	maxCycles      int
	currentCycle   int
	currentCycleID string
	startedAt      time.Time
	skipped        int
	outcomes       map[models.ReconcileOutcome]int
	statuses       map[models.Status]int
	failures       []string
	now            func() time.Time
}

// NewCycleTracker creates a tracker. maxCycles 0 means run indefinitely.
func NewCycleTracker(maxCycles int) *CycleTracker {
	return &CycleTracker{
		maxCycles: maxCycles,
		outcomes:  make(map[models.ReconcileOutcome]int),
		statuses:  make(map[models.Status]int),
		now:       time.Now,
	}
}

// StartCycle begins a new cycle, increments the counter and returns its ID.
func (ct *CycleTracker) StartCycle() string {
	ct.mutex.Lock()
	defer ct.mutex.Unlock()

	ct.currentCycle++
	ct.currentCycleID = "cycle-" + uuid.NewString()[:8]
	ct.startedAt = ct.now()
	ct.skipped = 0
	ct.outcomes = make(map[models.ReconcileOutcome]int)
	ct.statuses = make(map[models.Status]int)
	ct.failures = nil
	return ct.currentCycleID
}

// RecordResult adds a reconcile result to the current cycle.
func (ct *CycleTracker) RecordResult(result models.ReconcileResult) {
	ct.mutex.Lock()
	defer ct.mutex.Unlock()

	ct.outcomes[result.Outcome]++
	if result.Status != "" {
		ct.statuses[result.Status]++
	}
	if result.Failed() {
		ct.failures = append(ct.failures, result.SiteID)
	}
}

// RecordSkip counts a site left out of the current cycle.
func (ct *CycleTracker) RecordSkip() {
	ct.mutex.Lock()
	defer ct.mutex.Unlock()
	ct.skipped++
}

// EndCycle returns the summary of the current cycle.
func (ct *CycleTracker) EndCycle() CycleSummary {
	ct.mutex.RLock()
	defer ct.mutex.RUnlock()

	checked := 0
	outcomes := make(map[models.ReconcileOutcome]int, len(ct.outcomes))
	for outcome, n := range ct.outcomes {
		outcomes[outcome] = n
		checked += n
	}
	statuses := make(map[models.Status]int, len(ct.statuses))
	for status, n := range ct.statuses {
		statuses[status] = n
	}

	return CycleSummary{
		CycleID:   ct.currentCycleID,
		Checked:   checked,
		Skipped:   ct.skipped,
		Outcomes:  outcomes,
		Statuses:  statuses,
		Failures:  append([]string(nil), ct.failures...),
		StartedAt: ct.startedAt,
		Duration:  ct.now().Sub(ct.startedAt),
	}
}

// ShouldContinue returns false if the maximum number of cycles has been reached.
func (ct *CycleTracker) ShouldContinue() bool {
	ct.mutex.RLock()
	defer ct.mutex.RUnlock()
	if ct.maxCycles == 0 {
		return true
	}
	return ct.currentCycle < ct.maxCycles
}

// GetCurrentCycleID returns the current cycle ID
func (ct *CycleTracker) GetCurrentCycleID() string {
	ct.mutex.RLock()
	defer ct.mutex.RUnlock()
	return ct.currentCycleID
}

// CycleCount returns how many cycles have started.
func (ct *CycleTracker) CycleCount() int {
	ct.mutex.RLock()
	defer ct.mutex.RUnlock()
	return ct.currentCycle
}
