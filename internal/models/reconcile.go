package models

import "time"

// ReconcileOutcome describes what one reconciliation did to the remote message.
type ReconcileOutcome string

const (
	OutcomeCreated   ReconcileOutcome = "created"
	OutcomeUpdated   ReconcileOutcome = "updated"
	OutcomeUnchanged ReconcileOutcome = "unchanged"
	OutcomeRepaired  ReconcileOutcome = "repaired"
	OutcomeFailed    ReconcileOutcome = "failed"
	// OutcomeSkipped means the site left the configuration before it was reconciled.
	OutcomeSkipped   ReconcileOutcome = "skipped"
)

// ReconcileResult is returned for every site on every cycle.
type ReconcileResult struct {
	SiteID    string
	Outcome   ReconcileOutcome
	Status    Status
	Handle    MessageHandle
	Reason    string
	Transient bool
	Err       error
}

// Failed reports whether the reconciliation did not converge this cycle.
func (r ReconcileResult) Failed() bool {
	return r.Outcome == OutcomeFailed
}

// StatusReport is everything the renderer needs to draw one status message.
type StatusReport struct {
	Site   Site
	Status Status
	Since  time.Time
}
