package models

import (
	"strings"
)

// Status is the discrete operational state derived for a site on one check.
type Status string

const (
	StatusUp            Status = "up"
	StatusDown          Status = "down"
	StatusPartiallyUp   Status = "partially_up"
	StatusUnknownStatus Status = "unknown_status"
)

// AllStatuses lists every status in display order.
var AllStatuses = []Status{StatusUp, StatusPartiallyUp, StatusDown, StatusUnknownStatus}

// Label returns the human readable name of the status.
func (s Status) Label() string {
	switch s {
	case StatusUp:
		return "Up"
	case StatusDown:
		return "Down"
	case StatusPartiallyUp:
		return "Partially Up"
	case StatusUnknownStatus:
		return "Unknown Status"
	default:
		return string(s)
	}
}

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusUp, StatusDown, StatusPartiallyUp, StatusUnknownStatus:
		return true
	}
	return false
}

// ParseStatus accepts canonical values and display names ("Partially Up", "PARTIALLY_UP", "partially-up", "unknown").
func ParseStatus(raw string) (Status, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(key)

	switch key {
	case "up":
		return StatusUp, true
	case "down":
		return StatusDown, true
	case "partiallyup", "partial":
		return StatusPartiallyUp, true
	case "unknownstatus", "unknown":
		return StatusUnknownStatus, true
	}
	return "", false
}
