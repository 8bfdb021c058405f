package models

import "time"

// MessageHandle identifies one remote message. It is a weak reference: the
// remote side may delete the message at any time.
type MessageHandle struct {
	Destination string `json:"destination"`
	MessageID   string `json:"message_id"`
}

// IsZero reports whether the handle points at no message.
func (h MessageHandle) IsZero() bool {
	return h.MessageID == ""
}

// NotificationRecord is the persisted state of the status message for one site.
type NotificationRecord struct {
	SiteID           string
	Handle           MessageHandle
	LastStatus       Status
	LastRenderedHash string
	// StatusSince is when LastStatus was first observed; it feeds the rendered "Last updated" line.
	StatusSince time.Time
	UpdatedAt   time.Time
}

// HasHandle reports whether the record references a remote message.
func (r NotificationRecord) HasHandle() bool {
	return !r.Handle.IsZero()
}
