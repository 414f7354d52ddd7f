// Package events emits domain events for downstream consumers (dashboards,
// SMS fan-out). Emission is best-effort: a lost event never fails the
// operation that produced it.
package events

import (
	"context"
	"time"
)

// Event types produced by the records core.
const (
	EventControlNumberIssued = "control_number_issued"
	EventRequestApproved     = "request_approved"
	EventRequestRejected     = "request_rejected"
	EventNotificationCreated = "notification_created"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so publishers can fan out.
type Event struct {
	Type         string            `json:"type"`
	OccurredAt   time.Time         `json:"occurred_at"`
	AdminID      string            `json:"admin_id,omitempty"`
	RequestID    string            `json:"request_id,omitempty"`
	ResidentID   string            `json:"resident_id,omitempty"`
	DocumentType string            `json:"document_type,omitempty"`
	Data         map[string]string `json:"data,omitempty"`
}

// Publisher delivers events to an external sink.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
	Close()
}
