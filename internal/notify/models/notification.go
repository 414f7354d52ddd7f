package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification types emitted by the request workflow.
const (
	TypeInfoUpdateApproved = "info_update_approved"
	TypeInfoUpdateRejected = "info_update_rejected"
)

// Priority levels.
const (
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

// Delivery status.
const (
	StatusUnread = "unread"
	StatusRead   = "read"
)

// Notification is an outbound message informing a resident of an outcome.
// Created once per terminal decision and never mutated by the workflow core;
// the resident-facing inbox flips Status to read.
type Notification struct {
	ID           uuid.UUID
	Type         string
	Title        string
	Message      string
	TargetRole   string
	TargetUserID uuid.UUID
	RequestID    uuid.UUID
	Priority     string
	Status       string
	// Data echoes the originating request's fields for traceability.
	Data      map[string]string
	CreatedAt time.Time
}
