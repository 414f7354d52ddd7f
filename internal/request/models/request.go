package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status of a pending request. The workflow engine owns the pending →
// approved|rejected transition; completed is set by a later archival step
// outside this engine.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
)

// Terminal reports whether the engine may no longer transition the request.
func (s Status) Terminal() bool {
	return s != StatusPending
}

// RequestType discriminates resident-submitted request kinds.
type RequestType string

const (
	TypeInfoUpdate RequestType = "info_update_request"
)

// PendingRequest is a resident-submitted change request awaiting an admin
// decision. Once Status leaves pending, RequestedChanges and OriginalData are
// immutable and serve only display and audit.
type PendingRequest struct {
	ID         uuid.UUID
	Type       RequestType
	Status     Status
	ResidentID uuid.UUID
	// RequestedChanges maps field name to proposed value; address arrives as
	// a nested object from the submission form.
	RequestedChanges map[string]any
	// OriginalData snapshots the same fields at submission time for diffing.
	OriginalData map[string]any
	RequestedBy  string
	RequestedAt  time.Time
	DecidedBy    string
	DecidedAt    time.Time
}

// DecisionResult is returned to the caller after a terminal decision.
// Warnings carry non-fatal secondary failures (status write, notification) so
// the UI can show a success with a warning instead of a failure.
type DecisionResult struct {
	Status   Status   `json:"status"`
	Warnings []string `json:"warnings"`
}

// BuildResidentUpdate converts requested changes into the field-update payload
// for the resident store:
//
//   - phone is the submission form's name for contactNumber; rename it unless
//     contactNumber was also provided.
//   - an address object whose values are all blank carries no change and is
//     dropped; otherwise its street/city land in the flat address fields.
func BuildResidentUpdate(changes map[string]any) (map[string]any, error) {
	payload := make(map[string]any, len(changes))
	for name, value := range changes {
		payload[name] = value
	}

	if phone, ok := payload["phone"]; ok {
		if _, hasContact := payload["contactNumber"]; !hasContact {
			payload["contactNumber"] = phone
		}
		delete(payload, "phone")
	}

	if raw, ok := payload["address"]; ok {
		delete(payload, "address")
		addr, isMap := raw.(map[string]any)
		if !isMap {
			return nil, fmt.Errorf("address must be an object, got %T", raw)
		}
		if !addressEmpty(addr) {
			if street, ok := addr["street"]; ok {
				payload["addressStreet"] = street
			}
			if city, ok := addr["city"]; ok {
				payload["addressCity"] = city
			}
		}
	}

	return payload, nil
}

func addressEmpty(addr map[string]any) bool {
	for _, value := range addr {
		str, ok := value.(string)
		if !ok {
			return false
		}
		if strings.TrimSpace(str) != "" {
			return false
		}
	}
	return true
}
