package models

import (
	"time"

	"github.com/google/uuid"
)

// Resident is a barangay roster entry. The workflow engine only ever touches
// the updatable contact/address fields; roster lifecycle is managed elsewhere.
type Resident struct {
	ID            uuid.UUID
	FirstName     string
	MiddleName    string
	LastName      string
	ContactNumber string
	Email         string
	AddressStreet string
	AddressCity   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// UpdatableFields maps the field names accepted in a partial update to their
// column names. Requests referencing any other field are rejected before the
// store is touched.
var UpdatableFields = map[string]string{
	"firstName":     "first_name",
	"middleName":    "middle_name",
	"lastName":      "last_name",
	"contactNumber": "contact_number",
	"email":         "email",
	"addressStreet": "address_street",
	"addressCity":   "address_city",
}
