package models

import (
	"fmt"
	"time"

	dErrors "github.com/ErickCaburnay/B-Sphere-sub001/pkg/domain-errors"
)

// DocumentType identifies a control-number series.
type DocumentType string

const (
	DocumentTypeBusinessPermit  DocumentType = "business_permit"
	DocumentTypeCTC             DocumentType = "ctc"
	DocumentTypeOfficialReceipt DocumentType = "or"
)

// Valid reports whether the document type names a known series.
func (t DocumentType) Valid() bool {
	switch t {
	case DocumentTypeBusinessPermit, DocumentTypeCTC, DocumentTypeOfficialReceipt:
		return true
	}
	return false
}

// Counter is the persisted, monotonically increasing sequence for one
// document type. A missing record reads as Count 0.
type Counter struct {
	DocumentType    DocumentType
	Count           int64
	LastGeneratedID string
	LastUpdated     time.Time
}

// FormatControlNumber derives the human-readable control number for the given
// count. The CTC and OR series split count-1 and add 1 to both halves; the
// permit series splits count directly. Already-issued certificates follow
// these exact series, so the formulas must not change.
func FormatControlNumber(documentType DocumentType, count int64) (string, error) {
	if count < 1 {
		return "", dErrors.New(dErrors.CodeInvariantViolation, "counter value must be positive")
	}
	switch documentType {
	case DocumentTypeBusinessPermit:
		return fmt.Sprintf("%03d-%02d", count/100, count%100), nil
	case DocumentTypeCTC:
		n := count - 1
		return fmt.Sprintf("%04d-%04d", n/10000+1, n%10000+1), nil
	case DocumentTypeOfficialReceipt:
		n := count - 1
		return fmt.Sprintf("%04d-%03d", n/1000+1, n%1000+1), nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unknown document type %q", documentType))
	}
}
