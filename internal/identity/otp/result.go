package otp

import (
	"time"

	"github.com/shandysiswandi/diarium/internal/identity/entity"
)

// Reason classifies the outcome of a lifecycle operation.
type Reason int

const (
	ReasonUnknown Reason = iota

	// ReasonValid means the operation succeeded: a code was accepted and
	// consumed, or a fresh code was issued.
	ReasonValid

	// ReasonNotFound means the recipient has no unused code on file.
	ReasonNotFound

	// ReasonExpired means the newest unused code is past its window.
	ReasonExpired

	// ReasonMismatch means the submitted code does not match, or the matching
	// record was consumed by a concurrent verify first.
	ReasonMismatch

	// ReasonCoolDownActive means a resend was refused because the latest
	// record is too fresh.
	ReasonCoolDownActive
)

func (r Reason) String() string {
	switch r {
	case ReasonValid:
		return "Valid"
	case ReasonNotFound:
		return "NotFound"
	case ReasonExpired:
		return "Expired"
	case ReasonMismatch:
		return "Mismatch"
	case ReasonCoolDownActive:
		return "CoolDownActive"
	default:
		return "Unknown"
	}
}

// VerificationResult is the outcome of Verify. OTP points at the examined
// record and is nil only for ReasonNotFound.
type VerificationResult struct {
	Reason Reason
	OTP    *entity.OTP
}

// ResendResult is the outcome of Resend. RetryAfter is set only for
// ReasonCoolDownActive.
type ResendResult struct {
	Reason     Reason
	OTP        *entity.OTP
	RetryAfter time.Duration
}
