// Package otp implements the one-time password lifecycle: issuing codes,
// verifying them against the newest unused record, and resending under a
// cool-down window.
//
// Outcomes are reported as tagged results, not errors. An error return always
// means the store failed, never that a code was wrong.
package otp

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/shandysiswandi/diarium/internal/identity/entity"
	"github.com/shandysiswandi/diarium/internal/pkg/clock"
	"github.com/shandysiswandi/diarium/internal/pkg/goerror"
	"github.com/shandysiswandi/diarium/internal/pkg/uid"
)

const (
	DefaultCodeLength     = 6
	DefaultExpiry         = 5 * time.Minute
	DefaultResendCoolDown = 300 * time.Second
)

// Store is the persistence surface the engine needs. Lookups that find nothing
// return goerror.ErrNotFound.
type Store interface {
	CreateOTP(ctx context.Context, o entity.OTP) error
	// LatestUnusedOTP returns the most recently issued unused record for the
	// recipient, newest first with the record ID breaking creation-time ties.
	LatestUnusedOTP(ctx context.Context, recipient string) (*entity.OTP, error)
	// LatestOTP returns the most recent record regardless of used state.
	LatestOTP(ctx context.Context, recipient string) (*entity.OTP, error)
	// MarkOTPUsed flips is_used from false to true and reports whether this
	// call was the one that flipped it.
	MarkOTPUsed(ctx context.Context, id int64) (bool, error)
	DeleteOTP(ctx context.Context, id int64) error
}

// Config carries the tunables for an Engine. Zero values fall back to the
// package defaults.
type Config struct {
	CodeLength     int
	Expiry         time.Duration
	ResendCoolDown time.Duration
}

// Engine drives the OTP lifecycle on top of a Store.
//
// Issue and Verify are safe for concurrent use; a code can only ever be
// consumed once because marking it used is a compare-and-set in the store.
// Resend is check-then-act, so callers must serialize concurrent resends for
// the same recipient (the identity usecases hold a per-recipient lock).
type Engine struct {
	store          Store
	clock          clock.Clocker
	uid            uid.NumberID
	codeLength     int
	expiry         time.Duration
	resendCoolDown time.Duration
}

// NewEngine creates an Engine. Non-positive Config fields take the defaults.
func NewEngine(store Store, clk clock.Clocker, id uid.NumberID, cfg Config) *Engine {
	if cfg.CodeLength <= 0 {
		cfg.CodeLength = DefaultCodeLength
	}
	if cfg.Expiry <= 0 {
		cfg.Expiry = DefaultExpiry
	}
	if cfg.ResendCoolDown <= 0 {
		cfg.ResendCoolDown = DefaultResendCoolDown
	}

	return &Engine{
		store:          store,
		clock:          clk,
		uid:            id,
		codeLength:     cfg.CodeLength,
		expiry:         cfg.Expiry,
		resendCoolDown: cfg.ResendCoolDown,
	}
}

// IssueOption overrides per-call issue parameters.
type IssueOption func(*issueOptions)

type issueOptions struct {
	length int
	expiry time.Duration
}

// WithLength overrides the configured code length for one issue.
func WithLength(n int) IssueOption {
	return func(o *issueOptions) {
		if n > 0 {
			o.length = n
		}
	}
}

// WithExpiry overrides the configured expiry window for one issue.
func WithExpiry(d time.Duration) IssueOption {
	return func(o *issueOptions) {
		if d > 0 {
			o.expiry = d
		}
	}
}

// Mint builds a fresh unused record without persisting it. Callers that need
// the record inside a larger transaction (registration) persist it themselves;
// everyone else should use Issue.
func (e *Engine) Mint(kind entity.OTPKind, recipient string, opts ...IssueOption) entity.OTP {
	io := issueOptions{length: e.codeLength, expiry: e.expiry}
	for _, opt := range opts {
		opt(&io)
	}

	return entity.OTP{
		ID:            e.uid.Generate(),
		Kind:          kind,
		Recipient:     recipient,
		Code:          randomDigits(io.length),
		Length:        io.length,
		ExpiryMinutes: int(io.expiry / time.Minute),
		IsUsed:        false,
		CreatedAt:     e.clock.Now(),
	}
}

// Issue generates a fresh code for the recipient and persists it unused.
// Previously issued records are left untouched, used or not.
func (e *Engine) Issue(ctx context.Context, kind entity.OTPKind, recipient string, opts ...IssueOption) (*entity.OTP, error) {
	record := e.Mint(kind, recipient, opts...)

	if err := e.store.CreateOTP(ctx, record); err != nil {
		return nil, err
	}

	return &record, nil
}

// Verify checks code against the recipient's newest unused record and consumes
// it on a match. The checks run in a fixed order: missing record, then expiry,
// then code equality. An expired record is reported as expired even when the
// submitted code would not have matched it.
func (e *Engine) Verify(ctx context.Context, recipient, code string) (VerificationResult, error) {
	record, err := e.store.LatestUnusedOTP(ctx, recipient)
	if errors.Is(err, goerror.ErrNotFound) {
		return VerificationResult{Reason: ReasonNotFound}, nil
	}
	if err != nil {
		return VerificationResult{}, err
	}

	if !e.clock.Now().Before(record.ExpiresAt()) {
		return VerificationResult{Reason: ReasonExpired, OTP: record}, nil
	}

	if record.Code != code {
		return VerificationResult{Reason: ReasonMismatch, OTP: record}, nil
	}

	flipped, err := e.store.MarkOTPUsed(ctx, record.ID)
	if err != nil {
		return VerificationResult{}, err
	}
	if !flipped {
		// lost the race, another verify consumed this record first
		return VerificationResult{Reason: ReasonMismatch, OTP: record}, nil
	}

	return VerificationResult{Reason: ReasonValid, OTP: record}, nil
}

// Resend replaces the recipient's latest record with a fresh code, unless that
// record is still inside the cool-down window. The window is measured from the
// latest record's creation time whether or not it has been used.
func (e *Engine) Resend(ctx context.Context, kind entity.OTPKind, recipient string, opts ...IssueOption) (ResendResult, error) {
	last, err := e.store.LatestOTP(ctx, recipient)
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		return ResendResult{}, err
	}

	if last != nil {
		elapsed := e.clock.Now().Sub(last.CreatedAt)
		if elapsed < e.resendCoolDown {
			return ResendResult{
				Reason:     ReasonCoolDownActive,
				RetryAfter: e.resendCoolDown - elapsed,
			}, nil
		}

		if err := e.store.DeleteOTP(ctx, last.ID); err != nil {
			return ResendResult{}, err
		}
	}

	fresh, err := e.Issue(ctx, kind, recipient, opts...)
	if err != nil {
		return ResendResult{}, err
	}

	return ResendResult{Reason: ReasonValid, OTP: fresh}, nil
}

// randomDigits draws length independent uniform decimal digits. Codes are
// short-lived and single-use, so math/rand is deliberate here.
func randomDigits(length int) string {
	var b strings.Builder
	b.Grow(length)
	for range length {
		b.WriteByte(byte('0' + rand.IntN(10)))
	}
	return b.String()
}
