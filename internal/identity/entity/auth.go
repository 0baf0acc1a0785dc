package entity

import (
	"time"
)

type User struct {
	ID        int64
	Email     string
	FirstName string
	LastName  string
	Status    UserStatus
	UpdatedAt time.Time
	DeletedAt *time.Time
}

type UserCredential struct {
	UserID    int64
	Password  string // hashed
	UpdatedAt time.Time
}

// OTP is a single one-time password record. A recipient can hold many records
// at once; issuing a new code never touches the older ones.
type OTP struct {
	ID            int64
	Kind          OTPKind
	Recipient     string
	Code          string
	Length        int
	ExpiryMinutes int
	IsUsed        bool
	CreatedAt     time.Time
}

// ExpiresAt returns the instant the code stops being accepted. A code presented
// exactly at this instant is already expired.
func (o OTP) ExpiresAt() time.Time {
	return o.CreatedAt.Add(time.Duration(o.ExpiryMinutes) * time.Minute)
}

type RefreshToken struct {
	ID                int64
	UserID            int64
	Token             string // HMAC digest, never the raw token
	ExpiresAt         time.Time
	Revoked           bool
	ReplacedByTokenID int64
}

// ---- //

type UserLoginInfo struct {
	ID       int64
	Email    string
	Status   UserStatus
	Password string
}

type UserCredentialInfo struct {
	ID       int64
	Email    string
	Status   UserStatus
	Password string
}

type RotateRefreshToken struct {
	NewID        int64
	OldID        int64
	UserID       int64
	NewToken     string
	NewExpiresAt time.Time
}

type UserRefreshToken struct {
	UserID                   int64
	UserEmail                string
	UserStatus               UserStatus
	RefreshID                int64
	RefreshToken             string
	RefreshRevoked           bool
	RefreshReplacedByTokenID *int64
	RefreshExpiresAt         time.Time
}

type NewUser struct {
	ID        int64
	Email     string
	FirstName string
	LastName  string
	Password  string // hashed
	Status    UserStatus
}
