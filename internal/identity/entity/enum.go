package entity

import (
	"errors"
)

var (
	ErrUserStatusUnknown    = errors.New("identity: user status is unknown")
	ErrUserStatusBanned     = errors.New("identity: user status is banned")
	ErrUserStatusUnverified = errors.New("identity: user status is unverified")
)

// UserStatus is the lifecycle state of an account, stored as a smallint.
type UserStatus int16

const (
	// UserStatusUnknown is the zero value for unset or corrupt data.
	UserStatusUnknown UserStatus = 0

	// UserStatusUnverified is an account that has registered but not yet
	// confirmed its email.
	UserStatusUnverified UserStatus = 1

	// UserStatusActive is a verified account allowed to use the app.
	UserStatusActive UserStatus = 2

	// UserStatusBanned is an account blocked for policy or abuse reasons.
	UserStatusBanned UserStatus = 3

	// UserStatusInactive is a deactivated or closed account.
	UserStatusInactive UserStatus = 4
)

var userStatusNames = map[UserStatus]string{
	UserStatusUnverified: "Unverified",
	UserStatusActive:     "Active",
	UserStatusBanned:     "Banned",
	UserStatusInactive:   "Inactive",
}

func (us UserStatus) String() string {
	if name, ok := userStatusNames[us]; ok {
		return name
	}
	return "Unknown"
}

func (us UserStatus) IsUnknown() bool {
	_, known := userStatusNames[us]
	return !known
}

// Ensure collapses out-of-range values read from storage to
// UserStatusUnknown.
func (us UserStatus) Ensure() UserStatus {
	if us.IsUnknown() {
		return UserStatusUnknown
	}
	return us
}

// OTPKind records which flow asked for a code. It is descriptive metadata on
// the record; verification looks codes up by recipient only.
type OTPKind int16

const (
	OTPKindUnknown       OTPKind = 0
	OTPKindRegistration  OTPKind = 1
	OTPKindPasswordReset OTPKind = 2
)

func (ok OTPKind) String() string {
	switch ok {
	case OTPKindRegistration:
		return "Registration"
	case OTPKindPasswordReset:
		return "PasswordReset"
	default:
		return "Unknown"
	}
}
