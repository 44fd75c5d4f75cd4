// Package domain contains entity without logic, just meta-data
package domain

import "errors"

const (
	MaxIdentityLen = 36
	MaxUsernameLen = 36
)

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
	ErrIdentityEmpty   = errors.New("identity empty")
	ErrIdentityTooLong = errors.New("identity too long")
)

// ValidateUsername applies the display-name rules enforced at join time.
func ValidateUsername(username string) error {
	if len(username) == 0 {
		return ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return ErrUsernameTooLong
	}
	return nil
}

// ValidateIdentity checks the opaque user id supplied at connection time.
// The id is issued upstream; we only bound its size.
func ValidateIdentity(identity string) error {
	if len(identity) == 0 {
		return ErrIdentityEmpty
	}
	if len(identity) > MaxIdentityLen {
		return ErrIdentityTooLong
	}
	return nil
}
