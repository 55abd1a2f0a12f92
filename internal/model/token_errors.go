package model

import "errors"

var (
	// ErrSessionExpired is returned when a remembered session token is past its expiry.
	ErrSessionExpired = errors.New("session expired")
	// ErrSessionInvalid is returned when a session token is malformed, forged or of the wrong type.
	ErrSessionInvalid = errors.New("session token is invalid")
)
