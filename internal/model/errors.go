package model

import "errors"

var (
	// ErrDuplicateIdentity is returned when registering an email that is already taken.
	ErrDuplicateIdentity = errors.New("user with this email already exists")
	// ErrInvalidCredentials is returned when no user matches the email and password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnauthenticated is returned when a mutation is attempted without a session.
	ErrUnauthenticated = errors.New("you must be logged in")
	// ErrNotFound is returned when a listing does not exist.
	ErrNotFound = errors.New("listing not found")
	// ErrForbidden is returned when the principal does not own the listing.
	ErrForbidden = errors.New("you can only modify your own listings")
	// ErrCorruptState is returned when a persisted value cannot be decoded.
	ErrCorruptState = errors.New("persisted state is corrupt")
	// ErrKeyNotFound is returned by key-value stores for missing keys.
	ErrKeyNotFound = errors.New("key not found")
)
