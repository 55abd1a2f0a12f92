package main

import (
	"errors"

	"github.com/dtroode/homescout/internal/model"
)

const (
	exitFailure       = 1
	exitUsage         = 2
	exitUnauthorized  = 3
	exitNotFound      = 4
	exitForbidden     = 5
	exitAlreadyExists = 6
)

// errorMessage turns an error into the text shown to the user. Domain errors
// carry their own message; anything else is reported in full.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrUnauthenticated):
		return "Please log in first: homescout login --email <email> --password <password>"
	case errors.Is(err, model.ErrInvalidCredentials),
		errors.Is(err, model.ErrDuplicateIdentity),
		errors.Is(err, model.ErrNotFound),
		errors.Is(err, model.ErrForbidden):
		return capitalize(err.Error())
	default:
		return "Error: " + err.Error()
	}
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, errUsage):
		return exitUsage
	case errors.Is(err, model.ErrUnauthenticated), errors.Is(err, model.ErrInvalidCredentials):
		return exitUnauthorized
	case errors.Is(err, model.ErrNotFound):
		return exitNotFound
	case errors.Is(err, model.ErrForbidden):
		return exitForbidden
	case errors.Is(err, model.ErrDuplicateIdentity):
		return exitAlreadyExists
	default:
		return exitFailure
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if c := s[0]; c >= 'a' && c <= 'z' {
		return string(c-'a'+'A') + s[1:]
	}
	return s
}
