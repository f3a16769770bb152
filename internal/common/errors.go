// Package common defines sentinel errors shared across layers. Callers match
// them with errors.Is.
//
// A missing record is deliberately NOT an error here: delete/update of a row
// that does not exist (or belongs to another user) yields a nil result, and
// only store-level failures propagate.
package common

import "errors"

var (
	// ErrInvalidToken marks a malformed, expired or badly signed bearer token.
	ErrInvalidToken = errors.New("invalid token")

	// ErrUnauthorized marks a request with no usable caller identity.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInternal is a generic service-level failure.
	ErrInternal = errors.New("internal error")
)
