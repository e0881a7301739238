// Package common contains shared constants and sentinel errors used across
// the HR auth service. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrVersionConflict = errors.New("version conflict")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// ErrorUnauthorized covers both an unknown login and a wrong password.
	// The two cases are deliberately indistinguishable to callers.
	ErrorUnauthorized = errors.New("unauthorized")

	// Registration errors.
	ErrorDuplicateIdentity = errors.New("login or email already registered")
	ErrorWeakPassword      = errors.New("password does not meet policy")

	// Token lifecycle errors.
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenRevoked          = errors.New("token revoked")

	// Authorization errors.
	ErrorInsufficientRole = errors.New("insufficient role")

	// ErrorConfiguration is fatal at startup (bad hash cost, missing secret).
	ErrorConfiguration = errors.New("configuration error")
)
