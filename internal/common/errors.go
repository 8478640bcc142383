// Package common defines shared constants and sentinel errors used across
// client and server layers of NewsMarks. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation / record-specific errors.
	ErrorInvalidSpan      = errors.New("invalid character span")
	ErrorInvalidColor     = errors.New("invalid highlight color")
	ErrorAlreadyExists    = errors.New("already exists")
	ErrorSnapshotMismatch = errors.New("snapshot version or article mismatch")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
