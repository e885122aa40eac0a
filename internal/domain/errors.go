package domain

import "errors"

// Domain errors surfaced to API callers with a stable code. Handlers map
// them to HTTP statuses; anything unrecognized becomes a 500.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrDuplicateNationalID = errors.New("cnic number already registered")
	// ErrInvalidCredentials covers wrong password and unknown email alike,
	// so login responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrAccountInactive    = errors.New("account is not active")
	ErrAccountNotVerified = errors.New("email address not verified")
	ErrInvalidToken       = errors.New("invalid or unknown verification token")
	ErrTokenExpired       = errors.New("verification token has expired")
	ErrNoPendingRecord    = errors.New("no pending verification for this email")
	ErrAlreadyVerified    = errors.New("email already verified")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("insufficient permissions")
	ErrNotFound           = errors.New("not found")
	ErrPayloadTooLarge    = errors.New("uploaded file is too large")
	ErrNotificationFailed = errors.New("failed to send verification email")
	ErrOAuthStateMismatch = errors.New("oauth state mismatch")
)
