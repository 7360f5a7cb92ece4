package errors

import "errors"

// Sentinel errors for handlers to map to HTTP status.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("username or email already taken")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid or expired refresh token")

	ErrMissingNonce    = errors.New("nonce cookie missing or expired")
	ErrNonceMismatch   = errors.New("signed message does not contain the issued nonce")
	ErrAddressMismatch = errors.New("address does not match the one the nonce was issued for")
	ErrBadSignature    = errors.New("signature does not recover to the claimed address")
	ErrInvalidAddress  = errors.New("malformed wallet address")

	ErrJobNotFound       = errors.New("job not found")
	ErrNotJobOwner       = errors.New("actor does not own this job")
	ErrInvalidTransition = errors.New("escrow action not allowed in current state")
	ErrInvalidRequest    = errors.New("malformed request payload")
)
