package handlers

// API error codes returned in JSON { "error": "...", "code": "..." } for stable client handling.
const (
	ErrCodeInvalidCredentials = "invalid_credentials"
	ErrCodeUnauthorized       = "unauthorized"
	ErrCodeInvalidRequest     = "invalid_request"
	ErrCodeNotFound           = "not_found"
	ErrCodeConflict           = "conflict"
	ErrCodeForbidden          = "forbidden"
	ErrCodeInvalidToken       = "invalid_token"
	ErrCodeInternal           = "internal_error"

	ErrCodeMissingNonce      = "missing_nonce"
	ErrCodeNonceMismatch     = "nonce_mismatch"
	ErrCodeAddressMismatch   = "address_mismatch"
	ErrCodeBadSignature      = "bad_signature"
	ErrCodeInvalidAddress    = "invalid_address"
	ErrCodeInvalidTransition = "invalid_transition"
)
