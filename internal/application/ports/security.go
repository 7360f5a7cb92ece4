package ports

// PasswordHasher hashes and verifies passwords (Argon2id).
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// AccessIdentity is the authenticated identity carried by a validated
// access token.
type AccessIdentity struct {
	UserID   string
	Username string
	Scopes   []string
}

// TokenIssuer signs and validates access tokens (RS256). Tokens carry
// a type discriminator so an access token can never be replayed where
// a refresh token is expected, or vice versa.
type TokenIssuer interface {
	IssueAccessToken(userID, username string, scopes []string, expiresInSeconds int64) (string, error)
	ValidateAccessToken(tokenString string) (*AccessIdentity, error)
}

// SignatureVerifier recovers the signer address of a wallet-signed
// message.
type SignatureVerifier interface {
	RecoverAddress(message, signature string) (string, error)
}
