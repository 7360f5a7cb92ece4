package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/openlancer/lancer/internal/application/ports"
	"github.com/openlancer/lancer/internal/domain"
)

const (
	DefaultAccessTokenExpiry  = 900    // 15 min
	DefaultRefreshTokenExpiry = 604800 // 7 days
)

// Session is an issued access/refresh pair. RefreshToken is the raw
// secret, returned to the caller exactly once.
type Session struct {
	AccessToken      string
	RefreshToken     string
	ExpiresIn        int64
	RefreshExpiresAt time.Time
}

// newRefreshSecret mints a high-entropy opaque refresh secret.
func newRefreshSecret() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

// hashForStorage is the one-way form persisted for refresh lookup.
func hashForStorage(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// issueSession mints an access token for the user and persists a fresh
// refresh token hash.
func issueSession(ctx context.Context, issuer ports.TokenIssuer, store ports.TokenStore, user *domain.User, scopes []string, accessExp, refreshExp int64, meta ports.RefreshTokenMeta) (*Session, error) {
	accessToken, err := issuer.IssueAccessToken(user.ID.String(), user.Username, scopes, accessExp)
	if err != nil {
		return nil, err
	}
	refreshToken, err := newRefreshSecret()
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().Add(time.Duration(refreshExp) * time.Second)
	if err := store.StoreRefreshToken(ctx, user.ID, hashForStorage(refreshToken), expiresAt, meta); err != nil {
		return nil, err
	}
	return &Session{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		ExpiresIn:        accessExp,
		RefreshExpiresAt: expiresAt,
	}, nil
}
