package auth

import (
	"context"

	"github.com/openlancer/lancer/internal/application/ports"
)

// Logout revokes the presented refresh token. Idempotent: revoking an
// unknown or already-revoked token is not an error.
type Logout struct {
	tokenStore ports.TokenStore
}

func NewLogout(tokenStore ports.TokenStore) *Logout {
	return &Logout{tokenStore: tokenStore}
}

func (uc *Logout) Execute(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return uc.tokenStore.RevokeRefreshToken(ctx, hashForStorage(refreshToken))
}
