package auth

import (
	"context"
	"time"

	"github.com/openlancer/lancer/internal/application/ports"
	domerrors "github.com/openlancer/lancer/internal/domain/errors"
)

type RefreshInput struct {
	RefreshToken string
	Meta         ports.RefreshTokenMeta
}

type RefreshResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
	RefreshExpiresAt time.Time
}

// Refresh rotates a presented refresh token. Revocation of the old
// token and insertion of its replacement happen in one atomic store
// operation, so a replayed or raced token yields exactly one success.
type Refresh struct {
	users      ports.UserRepository
	issuer     ports.TokenIssuer
	tokenStore ports.TokenStore
	scopes     *ScopeResolver
	accessExp  int64
	refreshExp int64
}

func NewRefresh(users ports.UserRepository, issuer ports.TokenIssuer, tokenStore ports.TokenStore, scopes *ScopeResolver, accessExp, refreshExp int64) *Refresh {
	if accessExp <= 0 {
		accessExp = DefaultAccessTokenExpiry
	}
	if refreshExp <= 0 {
		refreshExp = DefaultRefreshTokenExpiry
	}
	return &Refresh{
		users:      users,
		issuer:     issuer,
		tokenStore: tokenStore,
		scopes:     scopes,
		accessExp:  accessExp,
		refreshExp: refreshExp,
	}
}

func (uc *Refresh) Execute(ctx context.Context, input RefreshInput) (*RefreshResult, error) {
	if input.RefreshToken == "" {
		return nil, domerrors.ErrInvalidToken
	}
	newRaw, err := newRefreshSecret()
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().Add(time.Duration(uc.refreshExp) * time.Second)
	rotated, err := uc.tokenStore.RotateRefreshToken(ctx, hashForStorage(input.RefreshToken), hashForStorage(newRaw), expiresAt, input.Meta)
	if err != nil {
		return nil, err
	}
	if rotated == nil {
		return nil, domerrors.ErrInvalidToken
	}
	user, err := uc.users.GetByID(ctx, rotated.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domerrors.ErrInvalidToken
	}
	// Scopes are re-derived on every mint; allow-list changes apply at
	// the next rotation.
	accessToken, err := uc.issuer.IssueAccessToken(user.ID.String(), user.Username, uc.scopes.Resolve(user), uc.accessExp)
	if err != nil {
		return nil, err
	}
	return &RefreshResult{
		AccessToken:      accessToken,
		RefreshToken:     newRaw,
		ExpiresIn:        uc.accessExp,
		RefreshExpiresAt: expiresAt,
	}, nil
}
