package auth

import (
	"context"

	"github.com/openlancer/lancer/internal/application/ports"
	"github.com/openlancer/lancer/internal/domain"
	domerrors "github.com/openlancer/lancer/internal/domain/errors"
)

// dummyHash is verified against when the username is unknown so the
// unknown-user path pays the same argon2 cost as a wrong password.
const dummyHash = "$argon2id$v=19$m=65536,t=3,p=2$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

type LoginInput struct {
	Username string
	Password string
	Meta     ports.RefreshTokenMeta
}

type LoginResult struct {
	User    *domain.User
	Session *Session
	Scopes  []string
}

type Login struct {
	users      ports.UserRepository
	hasher     ports.PasswordHasher
	issuer     ports.TokenIssuer
	tokenStore ports.TokenStore
	scopes     *ScopeResolver
	accessExp  int64
	refreshExp int64
}

func NewLogin(users ports.UserRepository, hasher ports.PasswordHasher, issuer ports.TokenIssuer, tokenStore ports.TokenStore, scopes *ScopeResolver, accessExp, refreshExp int64) *Login {
	if accessExp <= 0 {
		accessExp = DefaultAccessTokenExpiry
	}
	if refreshExp <= 0 {
		refreshExp = DefaultRefreshTokenExpiry
	}
	return &Login{
		users:      users,
		hasher:     hasher,
		issuer:     issuer,
		tokenStore: tokenStore,
		scopes:     scopes,
		accessExp:  accessExp,
		refreshExp: refreshExp,
	}
}

func (uc *Login) Execute(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := uc.users.GetByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == nil {
		uc.hasher.Verify(input.Password, dummyHash)
		return nil, domerrors.ErrInvalidCredentials
	}
	if !uc.hasher.Verify(input.Password, *user.PasswordHash) {
		return nil, domerrors.ErrInvalidCredentials
	}
	scopes := uc.scopes.Resolve(user)
	session, err := issueSession(ctx, uc.issuer, uc.tokenStore, user, scopes, uc.accessExp, uc.refreshExp, input.Meta)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, Session: session, Scopes: scopes}, nil
}
