package auth

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/openlancer/lancer/internal/application/ports"
	"github.com/openlancer/lancer/internal/domain"
	domerrors "github.com/openlancer/lancer/internal/domain/errors"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,32}$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

type RegisterInput struct {
	Username string
	Email    string // optional
	Password string
	UserType domain.UserType
	Meta     ports.RefreshTokenMeta
}

type RegisterResult struct {
	User    *domain.User
	Session *Session
	Scopes  []string
}

type Register struct {
	users      ports.UserRepository
	hasher     ports.PasswordHasher
	issuer     ports.TokenIssuer
	tokenStore ports.TokenStore
	scopes     *ScopeResolver
	accessExp  int64
	refreshExp int64
}

func NewRegister(users ports.UserRepository, hasher ports.PasswordHasher, issuer ports.TokenIssuer, tokenStore ports.TokenStore, scopes *ScopeResolver, accessExp, refreshExp int64) *Register {
	if accessExp <= 0 {
		accessExp = DefaultAccessTokenExpiry
	}
	if refreshExp <= 0 {
		refreshExp = DefaultRefreshTokenExpiry
	}
	return &Register{
		users:      users,
		hasher:     hasher,
		issuer:     issuer,
		tokenStore: tokenStore,
		scopes:     scopes,
		accessExp:  accessExp,
		refreshExp: refreshExp,
	}
}

func (uc *Register) Execute(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	if !usernameRegex.MatchString(input.Username) {
		return nil, domerrors.ErrInvalidRequest
	}
	if input.Email != "" && !emailRegex.MatchString(input.Email) {
		return nil, domerrors.ErrInvalidRequest
	}
	existing, err := uc.users.GetByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domerrors.ErrUserExists
	}
	if input.Email != "" {
		existing, err = uc.users.GetByEmail(ctx, input.Email)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, domerrors.ErrUserExists
		}
	}
	hash, err := uc.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &domain.User{
		ID:           domain.NewUserID(uuid.New()),
		Username:     input.Username,
		PasswordHash: &hash,
		UserType:     input.UserType,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if input.Email != "" {
		email := input.Email
		user.Email = &email
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}
	scopes := uc.scopes.Resolve(user)
	session, err := issueSession(ctx, uc.issuer, uc.tokenStore, user, scopes, uc.accessExp, uc.refreshExp, input.Meta)
	if err != nil {
		return nil, err
	}
	return &RegisterResult{User: user, Session: session, Scopes: scopes}, nil
}
