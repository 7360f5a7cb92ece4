package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/openlancer/lancer/internal/application/ports"
	"github.com/openlancer/lancer/internal/domain"

	"github.com/google/uuid"
)

// memUserRepo is an in-memory ports.UserRepository for tests.
type memUserRepo struct {
	mu    sync.Mutex
	users map[domain.UserID]*domain.User
}

var _ ports.UserRepository = (*memUserRepo)(nil)

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[domain.UserID]*domain.User)}
}

func (r *memUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email != nil && *u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) GetByID(ctx context.Context, userID domain.UserID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) UpsertByWallet(ctx context.Context, address, username string, userType domain.UserType) (*domain.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.WalletAddress != nil && *u.WalletAddress == address {
			cp := *u
			return &cp, false, nil
		}
	}
	now := time.Now()
	addr := address
	u := &domain.User{
		ID:            domain.NewUserID(uuid.New()),
		Username:      username,
		WalletAddress: &addr,
		UserType:      userType,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	r.users[u.ID] = u
	cp := *u
	return &cp, true, nil
}

type memToken struct {
	userID    domain.UserID
	expiresAt time.Time
	revoked   bool
}

// memTokenStore is an in-memory ports.TokenStore with the same
// rotation contract as the postgres store.
type memTokenStore struct {
	mu     sync.Mutex
	tokens map[string]*memToken
}

var _ ports.TokenStore = (*memTokenStore)(nil)

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{tokens: make(map[string]*memToken)}
}

func (s *memTokenStore) StoreRefreshToken(ctx context.Context, userID domain.UserID, tokenHash string, expiresAt time.Time, meta ports.RefreshTokenMeta) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[tokenHash] = &memToken{userID: userID, expiresAt: expiresAt}
	return nil
}

func (s *memTokenStore) RotateRefreshToken(ctx context.Context, presentedHash, newHash string, newExpiresAt time.Time, meta ports.RefreshTokenMeta) (*ports.RotatedToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[presentedHash]
	if !ok || t.revoked || !t.expiresAt.After(time.Now()) {
		return nil, nil
	}
	t.revoked = true
	s.tokens[newHash] = &memToken{userID: t.userID, expiresAt: newExpiresAt}
	return &ports.RotatedToken{UserID: t.userID, ExpiresAt: newExpiresAt}, nil
}

func (s *memTokenStore) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tokens[tokenHash]; ok {
		t.revoked = true
	}
	return nil
}

func (s *memTokenStore) liveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tokens {
		if !t.revoked && t.expiresAt.After(time.Now()) {
			n++
		}
	}
	return n
}

// stubIssuer encodes claims into a readable string instead of signing.
type stubIssuer struct{}

var _ ports.TokenIssuer = (*stubIssuer)(nil)

func (stubIssuer) IssueAccessToken(userID, username string, scopes []string, expiresInSeconds int64) (string, error) {
	return fmt.Sprintf("access|%s|%s|%s", userID, username, strings.Join(scopes, ",")), nil
}

func (stubIssuer) ValidateAccessToken(tokenString string) (*ports.AccessIdentity, error) {
	parts := strings.Split(tokenString, "|")
	if len(parts) != 4 || parts[0] != "access" {
		return nil, fmt.Errorf("malformed token")
	}
	return &ports.AccessIdentity{UserID: parts[1], Username: parts[2], Scopes: strings.Split(parts[3], ",")}, nil
}

// stubVerifier recovers whatever address it was built with, or fails.
type stubVerifier struct {
	address string
	err     error
}

var _ ports.SignatureVerifier = (*stubVerifier)(nil)

func (v *stubVerifier) RecoverAddress(message, signature string) (string, error) {
	if v.err != nil {
		return "", v.err
	}
	return v.address, nil
}

// plainHasher stores passwords reversibly. Only for use-case tests;
// argon2 has its own tests.
type plainHasher struct{}

var _ ports.PasswordHasher = (*plainHasher)(nil)

func (plainHasher) Hash(password string) (string, error) { return "plain:" + password, nil }

func (plainHasher) Verify(password, hash string) bool { return hash == "plain:"+password }
