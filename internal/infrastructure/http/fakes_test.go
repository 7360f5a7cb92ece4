package http

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openlancer/lancer/internal/application/ports"
	"github.com/openlancer/lancer/internal/domain"
	domerrors "github.com/openlancer/lancer/internal/domain/errors"
)

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

// memJobRepo enforces the same ownership and guard contract as the
// postgres repository, with the domain machine doing the transition.
type memJobRepo struct {
	mu   sync.Mutex
	jobs map[domain.JobID]*domain.Job
}

var _ ports.JobRepository = (*memJobRepo)(nil)

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{jobs: make(map[domain.JobID]*domain.Job)}
}

func (r *memJobRepo) Create(ctx context.Context, job *domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *job
	r.jobs[job.ID] = &cp
	return nil
}

func (r *memJobRepo) GetByID(ctx context.Context, jobID domain.JobID) (*domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[jobID]
	if !ok {
		return nil, nil
	}
	cp := *j
	return &cp, nil
}

func (r *memJobRepo) ApplyEscrowAction(ctx context.Context, jobID domain.JobID, actorID domain.UserID, in domain.EscrowActionInput) (*domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[jobID]
	if !ok {
		return nil, domerrors.ErrJobNotFound
	}
	if j.ClientID != actorID {
		return nil, domerrors.ErrNotJobOwner
	}
	next, err := j.Escrow.Apply(in, time.Now())
	if err != nil {
		return nil, err
	}
	j.Escrow = next
	j.UpdatedAt = time.Now()
	cp := *j
	return &cp, nil
}
