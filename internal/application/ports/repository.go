package ports

import (
	"context"
	"time"

	"github.com/openlancer/lancer/internal/domain"
)

// UserRepository defines persistence for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, userID domain.UserID) (*domain.User, error)
	// UpsertByWallet returns the user owning the lowercase address,
	// creating one with the given placeholder profile if none exists.
	// The second return reports whether a new user was created.
	UpsertByWallet(ctx context.Context, address, username string, userType domain.UserType) (*domain.User, bool, error)
}

// RefreshTokenMeta is optional client metadata stored with a token.
type RefreshTokenMeta struct {
	UserAgent string
	IP        string
}

// RotatedToken describes the outcome of a successful rotation.
type RotatedToken struct {
	UserID    domain.UserID
	ExpiresAt time.Time
}

// TokenStore defines storage for refresh tokens. Only hashes are ever
// stored; raw secrets never reach this interface.
type TokenStore interface {
	StoreRefreshToken(ctx context.Context, userID domain.UserID, tokenHash string, expiresAt time.Time, meta RefreshTokenMeta) error
	// RotateRefreshToken atomically revokes the live token matching
	// presentedHash and inserts newHash in its place. Returns nil when
	// no unrevoked, unexpired token matches; two concurrent rotations
	// of the same token must yield exactly one non-nil result.
	RotateRefreshToken(ctx context.Context, presentedHash, newHash string, newExpiresAt time.Time, meta RefreshTokenMeta) (*RotatedToken, error)
	// RevokeRefreshToken marks the matching hash revoked. Idempotent.
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
}

// JobRepository defines persistence for jobs and the guarded escrow
// transition.
type JobRepository interface {
	Create(ctx context.Context, job *domain.Job) error
	GetByID(ctx context.Context, jobID domain.JobID) (*domain.Job, error)
	// ApplyEscrowAction performs the transition as a single guarded
	// read-modify-write: guard predicates are re-checked inside the
	// same update that applies the mutation. Fails with ErrJobNotFound,
	// ErrNotJobOwner, or ErrInvalidTransition; never partially applies.
	ApplyEscrowAction(ctx context.Context, jobID domain.JobID, actorID domain.UserID, in domain.EscrowActionInput) (*domain.Job, error)
}
