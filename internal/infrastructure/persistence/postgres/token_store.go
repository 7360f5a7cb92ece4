package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openlancer/lancer/internal/application/ports"
	"github.com/openlancer/lancer/internal/domain"
	"github.com/openlancer/lancer/internal/infrastructure/persistence/db"
)

// revokeLiveTokenSQL succeeds for at most one caller: the row must
// still be unrevoked and unexpired at update time, so two rotations
// racing on the same hash cannot both pass.
const revokeLiveTokenSQL = `
UPDATE refresh_tokens SET revoked_at = NOW()
WHERE token_hash = $1 AND revoked_at IS NULL AND expires_at > NOW()
RETURNING user_id
`

const revokeTokenIdempotentSQL = `
UPDATE refresh_tokens SET revoked_at = COALESCE(revoked_at, NOW())
WHERE token_hash = $1
`

type TokenStore struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewTokenStore(q *db.Queries, pool *pgxpool.Pool) *TokenStore {
	return &TokenStore{q: q, pool: pool}
}

func (s *TokenStore) StoreRefreshToken(ctx context.Context, userID domain.UserID, tokenHash string, expiresAt time.Time, meta ports.RefreshTokenMeta) error {
	return s.q.CreateRefreshToken(ctx, db.CreateRefreshTokenParams{
		Token: db.RefreshToken{
			ID:        uuid.New(),
			UserID:    userID.UUID,
			TokenHash: tokenHash,
			UserAgent: meta.UserAgent,
			IP:        meta.IP,
			ExpiresAt: expiresAt,
			CreatedAt: time.Now(),
		},
	})
}

func (s *TokenStore) RotateRefreshToken(ctx context.Context, presentedHash, newHash string, newExpiresAt time.Time, meta ports.RefreshTokenMeta) (*ports.RotatedToken, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var userID uuid.UUID
	err = tx.QueryRow(ctx, revokeLiveTokenSQL, presentedHash).Scan(&userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			// Unknown, expired, or already rotated: treat all three
			// identically so a replayed token learns nothing.
			return nil, nil
		}
		return nil, err
	}
	if err := s.q.WithTx(tx).CreateRefreshToken(ctx, db.CreateRefreshTokenParams{
		Token: db.RefreshToken{
			ID:        uuid.New(),
			UserID:    userID,
			TokenHash: newHash,
			UserAgent: meta.UserAgent,
			IP:        meta.IP,
			ExpiresAt: newExpiresAt,
			CreatedAt: time.Now(),
		},
	}); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &ports.RotatedToken{UserID: domain.NewUserID(userID), ExpiresAt: newExpiresAt}, nil
}

func (s *TokenStore) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	_, err := s.pool.Exec(ctx, revokeTokenIdempotentSQL, tokenHash)
	return err
}

// Ensure TokenStore implements ports.TokenStore.
var _ ports.TokenStore = (*TokenStore)(nil)
