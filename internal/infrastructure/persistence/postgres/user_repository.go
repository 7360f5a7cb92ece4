package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openlancer/lancer/internal/application/ports"
	"github.com/openlancer/lancer/internal/domain"
	"github.com/openlancer/lancer/internal/infrastructure/persistence/db"
)

const upsertUserByWalletSQL = `
INSERT INTO users (id, username, wallet_address, user_type, created_at, updated_at)
VALUES ($1, $2, $3, $4, NOW(), NOW())
ON CONFLICT (wallet_address) DO UPDATE SET updated_at = NOW()
RETURNING id, username, email, password_hash, wallet_address, user_type, created_at, updated_at,
          (xmax = 0) AS inserted
`

type UserRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewUserRepository(q *db.Queries, pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{q: q, pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	return r.q.CreateUser(ctx, db.CreateUserParams{User: domainUserToDB(user)})
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	u, err := r.q.GetUserByUsername(ctx, username)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return dbUserToDomain(u), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := r.q.GetUserByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return dbUserToDomain(u), nil
}

func (r *UserRepository) GetByID(ctx context.Context, userID domain.UserID) (*domain.User, error) {
	u, err := r.q.GetUserByID(ctx, userID.UUID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return dbUserToDomain(u), nil
}

func (r *UserRepository) UpsertByWallet(ctx context.Context, address, username string, userType domain.UserType) (*domain.User, bool, error) {
	row := r.pool.QueryRow(ctx, upsertUserByWalletSQL, uuid.New(), username, address, string(userType))
	var u db.User
	var inserted bool
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.WalletAddress, &u.UserType,
		&u.CreatedAt, &u.UpdatedAt, &inserted)
	if err != nil {
		return nil, false, err
	}
	return dbUserToDomain(u), inserted, nil
}

func domainUserToDB(user *domain.User) db.User {
	u := db.User{
		ID:        user.ID.UUID,
		Username:  user.Username,
		UserType:  string(user.UserType),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
	if user.Email != nil {
		u.Email = pgtype.Text{String: *user.Email, Valid: true}
	}
	if user.PasswordHash != nil {
		u.PasswordHash = pgtype.Text{String: *user.PasswordHash, Valid: true}
	}
	if user.WalletAddress != nil {
		u.WalletAddress = pgtype.Text{String: *user.WalletAddress, Valid: true}
	}
	return u
}

func dbUserToDomain(u db.User) *domain.User {
	user := &domain.User{
		ID:        domain.NewUserID(u.ID),
		Username:  u.Username,
		UserType:  domain.UserType(u.UserType),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if u.Email.Valid {
		s := u.Email.String
		user.Email = &s
	}
	if u.PasswordHash.Valid {
		s := u.PasswordHash.String
		user.PasswordHash = &s
	}
	if u.WalletAddress.Valid {
		s := u.WalletAddress.String
		user.WalletAddress = &s
	}
	return user
}

// Ensure UserRepository implements ports.UserRepository.
var _ ports.UserRepository = (*UserRepository)(nil)
