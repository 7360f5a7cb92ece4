package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns Queries bound to the transaction.
func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

const createUserSQL = `
INSERT INTO users (id, username, email, password_hash, wallet_address, user_type, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

type CreateUserParams struct {
	User User
}

func (q *Queries) CreateUser(ctx context.Context, p CreateUserParams) error {
	u := p.User
	_, err := q.db.Exec(ctx, createUserSQL,
		u.ID, u.Username, u.Email, u.PasswordHash, u.WalletAddress, u.UserType, u.CreatedAt, u.UpdatedAt)
	return err
}

const userColumns = `id, username, email, password_hash, wallet_address, user_type, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.WalletAddress, &u.UserType, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	return scanUser(q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	return scanUser(q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

const createRefreshTokenSQL = `
INSERT INTO refresh_tokens (id, user_id, token_hash, user_agent, ip, expires_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`

type CreateRefreshTokenParams struct {
	Token RefreshToken
}

func (q *Queries) CreateRefreshToken(ctx context.Context, p CreateRefreshTokenParams) error {
	t := p.Token
	_, err := q.db.Exec(ctx, createRefreshTokenSQL,
		t.ID, t.UserID, t.TokenHash, t.UserAgent, t.IP, t.ExpiresAt, t.CreatedAt)
	return err
}

const jobColumns = `id, client_id, title, use_blockchain, escrow_pending, escrow_deployed,
escrow_attempts, escrow_on_chain_id, escrow_rollback_requested, escrow_rollback_reason,
escrow_cancelled_at, created_at, updated_at`

func scanJob(row pgx.Row) (Job, error) {
	var j Job
	err := row.Scan(&j.ID, &j.ClientID, &j.Title, &j.UseBlockchain, &j.EscrowPending, &j.EscrowDeployed,
		&j.EscrowAttempts, &j.EscrowOnChainID, &j.EscrowRollbackRequested, &j.EscrowRollbackReason,
		&j.EscrowCancelledAt, &j.CreatedAt, &j.UpdatedAt)
	return j, err
}

const createJobSQL = `
INSERT INTO jobs (id, client_id, title, use_blockchain, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
`

type CreateJobParams struct {
	Job Job
}

func (q *Queries) CreateJob(ctx context.Context, p CreateJobParams) error {
	j := p.Job
	_, err := q.db.Exec(ctx, createJobSQL,
		j.ID, j.ClientID, j.Title, j.UseBlockchain, j.CreatedAt, j.UpdatedAt)
	return err
}

func (q *Queries) GetJobByID(ctx context.Context, id uuid.UUID) (Job, error) {
	return scanJob(q.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
}
