package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openlancer/lancer/internal/application/ports"
	"github.com/openlancer/lancer/internal/domain"
	domerrors "github.com/openlancer/lancer/internal/domain/errors"
	"github.com/openlancer/lancer/internal/infrastructure/persistence/db"
)

const escrowReturning = `
RETURNING id, client_id, title, use_blockchain, escrow_pending, escrow_deployed,
escrow_attempts, escrow_on_chain_id, escrow_rollback_requested, escrow_rollback_reason,
escrow_cancelled_at, created_at, updated_at`

// Each escrow action is one guarded UPDATE: the WHERE clause re-checks
// ownership and the transition guards in the same statement that
// applies the mutation, so a stale read can never commit. Zero rows
// means the guard (or ownership, or existence) failed; the caller
// re-reads once to classify which.
const (
	escrowRetrySQL = `
UPDATE jobs SET escrow_pending = TRUE, escrow_attempts = escrow_attempts + 1, updated_at = NOW()
WHERE id = $1 AND client_id = $2
  AND escrow_deployed = FALSE AND escrow_cancelled_at IS NULL` + escrowReturning

	escrowMarkDeployedSQL = `
UPDATE jobs SET escrow_deployed = TRUE, escrow_pending = FALSE, escrow_on_chain_id = $3, updated_at = NOW()
WHERE id = $1 AND client_id = $2
  AND escrow_pending = TRUE AND escrow_deployed = FALSE AND escrow_cancelled_at IS NULL` + escrowReturning

	escrowFailSQL = `
UPDATE jobs SET escrow_pending = FALSE, updated_at = NOW()
WHERE id = $1 AND client_id = $2
  AND escrow_pending = TRUE AND escrow_deployed = FALSE AND escrow_cancelled_at IS NULL` + escrowReturning

	escrowRollbackRequestSQL = `
UPDATE jobs SET escrow_rollback_requested = TRUE, escrow_rollback_reason = $3, updated_at = NOW()
WHERE id = $1 AND client_id = $2
  AND escrow_deployed = FALSE AND escrow_cancelled_at IS NULL` + escrowReturning

	escrowRollbackConfirmSQL = `
UPDATE jobs SET escrow_cancelled_at = NOW(), updated_at = NOW()
WHERE id = $1 AND client_id = $2
  AND escrow_rollback_requested = TRUE AND escrow_deployed = FALSE AND escrow_cancelled_at IS NULL` + escrowReturning
)

type JobRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewJobRepository(q *db.Queries, pool *pgxpool.Pool) *JobRepository {
	return &JobRepository{q: q, pool: pool}
}

func (r *JobRepository) Create(ctx context.Context, job *domain.Job) error {
	return r.q.CreateJob(ctx, db.CreateJobParams{
		Job: db.Job{
			ID:            job.ID.UUID,
			ClientID:      job.ClientID.UUID,
			Title:         job.Title,
			UseBlockchain: job.UseBlockchain,
			CreatedAt:     job.CreatedAt,
			UpdatedAt:     job.UpdatedAt,
		},
	})
}

func (r *JobRepository) GetByID(ctx context.Context, jobID domain.JobID) (*domain.Job, error) {
	j, err := r.q.GetJobByID(ctx, jobID.UUID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return dbJobToDomain(j), nil
}

func (r *JobRepository) ApplyEscrowAction(ctx context.Context, jobID domain.JobID, actorID domain.UserID, in domain.EscrowActionInput) (*domain.Job, error) {
	var row pgx.Row
	switch in.Action {
	case domain.EscrowActionRetry:
		row = r.pool.QueryRow(ctx, escrowRetrySQL, jobID.UUID, actorID.UUID)
	case domain.EscrowActionMarkDeployed:
		if in.OnChainID == nil {
			return nil, domerrors.ErrInvalidRequest
		}
		row = r.pool.QueryRow(ctx, escrowMarkDeployedSQL, jobID.UUID, actorID.UUID, *in.OnChainID)
	case domain.EscrowActionFail:
		row = r.pool.QueryRow(ctx, escrowFailSQL, jobID.UUID, actorID.UUID)
	case domain.EscrowActionRollbackRequest:
		row = r.pool.QueryRow(ctx, escrowRollbackRequestSQL, jobID.UUID, actorID.UUID, in.Reason)
	case domain.EscrowActionRollbackConfirm:
		row = r.pool.QueryRow(ctx, escrowRollbackConfirmSQL, jobID.UUID, actorID.UUID)
	default:
		return nil, domerrors.ErrInvalidRequest
	}

	j, err := scanEscrowRow(row)
	if err == nil {
		return dbJobToDomain(j), nil
	}
	if err != pgx.ErrNoRows {
		return nil, err
	}
	return nil, r.classifyFailure(ctx, jobID, actorID)
}

// classifyFailure distinguishes why a guarded update matched nothing.
func (r *JobRepository) classifyFailure(ctx context.Context, jobID domain.JobID, actorID domain.UserID) error {
	j, err := r.q.GetJobByID(ctx, jobID.UUID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domerrors.ErrJobNotFound
		}
		return err
	}
	if j.ClientID != actorID.UUID {
		return domerrors.ErrNotJobOwner
	}
	return domerrors.ErrInvalidTransition
}

func scanEscrowRow(row pgx.Row) (db.Job, error) {
	var j db.Job
	err := row.Scan(&j.ID, &j.ClientID, &j.Title, &j.UseBlockchain, &j.EscrowPending, &j.EscrowDeployed,
		&j.EscrowAttempts, &j.EscrowOnChainID, &j.EscrowRollbackRequested, &j.EscrowRollbackReason,
		&j.EscrowCancelledAt, &j.CreatedAt, &j.UpdatedAt)
	return j, err
}

func dbJobToDomain(j db.Job) *domain.Job {
	job := &domain.Job{
		ID:            domain.NewJobID(j.ID),
		ClientID:      domain.NewUserID(j.ClientID),
		Title:         j.Title,
		UseBlockchain: j.UseBlockchain,
		Escrow: domain.EscrowState{
			Pending:           j.EscrowPending,
			Deployed:          j.EscrowDeployed,
			Attempts:          int(j.EscrowAttempts),
			RollbackRequested: j.EscrowRollbackRequested,
		},
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
	if j.EscrowOnChainID.Valid {
		v := j.EscrowOnChainID.Int64
		job.Escrow.OnChainID = &v
	}
	if j.EscrowRollbackReason.Valid {
		s := j.EscrowRollbackReason.String
		job.Escrow.RollbackReason = &s
	}
	if j.EscrowCancelledAt.Valid {
		t := j.EscrowCancelledAt.Time
		job.Escrow.CancelledAt = &t
	}
	return job
}

// Ensure JobRepository implements ports.JobRepository.
var _ ports.JobRepository = (*JobRepository)(nil)
