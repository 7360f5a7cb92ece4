package escrow

import (
	"context"

	"github.com/openlancer/lancer/internal/application/ports"
	"github.com/openlancer/lancer/internal/domain"
	domerrors "github.com/openlancer/lancer/internal/domain/errors"
)

type ActionInput struct {
	JobID     domain.JobID
	ActorID   domain.UserID
	Action    domain.EscrowAction
	Reason    string
	OnChainID *int64
}

// Action drives the escrow lifecycle machine. Ownership and guard
// checks happen inside the repository's atomic update; this use-case
// only validates the payload shape.
type Action struct {
	jobs ports.JobRepository
}

func NewAction(jobs ports.JobRepository) *Action {
	return &Action{jobs: jobs}
}

func (uc *Action) Execute(ctx context.Context, input ActionInput) (*domain.Job, error) {
	if input.Action == domain.EscrowActionMarkDeployed && input.OnChainID == nil {
		return nil, domerrors.ErrInvalidRequest
	}
	return uc.jobs.ApplyEscrowAction(ctx, input.JobID, input.ActorID, domain.EscrowActionInput{
		Action:    input.Action,
		Reason:    input.Reason,
		OnChainID: input.OnChainID,
	})
}
