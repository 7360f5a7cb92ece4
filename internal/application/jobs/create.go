package jobs

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/openlancer/lancer/internal/application/ports"
	"github.com/openlancer/lancer/internal/domain"
	domerrors "github.com/openlancer/lancer/internal/domain/errors"
)

type CreateInput struct {
	ClientID      domain.UserID
	Title         string
	UseBlockchain bool
}

// Create posts a job with a zero-value escrow state. Full job CRUD is
// conventional request/response plumbing and lives elsewhere; only the
// escrow subject is needed here.
type Create struct {
	jobs ports.JobRepository
}

func NewCreate(jobs ports.JobRepository) *Create {
	return &Create{jobs: jobs}
}

func (uc *Create) Execute(ctx context.Context, input CreateInput) (*domain.Job, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, domerrors.ErrInvalidRequest
	}
	now := time.Now()
	job := &domain.Job{
		ID:            domain.NewJobID(uuid.New()),
		ClientID:      input.ClientID,
		Title:         title,
		UseBlockchain: input.UseBlockchain,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.jobs.Create(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}
