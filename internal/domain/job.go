package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobID is a value object for job identity.
type JobID struct{ uuid.UUID }

// NewJobID creates a new JobID from uuid.
func NewJobID(id uuid.UUID) JobID { return JobID{UUID: id} }

// String returns the canonical string form.
func (j JobID) String() string { return j.UUID.String() }

// Job is a marketplace job posting. The escrow state is owned
// exclusively by the job's client and mutated only through the escrow
// action endpoint.
type Job struct {
	ID            JobID
	ClientID      UserID
	Title         string
	UseBlockchain bool
	Escrow        EscrowState
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
