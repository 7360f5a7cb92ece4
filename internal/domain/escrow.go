package domain

import (
	"time"

	domerrors "github.com/openlancer/lancer/internal/domain/errors"
)

// EscrowPhase is the derived state of a job's escrow deployment.
type EscrowPhase string

const (
	EscrowInit              EscrowPhase = "INIT"
	EscrowPending           EscrowPhase = "PENDING"
	EscrowDeployed          EscrowPhase = "DEPLOYED"
	EscrowRollbackRequested EscrowPhase = "ROLLBACK_REQUESTED"
	EscrowCancelled         EscrowPhase = "CANCELLED"
)

// EscrowAction is a client-driven transition on the escrow machine.
type EscrowAction string

const (
	EscrowActionRetry           EscrowAction = "retry"
	EscrowActionMarkDeployed    EscrowAction = "mark_deployed"
	EscrowActionFail            EscrowAction = "fail"
	EscrowActionRollbackRequest EscrowAction = "rollback_request"
	EscrowActionRollbackConfirm EscrowAction = "rollback_confirm"
)

// ParseEscrowAction validates a raw action string.
func ParseEscrowAction(s string) (EscrowAction, bool) {
	switch EscrowAction(s) {
	case EscrowActionRetry, EscrowActionMarkDeployed, EscrowActionFail,
		EscrowActionRollbackRequest, EscrowActionRollbackConfirm:
		return EscrowAction(s), true
	}
	return "", false
}

// EscrowState tracks deployment of a job's on-chain escrow. The row
// stores the scalar fields; Phase is always derived, so a state can
// never disagree with its flags. DEPLOYED and CANCELLED are terminal.
type EscrowState struct {
	Pending           bool
	Deployed          bool
	Attempts          int
	OnChainID         *int64
	RollbackRequested bool
	RollbackReason    *string
	CancelledAt       *time.Time
}

// Phase derives the current machine state from the flags. Terminal
// states win over in-flight ones.
func (s EscrowState) Phase() EscrowPhase {
	switch {
	case s.CancelledAt != nil:
		return EscrowCancelled
	case s.Deployed:
		return EscrowDeployed
	case s.RollbackRequested:
		return EscrowRollbackRequested
	case s.Pending:
		return EscrowPending
	default:
		return EscrowInit
	}
}

func (s EscrowState) terminal() bool {
	return s.Deployed || s.CancelledAt != nil
}

// Retry marks a new deployment attempt. Allowed while neither deployed
// nor cancelled.
func (s EscrowState) Retry() (EscrowState, error) {
	if s.terminal() {
		return s, domerrors.ErrInvalidTransition
	}
	s.Pending = true
	s.Attempts++
	return s, nil
}

// MarkDeployed records a confirmed on-chain deployment. Requires an
// attempt in flight; deployment is irreversible afterwards.
func (s EscrowState) MarkDeployed(onChainID int64) (EscrowState, error) {
	if s.terminal() || !s.Pending {
		return s, domerrors.ErrInvalidTransition
	}
	s.Deployed = true
	s.Pending = false
	s.OnChainID = &onChainID
	return s, nil
}

// Fail aborts the in-flight attempt, returning to INIT with the
// attempt counter retained. Failing without an attempt in flight is
// rejected, as is failing a deployed escrow.
func (s EscrowState) Fail() (EscrowState, error) {
	if s.terminal() || !s.Pending {
		return s, domerrors.ErrInvalidTransition
	}
	s.Pending = false
	return s, nil
}

// RequestRollback flags the escrow for cancellation. Allowed from any
// non-terminal state; repeating the request updates the reason.
func (s EscrowState) RequestRollback(reason string) (EscrowState, error) {
	if s.terminal() {
		return s, domerrors.ErrInvalidTransition
	}
	s.RollbackRequested = true
	s.RollbackReason = &reason
	return s, nil
}

// ConfirmRollback cancels a rollback-requested escrow.
func (s EscrowState) ConfirmRollback(now time.Time) (EscrowState, error) {
	if s.terminal() || !s.RollbackRequested {
		return s, domerrors.ErrInvalidTransition
	}
	s.CancelledAt = &now
	return s, nil
}

// EscrowActionInput carries an action plus its payload.
type EscrowActionInput struct {
	Action    EscrowAction
	Reason    string
	OnChainID *int64
}

// Apply dispatches an action to the matching transition. The payload
// for mark_deployed must carry the on-chain id.
func (s EscrowState) Apply(in EscrowActionInput, now time.Time) (EscrowState, error) {
	switch in.Action {
	case EscrowActionRetry:
		return s.Retry()
	case EscrowActionMarkDeployed:
		if in.OnChainID == nil {
			return s, domerrors.ErrInvalidRequest
		}
		return s.MarkDeployed(*in.OnChainID)
	case EscrowActionFail:
		return s.Fail()
	case EscrowActionRollbackRequest:
		return s.RequestRollback(in.Reason)
	case EscrowActionRollbackConfirm:
		return s.ConfirmRollback(now)
	}
	return s, domerrors.ErrInvalidRequest
}
