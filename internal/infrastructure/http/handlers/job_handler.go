package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/openlancer/lancer/internal/application/escrow"
	"github.com/openlancer/lancer/internal/application/jobs"
	"github.com/openlancer/lancer/internal/application/ports"
	"github.com/openlancer/lancer/internal/domain"
	domerrors "github.com/openlancer/lancer/internal/domain/errors"
	"github.com/openlancer/lancer/internal/infrastructure/http/middleware"
)

type JobHandler struct {
	create       *jobs.Create
	escrowAction *escrow.Action
	jobRepo      ports.JobRepository
	validate     *validator.Validate
	log          zerolog.Logger
}

func NewJobHandler(create *jobs.Create, escrowAction *escrow.Action, jobRepo ports.JobRepository, log zerolog.Logger) *JobHandler {
	return &JobHandler{
		create:       create,
		escrowAction: escrowAction,
		jobRepo:      jobRepo,
		validate:     validator.New(),
		log:          log,
	}
}

func jobJSON(j *domain.Job) map[string]interface{} {
	escrowOut := map[string]interface{}{
		"phase":              string(j.Escrow.Phase()),
		"pending":            j.Escrow.Pending,
		"deployed":           j.Escrow.Deployed,
		"attempts":           j.Escrow.Attempts,
		"rollback_requested": j.Escrow.RollbackRequested,
	}
	if j.Escrow.OnChainID != nil {
		escrowOut["on_chain_id"] = *j.Escrow.OnChainID
	}
	if j.Escrow.RollbackReason != nil {
		escrowOut["rollback_reason"] = *j.Escrow.RollbackReason
	}
	if j.Escrow.CancelledAt != nil {
		escrowOut["cancelled_at"] = j.Escrow.CancelledAt.Format(time.RFC3339)
	}
	return map[string]interface{}{
		"id":             j.ID.String(),
		"client_id":      j.ClientID.String(),
		"title":          j.Title,
		"use_blockchain": j.UseBlockchain,
		"escrow":         escrowOut,
		"created_at":     j.CreatedAt,
		"updated_at":     j.UpdatedAt,
	}
}

func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	clientID, err := uuid.Parse(identity.UserID)
	if err != nil {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	var body struct {
		Title         string `json:"title" validate:"required,max=200"`
		UseBlockchain bool   `json:"use_blockchain"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	job, err := h.create.Execute(r.Context(), jobs.CreateInput{
		ClientID:      domain.NewUserID(clientID),
		Title:         body.Title,
		UseBlockchain: body.UseBlockchain,
	})
	if err != nil {
		if err == domerrors.ErrInvalidRequest {
			writeErr(w, http.StatusBadRequest, "", err.Error())
			return
		}
		h.log.Error().Err(err).Msg("create job failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, jobJSON(job))
}

func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid job id")
		return
	}
	job, err := h.jobRepo.GetByID(r.Context(), domain.NewJobID(jobID))
	if err != nil {
		h.log.Error().Err(err).Msg("get job failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	if job == nil {
		writeErr(w, http.StatusNotFound, "", domerrors.ErrJobNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, jobJSON(job))
}

// EscrowAction drives the escrow lifecycle machine for a job the
// caller owns.
func (h *JobHandler) EscrowAction(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	actorID, err := uuid.Parse(identity.UserID)
	if err != nil {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	jobID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid job id")
		return
	}
	var body struct {
		Action    string `json:"action" validate:"required"`
		Reason    string `json:"reason" validate:"omitempty,max=500"`
		OnChainID *int64 `json:"on_chain_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	action, ok := domain.ParseEscrowAction(body.Action)
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "unknown escrow action")
		return
	}
	job, err := h.escrowAction.Execute(r.Context(), escrow.ActionInput{
		JobID:     domain.NewJobID(jobID),
		ActorID:   domain.NewUserID(actorID),
		Action:    action,
		Reason:    strings.TrimSpace(body.Reason),
		OnChainID: body.OnChainID,
	})
	if err != nil {
		AuditLog(h.log, r, "escrow."+string(action), identity.UserID, false, err.Error())
		middleware.RecordEscrowTransition(string(action), false)
		switch err {
		case domerrors.ErrJobNotFound:
			writeErr(w, http.StatusNotFound, "", err.Error())
		case domerrors.ErrNotJobOwner:
			writeErr(w, http.StatusForbidden, "", err.Error())
		case domerrors.ErrInvalidTransition:
			writeErr(w, http.StatusBadRequest, ErrCodeInvalidTransition, err.Error())
		case domerrors.ErrInvalidRequest:
			writeErr(w, http.StatusBadRequest, "", err.Error())
		default:
			h.log.Error().Err(err).Msg("escrow action failed")
			writeErr(w, http.StatusInternalServerError, "", "internal error")
		}
		return
	}
	AuditLog(h.log, r, "escrow."+string(action), identity.UserID, true, "")
	middleware.RecordEscrowTransition(string(action), true)
	writeJSON(w, http.StatusOK, jobJSON(job))
}
