package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	ID            uuid.UUID
	Username      string
	Email         pgtype.Text
	PasswordHash  pgtype.Text
	WalletAddress pgtype.Text
	UserType      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type RefreshToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	UserAgent string
	IP        string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt pgtype.Timestamptz
}

type Job struct {
	ID                      uuid.UUID
	ClientID                uuid.UUID
	Title                   string
	UseBlockchain           bool
	EscrowPending           bool
	EscrowDeployed          bool
	EscrowAttempts          int32
	EscrowOnChainID         pgtype.Int8
	EscrowRollbackRequested bool
	EscrowRollbackReason    pgtype.Text
	EscrowCancelledAt       pgtype.Timestamptz
	CreatedAt               time.Time
	UpdatedAt               time.Time
}
