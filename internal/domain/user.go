package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserID is a value object for user identity.
type UserID struct{ uuid.UUID }

// NewUserID creates a new UserID from uuid.
func NewUserID(id uuid.UUID) UserID { return UserID{UUID: id} }

// String returns the canonical string form.
func (u UserID) String() string { return u.UUID.String() }

// UserType classifies how an account participates in the marketplace.
type UserType string

const (
	UserTypeFreelancer UserType = "FREELANCER"
	UserTypeClient     UserType = "CLIENT"
	UserTypeBoth       UserType = "BOTH"
)

// ParseUserType validates a raw classifier string.
func ParseUserType(s string) (UserType, bool) {
	switch UserType(s) {
	case UserTypeFreelancer, UserTypeClient, UserTypeBoth:
		return UserType(s), true
	}
	return "", false
}

// User is a marketplace identity. Accounts created through wallet
// verification carry no password hash; accounts created through
// registration may carry no wallet address. Scopes are derived from
// UserType at token mint time, never stored.
type User struct {
	ID            UserID
	Username      string
	Email         *string
	PasswordHash  *string
	WalletAddress *string // lowercase hex, unique when present
	UserType      UserType
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
