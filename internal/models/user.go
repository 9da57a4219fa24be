package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Username     string
	PasswordHash string
	DisplayName  string
	Role         string
	IsVerified   bool
	Balance      decimal.Decimal
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Profile fields a user may change about themselves
// Nil field means "leave as is"
type UserProfileUpdate struct {
	DisplayName *string
}
