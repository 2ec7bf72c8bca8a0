package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRole defines the identities a request or socket can carry
type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleDriver   UserRole = "driver"
	RoleCustomer UserRole = "customer"
	// RoleSystem only ever appears as a tracking actor.
	RoleSystem UserRole = "system"
)

// Valid reports whether r is a role that can log in.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleDriver, RoleCustomer:
		return true
	}
	return false
}

// User is a back-office account: an admin or a driver.
// Unique by email or by phone; IsActive gates login.
type User struct {
	Base
	Email        *string   `json:"email" gorm:"uniqueIndex"`
	Phone        *string   `json:"phone" gorm:"uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Name         string    `json:"name" gorm:"not null"`
	Role         UserRole  `json:"role" gorm:"column:user_type;not null;index"`
	IsActive     bool      `json:"is_active" gorm:"not null"`
	Avatar       string    `json:"avatar"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Session backs the signed session cookie; deleting the row logs the holder out.
type Session struct {
	Base
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Role      UserRole  `json:"role" gorm:"column:user_type;not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`
}
