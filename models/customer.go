package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer is identified by phone. TotalOrders, TotalSpent and LoyaltyPoints
// are advisory counters bumped by the order write paths; the stats recompute
// job is the only thing that makes them exact.
type Customer struct {
	Base
	Name              string     `json:"name" gorm:"not null"`
	Phone             string     `json:"phone" gorm:"not null;uniqueIndex"`
	Email             *string    `json:"email" gorm:"uniqueIndex"`
	Avatar            string     `json:"avatar"`
	DateOfBirth       *time.Time `json:"date_of_birth"`
	Gender            string     `json:"gender"`
	IsActive          bool       `json:"is_active" gorm:"not null"`
	TotalOrders       int        `json:"total_orders" gorm:"not null;default:0"`
	TotalSpent        float64    `json:"total_spent" gorm:"not null;default:0"`
	LoyaltyPoints     int        `json:"loyalty_points" gorm:"not null;default:0"`
	PreferredLanguage string     `json:"preferred_language" gorm:"default:'ar'"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

type CustomerAddress struct {
	Base
	CustomerID uuid.UUID `json:"customer_id" gorm:"type:uuid;not null;index"`
	Title      string    `json:"title" gorm:"not null"`
	Address    string    `json:"address" gorm:"not null"`
	Building   string    `json:"building"`
	Floor      string    `json:"floor"`
	Apartment  string    `json:"apartment"`
	Landmark   string    `json:"landmark"`
	Latitude   *float64  `json:"latitude"`
	Longitude  *float64  `json:"longitude"`
	IsDefault  bool      `json:"is_default" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
}
