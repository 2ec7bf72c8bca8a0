package models

import (
	"time"

	"github.com/google/uuid"
)

// DriverStats holds one row per driver per day, updated incrementally.
type DriverStats struct {
	Base
	DriverID        uuid.UUID `json:"driver_id" gorm:"type:uuid;not null;uniqueIndex:idx_driver_day"`
	Date            time.Time `json:"date" gorm:"not null;uniqueIndex:idx_driver_day"`
	TotalOrders     int       `json:"total_orders" gorm:"not null;default:0"`
	CompletedOrders int       `json:"completed_orders" gorm:"not null;default:0"`
	CancelledOrders int       `json:"cancelled_orders" gorm:"not null;default:0"`
	TotalEarnings   float64   `json:"total_earnings" gorm:"not null;default:0"`
	TotalDistance   float64   `json:"total_distance" gorm:"not null;default:0"`
	AverageRating   float64   `json:"average_rating" gorm:"not null;default:0"`
	OnlineHours     float64   `json:"online_hours" gorm:"not null;default:0"`
	CreatedAt       time.Time `json:"created_at"`
}

func (DriverStats) TableName() string { return "driver_stats" }
