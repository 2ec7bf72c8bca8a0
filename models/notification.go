package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	NotificationOrderUpdate = "order_update"
	NotificationPromotion   = "promotion"
	NotificationSystem      = "system"
	NotificationDriverAlert = "driver_alert"

	// RecipientAll addresses every connected user regardless of role.
	RecipientAll = "all"
)

// Notification is the durable record of intent. IsSent/SentAt only say the
// live push was handed to a connected socket; nothing retries unsent rows.
type Notification struct {
	Base
	Type          string            `json:"type" gorm:"not null"`
	Title         string            `json:"title" gorm:"not null"`
	Message       string            `json:"message" gorm:"not null"`
	Data          datatypes.JSONMap `json:"data"`
	RecipientType string            `json:"recipient_type" gorm:"not null;index:idx_notification_recipient"`
	RecipientID   *uuid.UUID        `json:"recipient_id" gorm:"type:uuid;index:idx_notification_recipient"`
	IsRead        bool              `json:"is_read" gorm:"not null"`
	IsSent        bool              `json:"is_sent" gorm:"not null"`
	SentAt        *time.Time        `json:"sent_at"`
	CreatedAt     time.Time         `json:"created_at"`
}
