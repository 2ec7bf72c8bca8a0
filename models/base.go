package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base gives every table a UUID primary key. Ids are unique across admins,
// drivers and customers, so the socket registry can key on them directly.
type Base struct {
	ID uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Session{},
		&Category{},
		&Section{},
		&Restaurant{},
		&MenuItem{},
		&Customer{},
		&CustomerAddress{},
		&Order{},
		&OrderTracking{},
		&SpecialOffer{},
		&Notification{},
		&Review{},
		&Setting{},
		&DriverStats{},
	}
}
