package models

import (
	"time"

	"gorm.io/datatypes"
)

// Setting is a key/value row. Only IsPublic rows are served to
// unauthenticated clients. Value is raw JSON kept in a text column: sqlite
// gives a JSON column numeric affinity and would hand scalars back as numbers.
type Setting struct {
	Base
	Key         string         `json:"key" gorm:"not null;uniqueIndex"`
	Value       datatypes.JSON `json:"value" gorm:"type:text;not null"`
	Description string         `json:"description"`
	Category    string         `json:"category" gorm:"not null;default:'general'"`
	IsPublic    bool           `json:"is_public" gorm:"not null"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
