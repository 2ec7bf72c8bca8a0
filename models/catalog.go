package models

import "time"

type Category struct {
	Base
	Name        string    `json:"name" gorm:"not null;uniqueIndex"`
	NameEn      string    `json:"name_en"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Image       string    `json:"image"`
	Color       string    `json:"color" gorm:"default:'#FF6B35'"`
	IsActive    bool      `json:"is_active" gorm:"not null"`
	SortOrder   int       `json:"sort_order" gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Section groups menu items inside a restaurant (grills, drinks, desserts...).
type Section struct {
	Base
	Name        string    `json:"name" gorm:"not null;uniqueIndex"`
	NameEn      string    `json:"name_en"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	IsActive    bool      `json:"is_active" gorm:"not null"`
	SortOrder   int       `json:"sort_order" gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"created_at"`
}
