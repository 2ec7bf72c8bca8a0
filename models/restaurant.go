package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Restaurant struct {
	Base
	Name         string                      `json:"name" gorm:"not null"`
	NameEn       string                      `json:"name_en"`
	Description  string                      `json:"description"`
	Image        string                      `json:"image"`
	Logo         string                      `json:"logo"`
	CoverImage   string                      `json:"cover_image"`
	CategoryID   *uuid.UUID                  `json:"category_id" gorm:"type:uuid;index"`
	Category     *Category                   `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Phone        string                      `json:"phone"`
	Email        string                      `json:"email"`
	Address      string                      `json:"address" gorm:"not null"`
	Latitude     *float64                    `json:"latitude"`
	Longitude    *float64                    `json:"longitude"`
	Rating       float64                     `json:"rating" gorm:"not null;default:0"`
	ReviewCount  int                         `json:"review_count" gorm:"not null;default:0"`
	DeliveryFee  float64                     `json:"delivery_fee" gorm:"not null;default:0"`
	MinimumOrder float64                     `json:"minimum_order" gorm:"not null;default:0"`
	DeliveryTime string                      `json:"delivery_time"`
	IsActive     bool                        `json:"is_active" gorm:"not null"`
	IsOpen       bool                        `json:"is_open" gorm:"not null"`
	OpeningHours datatypes.JSONMap           `json:"opening_hours"`
	Tags         datatypes.JSONSlice[string] `json:"tags"`
	Features     datatypes.JSONSlice[string] `json:"features"`
	MenuItems    []MenuItem                  `json:"menu_items,omitempty" gorm:"foreignKey:RestaurantID"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

type MenuItem struct {
	Base
	RestaurantID    uuid.UUID                   `json:"restaurant_id" gorm:"type:uuid;not null;index"`
	SectionID       *uuid.UUID                  `json:"section_id" gorm:"type:uuid;index"`
	Section         *Section                    `json:"section,omitempty" gorm:"foreignKey:SectionID"`
	Name            string                      `json:"name" gorm:"not null"`
	NameEn          string                      `json:"name_en"`
	Description     string                      `json:"description"`
	Image           string                      `json:"image"`
	Price           float64                     `json:"price" gorm:"not null"`
	OriginalPrice   *float64                    `json:"original_price"`
	IsAvailable     bool                        `json:"is_available" gorm:"not null"`
	IsPopular       bool                        `json:"is_popular" gorm:"not null"`
	IsFeatured      bool                        `json:"is_featured" gorm:"not null"`
	PreparationTime int                         `json:"preparation_time" gorm:"not null;default:15"`
	Calories        *int                        `json:"calories"`
	Ingredients     datatypes.JSONSlice[string] `json:"ingredients"`
	Allergens       datatypes.JSONSlice[string] `json:"allergens"`
	Tags            datatypes.JSONSlice[string] `json:"tags"`
	SortOrder       int                         `json:"sort_order" gorm:"not null;default:0"`
	CreatedAt       time.Time                   `json:"created_at"`
	UpdatedAt       time.Time                   `json:"updated_at"`
}
