package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Review struct {
	Base
	CustomerID    uuid.UUID                   `json:"customer_id" gorm:"type:uuid;not null;index"`
	RestaurantID  uuid.UUID                   `json:"restaurant_id" gorm:"type:uuid;not null;index"`
	OrderID       uuid.UUID                   `json:"order_id" gorm:"type:uuid;not null;uniqueIndex"`
	MenuItemID    *uuid.UUID                  `json:"menu_item_id" gorm:"type:uuid"`
	Rating        int                         `json:"rating" gorm:"not null"`
	Comment       string                      `json:"comment"`
	Images        datatypes.JSONSlice[string] `json:"images"`
	FoodQuality   *int                        `json:"food_quality"`
	DeliverySpeed *int                        `json:"delivery_speed"`
	Packaging     *int                        `json:"packaging"`
	DriverService *int                        `json:"driver_service"`
	IsApproved    bool                        `json:"is_approved" gorm:"not null"`
	AdminResponse string                      `json:"admin_response"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
}
