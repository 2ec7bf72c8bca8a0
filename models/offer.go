package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	OfferTypeDiscount     = "discount"
	OfferTypeBuyOneGetOne = "buy_one_get_one"
	OfferTypeFreeDelivery = "free_delivery"
	OfferTypeCombo        = "combo"

	DiscountPercentage  = "percentage"
	DiscountFixedAmount = "fixed_amount"
)

// SpecialOffer is a time and day windowed discount rule, optionally scoped
// to a restaurant, a category or a set of menu items.
type SpecialOffer struct {
	Base
	Title         string                         `json:"title" gorm:"not null"`
	TitleEn       string                         `json:"title_en"`
	Description   string                         `json:"description"`
	Image         string                         `json:"image"`
	BannerImage   string                         `json:"banner_image"`
	Type          string                         `json:"type" gorm:"not null"`
	DiscountType  string                         `json:"discount_type"`
	DiscountValue float64                        `json:"discount_value" gorm:"not null;default:0"`
	MinimumOrder  float64                        `json:"minimum_order" gorm:"not null;default:0"`
	MaxDiscount   *float64                       `json:"max_discount"`
	RestaurantID  *uuid.UUID                     `json:"restaurant_id" gorm:"type:uuid;index"`
	CategoryID    *uuid.UUID                     `json:"category_id" gorm:"type:uuid;index"`
	MenuItemIDs   datatypes.JSONSlice[uuid.UUID] `json:"menu_item_ids"`
	StartDate     time.Time                      `json:"start_date" gorm:"not null"`
	EndDate       time.Time                      `json:"end_date" gorm:"not null"`
	StartTime     string                         `json:"start_time"`
	EndTime       string                         `json:"end_time"`
	DaysOfWeek    datatypes.JSONSlice[int]       `json:"days_of_week"`
	UsageLimit    *int                           `json:"usage_limit"`
	UsageCount    int                            `json:"usage_count" gorm:"not null;default:0"`
	IsActive      bool                           `json:"is_active" gorm:"not null"`
	Priority      int                            `json:"priority" gorm:"not null;default:0"`
	CreatedAt     time.Time                      `json:"created_at"`
	UpdatedAt     time.Time                      `json:"updated_at"`
}
