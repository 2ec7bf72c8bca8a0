package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// OrderStatus represents all possible states of a delivery order
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusPickedUp  OrderStatus = "picked_up"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists the closed set in lifecycle order.
var OrderStatuses = []OrderStatus{
	StatusPending, StatusConfirmed, StatusPreparing, StatusReady,
	StatusPickedUp, StatusDelivered, StatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentFailed   = "failed"
	PaymentRefunded = "refunded"
)

// OrderLine is the snapshot of one ordered menu item. It is copied into the
// order at creation and never re-read from the menu.
type OrderLine struct {
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Name       string    `json:"name"`
	Price      float64   `json:"price"`
	Quantity   int       `json:"quantity"`
	LineTotal  float64   `json:"line_total"`
	Notes      string    `json:"notes,omitempty"`
}

// DeliveryAddress is snapshotted like the items.
type DeliveryAddress struct {
	Title     string   `json:"title,omitempty"`
	Address   string   `json:"address"`
	Building  string   `json:"building,omitempty"`
	Floor     string   `json:"floor,omitempty"`
	Apartment string   `json:"apartment,omitempty"`
	Landmark  string   `json:"landmark,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Order struct {
	Base
	OrderNumber          string                              `json:"order_number" gorm:"not null;uniqueIndex"`
	CustomerID           uuid.UUID                           `json:"customer_id" gorm:"type:uuid;not null;index"`
	Customer             *Customer                           `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	RestaurantID         uuid.UUID                           `json:"restaurant_id" gorm:"type:uuid;not null;index"`
	Restaurant           *Restaurant                         `json:"restaurant,omitempty" gorm:"foreignKey:RestaurantID"`
	DriverID             *uuid.UUID                          `json:"driver_id" gorm:"type:uuid;index"`
	Driver               *User                               `json:"driver,omitempty" gorm:"foreignKey:DriverID"`
	OfferID              *uuid.UUID                          `json:"offer_id" gorm:"type:uuid"`
	Status               OrderStatus                         `json:"status" gorm:"not null;index"`
	PaymentStatus        string                              `json:"payment_status" gorm:"not null"`
	PaymentMethod        string                              `json:"payment_method" gorm:"not null"`
	Items                datatypes.JSONSlice[OrderLine]      `json:"items" gorm:"not null"`
	Subtotal             float64                             `json:"subtotal" gorm:"not null"`
	DeliveryFee          float64                             `json:"delivery_fee" gorm:"not null;default:0"`
	ServiceFee           float64                             `json:"service_fee" gorm:"not null;default:0"`
	Discount             float64                             `json:"discount" gorm:"not null;default:0"`
	Tax                  float64                             `json:"tax" gorm:"not null;default:0"`
	Total                float64                             `json:"total" gorm:"not null"`
	DeliveryAddress      datatypes.JSONType[DeliveryAddress] `json:"delivery_address" gorm:"not null"`
	CustomerPhone        string                              `json:"customer_phone" gorm:"not null"`
	CustomerName         string                              `json:"customer_name" gorm:"not null"`
	DeliveryInstructions string                              `json:"delivery_instructions"`
	EstimatedDeliveryAt  *time.Time                          `json:"estimated_delivery_time"`
	ActualDeliveryAt     *time.Time                          `json:"actual_delivery_time"`
	DriverEarnings       float64                             `json:"driver_earnings" gorm:"not null;default:0"`
	DriverNotes          string                              `json:"driver_notes"`
	Rating               *int                                `json:"rating"`
	Review               string                              `json:"review"`
	Tracking             []OrderTracking                     `json:"tracking,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt            time.Time                           `json:"created_at"`
	UpdatedAt            time.Time                           `json:"updated_at"`
}

// OrderTracking is the append-only audit trail of the order state machine.
// Seq orders rows within one order in the sequence the store accepted them.
type OrderTracking struct {
	Base
	OrderID       uuid.UUID                     `json:"order_id" gorm:"type:uuid;not null;uniqueIndex:idx_tracking_order_seq"`
	Seq           int                           `json:"seq" gorm:"not null;uniqueIndex:idx_tracking_order_seq"`
	Status        OrderStatus                   `json:"status" gorm:"not null"`
	Message       string                        `json:"message"`
	Location      *datatypes.JSONType[Location] `json:"location,omitempty"`
	Timestamp     time.Time                     `json:"timestamp" gorm:"not null"`
	CreatedBy     *uuid.UUID                    `json:"created_by" gorm:"type:uuid"`
	CreatedByType UserRole                      `json:"created_by_type" gorm:"not null"`
}
