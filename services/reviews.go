package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"saree-api/models"
)

type ReviewService struct {
	db *gorm.DB
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{db: db}
}

type ReviewInput struct {
	Rating        int        `json:"rating" binding:"required,min=1,max=5"`
	Comment       string     `json:"comment" binding:"max=2000"`
	MenuItemID    *uuid.UUID `json:"menu_item_id"`
	FoodQuality   *int       `json:"food_quality" binding:"omitempty,min=1,max=5"`
	DeliverySpeed *int       `json:"delivery_speed" binding:"omitempty,min=1,max=5"`
	Packaging     *int       `json:"packaging" binding:"omitempty,min=1,max=5"`
	DriverService *int       `json:"driver_service" binding:"omitempty,min=1,max=5"`
}

// Submit stores the customer's review of a delivered order and refreshes
// the restaurant's rating. One review per order.
func (s *ReviewService) Submit(ctx context.Context, customerID, orderID uuid.UUID, in ReviewInput) (*models.Review, error) {
	var review models.Review
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
			return notFound("order", err)
		}
		if order.CustomerID != customerID {
			return fmt.Errorf("%w: this order does not belong to you", ErrForbidden)
		}
		if order.Status != models.StatusDelivered {
			return fmt.Errorf("%w: only delivered orders can be reviewed", ErrUnprocessable)
		}

		review = models.Review{
			CustomerID:    customerID,
			RestaurantID:  order.RestaurantID,
			OrderID:       order.ID,
			MenuItemID:    in.MenuItemID,
			Rating:        in.Rating,
			Comment:       in.Comment,
			FoodQuality:   in.FoodQuality,
			DeliverySpeed: in.DeliverySpeed,
			Packaging:     in.Packaging,
			DriverService: in.DriverService,
			IsApproved:    true,
		}
		if err := tx.Create(&review).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: order already reviewed", ErrConflict)
			}
			return fmt.Errorf("create review: %w", err)
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).
			UpdateColumns(map[string]interface{}{"rating": in.Rating, "review": in.Comment}).Error; err != nil {
			return err
		}
		return refreshRestaurantRating(tx, order.RestaurantID)
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

type ModerateInput struct {
	IsApproved    *bool  `json:"is_approved" binding:"required"`
	AdminResponse string `json:"admin_response" binding:"max=2000"`
}

// Moderate approves or hides a review; only approved reviews count toward
// the restaurant rating.
func (s *ReviewService) Moderate(ctx context.Context, id uuid.UUID, in ModerateInput) (*models.Review, error) {
	var review models.Review
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&review, "id = ?", id).Error; err != nil {
			return notFound("review", err)
		}
		if err := tx.Model(&review).Updates(map[string]interface{}{
			"is_approved":    *in.IsApproved,
			"admin_response": in.AdminResponse,
		}).Error; err != nil {
			return err
		}
		return refreshRestaurantRating(tx, review.RestaurantID)
	})
	if err != nil {
		return nil, err
	}
	review.IsApproved = *in.IsApproved
	review.AdminResponse = in.AdminResponse
	return &review, nil
}

// ReviewFilter narrows List. A nil Approved means both states.
type ReviewFilter struct {
	RestaurantID *uuid.UUID
	Approved     *bool
	Limit        int
	Offset       int
}

func (s *ReviewService) List(ctx context.Context, f ReviewFilter) ([]models.Review, error) {
	q := s.db.WithContext(ctx).Order("created_at desc")
	if f.RestaurantID != nil {
		q = q.Where("restaurant_id = ?", *f.RestaurantID)
	}
	if f.Approved != nil {
		q = q.Where("is_approved = ?", *f.Approved)
	}
	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var rows []models.Review
	err := q.Limit(limit).Offset(f.Offset).Find(&rows).Error
	return rows, err
}

func refreshRestaurantRating(tx *gorm.DB, restaurantID uuid.UUID) error {
	var agg struct {
		Avg   float64
		Count int
	}
	if err := tx.Model(&models.Review{}).
		Where("restaurant_id = ? AND is_approved = ?", restaurantID, true).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Scan(&agg).Error; err != nil {
		return fmt.Errorf("aggregate reviews: %w", err)
	}
	return tx.Model(&models.Restaurant{}).Where("id = ?", restaurantID).UpdateColumns(map[string]interface{}{
		"rating":       round2(agg.Avg),
		"review_count": agg.Count,
	}).Error
}
