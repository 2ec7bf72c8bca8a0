package offers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"saree-api/metrics"
	"saree-api/models"
)

// Redeem takes one use of the offer in a single conditional update, so
// concurrent redemptions can never push usage_count past usage_limit.
// Run it inside the order transaction so a failed order gives the use back.
func Redeem(tx *gorm.DB, offerID uuid.UUID) error {
	res := tx.Model(&models.SpecialOffer{}).
		Where("id = ? AND is_active = ? AND (usage_limit IS NULL OR usage_count < usage_limit)", offerID, true).
		UpdateColumn("usage_count", gorm.Expr("usage_count + ?", 1))
	if res.Error != nil {
		metrics.OfferRedemptions.WithLabelValues("error").Inc()
		return fmt.Errorf("redeem offer %s: %w", offerID, res.Error)
	}
	if res.RowsAffected == 0 {
		metrics.OfferRedemptions.WithLabelValues("exhausted").Inc()
		return ErrOfferExhausted
	}
	metrics.OfferRedemptions.WithLabelValues("redeemed").Inc()
	return nil
}

// ListAvailable returns active offers usable at now, highest priority first.
func ListAvailable(ctx context.Context, db *gorm.DB, now time.Time, restaurantID *uuid.UUID) ([]models.SpecialOffer, error) {
	q := db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("priority desc, created_at desc")
	if restaurantID != nil {
		q = q.Where("restaurant_id IS NULL OR restaurant_id = ?", *restaurantID)
	}
	var rows []models.SpecialOffer
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	out := rows[:0]
	for i := range rows {
		if CheckAvailable(&rows[i], now) == nil {
			out = append(out, rows[i])
		}
	}
	return out, nil
}
