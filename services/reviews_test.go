package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saree-api/models"
)

func TestReviewOnlyAfterDelivery(t *testing.T) {
	f := newFixture(t)
	reviews := NewReviewService(f.db)
	order := f.place(t, 1, nil)

	_, err := reviews.Submit(t.Context(), f.customer.ID, order.ID, ReviewInput{Rating: 5})
	assert.ErrorIs(t, err, ErrUnprocessable)

	for _, s := range []models.OrderStatus{models.StatusConfirmed, models.StatusPreparing, models.StatusReady, models.StatusPickedUp, models.StatusDelivered} {
		f.move(t, order.ID, s, f.admin)
	}

	review, err := reviews.Submit(t.Context(), f.customer.ID, order.ID, ReviewInput{Rating: 4, Comment: "hot and fast"})
	require.NoError(t, err)
	assert.Equal(t, f.restaurant.ID, review.RestaurantID)

	_, err = reviews.Submit(t.Context(), f.customer.ID, order.ID, ReviewInput{Rating: 1})
	assert.ErrorIs(t, err, ErrConflict)

	var r models.Restaurant
	require.NoError(t, f.db.First(&r, "id = ?", f.restaurant.ID).Error)
	assert.Equal(t, 4.0, r.Rating)
	assert.Equal(t, 1, r.ReviewCount)

	hidden := false
	_, err = reviews.Moderate(t.Context(), review.ID, ModerateInput{IsApproved: &hidden})
	require.NoError(t, err)
	require.NoError(t, f.db.First(&r, "id = ?", f.restaurant.ID).Error)
	assert.Zero(t, r.ReviewCount)
}

func TestPendingReviewsAreFilteredBeforePaging(t *testing.T) {
	f := newFixture(t)
	reviews := NewReviewService(f.db)
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 6; i++ {
		require.NoError(t, f.db.Create(&models.Review{
			CustomerID:   f.customer.ID,
			RestaurantID: f.restaurant.ID,
			OrderID:      uuid.New(),
			Rating:       5,
			IsApproved:   i >= 2,
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}

	pending := false
	rows, err := reviews.List(t.Context(), ReviewFilter{Approved: &pending, Limit: 3})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.False(t, r.IsApproved)
	}

	all, err := reviews.List(t.Context(), ReviewFilter{RestaurantID: &f.restaurant.ID, Limit: 3, Offset: 3})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
