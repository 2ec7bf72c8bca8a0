package offers

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"saree-api/models"
	"saree-api/testutil"
)

func TestRedeemStopsAtLimit(t *testing.T) {
	db := testutil.NewDB(t)
	o := percentOffer()
	o.UsageLimit = ptr(2)
	require.NoError(t, db.Create(o).Error)

	require.NoError(t, Redeem(db, o.ID))
	require.NoError(t, Redeem(db, o.ID))
	assert.ErrorIs(t, Redeem(db, o.ID), ErrOfferExhausted)

	var got models.SpecialOffer
	require.NoError(t, db.First(&got, "id = ?", o.ID).Error)
	assert.Equal(t, 2, got.UsageCount)
}

func TestConcurrentRedemptionsNeverOverrun(t *testing.T) {
	db := testutil.NewDB(t)
	o := percentOffer()
	o.UsageLimit = ptr(5)
	require.NoError(t, db.Create(o).Error)

	var ok int32
	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := db.Transaction(func(tx *gorm.DB) error { return Redeem(tx, o.ID) })
			if err == nil {
				atomic.AddInt32(&ok, 1)
			} else if !errors.Is(err, ErrOfferExhausted) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	var got models.SpecialOffer
	require.NoError(t, db.First(&got, "id = ?", o.ID).Error)
	assert.Equal(t, 5, got.UsageCount)
	assert.EqualValues(t, 5, ok)
}

func TestRolledBackRedemptionReleasesTheUse(t *testing.T) {
	db := testutil.NewDB(t)
	o := percentOffer()
	o.UsageLimit = ptr(1)
	require.NoError(t, db.Create(o).Error)

	boom := errors.New("order insert failed")
	err := db.Transaction(func(tx *gorm.DB) error {
		require.NoError(t, Redeem(tx, o.ID))
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.NoError(t, Redeem(db, o.ID))
}

func TestRedeemRejectsInactive(t *testing.T) {
	db := testutil.NewDB(t)
	o := percentOffer()
	require.NoError(t, db.Create(o).Error)
	require.NoError(t, db.Model(o).Update("is_active", false).Error)

	assert.ErrorIs(t, Redeem(db, o.ID), ErrOfferExhausted)
}

func TestListAvailableFiltersWindows(t *testing.T) {
	db := testutil.NewDB(t)
	live := percentOffer()
	live.Title = "live"
	expired := percentOffer()
	expired.Title = "expired"
	expired.EndDate = noon.AddDate(0, 0, -1)
	full := percentOffer()
	full.Title = "full"
	full.UsageLimit = ptr(1)
	full.UsageCount = 1
	for _, o := range []*models.SpecialOffer{live, expired, full} {
		require.NoError(t, db.Create(o).Error)
	}

	got, err := ListAvailable(context.Background(), db, noon, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "live", got[0].Title)
}
