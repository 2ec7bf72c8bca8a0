package seed

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saree-api/models"
	"saree-api/realtime"
	"saree-api/services"
	"saree-api/testutil"
)

var opts = Options{
	AdminEmail:     "Admin@Saree.local",
	AdminPassword:  "admin-pass",
	DriverPhone:    "+967771234567",
	DriverPassword: "driver-pass",
}

func TestSeedIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)

	require.NoError(t, Run(t.Context(), db, opts))
	require.NoError(t, Run(t.Context(), db, opts))

	var admins, drivers, categories, sections, settings int64
	db.Model(&models.User{}).Where("user_type = ?", models.RoleAdmin).Count(&admins)
	db.Model(&models.User{}).Where("user_type = ?", models.RoleDriver).Count(&drivers)
	db.Model(&models.Category{}).Count(&categories)
	db.Model(&models.Section{}).Count(&sections)
	db.Model(&models.Setting{}).Count(&settings)

	assert.EqualValues(t, 1, admins)
	assert.EqualValues(t, 1, drivers)
	assert.EqualValues(t, 4, categories)
	assert.EqualValues(t, 6, sections)
	assert.EqualValues(t, 5, settings)
}

func TestSeedConcurrentRuns(t *testing.T) {
	db := testutil.NewDB(t)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, Run(t.Context(), db, opts))
		}()
	}
	wg.Wait()

	var admins int64
	db.Model(&models.User{}).Where("user_type = ?", models.RoleAdmin).Count(&admins)
	assert.EqualValues(t, 1, admins)
}

func TestSeededCredentialsWork(t *testing.T) {
	db := testutil.NewDB(t)
	require.NoError(t, Run(t.Context(), db, opts))

	accounts := services.NewAccountService(db)
	_, err := accounts.AuthenticateStaff(t.Context(), models.RoleAdmin, "admin@saree.local", "admin-pass")
	assert.NoError(t, err)
	_, err = accounts.AuthenticateStaff(t.Context(), models.RoleDriver, "+967771234567", "driver-pass")
	assert.NoError(t, err)

	fee, ok, err := services.SettingFloat(db, services.SettingServiceFeePercentage)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, fee)

	minimum, ok, err := services.SettingFloat(db, services.SettingMinimumOrder)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1000.0, minimum)
}

func TestSeededSettingsReadBack(t *testing.T) {
	db := testutil.NewDB(t)
	require.NoError(t, Run(t.Context(), db, opts))

	public, err := services.NewSettingService(db).Public(t.Context())
	require.NoError(t, err)
	values := map[string]string{}
	for _, s := range public {
		values[s.Key] = string(s.Value)
	}
	assert.Equal(t, "500", values[services.SettingDeliveryFee])
	assert.Equal(t, `"YER"`, values["currency"])
	assert.NotContains(t, values, services.SettingServiceFeePercentage)
}

func TestSeededStoreOrderTotal(t *testing.T) {
	db := testutil.NewDB(t)
	require.NoError(t, Run(t.Context(), db, opts))

	restaurant := models.Restaurant{Name: "Mandi House", Address: "Hadda", DeliveryFee: 500, IsActive: true, IsOpen: true}
	require.NoError(t, db.Create(&restaurant).Error)
	item := models.MenuItem{RestaurantID: restaurant.ID, Name: "Mandi", Price: 1000, IsAvailable: true}
	require.NoError(t, db.Create(&item).Error)
	customer := models.Customer{Name: "Huda", Phone: "+967733000000", IsActive: true}
	require.NoError(t, db.Create(&customer).Error)

	maxDiscount, limit := 300.0, 5
	offer := models.SpecialOffer{
		Title: "Ten off", Type: models.OfferTypeDiscount,
		DiscountType: models.DiscountPercentage, DiscountValue: 10,
		MaxDiscount: &maxDiscount, MinimumOrder: 1000, UsageLimit: &limit,
		StartDate: time.Now().Add(-time.Hour), EndDate: time.Now().Add(time.Hour),
		IsActive: true,
	}
	require.NoError(t, db.Create(&offer).Error)

	orders := services.NewOrderService(db, services.NewNotifier(db, realtime.NewHub()), time.UTC)
	order, err := orders.PlaceOrder(t.Context(), customer.ID, services.PlaceOrderInput{
		RestaurantID:    restaurant.ID,
		Items:           []services.LineInput{{MenuItemID: item.ID, Quantity: 2}},
		DeliveryAddress: models.DeliveryAddress{Address: "Street 9"},
		OfferID:         &offer.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 2000.0, order.Subtotal)
	assert.Equal(t, 200.0, order.Discount)
	assert.Zero(t, order.ServiceFee)
	assert.Equal(t, 2300.0, order.Total)
}
