package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saree-api/models"
)

func TestRecomputeCustomersRestoresCounters(t *testing.T) {
	f := newFixture(t)
	delivered := f.place(t, 2, nil)
	for _, s := range []models.OrderStatus{models.StatusConfirmed, models.StatusPreparing, models.StatusReady, models.StatusPickedUp, models.StatusDelivered} {
		f.move(t, delivered.ID, s, f.admin)
	}
	cancelled := f.place(t, 1, nil)
	f.move(t, cancelled.ID, models.StatusCancelled, f.admin)
	f.place(t, 1, nil)

	// drift the advisory counters
	require.NoError(t, f.db.Model(&models.Customer{}).Where("id = ?", f.customer.ID).
		UpdateColumns(map[string]interface{}{"total_orders": 42, "total_spent": 1, "loyalty_points": 7}).Error)
	idle := models.Customer{Name: "Idle", Phone: "+967700000077", IsActive: true, TotalOrders: 5}
	require.NoError(t, f.db.Create(&idle).Error)

	stats := NewStatsService(f.db, nil)
	n, err := stats.RecomputeCustomers(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var c models.Customer
	require.NoError(t, f.db.First(&c, "id = ?", f.customer.ID).Error)
	assert.Equal(t, 2, c.TotalOrders)
	assert.Equal(t, 2500.0, c.TotalSpent)
	assert.Equal(t, 25, c.LoyaltyPoints)

	require.NoError(t, f.db.First(&idle, "id = ?", idle.ID).Error)
	assert.Zero(t, idle.TotalOrders)
}

func TestDashboardCounts(t *testing.T) {
	f := newFixture(t)
	f.place(t, 1, nil)

	d, err := NewStatsService(f.db, nil).Dashboard(t.Context())
	require.NoError(t, err)
	assert.EqualValues(t, 1, d.OrdersByStatus[models.StatusPending])
	assert.EqualValues(t, 1, d.Customers)
	assert.EqualValues(t, 1, d.ActiveDrivers)
	assert.EqualValues(t, 1, d.Restaurants)
}

func TestDashboardTodayUsesServiceZone(t *testing.T) {
	f := newFixture(t)
	loc := time.FixedZone("UTC+14", 14*3600)
	fresh := f.place(t, 1, nil)
	old := f.place(t, 1, nil)

	now := time.Now().In(loc)
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, loc)
	require.NoError(t, f.db.Model(&models.Order{}).Where("id = ?", old.ID).
		UpdateColumn("created_at", midnight.Add(-time.Minute).UTC()).Error)

	dash, err := NewStatsService(f.db, loc).Dashboard(t.Context())
	require.NoError(t, err)
	assert.EqualValues(t, 1, dash.OrdersToday, "only %s was placed after local midnight", fresh.OrderNumber)
}

func TestDriverHistoryKeysByLocalDay(t *testing.T) {
	f := newFixture(t)
	loc := time.FixedZone("UTC-11", -11*3600)
	order := f.place(t, 1, nil)
	f.move(t, order.ID, models.StatusConfirmed, f.admin)
	f.move(t, order.ID, models.StatusPreparing, f.admin)
	f.move(t, order.ID, models.StatusReady, f.admin)
	f.move(t, order.ID, models.StatusPickedUp, f.driver)

	rows, err := NewStatsService(f.db, loc).DriverHistory(t.Context(), f.driver.ID, 3)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].TotalOrders)
}
