package services

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"saree-api/models"
	"saree-api/realtime"
	"saree-api/testutil"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []realtime.Message
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, v.(realtime.Message))
	return nil
}

func (f *fakeConn) Close() error { return nil }

func (f *fakeConn) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

type fixture struct {
	db         *gorm.DB
	hub        *realtime.Hub
	orders     *OrderService
	restaurant models.Restaurant
	burger     models.MenuItem
	customer   models.Customer
	admin      models.User
	driver     models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	hub := realtime.NewHub()
	f := &fixture{
		db:     db,
		hub:    hub,
		orders: NewOrderService(db, NewNotifier(db, hub), time.UTC),
	}

	f.restaurant = models.Restaurant{
		Name: "Grill House", Address: "Hadda St", DeliveryFee: 500,
		MinimumOrder: 0, IsActive: true, IsOpen: true,
	}
	require.NoError(t, db.Create(&f.restaurant).Error)
	f.burger = models.MenuItem{RestaurantID: f.restaurant.ID, Name: "Burger", Price: 1000, IsAvailable: true}
	require.NoError(t, db.Create(&f.burger).Error)

	f.customer = models.Customer{Name: "Amal", Phone: "+967700000001", IsActive: true}
	require.NoError(t, db.Create(&f.customer).Error)

	f.admin = newStaff(t, db, models.RoleAdmin, "+967700000002")
	f.driver = newStaff(t, db, models.RoleDriver, "+967700000003")
	return f
}

func newStaff(t *testing.T, db *gorm.DB, role models.UserRole, phone string) models.User {
	t.Helper()
	u := models.User{Name: string(role), Phone: &phone, PasswordHash: "x", Role: role, IsActive: true}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func (f *fixture) place(t *testing.T, qty int, offerID *uuid.UUID) *models.Order {
	t.Helper()
	order, err := f.orders.PlaceOrder(t.Context(), f.customer.ID, PlaceOrderInput{
		RestaurantID:    f.restaurant.ID,
		Items:           []LineInput{{MenuItemID: f.burger.ID, Quantity: qty}},
		DeliveryAddress: models.DeliveryAddress{Address: "Street 14, Sanaa"},
		OfferID:         offerID,
	})
	require.NoError(t, err)
	return order
}

func (f *fixture) move(t *testing.T, orderID uuid.UUID, to models.OrderStatus, actor models.User) *models.Order {
	t.Helper()
	order, err := f.orders.Transition(t.Context(), TransitionInput{
		OrderID: orderID, To: to, Actor: actor.Role, ActorID: actor.ID,
	})
	require.NoError(t, err)
	return order
}
