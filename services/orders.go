package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"saree-api/metrics"
	"saree-api/models"
	"saree-api/offers"
	"saree-api/statemachine"
)

// OrderService owns every write to orders and their tracking log.
type OrderService struct {
	db       *gorm.DB
	notifier *Notifier
	loc      *time.Location
	now      func() time.Time
}

func NewOrderService(db *gorm.DB, notifier *Notifier, loc *time.Location) *OrderService {
	if loc == nil {
		loc = time.UTC
	}
	return &OrderService{db: db, notifier: notifier, loc: loc, now: time.Now}
}

type LineInput struct {
	MenuItemID uuid.UUID `json:"menu_item_id" binding:"required"`
	Quantity   int       `json:"quantity" binding:"required,min=1,max=100"`
	Notes      string    `json:"notes" binding:"max=500"`
}

type PlaceOrderInput struct {
	RestaurantID         uuid.UUID              `json:"restaurant_id" binding:"required"`
	Items                []LineInput            `json:"items" binding:"required,min=1,dive"`
	DeliveryAddress      models.DeliveryAddress `json:"delivery_address"`
	PaymentMethod        string                 `json:"payment_method" binding:"omitempty,oneof=cash card wallet"`
	OfferID              *uuid.UUID             `json:"offer_id"`
	DeliveryInstructions string                 `json:"delivery_instructions" binding:"max=1000"`
}

// PlaceOrder snapshots the cart, prices it, redeems the offer if any and
// stores the order with its first tracking row, all in one transaction.
func (s *OrderService) PlaceOrder(ctx context.Context, customerID uuid.UUID, in PlaceOrderInput) (*models.Order, error) {
	if strings.TrimSpace(in.DeliveryAddress.Address) == "" {
		return nil, fmt.Errorf("%w: delivery address is required", ErrUnprocessable)
	}
	now := s.now().In(s.loc)
	var order models.Order

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var customer models.Customer
		if err := tx.First(&customer, "id = ?", customerID).Error; err != nil {
			return notFound("customer", err)
		}

		var restaurant models.Restaurant
		if err := tx.First(&restaurant, "id = ?", in.RestaurantID).Error; err != nil {
			return notFound("restaurant", err)
		}
		if !restaurant.IsActive || !restaurant.IsOpen {
			return fmt.Errorf("%w: restaurant is currently closed", ErrUnprocessable)
		}

		lines, subtotal, err := snapshotLines(tx, restaurant.ID, in.Items)
		if err != nil {
			return err
		}
		if subtotal < restaurant.MinimumOrder {
			return fmt.Errorf("%w: minimum order for this restaurant is %.2f", ErrUnprocessable, restaurant.MinimumOrder)
		}

		serviceFee := 0.0
		if pct, ok, err := SettingFloat(tx, SettingServiceFeePercentage); err != nil {
			return err
		} else if ok {
			serviceFee = round2(subtotal * pct / 100)
		}

		var discount float64
		var offerID *uuid.UUID
		if in.OfferID != nil {
			var offer models.SpecialOffer
			if err := tx.First(&offer, "id = ?", *in.OfferID).Error; err != nil {
				return notFound("offer", err)
			}
			quote, err := offers.Evaluate(&offer, offers.Cart{
				RestaurantID: restaurant.ID,
				CategoryID:   restaurant.CategoryID,
				Lines:        lines,
				Subtotal:     subtotal,
				DeliveryFee:  restaurant.DeliveryFee,
			}, now)
			if err != nil {
				return err
			}
			if err := offers.Redeem(tx, offer.ID); err != nil {
				return err
			}
			discount = quote.Discount
			offerID = &offer.ID
		}

		total := round2(subtotal + restaurant.DeliveryFee + serviceFee - discount)
		if total < 0 {
			total = 0
		}
		method := in.PaymentMethod
		if method == "" {
			method = "cash"
		}
		eta := now.Add(time.Duration(30+5*len(lines)) * time.Minute).UTC()

		order = models.Order{
			OrderNumber:          newOrderNumber(now),
			CustomerID:           customer.ID,
			RestaurantID:         restaurant.ID,
			OfferID:              offerID,
			Status:               models.StatusPending,
			PaymentStatus:        models.PaymentPending,
			PaymentMethod:        method,
			Items:                lines,
			Subtotal:             subtotal,
			DeliveryFee:          restaurant.DeliveryFee,
			ServiceFee:           serviceFee,
			Discount:             discount,
			Total:                total,
			DeliveryAddress:      datatypes.NewJSONType(in.DeliveryAddress),
			CustomerPhone:        customer.Phone,
			CustomerName:         customer.Name,
			DeliveryInstructions: in.DeliveryInstructions,
			EstimatedDeliveryAt:  &eta,
		}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		if err := appendTracking(tx, order.ID, models.StatusPending, "Order placed", nil, models.RoleCustomer, &customer.ID, now); err != nil {
			return err
		}
		return tx.Model(&models.Customer{}).Where("id = ?", customer.ID).
			UpdateColumn("total_orders", gorm.Expr("total_orders + ?", 1)).Error
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, func() error {
		_, _, err := s.notifier.ToRole(ctx, models.RoleAdmin, Push{
			Type:    models.NotificationOrderUpdate,
			Title:   "New order",
			Message: fmt.Sprintf("Order %s was placed", order.OrderNumber),
			Data:    map[string]interface{}{"order_id": order.ID, "order_number": order.OrderNumber, "status": order.Status},
		})
		return err
	})
	return s.Get(ctx, order.ID)
}

func snapshotLines(tx *gorm.DB, restaurantID uuid.UUID, items []LineInput) ([]models.OrderLine, float64, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.MenuItemID)
	}
	var menu []models.MenuItem
	if err := tx.Where("id IN ? AND restaurant_id = ?", ids, restaurantID).Find(&menu).Error; err != nil {
		return nil, 0, fmt.Errorf("load menu items: %w", err)
	}
	byID := make(map[uuid.UUID]models.MenuItem, len(menu))
	for _, m := range menu {
		byID[m.ID] = m
	}

	lines := make([]models.OrderLine, 0, len(items))
	var subtotal float64
	for _, it := range items {
		m, ok := byID[it.MenuItemID]
		if !ok {
			return nil, 0, fmt.Errorf("%w: menu item %s not found in this restaurant", ErrNotFound, it.MenuItemID)
		}
		if !m.IsAvailable {
			return nil, 0, fmt.Errorf("%w: menu item '%s' is not available", ErrUnprocessable, m.Name)
		}
		lineTotal := round2(m.Price * float64(it.Quantity))
		subtotal += lineTotal
		lines = append(lines, models.OrderLine{
			MenuItemID: m.ID,
			Name:       m.Name,
			Price:      m.Price,
			Quantity:   it.Quantity,
			LineTotal:  lineTotal,
			Notes:      it.Notes,
		})
	}
	return lines, round2(subtotal), nil
}

// TransitionInput describes one requested status change.
type TransitionInput struct {
	OrderID  uuid.UUID
	To       models.OrderStatus
	Actor    models.UserRole
	ActorID  uuid.UUID
	Message  string
	Location *models.Location
	// DriverID lets an admin assign a driver in the same step.
	DriverID *uuid.UUID
}

// Transition moves an order to in.To if the state machine allows it for the
// actor. The update is guarded on the status that was read, so two racing
// transitions cannot both succeed; the loser gets ErrConflict.
func (s *OrderService) Transition(ctx context.Context, in TransitionInput) (*models.Order, error) {
	if !in.To.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrUnprocessable, in.To)
	}
	now := s.now().In(s.loc)
	var order models.Order

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, "id = ?", in.OrderID).Error; err != nil {
			return notFound("order", err)
		}
		if err := checkOwnership(&order, in); err != nil {
			return err
		}
		if err := statemachine.CanTransition(order.Status, in.To, in.Actor); err != nil {
			return err
		}

		from := order.Status
		updates := map[string]interface{}{"status": in.To, "updated_at": now.UTC()}
		guard := tx.Model(&models.Order{}).Where("id = ? AND status = ?", order.ID, from)

		driverID := order.DriverID
		switch {
		case in.Actor == models.RoleDriver && in.To == models.StatusPickedUp:
			driverID = &in.ActorID
			guard = guard.Where("driver_id IS NULL OR driver_id = ?", in.ActorID)
		case in.Actor == models.RoleAdmin && in.DriverID != nil:
			if err := ensureDriver(tx, *in.DriverID); err != nil {
				return err
			}
			driverID = in.DriverID
		}
		if driverID != nil {
			updates["driver_id"] = *driverID
		}
		if in.To == models.StatusDelivered {
			updates["actual_delivery_at"] = now.UTC()
			updates["driver_earnings"] = order.DeliveryFee
			if order.PaymentMethod == "cash" {
				updates["payment_status"] = models.PaymentPaid
			}
		}

		res := guard.Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("update order status: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: order changed while updating, reload and retry", ErrConflict)
		}

		msg := in.Message
		if msg == "" {
			msg = defaultStatusMessage(in.To)
		}
		if err := appendTracking(tx, order.ID, in.To, msg, in.Location, in.Actor, &in.ActorID, now); err != nil {
			return err
		}
		if err := applySideEffects(tx, &order, in.To, driverID, now); err != nil {
			return err
		}
		return tx.Preload("Tracking", orderedTracking).First(&order, "id = ?", order.ID).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.OrderTransitions.WithLabelValues(string(in.To), string(in.Actor)).Inc()
	s.announce(ctx, &order)
	return &order, nil
}

func checkOwnership(order *models.Order, in TransitionInput) error {
	switch in.Actor {
	case models.RoleCustomer:
		if order.CustomerID != in.ActorID {
			return fmt.Errorf("%w: this order does not belong to you", ErrForbidden)
		}
	case models.RoleDriver:
		if in.To == models.StatusPickedUp && order.DriverID != nil && *order.DriverID != in.ActorID {
			return fmt.Errorf("%w: order is assigned to another driver", ErrConflict)
		}
		if in.To == models.StatusDelivered && (order.DriverID == nil || *order.DriverID != in.ActorID) {
			return fmt.Errorf("%w: you are not the assigned driver for this order", ErrForbidden)
		}
	}
	return nil
}

// applySideEffects keeps the advisory counters roughly current. The
// recompute job restores exact values.
func applySideEffects(tx *gorm.DB, order *models.Order, to models.OrderStatus, driverID *uuid.UUID, now time.Time) error {
	switch to {
	case models.StatusPickedUp:
		if driverID != nil {
			return bumpDriverStats(tx, *driverID, now, driverDelta{total: 1})
		}
	case models.StatusDelivered:
		err := tx.Model(&models.Customer{}).Where("id = ?", order.CustomerID).UpdateColumns(map[string]interface{}{
			"total_spent":    gorm.Expr("total_spent + ?", order.Total),
			"loyalty_points": gorm.Expr("loyalty_points + ?", loyaltyPoints(order.Total)),
		}).Error
		if err != nil {
			return fmt.Errorf("update customer spend: %w", err)
		}
		if driverID != nil {
			return bumpDriverStats(tx, *driverID, now, driverDelta{completed: 1, earnings: order.DeliveryFee})
		}
	case models.StatusCancelled:
		err := tx.Model(&models.Customer{}).Where("id = ? AND total_orders > 0", order.CustomerID).
			UpdateColumn("total_orders", gorm.Expr("total_orders - ?", 1)).Error
		if err != nil {
			return fmt.Errorf("update customer orders: %w", err)
		}
		if driverID != nil {
			return bumpDriverStats(tx, *driverID, now, driverDelta{cancelled: 1})
		}
	}
	return nil
}

// announce pushes the post-commit notifications for order's new status.
func (s *OrderService) announce(ctx context.Context, order *models.Order) {
	data := map[string]interface{}{"order_id": order.ID, "order_number": order.OrderNumber, "status": order.Status}
	s.afterCommit(ctx, func() error {
		_, err := s.notifier.ToUser(ctx, models.RoleCustomer, order.CustomerID, Push{
			Type:    models.NotificationOrderUpdate,
			Title:   "Order update",
			Message: defaultStatusMessage(order.Status),
			Data:    data,
		})
		return err
	})

	var driverPush *Push
	switch order.Status {
	case models.StatusReady:
		driverPush = &Push{Type: models.NotificationDriverAlert, Title: "New delivery available",
			Message: fmt.Sprintf("Order %s is ready for pickup", order.OrderNumber), Data: data}
	case models.StatusPickedUp:
		driverPush = &Push{Type: models.NotificationDriverAlert, Title: "Delivery taken",
			Message: fmt.Sprintf("Order %s was picked up", order.OrderNumber), Data: data}
	}
	if driverPush != nil {
		s.afterCommit(ctx, func() error {
			_, _, err := s.notifier.ToRole(ctx, models.RoleDriver, *driverPush)
			return err
		})
	}
}

// AssignDriver sets or changes the driver of an order that is still open.
func (s *OrderService) AssignDriver(ctx context.Context, orderID, driverID, adminID uuid.UUID) (*models.Order, error) {
	now := s.now().In(s.loc)
	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
			return notFound("order", err)
		}
		if err := ensureDriver(tx, driverID); err != nil {
			return err
		}
		if order.Status == models.StatusPickedUp || statemachine.IsTerminal(order.Status) {
			return fmt.Errorf("%w: cannot reassign an order in status %s", ErrConflict, order.Status)
		}
		res := tx.Model(&models.Order{}).Where("id = ? AND status = ?", order.ID, order.Status).
			Updates(map[string]interface{}{"driver_id": driverID, "updated_at": now.UTC()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: order changed while updating", ErrConflict)
		}
		if err := appendTracking(tx, order.ID, order.Status, "Driver assigned", nil, models.RoleAdmin, &adminID, now); err != nil {
			return err
		}
		return tx.Preload("Tracking", orderedTracking).First(&order, "id = ?", order.ID).Error
	})
	if err != nil {
		return nil, err
	}
	s.afterCommit(ctx, func() error {
		_, err := s.notifier.ToUser(ctx, models.RoleDriver, driverID, Push{
			Type:    models.NotificationDriverAlert,
			Title:   "Order assigned",
			Message: fmt.Sprintf("Order %s was assigned to you", order.OrderNumber),
			Data:    map[string]interface{}{"order_id": order.ID, "order_number": order.OrderNumber},
		})
		return err
	})
	return &order, nil
}

// AppendLocation records the driver's position on an order in transit and
// forwards it live to the customer.
func (s *OrderService) AppendLocation(ctx context.Context, orderID, driverID uuid.UUID, loc models.Location) error {
	now := s.now().In(s.loc)
	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND driver_id = ? AND status = ?", orderID, driverID, models.StatusPickedUp).
			Update("updated_at", now.UTC())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
				return notFound("order", err)
			}
			return fmt.Errorf("%w: order is not in transit with you", ErrConflict)
		}
		if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
			return err
		}
		return appendTracking(tx, orderID, models.StatusPickedUp, "Driver location", &loc, models.RoleDriver, &driverID, now)
	})
	if err != nil {
		return err
	}
	s.notifier.Live(order.CustomerID, map[string]interface{}{
		"kind":     "driver_location",
		"order_id": order.ID,
		"location": loc,
	})
	return nil
}

// appendTracking adds the next row of an order's tracking log. Callers hold
// the order row through a guarded update in the same transaction, so the
// sequence number cannot be taken twice.
func appendTracking(tx *gorm.DB, orderID uuid.UUID, status models.OrderStatus, msg string, loc *models.Location, actor models.UserRole, actorID *uuid.UUID, at time.Time) error {
	var last int
	if err := tx.Model(&models.OrderTracking{}).Where("order_id = ?", orderID).
		Select("COALESCE(MAX(seq), 0)").Scan(&last).Error; err != nil {
		return fmt.Errorf("read tracking sequence: %w", err)
	}
	row := models.OrderTracking{
		OrderID:       orderID,
		Seq:           last + 1,
		Status:        status,
		Message:       msg,
		Timestamp:     at.UTC(),
		CreatedBy:     actorID,
		CreatedByType: actor,
	}
	if loc != nil {
		j := datatypes.NewJSONType(*loc)
		row.Location = &j
	}
	if err := tx.Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: concurrent tracking update", ErrConflict)
		}
		return fmt.Errorf("append tracking: %w", err)
	}
	return nil
}

func ensureDriver(tx *gorm.DB, driverID uuid.UUID) error {
	var driver models.User
	if err := tx.First(&driver, "id = ? AND user_type = ?", driverID, models.RoleDriver).Error; err != nil {
		return notFound("driver", err)
	}
	if !driver.IsActive {
		return fmt.Errorf("%w: driver is not active", ErrUnprocessable)
	}
	return nil
}

func orderedTracking(db *gorm.DB) *gorm.DB {
	return db.Order("seq asc")
}

// Get loads an order with its tracking log.
func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Tracking", orderedTracking).
		Preload("Restaurant").
		Preload("Driver").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, notFound("order", err)
	}
	return &order, nil
}

// GetByNumber is the public tracking lookup.
func (s *OrderService) GetByNumber(ctx context.Context, number string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Tracking", orderedTracking).
		Preload("Restaurant").
		First(&order, "order_number = ?", number).Error
	if err != nil {
		return nil, notFound("order", err)
	}
	return &order, nil
}

type OrderFilter struct {
	Status       models.OrderStatus
	CustomerID   *uuid.UUID
	DriverID     *uuid.UUID
	RestaurantID *uuid.UUID
	Unassigned   bool
	Limit        int
	Offset       int
}

// List returns orders matching f, newest first.
func (s *OrderService) List(ctx context.Context, f OrderFilter) ([]models.Order, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Order{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	if f.DriverID != nil {
		q = q.Where("driver_id = ?", *f.DriverID)
	}
	if f.RestaurantID != nil {
		q = q.Where("restaurant_id = ?", *f.RestaurantID)
	}
	if f.Unassigned {
		q = q.Where("driver_id IS NULL")
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	var orders []models.Order
	err := q.Preload("Restaurant").Order("created_at desc").Limit(f.Limit).Offset(f.Offset).Find(&orders).Error
	return orders, total, err
}

// afterCommit runs a best-effort follow-up. Failures are logged, never
// returned, since the order write already succeeded.
func (s *OrderService) afterCommit(ctx context.Context, fn func() error) {
	if err := fn(); err != nil {
		logrus.WithContext(ctx).WithError(err).Warn("post-commit notification failed")
	}
}

func notFound(what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return fmt.Errorf("load %s: %w", what, err)
}

func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("SR%s%s", now.Format("060102"), suffix)
}

func defaultStatusMessage(s models.OrderStatus) string {
	switch s {
	case models.StatusPending:
		return "Order placed"
	case models.StatusConfirmed:
		return "Order confirmed by the restaurant"
	case models.StatusPreparing:
		return "Your order is being prepared"
	case models.StatusReady:
		return "Order is ready for pickup"
	case models.StatusPickedUp:
		return "Driver picked up the order"
	case models.StatusDelivered:
		return "Order delivered"
	case models.StatusCancelled:
		return "Order cancelled"
	}
	return string(s)
}

// loyaltyPoints is one point per 100 spent.
func loyaltyPoints(total float64) int {
	return int(math.Floor(total / 100))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
