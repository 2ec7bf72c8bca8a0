package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"saree-api/models"
)

type driverDelta struct {
	total     int
	completed int
	cancelled int
	earnings  float64
}

// bumpDriverStats adds delta to the driver's row for the day of at,
// creating the row on first use.
func bumpDriverStats(tx *gorm.DB, driverID uuid.UUID, at time.Time, d driverDelta) error {
	row := models.DriverStats{
		DriverID:        driverID,
		Date:            dayOf(at),
		TotalOrders:     d.total,
		CompletedOrders: d.completed,
		CancelledOrders: d.cancelled,
		TotalEarnings:   d.earnings,
	}
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "driver_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_orders":     gorm.Expr("driver_stats.total_orders + ?", d.total),
			"completed_orders": gorm.Expr("driver_stats.completed_orders + ?", d.completed),
			"cancelled_orders": gorm.Expr("driver_stats.cancelled_orders + ?", d.cancelled),
			"total_earnings":   gorm.Expr("driver_stats.total_earnings + ?", d.earnings),
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("update driver stats: %w", err)
	}
	return nil
}

// dayOf keys stats by the local calendar day, stored as UTC midnight.
func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type StatsService struct {
	db  *gorm.DB
	loc *time.Location
}

func NewStatsService(db *gorm.DB, loc *time.Location) *StatsService {
	if loc == nil {
		loc = time.UTC
	}
	return &StatsService{db: db, loc: loc}
}

type customerTotals struct {
	CustomerID uuid.UUID
	Orders     int
	Spent      float64
}

// RecomputeCustomers rebuilds every customer's advisory counters from the
// orders table: total_orders counts non-cancelled orders, total_spent sums
// delivered totals and loyalty_points is one per 100 spent.
func (s *StatsService) RecomputeCustomers(ctx context.Context) (int, error) {
	var totals []customerTotals
	updated := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Order{}).
			Select("customer_id, "+
				"SUM(CASE WHEN status <> ? THEN 1 ELSE 0 END) AS orders, "+
				"SUM(CASE WHEN status = ? THEN total ELSE 0 END) AS spent",
				models.StatusCancelled, models.StatusDelivered).
			Group("customer_id").
			Scan(&totals).Error
		if err != nil {
			return fmt.Errorf("aggregate orders: %w", err)
		}
		if err := tx.Model(&models.Customer{}).Where("1 = 1").UpdateColumns(map[string]interface{}{
			"total_orders": 0, "total_spent": 0, "loyalty_points": 0,
		}).Error; err != nil {
			return fmt.Errorf("reset counters: %w", err)
		}
		for _, t := range totals {
			spent := round2(t.Spent)
			res := tx.Model(&models.Customer{}).Where("id = ?", t.CustomerID).UpdateColumns(map[string]interface{}{
				"total_orders":   t.Orders,
				"total_spent":    spent,
				"loyalty_points": loyaltyPoints(spent),
			})
			if res.Error != nil {
				return fmt.Errorf("update customer %s: %w", t.CustomerID, res.Error)
			}
			updated += int(res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	logrus.WithField("customers", updated).Info("customer counters recomputed")
	return updated, nil
}

// DriverHistory returns a driver's daily rows since from, newest first.
func (s *StatsService) DriverHistory(ctx context.Context, driverID uuid.UUID, days int) ([]models.DriverStats, error) {
	if days <= 0 {
		days = 30
	}
	since := dayOf(time.Now().In(s.loc)).AddDate(0, 0, -days+1)
	var rows []models.DriverStats
	err := s.db.WithContext(ctx).
		Where("driver_id = ? AND date >= ?", driverID, since).
		Order("date desc").
		Find(&rows).Error
	return rows, err
}

type Dashboard struct {
	OrdersByStatus map[models.OrderStatus]int64 `json:"orders_by_status"`
	OrdersToday    int64                        `json:"orders_today"`
	RevenueToday   float64                      `json:"revenue_today"`
	Customers      int64                        `json:"customers"`
	ActiveDrivers  int64                        `json:"active_drivers"`
	Restaurants    int64                        `json:"restaurants"`
	PendingReviews int64                        `json:"pending_reviews"`
	GeneratedAt    time.Time                    `json:"generated_at"`
}

// Dashboard summarises the back office view.
func (s *StatsService) Dashboard(ctx context.Context) (*Dashboard, error) {
	db := s.db.WithContext(ctx)
	now := time.Now().In(s.loc)
	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, s.loc)

	out := &Dashboard{OrdersByStatus: map[models.OrderStatus]int64{}, GeneratedAt: now}

	var byStatus []struct {
		Status models.OrderStatus
		N      int64
	}
	if err := db.Model(&models.Order{}).Select("status, COUNT(*) AS n").Group("status").Scan(&byStatus).Error; err != nil {
		return nil, err
	}
	for _, r := range byStatus {
		out.OrdersByStatus[r.Status] = r.N
	}

	today := db.Model(&models.Order{}).Where("created_at >= ?", start.UTC())
	if err := today.Count(&out.OrdersToday).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Order{}).
		Where("created_at >= ? AND status = ?", start.UTC(), models.StatusDelivered).
		Select("COALESCE(SUM(total), 0)").Scan(&out.RevenueToday).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Customer{}).Count(&out.Customers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.User{}).Where("user_type = ? AND is_active = ?", models.RoleDriver, true).
		Count(&out.ActiveDrivers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Restaurant{}).Where("is_active = ?", true).Count(&out.Restaurants).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Review{}).Where("is_approved = ?", false).Count(&out.PendingReviews).Error; err != nil {
		return nil, err
	}
	out.RevenueToday = round2(out.RevenueToday)
	return out, nil
}
