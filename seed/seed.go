// Package seed inserts the default rows a fresh installation needs. Every
// insert is keyed on a unique natural key and ignores conflicts, so running
// it again, or from two processes at once, never duplicates a row.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"saree-api/models"
	"saree-api/services"
)

// Options carries the bootstrap credentials.
type Options struct {
	AdminEmail     string
	AdminPassword  string
	DriverPhone    string
	DriverPassword string
}

type step struct {
	name string
	fn   func(tx *gorm.DB, opts Options) (int64, error)
}

var steps = []step{
	{"admin", seedAdmin},
	{"driver", seedDriver},
	{"categories", seedCategories},
	{"sections", seedSections},
	{"settings", seedSettings},
}

// Run executes every step in order and stops at the first failure.
func Run(ctx context.Context, db *gorm.DB, opts Options) error {
	for _, s := range steps {
		n, err := s.fn(db.WithContext(ctx), opts)
		if err != nil {
			return fmt.Errorf("seed %s: %w", s.name, err)
		}
		logrus.WithFields(logrus.Fields{"step": s.name, "inserted": n}).Info("seed step done")
	}
	return nil
}

func insertIgnore(tx *gorm.DB, key string, rows interface{}) (int64, error) {
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: key}},
		DoNothing: true,
	}).Create(rows)
	return res.RowsAffected, res.Error
}

func seedAdmin(tx *gorm.DB, opts Options) (int64, error) {
	hash, err := services.HashPassword(opts.AdminPassword)
	if err != nil {
		return 0, err
	}
	email := strings.ToLower(opts.AdminEmail)
	return insertIgnore(tx, "email", &models.User{
		Email:        &email,
		PasswordHash: hash,
		Name:         "System Admin",
		Role:         models.RoleAdmin,
		IsActive:     true,
	})
}

func seedDriver(tx *gorm.DB, opts Options) (int64, error) {
	hash, err := services.HashPassword(opts.DriverPassword)
	if err != nil {
		return 0, err
	}
	phone := opts.DriverPhone
	return insertIgnore(tx, "phone", &models.User{
		Phone:        &phone,
		PasswordHash: hash,
		Name:         "Sample Driver",
		Role:         models.RoleDriver,
		IsActive:     true,
	})
}

func seedCategories(tx *gorm.DB, _ Options) (int64, error) {
	rows := []models.Category{
		{Name: "المطاعم", NameEn: "Restaurants", Description: "مطاعم متنوعة", Icon: "🍽️", SortOrder: 1},
		{Name: "الحلويات", NameEn: "Sweets", Description: "حلويات ومعجنات", Icon: "🧁", SortOrder: 2},
		{Name: "اللحوم", NameEn: "Meat", Description: "لحوم طازجة", Icon: "🥩", SortOrder: 3},
		{Name: "كل التصنيفات", NameEn: "All Categories", Description: "جميع التصنيفات", Icon: "📋", SortOrder: 4},
	}
	for i := range rows {
		rows[i].Color = "#FF6B35"
		rows[i].IsActive = true
	}
	return insertIgnore(tx, "name", &rows)
}

func seedSections(tx *gorm.DB, _ Options) (int64, error) {
	rows := []models.Section{
		{Name: "المضغوط", NameEn: "Grilled", Icon: "🔥", SortOrder: 1},
		{Name: "البروست", NameEn: "Fried Chicken", Icon: "🍗", SortOrder: 2},
		{Name: "المشروبات", NameEn: "Beverages", Icon: "🥤", SortOrder: 3},
		{Name: "السلطات", NameEn: "Salads", Icon: "🥗", SortOrder: 4},
		{Name: "الحلويات", NameEn: "Desserts", Icon: "🍰", SortOrder: 5},
		{Name: "المقبلات", NameEn: "Appetizers", Icon: "🥙", SortOrder: 6},
	}
	for i := range rows {
		rows[i].IsActive = true
	}
	return insertIgnore(tx, "name", &rows)
}

func seedSettings(tx *gorm.DB, _ Options) (int64, error) {
	defaults := []struct {
		key, description, category string
		value                      interface{}
		public                     bool
	}{
		{"app_name", "اسم التطبيق", "general", "السريع ون", true},
		{"currency", "العملة المستخدمة", "general", "YER", true},
		{services.SettingDeliveryFee, "رسوم التوصيل الافتراضية", "delivery", 500, true},
		{services.SettingMinimumOrder, "الحد الأدنى للطلب", "orders", 1000, true},
		{services.SettingServiceFeePercentage, "نسبة رسوم الخدمة", "fees", 0, false},
	}
	rows := make([]models.Setting, 0, len(defaults))
	for _, d := range defaults {
		raw, err := json.Marshal(d.value)
		if err != nil {
			return 0, err
		}
		rows = append(rows, models.Setting{
			Key:         d.key,
			Value:       datatypes.JSON(raw),
			Description: d.description,
			Category:    d.category,
			IsPublic:    d.public,
		})
	}
	return insertIgnore(tx, "key", &rows)
}
