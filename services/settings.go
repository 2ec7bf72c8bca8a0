package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"saree-api/models"
)

const (
	SettingDeliveryFee          = "delivery_fee"
	SettingMinimumOrder         = "minimum_order"
	SettingServiceFeePercentage = "service_fee_percentage"
)

// SettingFloat reads a numeric setting. Values may be stored as JSON numbers
// or numeric strings. ok is false when the key does not exist.
func SettingFloat(db *gorm.DB, key string) (value float64, ok bool, err error) {
	var s models.Setting
	if err := db.Where("key = ?", key).Take(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("read setting %s: %w", key, err)
	}
	var raw interface{}
	if err := json.Unmarshal(s.Value, &raw); err != nil {
		return 0, false, fmt.Errorf("setting %s: %w", key, err)
	}
	switch v := raw.(type) {
	case float64:
		return v, true, nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false, fmt.Errorf("setting %s is not numeric: %w", key, err)
		}
		return f, true, nil
	}
	return 0, false, fmt.Errorf("setting %s is not numeric", key)
}

type SettingService struct {
	db *gorm.DB
}

func NewSettingService(db *gorm.DB) *SettingService {
	return &SettingService{db: db}
}

// Public returns the settings exposed to unauthenticated clients.
func (s *SettingService) Public(ctx context.Context) ([]models.Setting, error) {
	var rows []models.Setting
	err := s.db.WithContext(ctx).Where("is_public = ?", true).Order("key").Find(&rows).Error
	return rows, err
}

func (s *SettingService) All(ctx context.Context) ([]models.Setting, error) {
	var rows []models.Setting
	err := s.db.WithContext(ctx).Order("category, key").Find(&rows).Error
	return rows, err
}

type SettingInput struct {
	Key         string          `json:"key" binding:"required,max=100"`
	Value       json.RawMessage `json:"value" binding:"required"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	IsPublic    bool            `json:"is_public"`
}

// Upsert writes a setting by key.
func (s *SettingService) Upsert(ctx context.Context, in SettingInput) (*models.Setting, error) {
	if !json.Valid(in.Value) {
		return nil, fmt.Errorf("%w: value is not valid JSON", ErrUnprocessable)
	}
	category := in.Category
	if category == "" {
		category = "general"
	}
	row := models.Setting{
		Key:         in.Key,
		Value:       datatypes.JSON(in.Value),
		Description: in.Description,
		Category:    category,
		IsPublic:    in.IsPublic,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "description", "category", "is_public", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("upsert setting %s: %w", in.Key, err)
	}
	var saved models.Setting
	if err := s.db.WithContext(ctx).Where("key = ?", in.Key).Take(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}
