package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"saree-api/models"
)

type AccountService struct {
	db *gorm.DB
}

func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{db: db}
}

// HashPassword is the bcrypt hash stored for staff accounts.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// AuthenticateStaff checks an admin or driver login. login may be an email
// or a phone number.
func (s *AccountService) AuthenticateStaff(ctx context.Context, role models.UserRole, login, password string) (*models.User, error) {
	login = strings.TrimSpace(login)
	var user models.User
	q := s.db.WithContext(ctx).Where("user_type = ?", role)
	if strings.Contains(login, "@") {
		q = q.Where("email = ?", strings.ToLower(login))
	} else {
		q = q.Where("phone = ?", login)
	}
	if err := q.Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	return &user, nil
}

type CustomerLoginInput struct {
	Phone string `json:"phone" binding:"required,min=6,max=20"`
	Name  string `json:"name" binding:"required,max=100"`
}

// LoginCustomer finds the customer by phone or registers them.
func (s *AccountService) LoginCustomer(ctx context.Context, in CustomerLoginInput) (*models.Customer, error) {
	phone := strings.TrimSpace(in.Phone)
	var customer models.Customer
	res := s.db.WithContext(ctx).
		Where(models.Customer{Phone: phone}).
		Attrs(models.Customer{Name: strings.TrimSpace(in.Name), IsActive: true}).
		FirstOrCreate(&customer)
	if res.Error != nil {
		return nil, fmt.Errorf("customer login: %w", res.Error)
	}
	if !customer.IsActive {
		return nil, ErrAccountDisabled
	}
	return &customer, nil
}

type DriverInput struct {
	Name     string  `json:"name" binding:"required,max=100"`
	Phone    string  `json:"phone" binding:"required,min=6,max=20"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password string  `json:"password" binding:"required,min=8"`
}

func (s *AccountService) CreateDriver(ctx context.Context, in DriverInput) (*models.User, error) {
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	phone := strings.TrimSpace(in.Phone)
	user := models.User{
		Name:         in.Name,
		Phone:        &phone,
		Email:        normalizeEmail(in.Email),
		PasswordHash: hash,
		Role:         models.RoleDriver,
		IsActive:     true,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: phone or email already registered", ErrConflict)
		}
		return nil, fmt.Errorf("create driver: %w", err)
	}
	return &user, nil
}

// DeactivateDriver blocks a driver's login and ends their open sessions.
// Past orders keep pointing at the row.
func (s *AccountService) DeactivateDriver(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var driver models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ? AND user_type = ?", id, models.RoleDriver).
			Update("is_active", false)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: driver", ErrNotFound)
		}
		if err := revokeSessions(tx, id); err != nil {
			return err
		}
		return tx.First(&driver, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

func revokeSessions(tx *gorm.DB, userID uuid.UUID) error {
	if err := tx.Where("user_id = ?", userID).Delete(&models.Session{}).Error; err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	return nil
}

func normalizeEmail(e *string) *string {
	if e == nil {
		return nil
	}
	v := strings.ToLower(strings.TrimSpace(*e))
	if v == "" {
		return nil
	}
	return &v
}
