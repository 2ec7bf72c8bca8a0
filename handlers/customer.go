package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"saree-api/middleware"
	"saree-api/models"
	"saree-api/resp"
	"saree-api/services"
)

// GetProfile returns the logged-in customer
func (h *Handler) GetProfile(c *gin.Context) {
	var customer models.Customer
	if err := h.DB.WithContext(c.Request.Context()).First(&customer, "id = ?", middleware.GetUserID(c)).Error; err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, customer)
}

type UpdateProfileRequest struct {
	Name              *string `json:"name" binding:"omitempty,min=1,max=100"`
	Email             *string `json:"email" binding:"omitempty,email"`
	Avatar            *string `json:"avatar" binding:"omitempty,url"`
	Gender            *string `json:"gender" binding:"omitempty,oneof=male female"`
	PreferredLanguage *string `json:"preferred_language" binding:"omitempty,oneof=ar en"`
}

// UpdateProfile edits the customer's own profile
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Invalid(c, err)
		return
	}
	update := map[string]interface{}{}
	if req.Name != nil {
		update["name"] = *req.Name
	}
	if req.Email != nil {
		update["email"] = *req.Email
	}
	if req.Avatar != nil {
		update["avatar"] = *req.Avatar
	}
	if req.Gender != nil {
		update["gender"] = *req.Gender
	}
	if req.PreferredLanguage != nil {
		update["preferred_language"] = *req.PreferredLanguage
	}
	id := middleware.GetUserID(c)
	ctx := c.Request.Context()
	if len(update) > 0 {
		if err := h.DB.WithContext(ctx).Model(&models.Customer{}).Where("id = ?", id).Updates(update).Error; err != nil {
			resp.Error(c, err)
			return
		}
	}
	h.GetProfile(c)
}

type AddressRequest struct {
	Title     string   `json:"title" binding:"required,max=50"`
	Address   string   `json:"address" binding:"required,max=500"`
	Building  string   `json:"building"`
	Floor     string   `json:"floor"`
	Apartment string   `json:"apartment"`
	Landmark  string   `json:"landmark"`
	Latitude  *float64 `json:"latitude" binding:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" binding:"omitempty,gte=-180,lte=180"`
	IsDefault bool     `json:"is_default"`
}

func (r AddressRequest) apply(a *models.CustomerAddress) {
	a.Title, a.Address = r.Title, r.Address
	a.Building, a.Floor, a.Apartment, a.Landmark = r.Building, r.Floor, r.Apartment, r.Landmark
	a.Latitude, a.Longitude = r.Latitude, r.Longitude
	a.IsDefault = r.IsDefault
}

func (h *Handler) ListAddresses(c *gin.Context) {
	var rows []models.CustomerAddress
	err := h.DB.WithContext(c.Request.Context()).
		Where("customer_id = ?", middleware.GetUserID(c)).
		Order("is_default desc, created_at").
		Find(&rows).Error
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, rows)
}

func (h *Handler) CreateAddress(c *gin.Context) {
	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Invalid(c, err)
		return
	}
	customerID := middleware.GetUserID(c)
	addr := models.CustomerAddress{CustomerID: customerID}
	req.apply(&addr)
	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if addr.IsDefault {
			if err := clearDefaultAddress(tx, customerID); err != nil {
				return err
			}
		}
		return tx.Create(&addr).Error
	})
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, addr)
}

func (h *Handler) UpdateAddress(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Invalid(c, err)
		return
	}
	customerID := middleware.GetUserID(c)
	var addr models.CustomerAddress
	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&addr, "id = ? AND customer_id = ?", id, customerID).Error; err != nil {
			return err
		}
		req.apply(&addr)
		if addr.IsDefault {
			if err := clearDefaultAddress(tx, customerID); err != nil {
				return err
			}
		}
		return tx.Save(&addr).Error
	})
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, addr)
}

func (h *Handler) DeleteAddress(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	res := h.DB.WithContext(c.Request.Context()).
		Where("id = ? AND customer_id = ?", id, middleware.GetUserID(c)).
		Delete(&models.CustomerAddress{})
	if res.Error != nil {
		resp.Error(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		resp.NotFound(c, "Address not found")
		return
	}
	resp.OK(c, gin.H{"deleted": id})
}

func clearDefaultAddress(tx *gorm.DB, customerID uuid.UUID) error {
	return tx.Model(&models.CustomerAddress{}).
		Where("customer_id = ? AND is_default = ?", customerID, true).
		Update("is_default", false).Error
}

// PlaceOrder creates a new order (customer only)
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req services.PlaceOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Invalid(c, err)
		return
	}
	order, err := h.Orders.PlaceOrder(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, order)
}

// GetMyOrders returns all orders for the logged-in customer
func (h *Handler) GetMyOrders(c *gin.Context) {
	customerID := middleware.GetUserID(c)
	limit, offset := paging(c)
	orders, total, err := h.Orders.List(c.Request.Context(), services.OrderFilter{
		CustomerID: &customerID,
		Status:     models.OrderStatus(c.Query("status")),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Page(c, orders, total)
}

// GetOrderDetail returns a single order's full detail with tracking
func (h *Handler) GetOrderDetail(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.Orders.Get(c.Request.Context(), id)
	if err != nil {
		resp.Error(c, err)
		return
	}
	if order.CustomerID != middleware.GetUserID(c) {
		resp.Forbidden(c, "This order does not belong to you")
		return
	}
	resp.OK(c, order)
}

// CancelOrder cancels a pending order
func (h *Handler) CancelOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason" binding:"max=500"`
	}
	_ = c.ShouldBindJSON(&req)
	msg := "Order cancelled by customer"
	if req.Reason != "" {
		msg += ": " + req.Reason
	}
	order, err := h.Orders.Transition(c.Request.Context(), services.TransitionInput{
		OrderID: id,
		To:      models.StatusCancelled,
		Actor:   models.RoleCustomer,
		ActorID: middleware.GetUserID(c),
		Message: msg,
	})
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, order)
}

// ReviewOrder rates a delivered order
func (h *Handler) ReviewOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.ReviewInput
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Invalid(c, err)
		return
	}
	review, err := h.Reviews.Submit(c.Request.Context(), middleware.GetUserID(c), id, req)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, review)
}

// ListNotifications is shared by every role
func (h *Handler) ListNotifications(c *gin.Context) {
	limit, _ := paging(c)
	rows, err := h.Notifier.List(c.Request.Context(), middleware.GetRole(c), middleware.GetUserID(c), limit)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, rows)
}

func (h *Handler) MarkNotificationRead(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Notifier.MarkRead(c.Request.Context(), middleware.GetRole(c), middleware.GetUserID(c), id); err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"id": id, "is_read": true})
}
