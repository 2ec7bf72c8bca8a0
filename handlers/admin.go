package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"saree-api/cache"
	"saree-api/middleware"
	"saree-api/models"
	"saree-api/resp"
	"saree-api/services"
)

// AdminDashboard returns the aggregate numbers for the back office
func (h *Handler) AdminDashboard(c *gin.Context) {
	d, err := h.Stats.Dashboard(c.Request.Context())
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, d)
}

// AdminGetAllOrders lists orders with optional filters
func (h *Handler) AdminGetAllOrders(c *gin.Context) {
	limit, offset := paging(c)
	f := services.OrderFilter{
		Status: models.OrderStatus(c.Query("status")),
		Limit:  limit,
		Offset: offset,
	}
	for key, dst := range map[string]**uuid.UUID{
		"customer_id":   &f.CustomerID,
		"restaurant_id": &f.RestaurantID,
		"driver_id":     &f.DriverID,
	} {
		if v := c.Query(key); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				resp.BadRequest(c, "invalid "+key)
				return
			}
			*dst = &id
		}
	}
	if f.Status != "" && !f.Status.Valid() {
		resp.BadRequest(c, "invalid status")
		return
	}
	orders, total, err := h.Orders.List(c.Request.Context(), f)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Page(c, orders, total)
}

func (h *Handler) AdminGetOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.Orders.Get(c.Request.Context(), id)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, order)
}

type AdminStatusRequest struct {
	Status   models.OrderStatus `json:"status" binding:"required"`
	Message  string             `json:"message" binding:"max=500"`
	DriverID *uuid.UUID         `json:"driver_id"`
}

// AdminUpdateOrderStatus moves an order along the state machine
func (h *Handler) AdminUpdateOrderStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req AdminStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Invalid(c, err)
		return
	}
	if !req.Status.Valid() {
		resp.Fail(c, http.StatusBadRequest, "validation failed", gin.H{"status": "must be one of the order statuses"})
		return
	}
	order, err := h.Orders.Transition(c.Request.Context(), services.TransitionInput{
		OrderID:  id,
		To:       req.Status,
		Actor:    models.RoleAdmin,
		ActorID:  middleware.GetUserID(c),
		Message:  req.Message,
		DriverID: req.DriverID,
	})
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, order)
}

// AdminAssignDriver sets the driver of an open order
func (h *Handler) AdminAssignDriver(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		DriverID uuid.UUID `json:"driver_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Invalid(c, err)
		return
	}
	order, err := h.Orders.AssignDriver(c.Request.Context(), id, req.DriverID, middleware.GetUserID(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, order)
}

// AdminListCustomers returns customers, searchable by name or phone
func (h *Handler) AdminListCustomers(c *gin.Context) {
	limit, offset := paging(c)
	q := h.DB.WithContext(c.Request.Context()).Model(&models.Customer{})
	if s := c.Query("search"); s != "" {
		like := "%" + s + "%"
		q = q.Where("name LIKE ? OR phone LIKE ?", like, like)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		resp.Error(c, err)
		return
	}
	var rows []models.Customer
	if err := q.Order("created_at desc").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		resp.Error(c, err)
		return
	}
	resp.Page(c, rows, total)
}

// AdminRecomputeCustomers rebuilds the customer counters on demand
func (h *Handler) AdminRecomputeCustomers(c *gin.Context) {
	n, err := h.Stats.RecomputeCustomers(c.Request.Context())
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"customers_updated": n})
}

// AdminListDrivers returns driver accounts
func (h *Handler) AdminListDrivers(c *gin.Context) {
	q := h.DB.WithContext(c.Request.Context()).Where("user_type = ?", models.RoleDriver)
	if v := c.Query("active"); v != "" {
		q = q.Where("is_active = ?", v == "true")
	}
	var drivers []models.User
	if err := q.Order("name").Find(&drivers).Error; err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, drivers)
}

func (h *Handler) AdminCreateDriver(c *gin.Context) {
	var req services.DriverInput
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Invalid(c, err)
		return
	}
	driver, err := h.Accounts.CreateDriver(c.Request.Context(), req)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, driver)
}

// AdminUpdateDriver edits a driver; is_active=false blocks their login
func (h *Handler) AdminUpdateDriver(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Invalid(c, err)
		return
	}
	update := pick(req, "name", "phone", "email", "avatar", "is_active")
	if pw, ok := req["password"].(string); ok && pw != "" {
		if len(pw) < 8 {
			resp.Fail(c, http.StatusBadRequest, "validation failed", gin.H{"password": "must be at least 8"})
			return
		}
		hash, err := services.HashPassword(pw)
		if err != nil {
			resp.Error(c, err)
			return
		}
		update["password_hash"] = hash
	}
	if active, ok := update["is_active"].(bool); ok && !active {
		if _, err := h.Accounts.DeactivateDriver(c.Request.Context(), id); err != nil {
			resp.Error(c, err)
			return
		}
	}
	h.updateWhere(c, &models.User{}, update, "id = ? AND user_type = ?", id, models.RoleDriver)
}

func (h *Handler) AdminDeleteDriver(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	// drivers with history are deactivated rather than deleted
	driver, err := h.Accounts.DeactivateDriver(c.Request.Context(), id)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, driver)
}

// AdminListReviews lists reviews; pending=true shows unapproved only
func (h *Handler) AdminListReviews(c *gin.Context) {
	limit, offset := paging(c)
	f := services.ReviewFilter{Limit: limit, Offset: offset}
	if v := c.Query("restaurant_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			resp.BadRequest(c, "invalid restaurant_id")
			return
		}
		f.RestaurantID = &id
	}
	if c.Query("pending") == "true" {
		approved := false
		f.Approved = &approved
	}
	rows, err := h.Reviews.List(c.Request.Context(), f)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, rows)
}

func (h *Handler) AdminModerateReview(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.ModerateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Invalid(c, err)
		return
	}
	review, err := h.Reviews.Moderate(c.Request.Context(), id, req)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, review)
}

func (h *Handler) AdminListSettings(c *gin.Context) {
	rows, err := h.Settings.All(c.Request.Context())
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, rows)
}

func (h *Handler) AdminUpsertSetting(c *gin.Context) {
	var req services.SettingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Invalid(c, err)
		return
	}
	if key := c.Param("key"); key != "" {
		req.Key = key
	}
	row, err := h.Settings.Upsert(c.Request.Context(), req)
	if err != nil {
		resp.Error(c, err)
		return
	}
	h.Cache.Forget(c.Request.Context(), cache.KeyPublicSettings)
	resp.OK(c, row)
}

type PushRequest struct {
	services.Push
	RecipientType string     `json:"recipient_type" binding:"required,oneof=customer driver admin all"`
	RecipientID   *uuid.UUID `json:"recipient_id"`
}

// AdminSendNotification pushes a manual notification to one user, a role
// or everyone.
func (h *Handler) AdminSendNotification(c *gin.Context) {
	var req PushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Invalid(c, err)
		return
	}
	ctx := c.Request.Context()
	var (
		row  *models.Notification
		sent int
		err  error
	)
	switch {
	case req.RecipientType == models.RecipientAll:
		row, sent, err = h.Notifier.ToAll(ctx, req.Push)
	case req.RecipientID != nil:
		row, err = h.Notifier.ToUser(ctx, models.UserRole(req.RecipientType), *req.RecipientID, req.Push)
		if row != nil && row.IsSent {
			sent = 1
		}
	default:
		row, sent, err = h.Notifier.ToRole(ctx, models.UserRole(req.RecipientType), req.Push)
	}
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, gin.H{"notification": row, "delivered": sent})
}
