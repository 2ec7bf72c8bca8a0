package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"saree-api/cache"
	"saree-api/models"
	"saree-api/offers"
	"saree-api/resp"
	"saree-api/statemachine"
)

// ListCategories returns active categories, cached
func (h *Handler) ListCategories(c *gin.Context) {
	ctx := c.Request.Context()
	rows, err := cache.Remember(ctx, h.Cache, cache.KeyCategories, cacheTTL, func() ([]models.Category, error) {
		var out []models.Category
		err := h.DB.WithContext(ctx).Where("is_active = ?", true).Order("sort_order, name").Find(&out).Error
		return out, err
	})
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, rows)
}

// ListSections returns active menu sections, cached
func (h *Handler) ListSections(c *gin.Context) {
	ctx := c.Request.Context()
	rows, err := cache.Remember(ctx, h.Cache, cache.KeySections, cacheTTL, func() ([]models.Section, error) {
		var out []models.Section
		err := h.DB.WithContext(ctx).Where("is_active = ?", true).Order("sort_order, name").Find(&out).Error
		return out, err
	})
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, rows)
}

// ListRestaurants returns active restaurants (public)
func (h *Handler) ListRestaurants(c *gin.Context) {
	query := h.DB.WithContext(c.Request.Context()).Preload("Category").Where("is_active = ?", true)

	if category := c.Query("category"); category != "" {
		id, err := uuid.Parse(category)
		if err != nil {
			resp.BadRequest(c, "invalid category")
			return
		}
		query = query.Where("category_id = ?", id)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR name_en LIKE ?", like, like)
	}
	if open := c.Query("open"); open == "true" {
		query = query.Where("is_open = ?", true)
	}

	var restaurants []models.Restaurant
	if err := query.Order("rating desc, name").Find(&restaurants).Error; err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, restaurants)
}

// GetRestaurant returns a single restaurant
func (h *Handler) GetRestaurant(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var restaurant models.Restaurant
	err := h.DB.WithContext(c.Request.Context()).Preload("Category").
		First(&restaurant, "id = ? AND is_active = ?", id, true).Error
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, restaurant)
}

// GetMenu returns the available menu of a restaurant (public)
func (h *Handler) GetMenu(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	var restaurant models.Restaurant
	if err := h.DB.WithContext(ctx).First(&restaurant, "id = ?", id).Error; err != nil {
		resp.Error(c, err)
		return
	}

	query := h.DB.WithContext(ctx).Preload("Section").Where("restaurant_id = ? AND is_available = ?", id, true)
	if section := c.Query("section"); section != "" {
		query = query.Where("section_id = ?", section)
	}
	if c.Query("popular") == "true" {
		query = query.Where("is_popular = ?", true)
	}
	var items []models.MenuItem
	if err := query.Order("sort_order, name").Find(&items).Error; err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"restaurant": restaurant, "menu": items})
}

// ListOffers returns the offers usable right now
func (h *Handler) ListOffers(c *gin.Context) {
	var restaurantID *uuid.UUID
	if v := c.Query("restaurant"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			resp.BadRequest(c, "invalid restaurant")
			return
		}
		restaurantID = &id
	}
	rows, err := offers.ListAvailable(c.Request.Context(), h.DB, h.now(), restaurantID)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, rows)
}

// PublicSettings returns only settings flagged public
func (h *Handler) PublicSettings(c *gin.Context) {
	ctx := c.Request.Context()
	rows, err := cache.Remember(ctx, h.Cache, cache.KeyPublicSettings, cacheTTL, func() ([]models.Setting, error) {
		return h.Settings.Public(ctx)
	})
	if err != nil {
		resp.Error(c, err)
		return
	}
	out := make(map[string]interface{}, len(rows))
	for _, s := range rows {
		out[s.Key] = s.Value
	}
	resp.OK(c, out)
}

// TrackOrder is the public lookup by order number
func (h *Handler) TrackOrder(c *gin.Context) {
	order, err := h.Orders.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{
		"order_number":            order.OrderNumber,
		"status":                  order.Status,
		"restaurant":              order.Restaurant,
		"estimated_delivery_time": order.EstimatedDeliveryAt,
		"actual_delivery_time":    order.ActualDeliveryAt,
		"tracking":                order.Tracking,
	})
}

// GetStateMachineInfo returns the full state machine for informational purposes
func (h *Handler) GetStateMachineInfo(c *gin.Context) {
	var terminal []models.OrderStatus
	for _, s := range models.OrderStatuses {
		if statemachine.IsTerminal(s) {
			terminal = append(terminal, s)
		}
	}
	resp.OK(c, gin.H{
		"states":          models.OrderStatuses,
		"transitions":     statemachine.GetAllTransitions(),
		"terminal_states": terminal,
	})
}
