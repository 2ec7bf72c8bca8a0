package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"saree-api/models"
	"saree-api/offers"
	"saree-api/resp"
)

type OfferRequest struct {
	Title         string      `json:"title" binding:"required,max=200"`
	TitleEn       string      `json:"title_en"`
	Description   string      `json:"description"`
	Image         string      `json:"image"`
	BannerImage   string      `json:"banner_image"`
	Type          string      `json:"type" binding:"required,oneof=discount buy_one_get_one free_delivery combo"`
	DiscountType  string      `json:"discount_type" binding:"omitempty,oneof=percentage fixed_amount"`
	DiscountValue float64     `json:"discount_value" binding:"gte=0"`
	MinimumOrder  float64     `json:"minimum_order" binding:"gte=0"`
	MaxDiscount   *float64    `json:"max_discount" binding:"omitempty,gt=0"`
	RestaurantID  *uuid.UUID  `json:"restaurant_id"`
	CategoryID    *uuid.UUID  `json:"category_id"`
	MenuItemIDs   []uuid.UUID `json:"menu_item_ids"`
	StartDate     time.Time   `json:"start_date" binding:"required"`
	EndDate       time.Time   `json:"end_date" binding:"required,gtfield=StartDate"`
	StartTime     string      `json:"start_time"`
	EndTime       string      `json:"end_time"`
	DaysOfWeek    []int       `json:"days_of_week" binding:"omitempty,dive,min=0,max=6"`
	UsageLimit    *int        `json:"usage_limit" binding:"omitempty,min=1"`
	IsActive      *bool       `json:"is_active"`
	Priority      int         `json:"priority"`
}

// check covers the rules the binding tags cannot express.
func (r *OfferRequest) check() gin.H {
	details := gin.H{}
	if r.Type == models.OfferTypeDiscount && r.DiscountType == "" {
		details["discount_type"] = "required for discount offers"
	}
	if r.DiscountType == models.DiscountPercentage && r.DiscountValue > 100 {
		details["discount_value"] = "percentage cannot exceed 100"
	}
	if r.StartTime != "" && !offers.ValidClock(r.StartTime) {
		details["start_time"] = "must be HH:MM"
	}
	if r.EndTime != "" && !offers.ValidClock(r.EndTime) {
		details["end_time"] = "must be HH:MM"
	}
	if (r.StartTime == "") != (r.EndTime == "") {
		details["end_time"] = "start_time and end_time go together"
	}
	return details
}

func (r *OfferRequest) model() models.SpecialOffer {
	return models.SpecialOffer{
		Title:         r.Title,
		TitleEn:       r.TitleEn,
		Description:   r.Description,
		Image:         r.Image,
		BannerImage:   r.BannerImage,
		Type:          r.Type,
		DiscountType:  r.DiscountType,
		DiscountValue: r.DiscountValue,
		MinimumOrder:  r.MinimumOrder,
		MaxDiscount:   r.MaxDiscount,
		RestaurantID:  r.RestaurantID,
		CategoryID:    r.CategoryID,
		MenuItemIDs:   r.MenuItemIDs,
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		DaysOfWeek:    r.DaysOfWeek,
		UsageLimit:    r.UsageLimit,
		IsActive:      r.IsActive == nil || *r.IsActive,
		Priority:      r.Priority,
	}
}

func (h *Handler) AdminListOffers(c *gin.Context) {
	var rows []models.SpecialOffer
	if err := h.DB.WithContext(c.Request.Context()).Order("priority desc, created_at desc").Find(&rows).Error; err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, rows)
}

func (h *Handler) AdminCreateOffer(c *gin.Context) {
	var req OfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Invalid(c, err)
		return
	}
	if details := req.check(); len(details) > 0 {
		resp.Fail(c, http.StatusBadRequest, "validation failed", details)
		return
	}
	row := req.model()
	if err := h.DB.WithContext(c.Request.Context()).Create(&row).Error; err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, row)
}

// AdminUpdateOffer replaces an offer's definition. The usage counter is
// owned by redemption and is never written here.
func (h *Handler) AdminUpdateOffer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req OfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Invalid(c, err)
		return
	}
	if details := req.check(); len(details) > 0 {
		resp.Fail(c, http.StatusBadRequest, "validation failed", details)
		return
	}
	ctx := c.Request.Context()
	var existing models.SpecialOffer
	if err := h.DB.WithContext(ctx).First(&existing, "id = ?", id).Error; err != nil {
		resp.Error(c, err)
		return
	}
	row := req.model()
	row.ID = existing.ID
	row.UsageCount = existing.UsageCount
	row.CreatedAt = existing.CreatedAt
	if err := h.DB.WithContext(ctx).Omit("usage_count").Save(&row).Error; err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, row)
}

// AdminToggleOffer flips is_active without touching the rest of the row.
func (h *Handler) AdminToggleOffer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Invalid(c, err)
		return
	}
	h.updateWhere(c, &models.SpecialOffer{}, map[string]interface{}{"is_active": *req.IsActive}, "id = ?", id)
}

func (h *Handler) AdminDeleteOffer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.deleteWhere(c, &models.SpecialOffer{}, "id = ?", id)
}
