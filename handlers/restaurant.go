package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"saree-api/models"
	"saree-api/resp"
)

// ── Restaurant Management ────────────────────────────────────────────────────

type CreateRestaurantRequest struct {
	Name         string                 `json:"name" binding:"required,max=200"`
	NameEn       string                 `json:"name_en"`
	Description  string                 `json:"description"`
	Image        string                 `json:"image"`
	Logo         string                 `json:"logo"`
	CoverImage   string                 `json:"cover_image"`
	CategoryID   *uuid.UUID             `json:"category_id"`
	Phone        string                 `json:"phone"`
	Email        string                 `json:"email" binding:"omitempty,email"`
	Address      string                 `json:"address" binding:"required"`
	Latitude     *float64               `json:"latitude" binding:"omitempty,gte=-90,lte=90"`
	Longitude    *float64               `json:"longitude" binding:"omitempty,gte=-180,lte=180"`
	DeliveryFee  float64                `json:"delivery_fee" binding:"gte=0"`
	MinimumOrder float64                `json:"minimum_order" binding:"gte=0"`
	DeliveryTime string                 `json:"delivery_time"`
	IsOpen       *bool                  `json:"is_open"`
	OpeningHours map[string]interface{} `json:"opening_hours"`
	Tags         []string               `json:"tags"`
	Features     []string               `json:"features"`
}

// AdminListRestaurants includes inactive restaurants
func (h *Handler) AdminListRestaurants(c *gin.Context) {
	var restaurants []models.Restaurant
	if err := h.DB.WithContext(c.Request.Context()).Preload("Category").Order("name").Find(&restaurants).Error; err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, restaurants)
}

func (h *Handler) AdminCreateRestaurant(c *gin.Context) {
	var req CreateRestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Invalid(c, err)
		return
	}
	restaurant := models.Restaurant{
		Name:         req.Name,
		NameEn:       req.NameEn,
		Description:  req.Description,
		Image:        req.Image,
		Logo:         req.Logo,
		CoverImage:   req.CoverImage,
		CategoryID:   req.CategoryID,
		Phone:        req.Phone,
		Email:        req.Email,
		Address:      req.Address,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		DeliveryFee:  req.DeliveryFee,
		MinimumOrder: req.MinimumOrder,
		DeliveryTime: req.DeliveryTime,
		IsActive:     true,
		IsOpen:       req.IsOpen == nil || *req.IsOpen,
		OpeningHours: datatypes.JSONMap(req.OpeningHours),
		Tags:         req.Tags,
		Features:     req.Features,
	}
	if err := h.DB.WithContext(c.Request.Context()).Create(&restaurant).Error; err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, restaurant)
}

// AdminUpdateRestaurant updates restaurant details
func (h *Handler) AdminUpdateRestaurant(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Invalid(c, err)
		return
	}
	// Only allow safe fields
	update := pick(req, "name", "name_en", "description", "image", "logo", "cover_image", "category_id",
		"phone", "email", "address", "latitude", "longitude", "delivery_fee", "minimum_order",
		"delivery_time", "is_active", "is_open")
	h.updateWhere(c, &models.Restaurant{}, update, "id = ?", id)
}

// AdminDeleteRestaurant deactivates a restaurant; past orders keep pointing at it
func (h *Handler) AdminDeleteRestaurant(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.updateWhere(c, &models.Restaurant{}, map[string]interface{}{"is_active": false, "is_open": false}, "id = ?", id)
}

// ── Menu Management ──────────────────────────────────────────────────────────

type AddMenuItemRequest struct {
	Name            string     `json:"name" binding:"required,max=200"`
	NameEn          string     `json:"name_en"`
	Description     string     `json:"description"`
	Image           string     `json:"image"`
	SectionID       *uuid.UUID `json:"section_id"`
	Price           float64    `json:"price" binding:"required,gt=0"`
	OriginalPrice   *float64   `json:"original_price" binding:"omitempty,gt=0"`
	IsAvailable     *bool      `json:"is_available"`
	IsPopular       bool       `json:"is_popular"`
	IsFeatured      bool       `json:"is_featured"`
	PreparationTime int        `json:"preparation_time" binding:"omitempty,min=1,max=240"`
	Calories        *int       `json:"calories"`
	Ingredients     []string   `json:"ingredients"`
	Allergens       []string   `json:"allergens"`
	Tags            []string   `json:"tags"`
	SortOrder       int        `json:"sort_order"`
}

// AdminListMenuItems returns every item of a restaurant, available or not
func (h *Handler) AdminListMenuItems(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var items []models.MenuItem
	err := h.DB.WithContext(c.Request.Context()).Where("restaurant_id = ?", id).Order("sort_order, name").Find(&items).Error
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, items)
}

// AddMenuItem adds an item to a restaurant's menu
func (h *Handler) AddMenuItem(c *gin.Context) {
	restaurantID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req AddMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Invalid(c, err)
		return
	}
	ctx := c.Request.Context()
	var restaurant models.Restaurant
	if err := h.DB.WithContext(ctx).First(&restaurant, "id = ?", restaurantID).Error; err != nil {
		resp.Error(c, err)
		return
	}
	prep := req.PreparationTime
	if prep == 0 {
		prep = 15
	}
	item := models.MenuItem{
		RestaurantID:    restaurant.ID,
		SectionID:       req.SectionID,
		Name:            req.Name,
		NameEn:          req.NameEn,
		Description:     req.Description,
		Image:           req.Image,
		Price:           req.Price,
		OriginalPrice:   req.OriginalPrice,
		IsAvailable:     req.IsAvailable == nil || *req.IsAvailable,
		IsPopular:       req.IsPopular,
		IsFeatured:      req.IsFeatured,
		PreparationTime: prep,
		Calories:        req.Calories,
		Ingredients:     req.Ingredients,
		Allergens:       req.Allergens,
		Tags:            req.Tags,
		SortOrder:       req.SortOrder,
	}
	if err := h.DB.WithContext(ctx).Create(&item).Error; err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, item)
}

// UpdateMenuItem edits a menu item. Orders already placed keep their snapshot.
func (h *Handler) UpdateMenuItem(c *gin.Context) {
	itemID, ok := pathID(c, "itemId")
	if !ok {
		return
	}
	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Invalid(c, err)
		return
	}
	if p, ok := req["price"]; ok {
		if f, isNum := p.(float64); !isNum || f <= 0 {
			resp.Fail(c, http.StatusBadRequest, "validation failed", gin.H{"price": "must be greater than 0"})
			return
		}
	}
	update := pick(req, "name", "name_en", "description", "image", "section_id", "price", "original_price",
		"is_available", "is_popular", "is_featured", "preparation_time", "calories", "sort_order")
	h.updateWhere(c, &models.MenuItem{}, update, "id = ?", itemID)
}

// DeleteMenuItem removes an item from the menu
func (h *Handler) DeleteMenuItem(c *gin.Context) {
	itemID, ok := pathID(c, "itemId")
	if !ok {
		return
	}
	h.deleteWhere(c, &models.MenuItem{}, "id = ?", itemID)
}
