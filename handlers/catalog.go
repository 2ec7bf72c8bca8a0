package handlers

import (
	"github.com/gin-gonic/gin"

	"saree-api/cache"
	"saree-api/models"
	"saree-api/resp"
)

type CategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	NameEn      string `json:"name_en" binding:"max=100"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Image       string `json:"image"`
	Color       string `json:"color" binding:"omitempty,hexcolor"`
	IsActive    *bool  `json:"is_active"`
	SortOrder   int    `json:"sort_order"`
}

// AdminListCategories includes inactive rows
func (h *Handler) AdminListCategories(c *gin.Context) {
	var rows []models.Category
	if err := h.DB.WithContext(c.Request.Context()).Order("sort_order, name").Find(&rows).Error; err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, rows)
}

func (h *Handler) AdminCreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Invalid(c, err)
		return
	}
	row := models.Category{
		Name: req.Name, NameEn: req.NameEn, Description: req.Description,
		Icon: req.Icon, Image: req.Image, Color: req.Color,
		IsActive: req.IsActive == nil || *req.IsActive, SortOrder: req.SortOrder,
	}
	if row.Color == "" {
		row.Color = "#FF6B35"
	}
	if err := h.DB.WithContext(c.Request.Context()).Create(&row).Error; err != nil {
		resp.Error(c, err)
		return
	}
	h.Cache.Forget(c.Request.Context(), cache.KeyCategories)
	resp.Created(c, row)
}

func (h *Handler) AdminUpdateCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Invalid(c, err)
		return
	}
	update := pick(req, "name", "name_en", "description", "icon", "image", "color", "is_active", "sort_order")
	h.Cache.Forget(c.Request.Context(), cache.KeyCategories)
	h.updateWhere(c, &models.Category{}, update, "id = ?", id)
}

func (h *Handler) AdminDeleteCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.Cache.Forget(c.Request.Context(), cache.KeyCategories)
	h.deleteWhere(c, &models.Category{}, "id = ?", id)
}

type SectionRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	NameEn      string `json:"name_en" binding:"max=100"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	IsActive    *bool  `json:"is_active"`
	SortOrder   int    `json:"sort_order"`
}

func (h *Handler) AdminListSections(c *gin.Context) {
	var rows []models.Section
	if err := h.DB.WithContext(c.Request.Context()).Order("sort_order, name").Find(&rows).Error; err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, rows)
}

func (h *Handler) AdminCreateSection(c *gin.Context) {
	var req SectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Invalid(c, err)
		return
	}
	row := models.Section{
		Name: req.Name, NameEn: req.NameEn, Description: req.Description, Icon: req.Icon,
		IsActive: req.IsActive == nil || *req.IsActive, SortOrder: req.SortOrder,
	}
	if err := h.DB.WithContext(c.Request.Context()).Create(&row).Error; err != nil {
		resp.Error(c, err)
		return
	}
	h.Cache.Forget(c.Request.Context(), cache.KeySections)
	resp.Created(c, row)
}

func (h *Handler) AdminUpdateSection(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Invalid(c, err)
		return
	}
	update := pick(req, "name", "name_en", "description", "icon", "is_active", "sort_order")
	h.Cache.Forget(c.Request.Context(), cache.KeySections)
	h.updateWhere(c, &models.Section{}, update, "id = ?", id)
}

func (h *Handler) AdminDeleteSection(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.Cache.Forget(c.Request.Context(), cache.KeySections)
	h.deleteWhere(c, &models.Section{}, "id = ?", id)
}

// updateWhere applies a partial update and answers with the fresh row.
func (h *Handler) updateWhere(c *gin.Context, model interface{}, update map[string]interface{}, query string, args ...interface{}) {
	if len(update) == 0 {
		resp.BadRequest(c, "no updatable fields in body")
		return
	}
	db := h.DB.WithContext(c.Request.Context())
	res := db.Model(model).Where(query, args...).Updates(update)
	if res.Error != nil {
		resp.Error(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		resp.NotFound(c, "Not found")
		return
	}
	if err := db.Where(query, args...).First(model).Error; err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, model)
}

func (h *Handler) deleteWhere(c *gin.Context, model interface{}, query string, args ...interface{}) {
	res := h.DB.WithContext(c.Request.Context()).Where(query, args...).Delete(model)
	if res.Error != nil {
		resp.Error(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		resp.NotFound(c, "Not found")
		return
	}
	resp.OK(c, gin.H{"deleted": args[0]})
}
