package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"saree-api/middleware"
	"saree-api/models"
	"saree-api/resp"
	"saree-api/services"
)

type StaffLoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminLogin authenticates a back office user
func (h *Handler) AdminLogin(c *gin.Context) {
	h.staffLogin(c, models.RoleAdmin)
}

// DriverLogin authenticates a driver by phone or email
func (h *Handler) DriverLogin(c *gin.Context) {
	h.staffLogin(c, models.RoleDriver)
}

func (h *Handler) staffLogin(c *gin.Context, role models.UserRole) {
	var req StaffLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Invalid(c, err)
		return
	}
	user, err := h.Accounts.AuthenticateStaff(c.Request.Context(), role, req.Login, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			resp.Unauthorized(c, "Invalid login or password")
			return
		}
		resp.Error(c, err)
		return
	}
	token, err := h.Sessions.Issue(c, user.ID, user.Role)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"token": token, "user": user})
}

// CustomerLogin finds or registers a customer by phone
func (h *Handler) CustomerLogin(c *gin.Context) {
	var req services.CustomerLoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Invalid(c, err)
		return
	}
	customer, err := h.Accounts.LoginCustomer(c.Request.Context(), req)
	if err != nil {
		resp.Error(c, err)
		return
	}
	token, err := h.Sessions.Issue(c, customer.ID, models.RoleCustomer)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"token": token, "user": customer})
}

// Logout ends the current session
func (h *Handler) Logout(c *gin.Context) {
	if err := h.Sessions.Revoke(c); err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"message": "Logged out"})
}

// Me returns the authenticated caller's profile
func (h *Handler) Me(c *gin.Context) {
	id, _ := middleware.CurrentIdentity(c)
	ctx := c.Request.Context()
	if id.Role == models.RoleCustomer {
		var customer models.Customer
		if err := h.DB.WithContext(ctx).First(&customer, "id = ?", id.UserID).Error; err != nil {
			resp.Error(c, err)
			return
		}
		resp.OK(c, gin.H{"role": id.Role, "user": customer})
		return
	}
	var user models.User
	if err := h.DB.WithContext(ctx).First(&user, "id = ?", id.UserID).Error; err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"role": id.Role, "user": user})
}
