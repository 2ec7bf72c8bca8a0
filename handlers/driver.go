package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"saree-api/middleware"
	"saree-api/models"
	"saree-api/resp"
	"saree-api/services"
)

// GetAvailableOrders shows ready orders that have no driver assigned
func (h *Handler) GetAvailableOrders(c *gin.Context) {
	limit, offset := paging(c)
	orders, total, err := h.Orders.List(c.Request.Context(), services.OrderFilter{
		Status:     models.StatusReady,
		Unassigned: true,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Page(c, orders, total)
}

// GetMyDeliveries returns all orders assigned to the logged-in driver
func (h *Handler) GetMyDeliveries(c *gin.Context) {
	driverID := middleware.GetUserID(c)
	limit, offset := paging(c)
	orders, total, err := h.Orders.List(c.Request.Context(), services.OrderFilter{
		DriverID: &driverID,
		Status:   models.OrderStatus(c.Query("status")),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Page(c, orders, total)
}

type DriverStepRequest struct {
	Notes    string           `json:"notes" binding:"max=500"`
	Location *models.Location `json:"location"`
}

// PickupOrder assigns the order to the driver and moves it ready → picked_up
func (h *Handler) PickupOrder(c *gin.Context) {
	h.driverStep(c, models.StatusPickedUp)
}

// DeliverOrder moves picked_up → delivered
func (h *Handler) DeliverOrder(c *gin.Context) {
	h.driverStep(c, models.StatusDelivered)
}

func (h *Handler) driverStep(c *gin.Context, to models.OrderStatus) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req DriverStepRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			resp.Invalid(c, err)
			return
		}
	}
	order, err := h.Orders.Transition(c.Request.Context(), services.TransitionInput{
		OrderID:  id,
		To:       to,
		Actor:    models.RoleDriver,
		ActorID:  middleware.GetUserID(c),
		Message:  req.Notes,
		Location: req.Location,
	})
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, order)
}

type LocationRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" binding:"required,gte=-180,lte=180"`
}

// PostLocation records the driver's position on an order in transit
func (h *Handler) PostLocation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Invalid(c, err)
		return
	}
	loc := models.Location{Latitude: *req.Latitude, Longitude: *req.Longitude}
	if err := h.Orders.AppendLocation(c.Request.Context(), id, middleware.GetUserID(c), loc); err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"order_id": id, "location": loc})
}

// GetDriverStats returns the driver's daily stats and their totals
func (h *Handler) GetDriverStats(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	rows, err := h.Stats.DriverHistory(c.Request.Context(), middleware.GetUserID(c), days)
	if err != nil {
		resp.Error(c, err)
		return
	}
	var total models.DriverStats
	for _, r := range rows {
		total.TotalOrders += r.TotalOrders
		total.CompletedOrders += r.CompletedOrders
		total.CancelledOrders += r.CancelledOrders
		total.TotalEarnings += r.TotalEarnings
	}
	resp.OK(c, gin.H{
		"days": rows,
		"summary": gin.H{
			"total_orders":     total.TotalOrders,
			"completed_orders": total.CompletedOrders,
			"cancelled_orders": total.CancelledOrders,
			"total_earnings":   total.TotalEarnings,
		},
	})
}
