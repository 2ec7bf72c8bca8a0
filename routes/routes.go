package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"saree-api/handlers"
	"saree-api/metrics"
	"saree-api/middleware"
	"saree-api/models"
	"saree-api/realtime"
	"saree-api/resp"
)

// Setup registers every endpoint on r. loginLimiter throttles the three
// login endpoints per client IP.
func Setup(r *gin.Engine, h *handlers.Handler, hub *realtime.Hub, loginLimiter *middleware.RateLimiter) {
	resp.UseJSONFieldNames()
	sessions := h.Sessions
	throttle := loginLimiter.Limit()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "saree-api",
			"sockets": hub.Count(),
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// ── Real-time channel ──────────────────────────────────────────
	r.GET("/ws", hub.Handler(func(c *gin.Context) (realtime.Identity, bool) {
		id, err := sessions.Resolve(c)
		if err != nil {
			return realtime.Identity{}, false
		}
		return realtime.Identity{UserID: id.UserID, Role: id.Role}, true
	}))

	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		public.GET("/categories", h.ListCategories)
		public.GET("/sections", h.ListSections)
		public.GET("/restaurants", h.ListRestaurants)
		public.GET("/restaurants/:id", h.GetRestaurant)
		public.GET("/restaurants/:id/menu", h.GetMenu)
		public.GET("/offers", h.ListOffers)
		public.GET("/settings", h.PublicSettings)
		public.GET("/orders/track/:number", h.TrackOrder)
		public.GET("/state-machine", h.GetStateMachineInfo)

		public.POST("/auth/logout", h.Logout)
	}

	auth := r.Group("/api")
	auth.Use(sessions.AuthRequired())
	{
		auth.GET("/auth/me", h.Me)
	}

	// ── Customer routes ────────────────────────────────────────────
	r.POST("/api/customer/auth/login", throttle, h.CustomerLogin)
	customer := r.Group("/api/customer")
	customer.Use(sessions.AuthRequired(), middleware.RoleRequired(models.RoleCustomer))
	{
		customer.GET("/profile", h.GetProfile)
		customer.PUT("/profile", h.UpdateProfile)

		customer.GET("/addresses", h.ListAddresses)
		customer.POST("/addresses", h.CreateAddress)
		customer.PUT("/addresses/:id", h.UpdateAddress)
		customer.DELETE("/addresses/:id", h.DeleteAddress)

		customer.POST("/orders", h.PlaceOrder)
		customer.GET("/orders", h.GetMyOrders)
		customer.GET("/orders/:id", h.GetOrderDetail)
		customer.PUT("/orders/:id/cancel", h.CancelOrder)
		customer.POST("/orders/:id/review", h.ReviewOrder)

		customer.GET("/notifications", h.ListNotifications)
		customer.PUT("/notifications/:id/read", h.MarkNotificationRead)
	}

	// ── Driver routes ──────────────────────────────────────────────
	r.POST("/api/driver/auth/login", throttle, h.DriverLogin)
	driver := r.Group("/api/driver")
	driver.Use(sessions.AuthRequired(), middleware.RoleRequired(models.RoleDriver))
	{
		driver.GET("/orders/available", h.GetAvailableOrders)
		driver.GET("/orders", h.GetMyDeliveries)
		driver.PUT("/orders/:id/pickup", h.PickupOrder)
		driver.PUT("/orders/:id/deliver", h.DeliverOrder)
		driver.POST("/orders/:id/location", h.PostLocation)
		driver.GET("/stats", h.GetDriverStats)
		driver.GET("/notifications", h.ListNotifications)
		driver.PUT("/notifications/:id/read", h.MarkNotificationRead)
	}

	// ── Admin routes ───────────────────────────────────────────────
	r.POST("/api/admin/auth/login", throttle, h.AdminLogin)
	admin := r.Group("/api/admin")
	admin.Use(sessions.AuthRequired(), middleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/dashboard", h.AdminDashboard)

		admin.GET("/categories", h.AdminListCategories)
		admin.POST("/categories", h.AdminCreateCategory)
		admin.PUT("/categories/:id", h.AdminUpdateCategory)
		admin.DELETE("/categories/:id", h.AdminDeleteCategory)

		admin.GET("/sections", h.AdminListSections)
		admin.POST("/sections", h.AdminCreateSection)
		admin.PUT("/sections/:id", h.AdminUpdateSection)
		admin.DELETE("/sections/:id", h.AdminDeleteSection)

		admin.GET("/restaurants", h.AdminListRestaurants)
		admin.POST("/restaurants", h.AdminCreateRestaurant)
		admin.PUT("/restaurants/:id", h.AdminUpdateRestaurant)
		admin.DELETE("/restaurants/:id", h.AdminDeleteRestaurant)
		admin.GET("/restaurants/:id/menu", h.AdminListMenuItems)
		admin.POST("/restaurants/:id/menu", h.AddMenuItem)
		admin.PUT("/menu/:itemId", h.UpdateMenuItem)
		admin.DELETE("/menu/:itemId", h.DeleteMenuItem)

		admin.GET("/offers", h.AdminListOffers)
		admin.POST("/offers", h.AdminCreateOffer)
		admin.PUT("/offers/:id", h.AdminUpdateOffer)
		admin.PATCH("/offers/:id/active", h.AdminToggleOffer)
		admin.DELETE("/offers/:id", h.AdminDeleteOffer)

		admin.GET("/drivers", h.AdminListDrivers)
		admin.POST("/drivers", h.AdminCreateDriver)
		admin.PUT("/drivers/:id", h.AdminUpdateDriver)
		admin.DELETE("/drivers/:id", h.AdminDeleteDriver)

		admin.GET("/orders", h.AdminGetAllOrders)
		admin.GET("/orders/:id", h.AdminGetOrder)
		admin.PUT("/orders/:id/status", h.AdminUpdateOrderStatus)
		admin.PUT("/orders/:id/driver", h.AdminAssignDriver)

		admin.GET("/customers", h.AdminListCustomers)
		admin.POST("/customers/recompute", h.AdminRecomputeCustomers)

		admin.GET("/reviews", h.AdminListReviews)
		admin.PUT("/reviews/:id", h.AdminModerateReview)

		admin.GET("/settings", h.AdminListSettings)
		admin.PUT("/settings", h.AdminUpsertSetting)
		admin.PUT("/settings/:key", h.AdminUpsertSetting)

		admin.POST("/notifications", h.AdminSendNotification)
		admin.GET("/notifications", h.ListNotifications)
	}
}
