package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saree-api/cache"
	"saree-api/handlers"
	"saree-api/middleware"
	"saree-api/models"
	"saree-api/realtime"
	"saree-api/seed"
	"saree-api/services"
	"saree-api/testutil"
)

var seedOpts = seed.Options{
	AdminEmail:     "admin@saree.test",
	AdminPassword:  "admin-password",
	DriverPhone:    "+967770000001",
	DriverPassword: "driver-password",
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Details json.RawMessage `json:"details"`
}

type api struct {
	t *testing.T
	r *gin.Engine
}

func newAPI(t *testing.T, limiter *middleware.RateLimiter) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	require.NoError(t, seed.Run(t.Context(), db, seedOpts))

	hub := realtime.NewHub()
	notifier := services.NewNotifier(db, hub)
	h := &handlers.Handler{
		DB:       db,
		Orders:   services.NewOrderService(db, notifier, time.UTC),
		Notifier: notifier,
		Accounts: services.NewAccountService(db),
		Reviews:  services.NewReviewService(db),
		Stats:    services.NewStatsService(db, time.UTC),
		Settings: services.NewSettingService(db),
		Sessions: middleware.NewSessions(db, []byte("test-secret"), time.Hour, false),
		Cache:    cache.Disabled(),
		Location: time.UTC,
	}
	if limiter == nil {
		limiter = middleware.NewRateLimiter(1000, 1000)
	}
	r := gin.New()
	Setup(r, h, hub, limiter)
	return &api{t: t, r: r}
}

func (a *api) do(method, path, token string, body interface{}) (int, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w.Code, env
}

func (a *api) login(path string, body interface{}) string {
	a.t.Helper()
	code, env := a.do(http.MethodPost, path, "", body)
	require.Equal(a.t, http.StatusOK, code, env.Error)
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &out))
	require.NotEmpty(a.t, out.Token)
	return out.Token
}

func (a *api) customer() string {
	return a.login("/api/customer/auth/login", gin.H{"phone": "+967771112223", "name": "Salem"})
}

func (a *api) admin() string {
	return a.login("/api/admin/auth/login", gin.H{"login": seedOpts.AdminEmail, "password": seedOpts.AdminPassword})
}

func (a *api) driver() string {
	return a.login("/api/driver/auth/login", gin.H{"login": seedOpts.DriverPhone, "password": seedOpts.DriverPassword})
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestHealthAndMetrics(t *testing.T) {
	a := newAPI(t, nil)
	code, _ := a.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProtectedRoutesNeedSession(t *testing.T) {
	a := newAPI(t, nil)
	for _, path := range []string{"/api/customer/profile", "/api/driver/orders", "/api/admin/dashboard", "/api/auth/me"} {
		code, env := a.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, code, path)
		assert.False(t, env.Success, path)
	}

	code, _ := a.do(http.MethodGet, "/api/customer/profile", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestWrongRoleIsForbidden(t *testing.T) {
	a := newAPI(t, nil)
	customer := a.customer()
	driver := a.driver()

	code, _ := a.do(http.MethodGet, "/api/admin/dashboard", customer, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = a.do(http.MethodGet, "/api/driver/orders/available", customer, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = a.do(http.MethodGet, "/api/customer/orders", driver, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = a.do(http.MethodGet, "/api/admin/dashboard", a.admin(), nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestBadStaffPasswordIs401(t *testing.T) {
	a := newAPI(t, nil)
	code, env := a.do(http.MethodPost, "/api/admin/auth/login", "", gin.H{"login": seedOpts.AdminEmail, "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, env.Success)

	// a driver cannot use the admin door
	code, _ = a.do(http.MethodPost, "/api/admin/auth/login", "", gin.H{"login": seedOpts.DriverPhone, "password": seedOpts.DriverPassword})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestLogoutEndsSession(t *testing.T) {
	a := newAPI(t, nil)
	token := a.customer()

	code, env := a.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, code)
	me := decode[struct {
		Role string `json:"role"`
	}](t, env.Data)
	assert.Equal(t, string(models.RoleCustomer), me.Role)

	code, _ = a.do(http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = a.do(http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestPublicSettingsHidePrivateKeys(t *testing.T) {
	a := newAPI(t, nil)
	code, env := a.do(http.MethodGet, "/api/settings", "", nil)
	require.Equal(t, http.StatusOK, code)

	settings := decode[map[string]json.RawMessage](t, env.Data)
	assert.Contains(t, settings, "app_name")
	assert.Contains(t, settings, "delivery_fee")
	assert.NotContains(t, settings, "service_fee_percentage")
}

func TestValidationDetailsUseJSONNames(t *testing.T) {
	a := newAPI(t, nil)
	token := a.customer()

	code, env := a.do(http.MethodPost, "/api/customer/orders", token, gin.H{
		"items":          []gin.H{},
		"payment_method": "bitcoin",
	})
	require.Equal(t, http.StatusBadRequest, code)
	details := decode[map[string]string](t, env.Details)
	assert.Contains(t, details, "restaurant_id")
	assert.Contains(t, details, "payment_method")

	code, env = a.do(http.MethodPost, "/api/customer/auth/login", "", gin.H{"phone": "1"})
	require.Equal(t, http.StatusBadRequest, code)
	details = decode[map[string]string](t, env.Details)
	assert.Contains(t, details, "phone")
	assert.Contains(t, details, "name")
}

func TestLoginIsRateLimited(t *testing.T) {
	a := newAPI(t, middleware.NewRateLimiter(0.01, 2))
	body := gin.H{"login": seedOpts.AdminEmail, "password": "wrong"}

	for i := 0; i < 2; i++ {
		code, _ := a.do(http.MethodPost, "/api/admin/auth/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, code)
	}
	code, env := a.do(http.MethodPost, "/api/admin/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.False(t, env.Success)

	// other endpoints are not throttled
	code, _ = a.do(http.MethodGet, "/api/categories", "", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	a := newAPI(t, nil)
	admin := a.admin()
	customer := a.customer()
	driver := a.driver()

	code, env := a.do(http.MethodPost, "/api/admin/restaurants", admin, gin.H{
		"name": "Mandi House", "address": "Sana'a", "delivery_fee": 500,
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	restaurant := decode[models.Restaurant](t, env.Data)

	code, env = a.do(http.MethodPost, "/api/admin/restaurants/"+restaurant.ID.String()+"/menu", admin, gin.H{
		"name": "Mandi", "price": 0,
	})
	require.Equal(t, http.StatusBadRequest, code)

	code, env = a.do(http.MethodPost, "/api/admin/restaurants/"+restaurant.ID.String()+"/menu", admin, gin.H{
		"name": "Mandi", "price": 2000,
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	item := decode[models.MenuItem](t, env.Data)

	code, env = a.do(http.MethodPost, "/api/customer/orders", customer, gin.H{
		"restaurant_id":    restaurant.ID,
		"items":            []gin.H{{"menu_item_id": item.ID, "quantity": 2}},
		"delivery_address": gin.H{"address": "Hadda street"},
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	order := decode[models.Order](t, env.Data)
	assert.Equal(t, models.StatusPending, order.Status)

	code, env = a.do(http.MethodGet, "/api/orders/track/"+order.OrderNumber, "", nil)
	require.Equal(t, http.StatusOK, code)

	// pending cannot jump to delivered
	code, env = a.do(http.MethodPut, "/api/admin/orders/"+order.ID.String()+"/status", admin, gin.H{"status": "delivered"})
	require.Equal(t, http.StatusUnprocessableEntity, code)
	details := decode[map[string]interface{}](t, env.Details)
	assert.Equal(t, "pending", details["current_status"])
	assert.ElementsMatch(t, []interface{}{"confirmed", "cancelled"}, details["valid_next_states"])

	for _, s := range []string{"confirmed", "preparing", "ready"} {
		code, env = a.do(http.MethodPut, "/api/admin/orders/"+order.ID.String()+"/status", admin, gin.H{"status": s})
		require.Equal(t, http.StatusOK, code, env.Error)
	}

	code, env = a.do(http.MethodGet, "/api/driver/orders/available", driver, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), order.ID.String())

	code, env = a.do(http.MethodPut, "/api/driver/orders/"+order.ID.String()+"/pickup", driver, nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	code, env = a.do(http.MethodPut, "/api/driver/orders/"+order.ID.String()+"/deliver", driver, nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	delivered := decode[models.Order](t, env.Data)
	assert.Equal(t, models.StatusDelivered, delivered.Status)

	// the customer can no longer cancel
	code, _ = a.do(http.MethodPut, "/api/customer/orders/"+order.ID.String()+"/cancel", customer, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
}

func TestCategoryWritesAreAdminOnly(t *testing.T) {
	a := newAPI(t, nil)
	code, env := a.do(http.MethodPost, "/api/admin/categories", a.admin(), gin.H{"name": "مشروبات", "name_en": "Drinks"})
	require.Equal(t, http.StatusCreated, code, env.Error)

	code, env = a.do(http.MethodGet, "/api/categories", "", nil)
	require.Equal(t, http.StatusOK, code)
	rows := decode[[]models.Category](t, env.Data)
	assert.Len(t, rows, 5)

	code, _ = a.do(http.MethodPost, "/api/admin/categories", a.customer(), gin.H{"name": "x"})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestRemovedDriverLosesSession(t *testing.T) {
	a := newAPI(t, nil)
	admin := a.admin()
	driver := a.driver()

	code, env := a.do(http.MethodGet, "/api/auth/me", driver, nil)
	require.Equal(t, http.StatusOK, code)
	me := decode[struct {
		User models.User `json:"user"`
	}](t, env.Data)

	code, env = a.do(http.MethodDelete, "/api/admin/drivers/"+me.User.ID.String(), admin, nil)
	require.Equal(t, http.StatusOK, code, env.Error)

	code, _ = a.do(http.MethodGet, "/api/driver/orders/available", driver, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = a.do(http.MethodPost, "/api/driver/auth/login", "", gin.H{"login": seedOpts.DriverPhone, "password": seedOpts.DriverPassword})
	assert.Equal(t, http.StatusForbidden, code)
}
