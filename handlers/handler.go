package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"saree-api/cache"
	"saree-api/middleware"
	"saree-api/resp"
	"saree-api/services"
)

// Handler carries the dependencies every endpoint needs.
type Handler struct {
	DB       *gorm.DB
	Orders   *services.OrderService
	Notifier *services.Notifier
	Accounts *services.AccountService
	Reviews  *services.ReviewService
	Stats    *services.StatsService
	Settings *services.SettingService
	Sessions *middleware.Sessions
	Cache    *cache.Cache
	Location *time.Location
}

const cacheTTL = 5 * time.Minute

// pathID parses the :name path parameter as a UUID, answering 400 when it
// is not one.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		resp.BadRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func paging(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// pick keeps only the allowed keys of a partial update body.
func pick(req map[string]interface{}, allowed ...string) map[string]interface{} {
	ok := make(map[string]bool, len(allowed))
	for _, k := range allowed {
		ok[k] = true
	}
	update := map[string]interface{}{}
	for k, v := range req {
		if ok[k] {
			update[k] = v
		}
	}
	return update
}

func (h *Handler) now() time.Time {
	if h.Location == nil {
		return time.Now()
	}
	return time.Now().In(h.Location)
}
