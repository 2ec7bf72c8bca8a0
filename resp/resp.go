// Package resp writes the JSON envelopes every endpoint answers with:
// {"success":true,"data":...} or {"success":false,"error":...,"details":...}.
package resp

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"saree-api/logger"
	"saree-api/offers"
	"saree-api/services"
	"saree-api/statemachine"
)

// UseJSONFieldNames makes validation details name fields by their JSON key.
func UseJSONFieldNames() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	}
}

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data})
}

// Page wraps a listing with its total count.
func Page(c *gin.Context, data any, total int64) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "total": total})
}

// Fail aborts the request with an error envelope.
func Fail(c *gin.Context, status int, msg string, details any) {
	body := gin.H{"success": false, "error": msg}
	if details != nil {
		body["details"] = details
	}
	c.AbortWithStatusJSON(status, body)
}

func BadRequest(c *gin.Context, msg string) {
	Fail(c, http.StatusBadRequest, msg, nil)
}

func Unauthorized(c *gin.Context, msg string) {
	Fail(c, http.StatusUnauthorized, msg, nil)
}

func Forbidden(c *gin.Context, msg string) {
	Fail(c, http.StatusForbidden, msg, nil)
}

func NotFound(c *gin.Context, msg string) {
	Fail(c, http.StatusNotFound, msg, nil)
}

// Invalid answers a binding failure with per-field details.
func Invalid(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			details[fieldName(fe)] = describe(fe)
		}
		Fail(c, http.StatusBadRequest, "validation failed", details)
		return
	}
	var syntax *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntax):
		Fail(c, http.StatusBadRequest, "malformed JSON body", nil)
	case errors.As(err, &typeErr):
		Fail(c, http.StatusBadRequest, "validation failed", map[string]string{
			typeErr.Field: "must be a " + typeErr.Type.String(),
		})
	default:
		Fail(c, http.StatusBadRequest, err.Error(), nil)
	}
}

// Error maps a service error to its status. Unknown errors are logged and
// answered with 500.
func Error(c *gin.Context, err error) {
	var terr *statemachine.TransitionError
	if errors.As(err, &terr) {
		Fail(c, http.StatusUnprocessableEntity, terr.Error(), gin.H{
			"current_status":    terr.From,
			"requested_status":  terr.To,
			"valid_next_states": terr.Allowed,
		})
		return
	}

	switch {
	case errors.Is(err, offers.ErrOfferInactive),
		errors.Is(err, offers.ErrOfferNotStarted),
		errors.Is(err, offers.ErrOfferExpired),
		errors.Is(err, offers.ErrOfferOutsideHours),
		errors.Is(err, offers.ErrOfferNotApplicable),
		errors.Is(err, offers.ErrBelowMinimumOrder),
		errors.Is(err, offers.ErrOfferExhausted):
		Fail(c, http.StatusUnprocessableEntity, err.Error(), gin.H{"reason": "offer_rejected"})
	case errors.Is(err, services.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		Fail(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, services.ErrInvalidCredentials):
		Fail(c, http.StatusUnauthorized, err.Error(), nil)
	case errors.Is(err, services.ErrForbidden), errors.Is(err, services.ErrAccountDisabled):
		Fail(c, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, services.ErrConflict), errors.Is(err, gorm.ErrDuplicatedKey):
		Fail(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, services.ErrUnprocessable):
		Fail(c, http.StatusUnprocessableEntity, err.Error(), nil)
	default:
		logger.FromContext(c).WithError(err).WithField("route", c.FullPath()).Error("request failed")
		_ = c.Error(err)
		Fail(c, http.StatusInternalServerError, "internal server error", nil)
	}
}

func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "len":
		return "must have length " + fe.Param()
	}
	return "failed on '" + fe.Tag() + "'"
}
