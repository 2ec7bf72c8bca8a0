package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"saree-api/models"
	"saree-api/resp"
)

const (
	CookieName  = "saree_session"
	identityKey = "identity"
)

var ErrNoSession = errors.New("no valid session")

// Claims is the signed part of a session token. The session row it points
// to is what makes it valid; deleting the row logs the holder out.
type Claims struct {
	SessionID uuid.UUID       `json:"sid"`
	UserID    uuid.UUID       `json:"uid"`
	Role      models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Identity is the resolved caller of a request.
type Identity struct {
	SessionID uuid.UUID       `json:"-"`
	UserID    uuid.UUID       `json:"user_id"`
	Role      models.UserRole `json:"role"`
}

type Sessions struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
	secure bool
}

func NewSessions(db *gorm.DB, secret []byte, ttl time.Duration, secure bool) *Sessions {
	return &Sessions{db: db, secret: secret, ttl: ttl, secure: secure}
}

// Issue stores a session row for the user, sets the session cookie and
// returns the signed token for clients that prefer a bearer header.
func (s *Sessions) Issue(c *gin.Context, userID uuid.UUID, role models.UserRole) (string, error) {
	now := time.Now().UTC()
	session := models.Session{UserID: userID, Role: role, ExpiresAt: now.Add(s.ttl)}
	if err := s.db.WithContext(c.Request.Context()).Create(&session).Error; err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	claims := Claims{
		SessionID: session.ID,
		UserID:    userID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, int(s.ttl.Seconds()), "/", "", s.secure, true)
	return token, nil
}

// Resolve reads the token from the cookie, an Authorization bearer header
// or a ?token= query parameter, and checks its session row.
func (s *Sessions) Resolve(c *gin.Context) (*Identity, error) {
	tokenStr := tokenFrom(c)
	if tokenStr == "" {
		return nil, ErrNoSession
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrNoSession
	}

	var session models.Session
	err = s.db.WithContext(c.Request.Context()).
		Where("id = ? AND expires_at > ?", claims.SessionID, time.Now().UTC()).
		Take(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSession
		}
		return nil, err
	}
	if session.UserID != claims.UserID || session.Role != claims.Role {
		return nil, ErrNoSession
	}
	return &Identity{SessionID: session.ID, UserID: session.UserID, Role: session.Role}, nil
}

// Revoke deletes the caller's session row and clears the cookie.
func (s *Sessions) Revoke(c *gin.Context) error {
	c.SetCookie(CookieName, "", -1, "/", "", s.secure, true)
	id, ok := CurrentIdentity(c)
	if !ok {
		resolved, err := s.Resolve(c)
		if err != nil {
			return nil
		}
		id = resolved
	}
	return s.db.WithContext(c.Request.Context()).Delete(&models.Session{}, "id = ?", id.SessionID).Error
}

// PurgeExpired removes expired session rows.
func (s *Sessions) PurgeExpired() (int64, error) {
	res := s.db.Where("expires_at <= ?", time.Now().UTC()).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}

// AuthRequired resolves the session and injects the identity into the context
func (s *Sessions) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := s.Resolve(c)
		if err != nil {
			if !errors.Is(err, ErrNoSession) {
				resp.Error(c, err)
				return
			}
			resp.Unauthorized(c, "authentication required")
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

// RoleRequired enforces that caller has one of the allowed roles
func RoleRequired(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		if !ok {
			resp.Unauthorized(c, "authentication required")
			return
		}
		for _, r := range roles {
			if id.Role == r {
				c.Next()
				return
			}
		}
		resp.Forbidden(c, "Access denied. Required role(s): "+rolesString(roles))
	}
}

func rolesString(roles []models.UserRole) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, ", ")
}

func tokenFrom(c *gin.Context) string {
	if v, err := c.Cookie(CookieName); err == nil && v != "" {
		return v
	}
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return c.Query("token")
}

// CurrentIdentity returns the identity set by AuthRequired.
func CurrentIdentity(c *gin.Context) (*Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	id, ok := v.(*Identity)
	return id, ok
}

// GetUserID extracts caller user ID from context
func GetUserID(c *gin.Context) uuid.UUID {
	if id, ok := CurrentIdentity(c); ok {
		return id.UserID
	}
	return uuid.Nil
}

// GetRole extracts caller role from context
func GetRole(c *gin.Context) models.UserRole {
	if id, ok := CurrentIdentity(c); ok {
		return id.Role
	}
	return ""
}
