// File: /middleware/auth.go
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bragforgood-api/models"
	"bragforgood-api/services"
)

// Gin context keys set by the auth middlewares.
const (
	ContextUserID   = "user_id"
	ContextUserRole = "user_role"
)

// SessionName is the cookie holding the login session.
const SessionName = "bragforgood_session"

type TokenParser interface {
	Parse(raw string) (*services.Claims, error)
}

// UserLookup loads the account behind a token or session.
type UserLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// Authenticator resolves the caller from a bearer token or, failing that,
// from the session cookie. The account is reloaded on every request, so a
// deleted user is rejected and the role always comes from the database.
type Authenticator struct {
	tokens   TokenParser
	sessions sessions.Store
	users    UserLookup
}

func NewAuthenticator(tokens TokenParser, store sessions.Store, users UserLookup) *Authenticator {
	return &Authenticator{tokens: tokens, sessions: store, users: users}
}

var errAccountGone = errors.New("account no longer exists")

// resolve returns the current caller, or false for anonymous requests.
func (a *Authenticator) resolve(c *gin.Context) (*services.Claims, bool, error) {
	claims, ok := a.identify(c)
	if !ok {
		return nil, false, nil
	}
	if a.users == nil {
		return claims, true, nil
	}

	user, err := a.users.FindByID(c.Request.Context(), claims.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, errAccountGone
	}
	if err != nil {
		return nil, false, err
	}
	return &services.Claims{UserID: user.ID, Role: user.Role}, true, nil
}

func (a *Authenticator) identify(c *gin.Context) (*services.Claims, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return nil, false
		}
		claims, err := a.tokens.Parse(strings.TrimSpace(parts[1]))
		if err != nil {
			log.WithError(err).Debug("rejected bearer token")
			return nil, false
		}
		return claims, true
	}

	if a.sessions == nil {
		return nil, false
	}
	session, err := a.sessions.Get(c.Request, SessionName)
	if err != nil {
		return nil, false
	}
	userID, _ := session.Values["user_id"].(string)
	if userID == "" {
		return nil, false
	}
	role, _ := session.Values["role"].(string)
	return &services.Claims{UserID: userID, Role: role}, true
}

// Required rejects anonymous callers with 401.
func (a *Authenticator) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok, err := a.resolve(c)
		if err != nil && !errors.Is(err, errAccountGone) {
			log.WithError(err).Error("could not load caller")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": services.ErrUnauthorized.Error()})
			return
		}
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserRole, claims.Role)
		c.Next()
	}
}

// Optional sets the caller when one is present and lets anonymous requests through.
func (a *Authenticator) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok, err := a.resolve(c)
		if err != nil && !errors.Is(err, errAccountGone) {
			log.WithError(err).Warn("could not load caller, serving as anonymous")
		}
		if ok {
			c.Set(ContextUserID, claims.UserID)
			c.Set(ContextUserRole, claims.Role)
		}
		c.Next()
	}
}

// AdminOnly must run after Required.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextUserRole) != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": services.ErrForbidden.Error()})
			return
		}
		c.Next()
	}
}

// StartSession stores the user in the session cookie after a login.
func StartSession(c *gin.Context, store sessions.Store, user models.User, secure bool) error {
	session, _ := store.Get(c.Request, SessionName)
	session.Values["user_id"] = user.ID
	session.Values["role"] = user.Role
	session.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return session.Save(c.Request, c.Writer)
}

// EndSession expires the session cookie.
func EndSession(c *gin.Context, store sessions.Store) error {
	session, _ := store.Get(c.Request, SessionName)
	session.Values = map[interface{}]interface{}{}
	session.Options = &sessions.Options{Path: "/", MaxAge: -1}
	return session.Save(c.Request, c.Writer)
}
