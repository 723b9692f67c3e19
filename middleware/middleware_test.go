package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bragforgood-api/models"
	"bragforgood-api/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func whoAmI(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(ContextUserID), "role": c.GetString(ContextUserRole)})
}

// accountTable is a UserLookup over a fixed set of accounts.
type accountTable map[string]string

func (a accountTable) FindByID(_ context.Context, id string) (*models.User, error) {
	if id == "broken" {
		return nil, errors.New("connection reset")
	}
	role, ok := a[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.User{ID: id, Role: role}, nil
}

func newAuthEngine(t *testing.T) (*gin.Engine, *services.TokenService, sessions.Store) {
	t.Helper()
	tokens := services.NewTokenService("secret", time.Hour)
	store := sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))
	accounts := accountTable{
		"u1":        models.RoleUser,
		"a1":        models.RoleAdmin,
		"sess-user": models.RoleUser,
		"demoted":   models.RoleUser,
	}
	auth := NewAuthenticator(tokens, store, accounts)

	r := gin.New()
	r.GET("/private", auth.Required(), whoAmI)
	r.GET("/public", auth.Optional(), whoAmI)
	r.GET("/admin", auth.Required(), AdminOnly(), whoAmI)
	r.POST("/login", func(c *gin.Context) {
		require.NoError(t, StartSession(c, store, models.User{ID: "sess-user", Role: models.RoleUser}, false))
		c.Status(http.StatusNoContent)
	})
	return r, tokens, store
}

func TestRequired_BearerToken(t *testing.T) {
	r, tokens, _ := newAuthEngine(t)
	token, err := tokens.Issue(models.User{ID: "u1", Role: models.RoleUser})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"u1"`)
}

func TestRequired_Rejects(t *testing.T) {
	r, _, _ := newAuthEngine(t)

	for name, header := range map[string]string{
		"missing":   "",
		"malformed": "Token abc",
		"garbage":   "Bearer not-a-jwt",
	} {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, name)
		assert.JSONEq(t, `{"error":"authentication required"}`, w.Body.String(), name)
	}
}

func TestRequired_SessionCookie(t *testing.T) {
	r, _, _ := newAuthEngine(t)

	login := httptest.NewRecorder()
	r.ServeHTTP(login, httptest.NewRequest(http.MethodPost, "/login", nil))
	cookies := login.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"sess-user"`)
}

func TestOptional_Anonymous(t *testing.T) {
	r, _, _ := newAuthEngine(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":""`)
}

func TestAdminOnly(t *testing.T) {
	r, tokens, _ := newAuthEngine(t)

	userToken, _ := tokens.Issue(models.User{ID: "u1", Role: models.RoleUser})
	adminToken, _ := tokens.Issue(models.User{ID: "a1", Role: models.RoleAdmin})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequired_ReloadsAccount(t *testing.T) {
	r, tokens, _ := newAuthEngine(t)

	get := func(path string, user models.User) *httptest.ResponseRecorder {
		token, err := tokens.Issue(user)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("deleted account", func(t *testing.T) {
		w := get("/private", models.User{ID: "gone", Role: models.RoleUser})
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = get("/public", models.User{ID: "gone", Role: models.RoleUser})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_id":""`)
	})

	t.Run("demoted admin", func(t *testing.T) {
		w := get("/admin", models.User{ID: "demoted", Role: models.RoleAdmin})
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = get("/private", models.User{ID: "demoted", Role: models.RoleAdmin})
		assert.Contains(t, w.Body.String(), `"role":"user"`)
	})

	t.Run("lookup failure", func(t *testing.T) {
		w := get("/private", models.User{ID: "broken", Role: models.RoleUser})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestRateLimit(t *testing.T) {
	rl := NewRateLimiter(60, 2)
	r := gin.New()
	r.Use(RateLimit(rl))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, 0, rl.CleanupLimiters(time.Hour))
	assert.Equal(t, 1, rl.CleanupLimiters(0))
}

func TestValidateJSON(t *testing.T) {
	r := gin.New()
	r.Use(ValidateJSON())
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("title=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS("*"))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://bragforgood.app")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://bragforgood.app", w.Header().Get("Access-Control-Allow-Origin"))
}
