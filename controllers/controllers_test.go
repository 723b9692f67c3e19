package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bragforgood-api/middleware"
	"bragforgood-api/models"
	"bragforgood-api/ratelimit"
	"bragforgood-api/services"
	"bragforgood-api/storage"
	"bragforgood-api/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.RegisterValidators()
}

type accountsFake struct {
	users []*models.User
}

func (a *accountsFake) Create(_ context.Context, u *models.User) error {
	for _, existing := range a.users {
		if existing.Email == u.Email || existing.Handle == u.Handle {
			return gorm.ErrDuplicatedKey
		}
	}
	a.users = append(a.users, u)
	return nil
}

func (a *accountsFake) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range a.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (a *accountsFake) HandleTaken(_ context.Context, handle string) (bool, error) {
	for _, u := range a.users {
		if u.Handle == handle {
			return true, nil
		}
	}
	return false, nil
}

func newAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	policies := map[string]ratelimit.Policy{
		services.ActionSignup: {Max: 100, Window: time.Hour},
	}
	guard := services.NewRateGuard(ratelimit.NewMemoryLimiter(), policies)
	auth := services.NewAuthService(&accountsFake{}, services.NewTokenService("test-secret", 0), nil, guard)
	ctrl := NewAuthController(auth, sessions.NewCookieStore([]byte("session-secret")), false)

	r := gin.New()
	r.POST("/api/auth/register", ctrl.Register)
	r.POST("/api/auth/login", ctrl.Login)
	r.POST("/api/auth/logout", ctrl.Logout)
	return r
}

func postJSON(r http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestAuthController_RegisterAndLogin(t *testing.T) {
	r := newAuthRouter(t)

	w := postJSON(r, "/api/auth/register", gin.H{
		"name":     "Sam Doe",
		"email":    "Sam@Example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	user := decode(t, w)["user"].(map[string]interface{})
	assert.Equal(t, "sam_doe", user["handle"])
	assert.Equal(t, "en", user["preferredLang"])
	assert.NotContains(t, user, "email")
	assert.NotContains(t, user, "password")

	w = postJSON(r, "/api/auth/login", gin.H{"email": "sam@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.NotEmpty(t, body["token"])
	assert.Contains(t, w.Header().Get("Set-Cookie"), middleware.SessionName)

	w = postJSON(r, "/api/auth/login", gin.H{"email": "sam@example.com", "password": "wrongpass1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthController_RegisterValidation(t *testing.T) {
	r := newAuthRouter(t)

	w := postJSON(r, "/api/auth/register", gin.H{
		"name":     "Sam",
		"email":    "not-an-email",
		"password": "short",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := decode(t, w)["fieldErrors"].(map[string]interface{})
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
}

func TestAuthController_RegisterDuplicateEmail(t *testing.T) {
	r := newAuthRouter(t)
	body := gin.H{"name": "Sam", "email": "sam@example.com", "password": "password123"}

	require.Equal(t, http.StatusCreated, postJSON(r, "/api/auth/register", body).Code)
	w := postJSON(r, "/api/auth/register", body)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthController_Logout(t *testing.T) {
	r := newAuthRouter(t)

	w := postJSON(r, "/api/auth/logout", gin.H{})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["success"])
}

type stubPresigner struct {
	upload *storage.Upload
	err    error
	userID string
}

func (s *stubPresigner) PresignPhoto(_ context.Context, userID, _, _ string, _ int64) (*storage.Upload, error) {
	s.userID = userID
	return s.upload, s.err
}

func newUploadRouter(photos PhotoPresigner) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, "user-1")
		c.Set(middleware.ContextUserRole, models.RoleUser)
	})
	r.POST("/api/uploads/presign", NewUploadController(photos).PresignPhoto)
	return r
}

func TestUploadController_PresignPhoto(t *testing.T) {
	presignBody := gin.H{"fileName": "park.jpg", "contentType": "image/jpeg", "size": 1024}

	t.Run("storage not configured", func(t *testing.T) {
		w := postJSON(newUploadRouter(nil), "/api/uploads/presign", presignBody)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("issues upload for caller", func(t *testing.T) {
		stub := &stubPresigner{upload: &storage.Upload{UploadURL: "https://r2/put", FileURL: "https://cdn/park.jpg", ExpiresIn: 900}}

		w := postJSON(newUploadRouter(stub), "/api/uploads/presign", presignBody)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "user-1", stub.userID)
		assert.Equal(t, "https://cdn/park.jpg", decode(t, w)["fileUrl"])
	})

	t.Run("unsupported type is a field error", func(t *testing.T) {
		stub := &stubPresigner{err: storage.ErrUnsupportedType}

		w := postJSON(newUploadRouter(stub), "/api/uploads/presign", presignBody)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decode(t, w)["fieldErrors"], "contentType")
	})

	t.Run("missing fields", func(t *testing.T) {
		w := postJSON(newUploadRouter(&stubPresigner{}), "/api/uploads/presign", gin.H{"fileName": "x.jpg"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBindOptionalJSON(t *testing.T) {
	bind := func(req *http.Request) (ReportRequest, *httptest.ResponseRecorder) {
		var got ReportRequest
		r := gin.New()
		r.POST("/report", func(c *gin.Context) {
			if err := bindOptionalJSON(c, &got); err != nil {
				utils.SendValidationError(c, err)
				return
			}
			c.Status(http.StatusOK)
		})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return got, w
	}

	t.Run("chunked body is bound", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/report", bytes.NewReader([]byte(`{"reason":"spam"}`)))
		req.Header.Set("Content-Type", "application/json")
		req.ContentLength = -1

		got, w := bind(req)

		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, got.Reason)
		assert.Equal(t, "spam", *got.Reason)
	})

	t.Run("empty chunked body is fine", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/report", bytes.NewReader(nil))
		req.ContentLength = -1

		got, w := bind(req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, got.Reason)
	})

	t.Run("no body", func(t *testing.T) {
		got, w := bind(httptest.NewRequest(http.MethodPost, "/report", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, got.Reason)
	})

	t.Run("invalid body is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/report", bytes.NewReader([]byte(`{"reason":`)))
		req.ContentLength = -1

		_, w := bind(req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
