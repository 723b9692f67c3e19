// File: /controllers/auth_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	log "github.com/sirupsen/logrus"

	"bragforgood-api/middleware"
	"bragforgood-api/models"
	"bragforgood-api/services"
	"bragforgood-api/utils"
)

type AuthController struct {
	auth          *services.AuthService
	sessions      sessions.Store
	secureCookies bool
}

func NewAuthController(auth *services.AuthService, store sessions.Store, secureCookies bool) *AuthController {
	return &AuthController{
		auth:          auth,
		sessions:      store,
		secureCookies: secureCookies,
	}
}

type RegisterRequest struct {
	Name          string `json:"name" binding:"required,max=255"`
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required,password"`
	Handle        string `json:"handle" binding:"omitempty,handle"` // generated from the name when empty
	PreferredLang string `json:"preferredLang" binding:"omitempty,lang"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func (ac *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err)
		return
	}

	user, err := ac.auth.Register(c.Request.Context(), c.ClientIP(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Handle:   req.Handle,
		Lang:     req.PreferredLang,
	})
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err)
		return
	}

	user, token, err := ac.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	if ac.sessions != nil {
		if err := middleware.StartSession(c, ac.sessions, *user, ac.secureCookies); err != nil {
			log.WithError(err).WithField("user_id", user.ID).Warn("could not save session")
		}
	}

	c.JSON(http.StatusOK, AuthResponse{Token: token, User: *user})
}

func (ac *AuthController) Logout(c *gin.Context) {
	if ac.sessions != nil {
		if err := middleware.EndSession(c, ac.sessions); err != nil {
			log.WithError(err).Warn("could not clear session")
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
