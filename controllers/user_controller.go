// File: /controllers/user_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"

	"bragforgood-api/middleware"
	"bragforgood-api/services"
	"bragforgood-api/utils"
)

type UserController struct {
	users    *services.UserService
	deeds    *services.DeedService
	sessions sessions.Store
}

func NewUserController(users *services.UserService, deeds *services.DeedService, store sessions.Store) *UserController {
	return &UserController{users: users, deeds: deeds, sessions: store}
}

type UpdateProfileRequest struct {
	Name          *string `json:"name" binding:"omitempty,min=1,max=255"`
	Bio           *string `json:"bio" binding:"omitempty,max=1000"`
	Avatar        *string `json:"avatar" binding:"omitempty,url"`
	PreferredLang *string `json:"preferredLang" binding:"omitempty,lang"`
}

func (uc *UserController) GetMe(c *gin.Context) {
	viewer := viewerFrom(c)
	profile, err := uc.users.Profile(c.Request.Context(), viewer, viewer.ID)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (uc *UserController) UpdateMe(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err)
		return
	}

	profile, err := uc.users.UpdateProfile(c.Request.Context(), viewerFrom(c), services.ProfileUpdate{
		Name:          req.Name,
		Bio:           req.Bio,
		Avatar:        req.Avatar,
		PreferredLang: req.PreferredLang,
	})
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (uc *UserController) DeleteMe(c *gin.Context) {
	if err := uc.users.DeleteAccount(c.Request.Context(), viewerFrom(c)); err != nil {
		utils.SendServiceError(c, err)
		return
	}
	if uc.sessions != nil {
		_ = middleware.EndSession(c, uc.sessions)
	}
	c.Status(http.StatusNoContent)
}

func (uc *UserController) GetUser(c *gin.Context) {
	profile, err := uc.users.Profile(c.Request.Context(), viewerFrom(c), c.Param("id"))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (uc *UserController) GetUserDeeds(c *gin.Context) {
	page, err := uc.deeds.ByUser(c.Request.Context(), viewerFrom(c), c.Param("id"), utils.PageFromQuery(c))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}
