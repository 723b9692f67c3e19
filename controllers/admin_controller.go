package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bragforgood-api/services"
	"bragforgood-api/utils"
)

type AdminController struct {
	deeds *services.DeedService
}

func NewAdminController(deeds *services.DeedService) *AdminController {
	return &AdminController{deeds: deeds}
}

func (ac *AdminController) DeleteDeed(c *gin.Context) {
	if err := ac.deeds.AdminDelete(c.Request.Context(), viewerFrom(c), c.Param("id")); err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (ac *AdminController) UnflagDeed(c *gin.Context) {
	if err := ac.deeds.Unflag(c.Request.Context(), viewerFrom(c), c.Param("id")); err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
