package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bragforgood-api/models"
	"bragforgood-api/services"
	"bragforgood-api/utils"
)

// InteractionController handles reactions, reports and translations on a deed.
type InteractionController struct {
	engagement *services.EngagementService
	deeds      *services.DeedService
}

func NewInteractionController(engagement *services.EngagementService, deeds *services.DeedService) *InteractionController {
	return &InteractionController{engagement: engagement, deeds: deeds}
}

type ReactionRequest struct {
	Type string `json:"type" binding:"required,reaction"`
}

type ReportRequest struct {
	Reason *string `json:"reason" binding:"omitempty,max=1000"`
}

type TranslateRequest struct {
	Lang string `json:"lang" binding:"omitempty,lang"`
}

func (ic *InteractionController) ToggleReaction(c *gin.Context) {
	var req ReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err)
		return
	}

	state, err := ic.engagement.ToggleReaction(c.Request.Context(), viewerFrom(c).ID, c.Param("id"), models.ReactionType(req.Type))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (ic *InteractionController) Report(c *gin.Context) {
	var req ReportRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		utils.SendValidationError(c, err)
		return
	}

	if err := ic.deeds.Report(c.Request.Context(), viewerFrom(c), c.Param("id"), req.Reason); err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (ic *InteractionController) Translate(c *gin.Context) {
	var req TranslateRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		utils.SendValidationError(c, err)
		return
	}

	translation, err := ic.deeds.Translate(c.Request.Context(), viewerFrom(c), c.Param("id"), req.Lang)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, translation)
}
