// File: /controllers/event_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bragforgood-api/services"
	"bragforgood-api/utils"
)

// EventController covers taking part in calls to action: joining, leaving,
// listing participants and rating the event afterwards.
type EventController struct {
	participation *services.ParticipationService
}

func NewEventController(participation *services.ParticipationService) *EventController {
	return &EventController{participation: participation}
}

type JoinEventRequest struct {
	Message  *string `json:"message" binding:"omitempty,max=500"`
	IsPublic *bool   `json:"isPublic"`
}

type RateEventRequest struct {
	Score   int     `json:"score" binding:"required,min=1,max=5"`
	Comment *string `json:"comment" binding:"omitempty,max=1000"`
}

func (ec *EventController) GetParticipants(c *gin.Context) {
	page, err := ec.participation.List(c.Request.Context(), viewerFrom(c), c.Param("id"), utils.PageFromQuery(c))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (ec *EventController) JoinEvent(c *gin.Context) {
	var req JoinEventRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		utils.SendValidationError(c, err)
		return
	}
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	result, err := ec.participation.Join(c.Request.Context(), viewerFrom(c), c.Param("id"), req.Message, isPublic)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (ec *EventController) LeaveEvent(c *gin.Context) {
	count, err := ec.participation.Leave(c.Request.Context(), viewerFrom(c), c.Param("id"))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"participantCount": count})
}

func (ec *EventController) RateEvent(c *gin.Context) {
	var req RateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err)
		return
	}

	rating, err := ec.participation.Rate(c.Request.Context(), viewerFrom(c), c.Param("id"), req.Score, req.Comment)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rating)
}
