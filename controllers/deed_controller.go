// File: /controllers/deed_controller.go
package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bragforgood-api/models"
	"bragforgood-api/services"
	"bragforgood-api/utils"
)

type DeedController struct {
	deeds *services.DeedService
}

func NewDeedController(deeds *services.DeedService) *DeedController {
	return &DeedController{deeds: deeds}
}

type DeedRequest struct {
	Title        string     `json:"title" binding:"required,max=255"`
	Description  string     `json:"description" binding:"required,max=5000"`
	Category     string     `json:"category" binding:"required,category"`
	PhotoUrls    []string   `json:"photoUrls" binding:"omitempty,max=6,dive,url"`
	Location     *string    `json:"location" binding:"omitempty,max=255"`
	Type         string     `json:"type" binding:"omitempty,deedtype"`
	EventDate    *time.Time `json:"eventDate"`
	EventEndDate *time.Time `json:"eventEndDate"`
	MeetingPoint *string    `json:"meetingPoint" binding:"omitempty,max=255"`
	WhatToBring  *string    `json:"whatToBring" binding:"omitempty,max=1000"`
	MaxSpots     *int       `json:"maxSpots" binding:"omitempty,min=1"`
}

func (r DeedRequest) input() services.DeedInput {
	deedType := models.DeedType(r.Type)
	if deedType == "" {
		deedType = models.DeedTypeBrag
	}
	return services.DeedInput{
		Title:        r.Title,
		Description:  r.Description,
		Category:     models.Category(r.Category),
		PhotoUrls:    r.PhotoUrls,
		Location:     r.Location,
		Type:         deedType,
		EventDate:    r.EventDate,
		EventEndDate: r.EventEndDate,
		MeetingPoint: r.MeetingPoint,
		WhatToBring:  r.WhatToBring,
		MaxSpots:     r.MaxSpots,
	}
}

// categoryQuery reads ?category. An unknown value is a field error.
func categoryQuery(c *gin.Context) (models.Category, error) {
	category := models.Category(c.Query("category"))
	if category != "" && !category.Valid() {
		return "", &services.FieldError{Field: "category", Message: "is not a known category"}
	}
	return category, nil
}

func (dc *DeedController) ListDeeds(c *gin.Context) {
	category, err := categoryQuery(c)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	deedType := models.DeedType(c.Query("type"))
	if deedType != "" && !deedType.Valid() {
		utils.SendServiceError(c, &services.FieldError{Field: "type", Message: "must be BRAG or CALL_TO_ACTION"})
		return
	}

	page, err := dc.deeds.Feed(c.Request.Context(), viewerFrom(c), services.FeedQuery{
		Category: category,
		Type:     deedType,
		Page:     utils.PageFromQuery(c),
	})
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (dc *DeedController) ListUpcoming(c *gin.Context) {
	category, err := categoryQuery(c)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	page, err := dc.deeds.Upcoming(c.Request.Context(), viewerFrom(c), category, utils.PageFromQuery(c))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (dc *DeedController) CreateDeed(c *gin.Context) {
	var req DeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err)
		return
	}

	deed, err := dc.deeds.Create(c.Request.Context(), viewerFrom(c), req.input())
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, deed)
}

func (dc *DeedController) GetDeed(c *gin.Context) {
	deed, err := dc.deeds.Get(c.Request.Context(), viewerFrom(c), c.Param("id"))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, deed)
}

func (dc *DeedController) UpdateDeed(c *gin.Context) {
	var req DeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err)
		return
	}

	deed, err := dc.deeds.Update(c.Request.Context(), viewerFrom(c), c.Param("id"), req.input())
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, deed)
}

func (dc *DeedController) DeleteDeed(c *gin.Context) {
	if err := dc.deeds.Delete(c.Request.Context(), viewerFrom(c), c.Param("id")); err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
