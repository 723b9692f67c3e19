package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bragforgood-api/services"
	"bragforgood-api/utils"
)

type CommentController struct {
	comments *services.CommentService
}

func NewCommentController(comments *services.CommentService) *CommentController {
	return &CommentController{comments: comments}
}

type CreateCommentRequest struct {
	Body string `json:"body" binding:"required,max=2000"`
}

func (cc *CommentController) GetComments(c *gin.Context) {
	page, err := cc.comments.List(c.Request.Context(), c.Param("id"), utils.PageFromQuery(c))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (cc *CommentController) CreateComment(c *gin.Context) {
	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err)
		return
	}

	comment, err := cc.comments.Create(c.Request.Context(), viewerFrom(c), c.Param("id"), req.Body)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}
