package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"bragforgood-api/services"
	"bragforgood-api/storage"
	"bragforgood-api/utils"
)

type PhotoPresigner interface {
	PresignPhoto(ctx context.Context, userID, fileName, contentType string, size int64) (*storage.Upload, error)
}

type UploadController struct {
	photos PhotoPresigner
}

// NewUploadController accepts a nil presigner when storage is not configured.
func NewUploadController(photos PhotoPresigner) *UploadController {
	return &UploadController{photos: photos}
}

type PresignRequest struct {
	FileName    string `json:"fileName" binding:"required,max=255"`
	ContentType string `json:"contentType" binding:"required"`
	Size        int64  `json:"size" binding:"required,min=1"`
}

func (uc *UploadController) PresignPhoto(c *gin.Context) {
	if uc.photos == nil {
		utils.SendServiceError(c, services.ErrStorageUnavailable)
		return
	}

	var req PresignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err)
		return
	}

	upload, err := uc.photos.PresignPhoto(c.Request.Context(), viewerFrom(c).ID, req.FileName, req.ContentType, req.Size)
	switch {
	case errors.Is(err, storage.ErrUnsupportedType):
		utils.SendServiceError(c, &services.FieldError{Field: "contentType", Message: err.Error()})
		return
	case errors.Is(err, storage.ErrTooLarge):
		utils.SendServiceError(c, &services.FieldError{Field: "size", Message: err.Error()})
		return
	case err != nil:
		log.WithError(err).Error("presign failed")
		utils.SendServiceError(c, services.ErrUpstream)
		return
	}

	c.JSON(http.StatusOK, upload)
}
