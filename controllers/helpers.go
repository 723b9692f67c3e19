package controllers

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"bragforgood-api/middleware"
	"bragforgood-api/services"
)

// viewerFrom reads the caller set by the auth middleware. Anonymous callers
// get a zero Viewer.
func viewerFrom(c *gin.Context) services.Viewer {
	return services.Viewer{
		ID:   c.GetString(middleware.ContextUserID),
		Role: c.GetString(middleware.ContextUserRole),
	}
}

// bindOptionalJSON binds the body into obj when there is one. Chunked
// requests report ContentLength -1, so an empty body shows up as io.EOF.
func bindOptionalJSON(c *gin.Context, obj interface{}) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
