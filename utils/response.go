// File: /utils/response.go
package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"bragforgood-api/services"
)

type ErrorResponse struct {
	Error       string            `json:"error"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
	Moderation  bool              `json:"moderation,omitempty"`
}

func SendError(c *gin.Context, status int, err string) {
	c.JSON(status, ErrorResponse{Error: err})
}

// SendValidationError reports a request binding failure. Validator errors are
// broken down per field and the first one becomes the error message.
func SendValidationError(c *gin.Context, err error) {
	resp := ErrorResponse{Error: "Validation failed"}

	var verrs validator.ValidationErrors
	var syntax *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &verrs):
		resp.FieldErrors = make(map[string]string, len(verrs))
		for i, fe := range verrs {
			msg := validationMessage(fe)
			resp.FieldErrors[jsonName(fe)] = msg
			if i == 0 {
				resp.Error = fieldMessage(jsonName(fe), msg)
			}
		}
	case errors.As(err, &typeErr):
		resp.FieldErrors = map[string]string{typeErr.Field: "has the wrong type"}
		resp.Error = fieldMessage(typeErr.Field, "has the wrong type")
	case errors.As(err, &syntax):
		resp.Error = "Malformed JSON body"
	default:
		resp.Error = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}

// fieldMessage prefixes messages like "is required" with the field name.
// Full sentences are returned as they are.
func fieldMessage(field, msg string) string {
	for _, verb := range []string{"is ", "must ", "may ", "has "} {
		if strings.HasPrefix(msg, verb) {
			return field + " " + msg
		}
	}
	return msg
}

func jsonName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	case "url":
		return "must be a valid URL"
	case "password":
		return "must be at least 8 characters and mix letters and digits"
	case "category":
		return "is not a known category"
	case "deedtype":
		return "must be BRAG or CALL_TO_ACTION"
	case "reaction":
		return "is not a known reaction"
	case "handle":
		return "may only contain lowercase letters, digits and underscores"
	case "lang":
		return "must be a language code such as en or pt-BR"
	}
	return "is invalid"
}

var statusByError = []struct {
	err    error
	status int
}{
	{services.ErrUnauthorized, http.StatusUnauthorized},
	{services.ErrInvalidCredentials, http.StatusUnauthorized},
	{services.ErrForbidden, http.StatusForbidden},
	{services.ErrOwnDeed, http.StatusForbidden},
	{services.ErrDeedNotFound, http.StatusNotFound},
	{services.ErrUserNotFound, http.StatusNotFound},
	{services.ErrNotJoined, http.StatusNotFound},
	{services.ErrAlreadyReported, http.StatusConflict},
	{services.ErrAlreadyJoined, http.StatusConflict},
	{services.ErrAlreadyRated, http.StatusConflict},
	{services.ErrEventFull, http.StatusConflict},
	{services.ErrEmailTaken, http.StatusConflict},
	{services.ErrHandleTaken, http.StatusConflict},
	{services.ErrEventPassed, http.StatusBadRequest},
	{services.ErrEventNotPassed, http.StatusBadRequest},
	{services.ErrNotCallToAction, http.StatusBadRequest},
	{services.ErrNotParticipant, http.StatusBadRequest},
	{services.ErrInvalidReaction, http.StatusBadRequest},
	{services.ErrInvalidScore, http.StatusBadRequest},
	{services.ErrEventDateMissing, http.StatusBadRequest},
	{services.ErrEventEndBefore, http.StatusBadRequest},
	{services.ErrRateLimited, http.StatusTooManyRequests},
	{services.ErrUpstream, http.StatusBadGateway},
	{services.ErrStorageUnavailable, http.StatusServiceUnavailable},
}

// StatusFor maps a service error to its HTTP status.
func StatusFor(err error) int {
	var fieldErr *services.FieldError
	var modErr *services.ModerationError
	switch {
	case errors.As(err, &fieldErr), errors.As(err, &modErr):
		return http.StatusBadRequest
	}
	for _, m := range statusByError {
		if errors.Is(err, m.err) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}

// SendServiceError writes err with the status StatusFor picks. Unknown
// errors are logged and hidden behind a generic message.
func SendServiceError(c *gin.Context, err error) {
	var fieldErr *services.FieldError
	if errors.As(err, &fieldErr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:       fieldMessage(fieldErr.Field, fieldErr.Message),
			FieldErrors: map[string]string{fieldErr.Field: fieldErr.Message},
		})
		return
	}

	var modErr *services.ModerationError
	if errors.As(err, &modErr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: modErr.Reason, Moderation: true})
		return
	}

	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error("unhandled service error")
		SendError(c, status, "Internal server error")
		return
	}
	if status == http.StatusBadGateway {
		SendError(c, status, services.ErrUpstream.Error())
		return
	}
	SendError(c, status, rootMessage(err))
}

// rootMessage returns the sentinel text without wrapping context.
func rootMessage(err error) string {
	for _, m := range statusByError {
		if errors.Is(err, m.err) {
			return m.err.Error()
		}
	}
	return err.Error()
}
