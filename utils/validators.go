// File: /utils/validators.go
package utils

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"bragforgood-api/models"
	"bragforgood-api/repositories"
)

var (
	emailRegex  = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	handleRegex = regexp.MustCompile(`^[a-z0-9_]{3,50}$`)
	langRegex   = regexp.MustCompile(`^[a-z]{2}(-[A-Z]{2})?$`)
)

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

func IsValidHandle(handle string) bool {
	return handleRegex.MatchString(handle)
}

func IsValidLang(lang string) bool {
	return langRegex.MatchString(lang)
}

// IsValidPassword needs 8+ characters mixing letters and digits.
func IsValidPassword(password string) bool {
	if len(password) < 8 {
		return false
	}

	var hasLetter, hasNumber bool
	for _, char := range password {
		switch {
		case unicode.IsLetter(char):
			hasLetter = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}
	return hasLetter && hasNumber
}

// RegisterValidators adds the custom binding tags used by request structs.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return models.Category(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("deedtype", func(fl validator.FieldLevel) bool {
		return models.DeedType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("reaction", func(fl validator.FieldLevel) bool {
		return models.ReactionType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("handle", func(fl validator.FieldLevel) bool {
		return IsValidHandle(fl.Field().String())
	})
	_ = v.RegisterValidation("lang", func(fl validator.FieldLevel) bool {
		return IsValidLang(fl.Field().String())
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return IsValidPassword(fl.Field().String())
	})
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// PageFromQuery reads ?cursor and ?limit. A bad limit falls back to the default.
func PageFromQuery(c *gin.Context) repositories.PageRequest {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		limit = 0
	}
	return repositories.PageRequest{
		Cursor: strings.TrimSpace(c.Query("cursor")),
		Limit:  repositories.NormalizeLimit(limit),
	}
}
