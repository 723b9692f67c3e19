package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"bragforgood-api/models"
)

type AccountStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	HandleTaken(ctx context.Context, handle string) (bool, error)
}

// WelcomeSender greets new accounts.
type WelcomeSender interface {
	SendWelcome(user models.User) error
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Handle   string
	Lang     string
}

type AuthService struct {
	users   AccountStore
	tokens  *TokenService
	welcome WelcomeSender
	guard   *RateGuard
}

func NewAuthService(users AccountStore, tokens *TokenService, welcome WelcomeSender, guard *RateGuard) *AuthService {
	return &AuthService{users: users, tokens: tokens, welcome: welcome, guard: guard}
}

// Register creates an account. Sign-ups are limited per client IP.
func (s *AuthService) Register(ctx context.Context, clientIP string, in RegisterInput) (*models.User, error) {
	if err := s.guard.Check(ctx, ActionSignup, clientIP); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	handle, err := s.pickHandle(ctx, in)
	if err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	lang := in.Lang
	if lang == "" {
		lang = "en"
	}
	user := &models.User{
		ID:            uuid.New().String(),
		Name:          strings.TrimSpace(in.Name),
		Handle:        handle,
		Email:         email,
		Password:      string(hashed),
		Role:          models.RoleUser,
		PreferredLang: lang,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if s.welcome != nil {
		if err := s.welcome.SendWelcome(*user); err != nil {
			log.WithError(err).WithField("user_id", user.ID).Warn("welcome email failed")
		}
	}
	return user, nil
}

func (s *AuthService) pickHandle(ctx context.Context, in RegisterInput) (string, error) {
	if in.Handle != "" {
		taken, err := s.users.HandleTaken(ctx, in.Handle)
		if err != nil {
			return "", err
		}
		if taken {
			return "", ErrHandleTaken
		}
		return in.Handle, nil
	}

	base := models.GenerateHandleFromName(in.Name)
	handle := base
	for i := 1; ; i++ {
		taken, err := s.users.HandleTaken(ctx, handle)
		if err != nil {
			return "", err
		}
		if !taken {
			return handle, nil
		}
		handle = fmt.Sprintf("%s_%d", base, i)
	}
}

// Login checks the credentials and issues a bearer token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(*user)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}
