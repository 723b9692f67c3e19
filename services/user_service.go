package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bragforgood-api/models"
)

type ProfileStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, fields map[string]interface{}) error
	Delete(ctx context.Context, userID string) error
}

type DeedCounter interface {
	CountByUser(ctx context.Context, userID string, includeHidden bool) (int64, error)
}

type ProfileUpdate struct {
	Name          *string
	Bio           *string
	Avatar        *string
	PreferredLang *string
}

type Profile struct {
	User      models.User `json:"user"`
	Karma     int64       `json:"karma"`
	GlowTier  string      `json:"glowTier"`
	DeedCount int64       `json:"deedCount"`
}

type UserService struct {
	users ProfileStore
	deeds DeedCounter
	karma KarmaSource
}

func NewUserService(users ProfileStore, deeds DeedCounter, karma KarmaSource) *UserService {
	return &UserService{users: users, deeds: deeds, karma: karma}
}

// Profile returns a user with their lifetime karma and deed count.
// Hidden deeds are only counted for the user themselves.
func (s *UserService) Profile(ctx context.Context, viewer Viewer, userID string) (*Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	karma, err := s.karma.Karma(ctx, []string{userID})
	if err != nil {
		return nil, fmt.Errorf("karma: %w", err)
	}
	count, err := s.deeds.CountByUser(ctx, userID, viewer.ID == userID || viewer.IsAdmin())
	if err != nil {
		return nil, fmt.Errorf("count deeds: %w", err)
	}

	return &Profile{
		User:      *user,
		Karma:     karma[userID],
		GlowTier:  GlowTier(karma[userID]),
		DeedCount: count,
	}, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, viewer Viewer, in ProfileUpdate) (*Profile, error) {
	fields := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, &FieldError{Field: "name", Message: "must not be empty"}
		}
		fields["name"] = name
	}
	if in.Bio != nil {
		fields["bio"] = strings.TrimSpace(*in.Bio)
	}
	if in.Avatar != nil {
		fields["avatar"] = *in.Avatar
	}
	if in.PreferredLang != nil {
		fields["preferred_lang"] = *in.PreferredLang
	}

	if err := s.users.UpdateProfile(ctx, viewer.ID, fields); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.Profile(ctx, viewer, viewer.ID)
}

// DeleteAccount removes the user and everything they created.
func (s *UserService) DeleteAccount(ctx context.Context, viewer Viewer) error {
	if err := s.users.Delete(ctx, viewer.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete account: %w", err)
	}
	log.WithField("user_id", viewer.ID).Info("account deleted")
	return nil
}
