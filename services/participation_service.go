package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bragforgood-api/models"
	"bragforgood-api/repositories"
)

type ParticipantStore interface {
	Join(ctx context.Context, participant *models.Participant, check repositories.JoinCheck) (int64, error)
	Leave(ctx context.Context, deedID, userID string) (int64, error)
	Exists(ctx context.Context, deedID, userID string) (bool, error)
	ListByDeed(ctx context.Context, deedID, viewerID string, includePrivate bool, page repositories.PageRequest) (repositories.Page[models.Participant], error)
}

type RatingStore interface {
	Create(ctx context.Context, rating *models.Rating) error
}

// JoinNotifier sends the joining user a confirmation.
type JoinNotifier interface {
	SendJoinConfirmation(user models.User, deed models.Deed) error
}

type JoinResult struct {
	Participant      models.Participant `json:"participant"`
	ParticipantCount int64              `json:"participantCount"`
}

type ParticipationService struct {
	participants ParticipantStore
	ratings      RatingStore
	deeds        DeedFinder
	users        UserFinder
	notifier     JoinNotifier
	guard        *RateGuard
	now          func() time.Time
}

func NewParticipationService(participants ParticipantStore, ratings RatingStore, deeds DeedFinder, users UserFinder, notifier JoinNotifier, guard *RateGuard) *ParticipationService {
	return &ParticipationService{
		participants: participants,
		ratings:      ratings,
		deeds:        deeds,
		users:        users,
		notifier:     notifier,
		guard:        guard,
		now:          time.Now,
	}
}

// joinRules are checked once up front and again under the deed row lock.
func (s *ParticipationService) joinRules(userID string, now time.Time) repositories.JoinCheck {
	return func(deed *models.Deed, participants int64) error {
		switch {
		case !deed.IsCallToAction():
			return ErrNotCallToAction
		case deed.UserID == userID:
			return ErrOwnDeed
		case deed.EventPassed(now):
			return ErrEventPassed
		case deed.MaxSpots != nil && participants >= int64(*deed.MaxSpots):
			return ErrEventFull
		}
		return nil
	}
}

func (s *ParticipationService) Join(ctx context.Context, viewer Viewer, deedID string, message *string, isPublic bool) (*JoinResult, error) {
	if err := s.guard.Check(ctx, ActionJoin, viewer.ID); err != nil {
		return nil, err
	}
	deed, err := findDeed(ctx, s.deeds, deedID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	check := s.joinRules(viewer.ID, now)
	if err := check(deed, 0); err != nil {
		return nil, err
	}

	participant := &models.Participant{
		ID:        uuid.New().String(),
		DeedID:    deedID,
		UserID:    viewer.ID,
		Message:   message,
		IsPublic:  isPublic,
		CreatedAt: now,
	}
	count, err := s.participants.Join(ctx, participant, check)
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return nil, ErrAlreadyJoined
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrDeedNotFound
	case err != nil:
		return nil, err
	}

	s.confirm(ctx, viewer.ID, *deed)

	return &JoinResult{Participant: *participant, ParticipantCount: count}, nil
}

// confirm emails the participant. Failures are only logged.
func (s *ParticipationService) confirm(ctx context.Context, userID string, deed models.Deed) {
	if s.notifier == nil {
		return
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("join confirmation: could not load user")
		return
	}
	if err := s.notifier.SendJoinConfirmation(*user, deed); err != nil {
		log.WithError(err).WithFields(log.Fields{"user_id": userID, "deed_id": deed.ID}).Warn("join confirmation email failed")
	}
}

func (s *ParticipationService) Leave(ctx context.Context, viewer Viewer, deedID string) (int64, error) {
	if _, err := findDeed(ctx, s.deeds, deedID); err != nil {
		return 0, err
	}
	count, err := s.participants.Leave(ctx, deedID, viewer.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrNotJoined
	}
	return count, err
}

// List returns public participants; the deed's author sees everyone.
func (s *ParticipationService) List(ctx context.Context, viewer Viewer, deedID string, page repositories.PageRequest) (repositories.Page[models.Participant], error) {
	deed, err := findDeed(ctx, s.deeds, deedID)
	if err != nil {
		return repositories.Page[models.Participant]{}, err
	}
	includePrivate := viewer.ID != "" && (viewer.ID == deed.UserID || viewer.IsAdmin())
	return s.participants.ListByDeed(ctx, deedID, viewer.ID, includePrivate, page)
}

// Rate records a participant's 1-5 rating of an event that already happened.
func (s *ParticipationService) Rate(ctx context.Context, viewer Viewer, deedID string, score int, comment *string) (*models.Rating, error) {
	if score < 1 || score > 5 {
		return nil, ErrInvalidScore
	}
	deed, err := findDeed(ctx, s.deeds, deedID)
	if err != nil {
		return nil, err
	}
	if !deed.IsCallToAction() {
		return nil, ErrNotCallToAction
	}
	if !deed.EventPassed(s.now()) {
		return nil, ErrEventNotPassed
	}

	joined, err := s.participants.Exists(ctx, deedID, viewer.ID)
	if err != nil {
		return nil, fmt.Errorf("check participation: %w", err)
	}
	if !joined {
		return nil, ErrNotParticipant
	}

	rating := &models.Rating{
		ID:        uuid.New().String(),
		DeedID:    deedID,
		UserID:    viewer.ID,
		Score:     score,
		Comment:   comment,
		CreatedAt: s.now(),
	}
	if err := s.ratings.Create(ctx, rating); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyRated
		}
		return nil, fmt.Errorf("create rating: %w", err)
	}
	return rating, nil
}
