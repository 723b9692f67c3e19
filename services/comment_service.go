package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"bragforgood-api/ai"
	"bragforgood-api/models"
	"bragforgood-api/repositories"
)

type CommentStore interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByDeed(ctx context.Context, deedID string, page repositories.PageRequest) (repositories.Page[models.Comment], error)
}

type CommentService struct {
	comments  CommentStore
	deeds     DeedFinder
	moderator ai.Moderator
	guard     *RateGuard
	now       func() time.Time
}

func NewCommentService(comments CommentStore, deeds DeedFinder, moderator ai.Moderator, guard *RateGuard) *CommentService {
	return &CommentService{
		comments:  comments,
		deeds:     deeds,
		moderator: moderator,
		guard:     guard,
		now:       time.Now,
	}
}

func (s *CommentService) List(ctx context.Context, deedID string, page repositories.PageRequest) (repositories.Page[models.Comment], error) {
	if _, err := findDeed(ctx, s.deeds, deedID); err != nil {
		return repositories.Page[models.Comment]{}, err
	}
	return s.comments.ListByDeed(ctx, deedID, page)
}

func (s *CommentService) Create(ctx context.Context, viewer Viewer, deedID, body string) (*models.Comment, error) {
	if err := s.guard.Check(ctx, ActionComment, viewer.ID); err != nil {
		return nil, err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, &FieldError{Field: "body", Message: "is required"}
	}
	if _, err := findDeed(ctx, s.deeds, deedID); err != nil {
		return nil, err
	}
	if err := review(ctx, s.moderator, ai.Content{Kind: ai.KindComment, Body: body}); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ID:        uuid.New().String(),
		DeedID:    deedID,
		UserID:    viewer.ID,
		Body:      body,
		CreatedAt: s.now(),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}
