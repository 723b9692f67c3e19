package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bragforgood-api/ai"
	"bragforgood-api/models"
	"bragforgood-api/repositories"
)

// Viewer is the caller of a service method. ID is empty for anonymous readers.
type Viewer struct {
	ID   string
	Role string
}

func (v Viewer) IsAdmin() bool {
	return v.Role == models.RoleAdmin
}

func (v Viewer) canSeeHidden(deed *models.Deed) bool {
	return v.IsAdmin() || (v.ID != "" && v.ID == deed.UserID)
}

// FieldError is an input error bound to one request field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

type DeedInput struct {
	Title        string
	Description  string
	Category     models.Category
	PhotoUrls    []string
	Location     *string
	Type         models.DeedType
	EventDate    *time.Time
	EventEndDate *time.Time
	MeetingPoint *string
	WhatToBring  *string
	MaxSpots     *int
}

func (in DeedInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return &FieldError{Field: "title", Message: "is required"}
	}
	if strings.TrimSpace(in.Description) == "" {
		return &FieldError{Field: "description", Message: "is required"}
	}
	if !in.Category.Valid() {
		return &FieldError{Field: "category", Message: "is not a known category"}
	}
	if !in.Type.Valid() {
		return &FieldError{Field: "type", Message: "must be BRAG or CALL_TO_ACTION"}
	}
	if in.Type == models.DeedTypeCallToAction {
		if in.EventDate == nil {
			return &FieldError{Field: "eventDate", Message: ErrEventDateMissing.Error()}
		}
		if in.EventEndDate != nil && in.EventEndDate.Before(*in.EventDate) {
			return &FieldError{Field: "eventEndDate", Message: ErrEventEndBefore.Error()}
		}
		if in.MaxSpots != nil && *in.MaxSpots < 1 {
			return &FieldError{Field: "maxSpots", Message: "must be at least 1"}
		}
	}
	return nil
}

// apply copies the input onto deed. Event fields only survive on calls to action.
func (in DeedInput) apply(deed *models.Deed) {
	deed.Title = strings.TrimSpace(in.Title)
	deed.Description = strings.TrimSpace(in.Description)
	deed.Category = in.Category
	deed.PhotoUrls = models.StringSlice(in.PhotoUrls)
	deed.Location = in.Location
	deed.Type = in.Type
	deed.EventDate = in.EventDate
	deed.EventEndDate = in.EventEndDate
	deed.MeetingPoint = in.MeetingPoint
	deed.WhatToBring = in.WhatToBring
	deed.MaxSpots = in.MaxSpots
	if deed.Type != models.DeedTypeCallToAction {
		deed.ClearEventFields()
	}
}

type DeedStore interface {
	Create(ctx context.Context, deed *models.Deed) error
	FindByID(ctx context.Context, id string) (*models.Deed, error)
	Update(ctx context.Context, deed *models.Deed) error
	Delete(ctx context.Context, id string) error
	ResetFlags(ctx context.Context, id string) error
	List(ctx context.Context, filter repositories.DeedFilter, page repositories.PageRequest) (repositories.Page[models.Deed], error)
	ListUpcoming(ctx context.Context, category models.Category, now time.Time, page repositories.PageRequest) (repositories.Page[models.Deed], error)
}

type ReportStore interface {
	CreateAndFlag(ctx context.Context, report *models.Report) error
}

type Enricher interface {
	Enrich(ctx context.Context, deeds []models.Deed, viewerID string) ([]DeedView, error)
}

type StreakRecorder interface {
	RecordDeed(ctx context.Context, userID string)
}

type UserFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type DeedService struct {
	deeds      DeedStore
	reports    ReportStore
	users      UserFinder
	engagement Enricher
	streaks    StreakRecorder
	moderator  ai.Moderator
	translator ai.Translator
	guard      *RateGuard
	now        func() time.Time
}

type DeedServiceDeps struct {
	Deeds      DeedStore
	Reports    ReportStore
	Users      UserFinder
	Engagement Enricher
	Streaks    StreakRecorder
	Moderator  ai.Moderator
	Translator ai.Translator
	Guard      *RateGuard
}

func NewDeedService(deps DeedServiceDeps) *DeedService {
	return &DeedService{
		deeds:      deps.Deeds,
		reports:    deps.Reports,
		users:      deps.Users,
		engagement: deps.Engagement,
		streaks:    deps.Streaks,
		moderator:  deps.Moderator,
		translator: deps.Translator,
		guard:      deps.Guard,
		now:        time.Now,
	}
}

type FeedQuery struct {
	Category models.Category
	Type     models.DeedType
	Page     repositories.PageRequest
}

// Feed lists public deeds newest first.
func (s *DeedService) Feed(ctx context.Context, viewer Viewer, q FeedQuery) (repositories.Page[DeedView], error) {
	page, err := s.deeds.List(ctx, repositories.DeedFilter{Category: q.Category, Type: q.Type}, q.Page)
	if err != nil {
		return repositories.Page[DeedView]{}, fmt.Errorf("list deeds: %w", err)
	}
	return s.enrichPage(ctx, page, viewer.ID)
}

// Upcoming lists calls to action that have not started, soonest first.
func (s *DeedService) Upcoming(ctx context.Context, viewer Viewer, category models.Category, page repositories.PageRequest) (repositories.Page[DeedView], error) {
	deeds, err := s.deeds.ListUpcoming(ctx, category, s.now(), page)
	if err != nil {
		return repositories.Page[DeedView]{}, fmt.Errorf("list upcoming: %w", err)
	}
	return s.enrichPage(ctx, deeds, viewer.ID)
}

// ByUser lists one author's deeds. Authors and admins also see hidden ones.
func (s *DeedService) ByUser(ctx context.Context, viewer Viewer, userID string, page repositories.PageRequest) (repositories.Page[DeedView], error) {
	filter := repositories.DeedFilter{
		UserID:        userID,
		IncludeHidden: viewer.IsAdmin() || viewer.ID == userID,
	}
	deeds, err := s.deeds.List(ctx, filter, page)
	if err != nil {
		return repositories.Page[DeedView]{}, fmt.Errorf("list user deeds: %w", err)
	}
	return s.enrichPage(ctx, deeds, viewer.ID)
}

func (s *DeedService) enrichPage(ctx context.Context, page repositories.Page[models.Deed], viewerID string) (repositories.Page[DeedView], error) {
	views, err := s.engagement.Enrich(ctx, page.Items, viewerID)
	if err != nil {
		return repositories.Page[DeedView]{}, err
	}
	return repositories.Page[DeedView]{Items: views, NextCursor: page.NextCursor}, nil
}

func (s *DeedService) Get(ctx context.Context, viewer Viewer, id string) (*DeedView, error) {
	deed, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if deed.IsHidden() && !viewer.canSeeHidden(deed) {
		return nil, ErrDeedNotFound
	}
	return s.view(ctx, *deed, viewer.ID)
}

func (s *DeedService) view(ctx context.Context, deed models.Deed, viewerID string) (*DeedView, error) {
	views, err := s.engagement.Enrich(ctx, []models.Deed{deed}, viewerID)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Create runs the rate limit, input checks and moderation before storing the
// deed, then updates the author's streak without failing on streak errors.
func (s *DeedService) Create(ctx context.Context, viewer Viewer, in DeedInput) (*DeedView, error) {
	if err := s.guard.Check(ctx, ActionDeed, viewer.ID); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.moderate(ctx, in); err != nil {
		return nil, err
	}

	deed := &models.Deed{
		ID:     uuid.New().String(),
		UserID: viewer.ID,
	}
	in.apply(deed)

	if err := s.deeds.Create(ctx, deed); err != nil {
		return nil, fmt.Errorf("create deed: %w", err)
	}

	s.streaks.RecordDeed(ctx, viewer.ID)

	log.WithFields(log.Fields{
		"deed_id": deed.ID,
		"user_id": viewer.ID,
		"type":    deed.Type,
	}).Info("deed created")

	created, err := s.deeds.FindByID(ctx, deed.ID)
	if err != nil {
		return nil, fmt.Errorf("reload deed: %w", err)
	}
	return s.view(ctx, *created, viewer.ID)
}

// Update replaces the editable fields of a deed. Only its author may edit it.
func (s *DeedService) Update(ctx context.Context, viewer Viewer, id string, in DeedInput) (*DeedView, error) {
	deed, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if deed.UserID != viewer.ID {
		return nil, ErrForbidden
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.moderate(ctx, in); err != nil {
		return nil, err
	}

	in.apply(deed)
	if err := s.deeds.Update(ctx, deed); err != nil {
		return nil, fmt.Errorf("update deed: %w", err)
	}
	return s.view(ctx, *deed, viewer.ID)
}

// Delete removes a deed. Authors may delete their own, admins any.
func (s *DeedService) Delete(ctx context.Context, viewer Viewer, id string) error {
	deed, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if deed.UserID != viewer.ID && !viewer.IsAdmin() {
		return ErrForbidden
	}
	return s.delete(ctx, viewer, id)
}

func (s *DeedService) AdminDelete(ctx context.Context, viewer Viewer, id string) error {
	if !viewer.IsAdmin() {
		return ErrForbidden
	}
	if err := s.guard.Check(ctx, ActionAdmin, viewer.ID); err != nil {
		return err
	}
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	return s.delete(ctx, viewer, id)
}

func (s *DeedService) delete(ctx context.Context, viewer Viewer, id string) error {
	if err := s.deeds.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDeedNotFound
		}
		return fmt.Errorf("delete deed: %w", err)
	}
	log.WithFields(log.Fields{"deed_id": id, "by": viewer.ID, "admin": viewer.IsAdmin()}).Info("deed deleted")
	return nil
}

// Unflag clears the report counter of a deed.
func (s *DeedService) Unflag(ctx context.Context, viewer Viewer, id string) error {
	if !viewer.IsAdmin() {
		return ErrForbidden
	}
	if err := s.guard.Check(ctx, ActionAdmin, viewer.ID); err != nil {
		return err
	}
	if err := s.deeds.ResetFlags(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDeedNotFound
		}
		return fmt.Errorf("reset flags: %w", err)
	}
	log.WithFields(log.Fields{"deed_id": id, "by": viewer.ID}).Info("deed unflagged")
	return nil
}

// Report files a report and bumps the deed's flag count. A user can report
// a given deed once.
func (s *DeedService) Report(ctx context.Context, viewer Viewer, id string, reason *string) error {
	if err := s.guard.Check(ctx, ActionReport, viewer.ID); err != nil {
		return err
	}
	deed, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if deed.UserID == viewer.ID {
		return ErrOwnDeed
	}

	err = s.reports.CreateAndFlag(ctx, &models.Report{
		ID:     uuid.New().String(),
		DeedID: id,
		UserID: viewer.ID,
		Reason: reason,
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyReported
	}
	if err != nil {
		return fmt.Errorf("report deed: %w", err)
	}

	if deed.FlagCount+1 == models.HiddenFlagThreshold {
		log.WithField("deed_id", id).Warn("deed hidden after reports")
	}
	return nil
}

// Translate renders the deed's title and description in lang, falling back
// to the viewer's preferred language.
func (s *DeedService) Translate(ctx context.Context, viewer Viewer, id, lang string) (*ai.Translation, error) {
	if err := s.guard.Check(ctx, ActionTranslate, viewer.ID); err != nil {
		return nil, err
	}
	deed, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if deed.IsHidden() && !viewer.canSeeHidden(deed) {
		return nil, ErrDeedNotFound
	}

	if lang == "" {
		user, err := s.users.FindByID(ctx, viewer.ID)
		if err != nil {
			return nil, fmt.Errorf("load viewer: %w", err)
		}
		lang = user.PreferredLang
	}

	t, err := s.translator.Translate(ctx, deed.Title, deed.Description, lang)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{"deed_id": id, "lang": lang}).Error("translation failed")
		return nil, fmt.Errorf("%w: translation", ErrUpstream)
	}
	return &t, nil
}

func (s *DeedService) moderate(ctx context.Context, in DeedInput) error {
	return review(ctx, s.moderator, ai.Content{Kind: ai.KindDeed, Title: in.Title, Body: in.Description})
}

func (s *DeedService) find(ctx context.Context, id string) (*models.Deed, error) {
	return findDeed(ctx, s.deeds, id)
}

func findDeed(ctx context.Context, deeds DeedFinder, id string) (*models.Deed, error) {
	deed, err := deeds.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDeedNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load deed: %w", err)
	}
	return deed, nil
}

// review asks the moderator and turns rejections into a ModerationError.
func review(ctx context.Context, m ai.Moderator, content ai.Content) error {
	verdict, err := m.Review(ctx, content)
	if err != nil {
		return &ModerationError{Reason: ai.UnavailableReason}
	}
	if !verdict.Approved {
		return &ModerationError{Reason: verdict.Reason}
	}
	return nil
}
