package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"bragforgood-api/ai"
	"bragforgood-api/models"
	"bragforgood-api/repositories"
)

var anyCtx = mock.Anything

// MockDeedStore is a mock implementation of DeedStore
type MockDeedStore struct {
	mock.Mock
}

func (m *MockDeedStore) Create(ctx context.Context, deed *models.Deed) error {
	return m.Called(ctx, deed).Error(0)
}

func (m *MockDeedStore) FindByID(ctx context.Context, id string) (*models.Deed, error) {
	args := m.Called(ctx, id)
	if fn, ok := args.Get(0).(func(string) *models.Deed); ok {
		return fn(id), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Deed), args.Error(1)
}

func (m *MockDeedStore) Update(ctx context.Context, deed *models.Deed) error {
	return m.Called(ctx, deed).Error(0)
}

func (m *MockDeedStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockDeedStore) ResetFlags(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockDeedStore) List(ctx context.Context, filter repositories.DeedFilter, page repositories.PageRequest) (repositories.Page[models.Deed], error) {
	args := m.Called(ctx, filter, page)
	return args.Get(0).(repositories.Page[models.Deed]), args.Error(1)
}

func (m *MockDeedStore) ListUpcoming(ctx context.Context, category models.Category, now time.Time, page repositories.PageRequest) (repositories.Page[models.Deed], error) {
	args := m.Called(ctx, category, now, page)
	return args.Get(0).(repositories.Page[models.Deed]), args.Error(1)
}

// MockUserStore covers the user lookups of every service.
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserStore) FindByIDs(ctx context.Context, ids []string) (map[string]models.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]models.User), args.Error(1)
}

func (m *MockUserStore) UpdateStreak(ctx context.Context, userID string, current, longest int, lastDeedDate time.Time) error {
	return m.Called(ctx, userID, current, longest, lastDeedDate).Error(0)
}

// stubModerator answers every review with the same verdict.
type stubModerator struct {
	verdict ai.Verdict
	err     error
	calls   int
}

func (s *stubModerator) Review(_ context.Context, _ ai.Content) (ai.Verdict, error) {
	s.calls++
	return s.verdict, s.err
}

func approving() *stubModerator {
	return &stubModerator{verdict: ai.Verdict{Approved: true}}
}

type stubTranslator struct {
	lang string
	err  error
}

func (s *stubTranslator) Translate(_ context.Context, title, description, lang string) (ai.Translation, error) {
	s.lang = lang
	if s.err != nil {
		return ai.Translation{}, s.err
	}
	return ai.Translation{Title: "[" + lang + "] " + title, Description: "[" + lang + "] " + description, Lang: lang}, nil
}

// passthroughEnricher wraps deeds without touching a store.
type passthroughEnricher struct{}

func (passthroughEnricher) Enrich(_ context.Context, deeds []models.Deed, _ string) ([]DeedView, error) {
	return BuildDeedViews(deeds, EngagementData{}, time.Now()), nil
}

type recordingStreaks struct {
	users []string
}

func (r *recordingStreaks) RecordDeed(_ context.Context, userID string) {
	r.users = append(r.users, userID)
}

type stubReports struct {
	err     error
	reports []models.Report
}

func (s *stubReports) CreateAndFlag(_ context.Context, report *models.Report) error {
	if s.err != nil {
		return s.err
	}
	s.reports = append(s.reports, *report)
	return nil
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func timePtr(t time.Time) *time.Time { return &t }
