package services

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"bragforgood-api/models"
)

// StreakState is the streak bookkeeping kept on a user.
type StreakState struct {
	Current      int
	Longest      int
	LastDeedDate *time.Time
}

// NextStreak advances the streak for a deed posted at now. Days are compared
// as calendar dates in loc: the next day extends the streak, the same day
// keeps it, and any gap restarts it at 1.
func NextStreak(s StreakState, now time.Time, loc *time.Location) StreakState {
	today := calendarDay(now.In(loc))

	next := StreakState{Current: s.Current, Longest: s.Longest}
	switch {
	case s.LastDeedDate == nil:
		next.Current = 1
	default:
		gap := daysBetween(calendarDay(*s.LastDeedDate), today)
		switch {
		case gap == 1:
			next.Current = s.Current + 1
		case gap > 1:
			next.Current = 1
		}
	}
	if next.Current < 1 {
		next.Current = 1
	}
	if next.Current > next.Longest {
		next.Longest = next.Current
	}

	y, m, d := today.Date()
	last := time.Date(y, m, d, 0, 0, 0, 0, loc)
	next.LastDeedDate = &last
	return next
}

// calendarDay truncates t to its date in t's own location, as UTC midnight.
// Stored DATE columns come back at midnight in the driver's zone, so their
// own location already carries the right calendar day.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

type StreakStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdateStreak(ctx context.Context, userID string, current, longest int, lastDeedDate time.Time) error
}

type StreakService struct {
	users StreakStore
	loc   *time.Location
	now   func() time.Time
}

func NewStreakService(users StreakStore, loc *time.Location) *StreakService {
	if loc == nil {
		loc = time.Local
	}
	return &StreakService{users: users, loc: loc, now: time.Now}
}

// RecordDeed updates the author's streak after a deed was created. It never
// fails the caller: errors are logged and dropped.
func (s *StreakService) RecordDeed(ctx context.Context, userID string) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("streak: could not load user")
		return
	}

	next := NextStreak(StreakState{
		Current:      user.CurrentStreak,
		Longest:      user.LongestStreak,
		LastDeedDate: user.LastDeedDate,
	}, s.now(), s.loc)

	if err := s.users.UpdateStreak(ctx, userID, next.Current, next.Longest, *next.LastDeedDate); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("streak: could not save")
		return
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"current": next.Current,
		"longest": next.Longest,
	}).Debug("streak updated")
}
