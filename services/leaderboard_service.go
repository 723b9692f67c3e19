package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"bragforgood-api/models"
	"bragforgood-api/repositories"
)

const LeaderboardSize = 20

type LeaderboardEntry struct {
	Rank          int             `json:"rank"`
	User          AuthorView      `json:"user"`
	MonthlyKarma  int64           `json:"monthlyKarma"`
	MonthlyDeeds  int             `json:"monthlyDeeds"`
	TopCategory   models.Category `json:"topCategory"`
	LifetimeKarma int64           `json:"lifetimeKarma"`
}

type Leaderboard struct {
	Entries []LeaderboardEntry `json:"leaderboard"`
	Month   string             `json:"month"`
}

// MonthStart is local midnight on the first day of now's month in loc.
func MonthStart(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
}

type monthlyTally struct {
	userID     string
	karma      int64
	deeds      int
	categories map[models.Category]int
	catOrder   []models.Category
}

func (t *monthlyTally) topCategory() models.Category {
	var (
		best  models.Category
		count int
	)
	for _, c := range t.catOrder {
		if t.categories[c] > count {
			best, count = c, t.categories[c]
		}
	}
	return best
}

// RankMonthly turns this month's deeds, oldest first, into ranked entries
// without user details. Users are ordered by monthly karma, then monthly
// deed count; remaining ties keep the order in which users first posted.
// A top category tie goes to the category the user posted in first.
func RankMonthly(rows []repositories.MonthlyDeedRow) []LeaderboardEntry {
	tallies := make(map[string]*monthlyTally)
	var order []*monthlyTally

	for _, row := range rows {
		t, ok := tallies[row.UserID]
		if !ok {
			t = &monthlyTally{userID: row.UserID, categories: make(map[models.Category]int)}
			tallies[row.UserID] = t
			order = append(order, t)
		}
		t.deeds++
		t.karma += row.Reactions
		if _, seen := t.categories[row.Category]; !seen {
			t.catOrder = append(t.catOrder, row.Category)
		}
		t.categories[row.Category]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].karma != order[j].karma {
			return order[i].karma > order[j].karma
		}
		return order[i].deeds > order[j].deeds
	})
	if len(order) > LeaderboardSize {
		order = order[:LeaderboardSize]
	}

	entries := make([]LeaderboardEntry, 0, len(order))
	for i, t := range order {
		entries = append(entries, LeaderboardEntry{
			Rank:         i + 1,
			User:         AuthorView{ID: t.userID},
			MonthlyKarma: t.karma,
			MonthlyDeeds: t.deeds,
			TopCategory:  t.topCategory(),
		})
	}
	return entries
}

type LeaderboardStore interface {
	DeedsSince(ctx context.Context, since time.Time) ([]repositories.MonthlyDeedRow, error)
}

type UserLookup interface {
	FindByIDs(ctx context.Context, ids []string) (map[string]models.User, error)
}

type KarmaSource interface {
	Karma(ctx context.Context, userIDs []string) (map[string]int64, error)
}

type LeaderboardService struct {
	store LeaderboardStore
	users UserLookup
	karma KarmaSource
	loc   *time.Location
	now   func() time.Time
}

func NewLeaderboardService(store LeaderboardStore, users UserLookup, karma KarmaSource, loc *time.Location) *LeaderboardService {
	if loc == nil {
		loc = time.Local
	}
	return &LeaderboardService{store: store, users: users, karma: karma, loc: loc, now: time.Now}
}

// Monthly ranks users by reactions received on deeds posted this month.
func (s *LeaderboardService) Monthly(ctx context.Context) (*Leaderboard, error) {
	start := MonthStart(s.now(), s.loc)

	rows, err := s.store.DeedsSince(ctx, start)
	if err != nil {
		return nil, fmt.Errorf("monthly deeds: %w", err)
	}
	entries := RankMonthly(rows)

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.User.ID
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("leaderboard users: %w", err)
	}
	lifetime, err := s.karma.Karma(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("lifetime karma: %w", err)
	}

	for i := range entries {
		id := entries[i].User.ID
		u, ok := users[id]
		if !ok {
			u = models.User{ID: id}
		}
		entries[i].LifetimeKarma = lifetime[id]
		entries[i].User = NewAuthorView(u, lifetime[id])
	}

	return &Leaderboard{Entries: entries, Month: start.Format("2006-01")}, nil
}
