package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bragforgood-api/models"
	"bragforgood-api/repositories"
)

// ReactionCounts holds a tally for every reaction type, zero included.
type ReactionCounts map[models.ReactionType]int64

func NewReactionCounts() ReactionCounts {
	c := make(ReactionCounts, len(models.ReactionTypes))
	for _, t := range models.ReactionTypes {
		c[t] = 0
	}
	return c
}

// MarshalJSON writes the keys in reaction enum order.
func (c ReactionCounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, t := range models.ReactionTypes {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%q:%d", t, c[t])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (c *ReactionCounts) UnmarshalJSON(data []byte) error {
	raw := map[models.ReactionType]int64{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = NewReactionCounts()
	for k, v := range raw {
		(*c)[k] = v
	}
	return nil
}

type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

// Glow tiers shown around avatars, by lifetime karma.
const (
	GlowNone   = "none"
	GlowBronze = "bronze"
	GlowSilver = "silver"
	GlowGold   = "gold"
)

func GlowTier(karma int64) string {
	switch {
	case karma >= 150:
		return GlowGold
	case karma >= 50:
		return GlowSilver
	case karma >= 10:
		return GlowBronze
	default:
		return GlowNone
	}
}

type AuthorView struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Handle   string  `json:"handle"`
	Avatar   *string `json:"avatar"`
	Karma    int64   `json:"karma"`
	GlowTier string  `json:"glowTier"`
}

func NewAuthorView(u models.User, karma int64) AuthorView {
	return AuthorView{
		ID:       u.ID,
		Name:     u.Name,
		Handle:   u.Handle,
		Avatar:   u.Avatar,
		Karma:    karma,
		GlowTier: GlowTier(karma),
	}
}

// DeedView is a deed with everything a feed card needs.
type DeedView struct {
	models.Deed
	Author           AuthorView            `json:"author"`
	ReactionCounts   ReactionCounts        `json:"reactionCounts"`
	UserReactions    []models.ReactionType `json:"userReactions"`
	HasJoined        bool                  `json:"hasJoined"`
	ParticipantCount int64                 `json:"participantCount"`
	CommentCount     int64                 `json:"commentCount"`
	Rating           *RatingSummary        `json:"rating,omitempty"`
}

// EngagementData is the raw output of the batch aggregation queries.
type EngagementData struct {
	Reactions     []repositories.ReactionCountRow
	UserReactions []models.Reaction
	Joined        []string
	Participants  []repositories.DeedCountRow
	Comments      []repositories.DeedCountRow
	Ratings       []repositories.RatingStatRow
	Karma         []repositories.KarmaRow
}

// BuildDeedViews assembles views for deeds from the aggregated data.
// Rating summaries are only attached to calls to action whose event passed.
func BuildDeedViews(deeds []models.Deed, data EngagementData, now time.Time) []DeedView {
	counts := make(map[string]ReactionCounts, len(deeds))
	for _, row := range data.Reactions {
		c, ok := counts[row.DeedID]
		if !ok {
			c = NewReactionCounts()
			counts[row.DeedID] = c
		}
		if row.Type.Valid() {
			c[row.Type] = row.Total
		}
	}

	mine := make(map[string]map[models.ReactionType]bool)
	for _, r := range data.UserReactions {
		if mine[r.DeedID] == nil {
			mine[r.DeedID] = make(map[models.ReactionType]bool)
		}
		mine[r.DeedID][r.Type] = true
	}

	joined := make(map[string]bool, len(data.Joined))
	for _, id := range data.Joined {
		joined[id] = true
	}

	participants := countMap(data.Participants)
	comments := countMap(data.Comments)

	ratings := make(map[string]RatingSummary, len(data.Ratings))
	for _, row := range data.Ratings {
		ratings[row.DeedID] = RatingSummary{Average: roundOneDecimal(row.Average), Count: row.Total}
	}

	karma := make(map[string]int64, len(data.Karma))
	for _, row := range data.Karma {
		karma[row.UserID] = row.Karma
	}

	views := make([]DeedView, 0, len(deeds))
	for _, d := range deeds {
		c, ok := counts[d.ID]
		if !ok {
			c = NewReactionCounts()
		}

		author := d.User
		if author.ID == "" {
			author.ID = d.UserID
		}

		view := DeedView{
			Deed:             d,
			Author:           NewAuthorView(author, karma[d.UserID]),
			ReactionCounts:   c,
			UserReactions:    orderedReactions(mine[d.ID]),
			HasJoined:        joined[d.ID],
			ParticipantCount: participants[d.ID],
			CommentCount:     comments[d.ID],
		}
		if d.EventPassed(now) {
			summary := ratings[d.ID]
			view.Rating = &summary
		}
		views = append(views, view)
	}
	return views
}

func countMap(rows []repositories.DeedCountRow) map[string]int64 {
	m := make(map[string]int64, len(rows))
	for _, row := range rows {
		m[row.DeedID] = row.Total
	}
	return m
}

func orderedReactions(set map[models.ReactionType]bool) []models.ReactionType {
	out := make([]models.ReactionType, 0, len(set))
	for _, t := range models.ReactionTypes {
		if set[t] {
			out = append(out, t)
		}
	}
	return out
}

func roundOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}

type EngagementStore interface {
	ReactionCounts(ctx context.Context, deedIDs []string) ([]repositories.ReactionCountRow, error)
	UserReactions(ctx context.Context, userID string, deedIDs []string) ([]models.Reaction, error)
	JoinedDeedIDs(ctx context.Context, userID string, deedIDs []string) ([]string, error)
	ParticipantCounts(ctx context.Context, deedIDs []string) ([]repositories.DeedCountRow, error)
	CommentCounts(ctx context.Context, deedIDs []string) ([]repositories.DeedCountRow, error)
	RatingStats(ctx context.Context, deedIDs []string) ([]repositories.RatingStatRow, error)
	KarmaByAuthors(ctx context.Context, userIDs []string) ([]repositories.KarmaRow, error)
	InsertReaction(ctx context.Context, reaction *models.Reaction) error
	DeleteReaction(ctx context.Context, userID, deedID string, reactionType models.ReactionType) (int64, error)
}

type DeedFinder interface {
	FindByID(ctx context.Context, id string) (*models.Deed, error)
}

type EngagementService struct {
	store EngagementStore
	deeds DeedFinder
	now   func() time.Time
}

func NewEngagementService(store EngagementStore, deeds DeedFinder) *EngagementService {
	return &EngagementService{store: store, deeds: deeds, now: time.Now}
}

// Enrich attaches reaction tallies, the viewer's own reactions and
// participation, counts, rating summaries and author karma to a batch of
// deeds. viewerID may be empty for anonymous readers.
func (s *EngagementService) Enrich(ctx context.Context, deeds []models.Deed, viewerID string) ([]DeedView, error) {
	if len(deeds) == 0 {
		return []DeedView{}, nil
	}

	ids := make([]string, 0, len(deeds))
	var authors []string
	seen := make(map[string]bool)
	for _, d := range deeds {
		ids = append(ids, d.ID)
		if !seen[d.UserID] {
			seen[d.UserID] = true
			authors = append(authors, d.UserID)
		}
	}

	var (
		data EngagementData
		err  error
	)
	if data.Reactions, err = s.store.ReactionCounts(ctx, ids); err != nil {
		return nil, fmt.Errorf("reaction counts: %w", err)
	}
	if data.UserReactions, err = s.store.UserReactions(ctx, viewerID, ids); err != nil {
		return nil, fmt.Errorf("user reactions: %w", err)
	}
	if data.Joined, err = s.store.JoinedDeedIDs(ctx, viewerID, ids); err != nil {
		return nil, fmt.Errorf("joined deeds: %w", err)
	}
	if data.Participants, err = s.store.ParticipantCounts(ctx, ids); err != nil {
		return nil, fmt.Errorf("participant counts: %w", err)
	}
	if data.Comments, err = s.store.CommentCounts(ctx, ids); err != nil {
		return nil, fmt.Errorf("comment counts: %w", err)
	}
	if data.Ratings, err = s.store.RatingStats(ctx, ids); err != nil {
		return nil, fmt.Errorf("rating stats: %w", err)
	}
	if data.Karma, err = s.store.KarmaByAuthors(ctx, authors); err != nil {
		return nil, fmt.Errorf("karma: %w", err)
	}

	return BuildDeedViews(deeds, data, s.now()), nil
}

// Karma returns the lifetime karma of each user in userIDs, zero included.
func (s *EngagementService) Karma(ctx context.Context, userIDs []string) (map[string]int64, error) {
	rows, err := s.store.KarmaByAuthors(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(userIDs))
	for _, id := range userIDs {
		out[id] = 0
	}
	for _, row := range rows {
		out[row.UserID] = row.Karma
	}
	return out, nil
}

type ReactionState struct {
	Counts        ReactionCounts        `json:"counts"`
	UserReactions []models.ReactionType `json:"userReactions"`
}

// ToggleReaction adds the reaction, or removes it if the user already left
// it. The unique (user, deed, type) index decides which: the insert is
// attempted first and a duplicate key turns it into a delete.
func (s *EngagementService) ToggleReaction(ctx context.Context, userID, deedID string, reactionType models.ReactionType) (*ReactionState, error) {
	if !reactionType.Valid() {
		return nil, ErrInvalidReaction
	}
	if _, err := s.deeds.FindByID(ctx, deedID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeedNotFound
		}
		return nil, err
	}

	err := s.store.InsertReaction(ctx, &models.Reaction{
		ID:        uuid.New().String(),
		DeedID:    deedID,
		UserID:    userID,
		Type:      reactionType,
		CreatedAt: s.now(),
	})
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrDuplicatedKey):
		if _, err := s.store.DeleteReaction(ctx, userID, deedID, reactionType); err != nil {
			return nil, fmt.Errorf("remove reaction: %w", err)
		}
	default:
		return nil, fmt.Errorf("add reaction: %w", err)
	}

	return s.reactionState(ctx, userID, deedID)
}

func (s *EngagementService) reactionState(ctx context.Context, userID, deedID string) (*ReactionState, error) {
	rows, err := s.store.ReactionCounts(ctx, []string{deedID})
	if err != nil {
		return nil, err
	}
	mine, err := s.store.UserReactions(ctx, userID, []string{deedID})
	if err != nil {
		return nil, err
	}

	counts := NewReactionCounts()
	for _, row := range rows {
		if row.Type.Valid() {
			counts[row.Type] = row.Total
		}
	}
	set := make(map[models.ReactionType]bool, len(mine))
	for _, r := range mine {
		set[r.Type] = true
	}
	return &ReactionState{Counts: counts, UserReactions: orderedReactions(set)}, nil
}
