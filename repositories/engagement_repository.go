package repositories

import (
	"context"

	"gorm.io/gorm"

	"bragforgood-api/models"
)

// EngagementRepository runs the batch aggregations behind deed listings.
// Every method takes a set of deed (or author) IDs and issues one grouped
// query for the whole set.
type EngagementRepository struct {
	db *gorm.DB
}

func NewEngagementRepository(db *gorm.DB) *EngagementRepository {
	return &EngagementRepository{db: db}
}

type ReactionCountRow struct {
	DeedID string
	Type   models.ReactionType
	Total  int64
}

type DeedCountRow struct {
	DeedID string
	Total  int64
}

type RatingStatRow struct {
	DeedID  string
	Average float64
	Total   int64
}

type KarmaRow struct {
	UserID string
	Karma  int64
}

func (r *EngagementRepository) ReactionCounts(ctx context.Context, deedIDs []string) ([]ReactionCountRow, error) {
	var rows []ReactionCountRow
	if len(deedIDs) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).Model(&models.Reaction{}).
		Select("deed_id, type, COUNT(*) AS total").
		Where("deed_id IN ?", deedIDs).
		Group("deed_id, type").
		Scan(&rows).Error
	return rows, err
}

// UserReactions lists the reactions userID left on the given deeds.
func (r *EngagementRepository) UserReactions(ctx context.Context, userID string, deedIDs []string) ([]models.Reaction, error) {
	var rows []models.Reaction
	if userID == "" || len(deedIDs) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND deed_id IN ?", userID, deedIDs).
		Find(&rows).Error
	return rows, err
}

// JoinedDeedIDs returns the subset of deedIDs userID participates in.
func (r *EngagementRepository) JoinedDeedIDs(ctx context.Context, userID string, deedIDs []string) ([]string, error) {
	var ids []string
	if userID == "" || len(deedIDs) == 0 {
		return ids, nil
	}
	err := r.db.WithContext(ctx).Model(&models.Participant{}).
		Where("user_id = ? AND deed_id IN ?", userID, deedIDs).
		Pluck("deed_id", &ids).Error
	return ids, err
}

func (r *EngagementRepository) ParticipantCounts(ctx context.Context, deedIDs []string) ([]DeedCountRow, error) {
	return r.countBy(ctx, &models.Participant{}, deedIDs)
}

func (r *EngagementRepository) CommentCounts(ctx context.Context, deedIDs []string) ([]DeedCountRow, error) {
	return r.countBy(ctx, &models.Comment{}, deedIDs)
}

func (r *EngagementRepository) countBy(ctx context.Context, model interface{}, deedIDs []string) ([]DeedCountRow, error) {
	var rows []DeedCountRow
	if len(deedIDs) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).Model(model).
		Select("deed_id, COUNT(*) AS total").
		Where("deed_id IN ?", deedIDs).
		Group("deed_id").
		Scan(&rows).Error
	return rows, err
}

func (r *EngagementRepository) RatingStats(ctx context.Context, deedIDs []string) ([]RatingStatRow, error) {
	var rows []RatingStatRow
	if len(deedIDs) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).Model(&models.Rating{}).
		Select("deed_id, AVG(score) AS average, COUNT(*) AS total").
		Where("deed_id IN ?", deedIDs).
		Group("deed_id").
		Scan(&rows).Error
	return rows, err
}

// KarmaByAuthors counts reactions received across all deeds of each author.
// Authors without reactions are absent from the result.
func (r *EngagementRepository) KarmaByAuthors(ctx context.Context, userIDs []string) ([]KarmaRow, error) {
	var rows []KarmaRow
	if len(userIDs) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).Table("reactions").
		Select("deeds.user_id AS user_id, COUNT(reactions.id) AS karma").
		Joins("JOIN deeds ON deeds.id = reactions.deed_id").
		Where("deeds.user_id IN ?", userIDs).
		Group("deeds.user_id").
		Scan(&rows).Error
	return rows, err
}

// InsertReaction fails with gorm.ErrDuplicatedKey when the user already
// left this reaction type on the deed.
func (r *EngagementRepository) InsertReaction(ctx context.Context, reaction *models.Reaction) error {
	return r.db.WithContext(ctx).Create(reaction).Error
}

func (r *EngagementRepository) DeleteReaction(ctx context.Context, userID, deedID string, reactionType models.ReactionType) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND deed_id = ? AND type = ?", userID, deedID, reactionType).
		Delete(&models.Reaction{})
	return res.RowsAffected, res.Error
}
