package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bragforgood-api/models"
)

type ParticipantRepository struct {
	db *gorm.DB
}

func NewParticipantRepository(db *gorm.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

// JoinCheck validates a join against the locked deed and its current
// participant count. Returning an error aborts the join.
type JoinCheck func(deed *models.Deed, participants int64) error

// Join locks the deed row, runs check and inserts the participant in one
// transaction so concurrent joins cannot overbook the event. It returns the
// participant count after the insert. A second join by the same user fails
// with gorm.ErrDuplicatedKey.
func (r *ParticipantRepository) Join(ctx context.Context, participant *models.Participant, check JoinCheck) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var deed models.Deed
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&deed, "id = ?", participant.DeedID).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Participant{}).Where("deed_id = ?", deed.ID).Count(&count).Error; err != nil {
			return err
		}
		if err := check(&deed, count); err != nil {
			return err
		}

		if err := tx.Create(participant).Error; err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Leave removes the participation and returns the remaining count.
func (r *ParticipantRepository) Leave(ctx context.Context, deedID, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("deed_id = ? AND user_id = ?", deedID, userID).Delete(&models.Participant{})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return r.Count(ctx, deedID)
}

func (r *ParticipantRepository) Count(ctx context.Context, deedID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Participant{}).Where("deed_id = ?", deedID).Count(&n).Error
	return n, err
}

func (r *ParticipantRepository) Exists(ctx context.Context, deedID, userID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Participant{}).
		Where("deed_id = ? AND user_id = ?", deedID, userID).
		Count(&n).Error
	return n > 0, err
}

// ListByDeed returns participants in join order. Private participations are
// only included when includePrivate is set, except the viewer's own.
func (r *ParticipantRepository) ListByDeed(ctx context.Context, deedID, viewerID string, includePrivate bool, page PageRequest) (Page[models.Participant], error) {
	limit := NormalizeLimit(page.Limit)
	keys := qualify("participants", oldestFirst)

	q := r.db.WithContext(ctx).Model(&models.Participant{}).Preload("User").Where("participants.deed_id = ?", deedID)
	if !includePrivate {
		q = q.Where("participants.is_public = ? OR participants.user_id = ?", true, viewerID)
	}

	if page.Cursor != "" {
		var cursor models.Participant
		err := r.db.WithContext(ctx).Select("id", "created_at").
			First(&cursor, "id = ? AND deed_id = ?", page.Cursor, deedID).Error
		switch {
		case err == nil:
			where, args := keysetWhere(keys, []interface{}{cursor.CreatedAt, cursor.ID})
			q = q.Where(where, args...)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return Page[models.Participant]{}, err
		}
	}

	var rows []models.Participant
	if err := q.Order(orderClause(keys)).Limit(limit + 1).Find(&rows).Error; err != nil {
		return Page[models.Participant]{}, err
	}
	return TrimPage(rows, limit, func(p models.Participant) string { return p.ID }), nil
}
