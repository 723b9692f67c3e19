package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"bragforgood-api/models"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).First(&comment.User, "id = ?", comment.UserID).Error
}

// ListByDeed returns a deed's comments oldest first.
func (r *CommentRepository) ListByDeed(ctx context.Context, deedID string, page PageRequest) (Page[models.Comment], error) {
	limit := NormalizeLimit(page.Limit)
	keys := qualify("comments", oldestFirst)

	q := r.db.WithContext(ctx).Model(&models.Comment{}).Preload("User").Where("comments.deed_id = ?", deedID)
	if page.Cursor != "" {
		var cursor models.Comment
		err := r.db.WithContext(ctx).Select("id", "created_at").
			First(&cursor, "id = ? AND deed_id = ?", page.Cursor, deedID).Error
		switch {
		case err == nil:
			where, args := keysetWhere(keys, []interface{}{cursor.CreatedAt, cursor.ID})
			q = q.Where(where, args...)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return Page[models.Comment]{}, err
		}
	}

	var rows []models.Comment
	if err := q.Order(orderClause(keys)).Limit(limit + 1).Find(&rows).Error; err != nil {
		return Page[models.Comment]{}, err
	}
	return TrimPage(rows, limit, func(c models.Comment) string { return c.ID }), nil
}
