package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"bragforgood-api/models"
)

type DeedRepository struct {
	db *gorm.DB
}

func NewDeedRepository(db *gorm.DB) *DeedRepository {
	return &DeedRepository{db: db}
}

// DeedFilter narrows a deed listing. Zero values mean "any".
type DeedFilter struct {
	Category      models.Category
	Type          models.DeedType
	UserID        string
	IncludeHidden bool
}

func (r *DeedRepository) Create(ctx context.Context, deed *models.Deed) error {
	return r.db.WithContext(ctx).Create(deed).Error
}

// FindByID loads a deed with its author.
func (r *DeedRepository) FindByID(ctx context.Context, id string) (*models.Deed, error) {
	var deed models.Deed
	if err := r.db.WithContext(ctx).Preload("User").First(&deed, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &deed, nil
}

func (r *DeedRepository) Update(ctx context.Context, deed *models.Deed) error {
	return r.db.WithContext(ctx).Omit("User", "created_at", "flag_count", "is_example").Save(deed).Error
}

// Delete removes a deed and everything attached to it.
func (r *DeedRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteDeedChildren(tx, []string{id}); err != nil {
			return err
		}
		res := tx.Delete(&models.Deed{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func deleteDeedChildren(tx *gorm.DB, deedIDs []string) error {
	if len(deedIDs) == 0 {
		return nil
	}
	children := []interface{}{
		&models.Comment{},
		&models.Reaction{},
		&models.Participant{},
		&models.Rating{},
		&models.Report{},
	}
	for _, child := range children {
		if err := tx.Where("deed_id IN ?", deedIDs).Delete(child).Error; err != nil {
			return err
		}
	}
	return nil
}

// ResetFlags clears the report counter so the deed shows up in listings again.
func (r *DeedRepository) ResetFlags(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&models.Deed{}).Where("id = ?", id).UpdateColumn("flag_count", 0)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := r.db.WithContext(ctx).Model(&models.Deed{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}

func (r *DeedRepository) CountByUser(ctx context.Context, userID string, includeHidden bool) (int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Deed{}).Where("user_id = ?", userID)
	if !includeHidden {
		q = q.Where("flag_count < ?", models.HiddenFlagThreshold)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

// List returns deeds newest first.
func (r *DeedRepository) List(ctx context.Context, filter DeedFilter, page PageRequest) (Page[models.Deed], error) {
	limit := NormalizeLimit(page.Limit)
	keys := qualify("deeds", newestFirst)

	q := r.filtered(ctx, filter)
	if page.Cursor != "" {
		cursor, err := r.cursorRow(ctx, page.Cursor)
		if err != nil {
			return Page[models.Deed]{}, err
		}
		if cursor != nil {
			where, args := keysetWhere(keys, []interface{}{cursor.CreatedAt, cursor.ID})
			q = q.Where(where, args...)
		}
	}

	var rows []models.Deed
	if err := q.Order(orderClause(keys)).Limit(limit + 1).Find(&rows).Error; err != nil {
		return Page[models.Deed]{}, err
	}
	return TrimPage(rows, limit, deedID), nil
}

// ListUpcoming returns calls to action whose event has not started yet,
// soonest first.
func (r *DeedRepository) ListUpcoming(ctx context.Context, category models.Category, now time.Time, page PageRequest) (Page[models.Deed], error) {
	limit := NormalizeLimit(page.Limit)
	keys := qualify("deeds", upcomingFirst)

	q := r.filtered(ctx, DeedFilter{Category: category, Type: models.DeedTypeCallToAction}).
		Where("deeds.event_date IS NOT NULL AND deeds.event_date >= ?", now)

	if page.Cursor != "" {
		cursor, err := r.cursorRow(ctx, page.Cursor)
		if err != nil {
			return Page[models.Deed]{}, err
		}
		if cursor != nil && cursor.EventDate != nil {
			where, args := keysetWhere(keys, []interface{}{*cursor.EventDate, cursor.CreatedAt, cursor.ID})
			q = q.Where(where, args...)
		}
	}

	var rows []models.Deed
	if err := q.Order(orderClause(keys)).Limit(limit + 1).Find(&rows).Error; err != nil {
		return Page[models.Deed]{}, err
	}
	return TrimPage(rows, limit, deedID), nil
}

func (r *DeedRepository) filtered(ctx context.Context, filter DeedFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Deed{}).Preload("User")
	if filter.Category != "" {
		q = q.Where("deeds.category = ?", filter.Category)
	}
	if filter.Type != "" {
		q = q.Where("deeds.type = ?", filter.Type)
	}
	if filter.UserID != "" {
		q = q.Where("deeds.user_id = ?", filter.UserID)
	}
	if !filter.IncludeHidden {
		q = q.Where("deeds.flag_count < ?", models.HiddenFlagThreshold)
	}
	return q
}

// cursorRow loads the sort key values of the cursor deed. A cursor that no
// longer exists yields nil so the listing restarts from the first page.
func (r *DeedRepository) cursorRow(ctx context.Context, id string) (*models.Deed, error) {
	var deed models.Deed
	err := r.db.WithContext(ctx).Select("id", "created_at", "event_date").First(&deed, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &deed, nil
}

func deedID(d models.Deed) string { return d.ID }
