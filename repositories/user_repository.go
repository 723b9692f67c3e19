package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"bragforgood-api/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDs returns the users keyed by ID. Unknown IDs are skipped.
func (r *UserRepository) FindByIDs(ctx context.Context, ids []string) (map[string]models.User, error) {
	out := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func (r *UserRepository) HandleTaken(ctx context.Context, handle string) (bool, error) {
	var existing models.User
	err := r.db.WithContext(ctx).Select("id").First(&existing, "handle = ?", handle).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *UserRepository) UpdateProfile(ctx context.Context, userID string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = time.Now()
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(fields).Error
}

// UpdateStreak writes the streak columns only.
func (r *UserRepository) UpdateStreak(ctx context.Context, userID string, current, longest int, lastDeedDate time.Time) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).UpdateColumns(map[string]interface{}{
		"current_streak": current,
		"longest_streak": longest,
		"last_deed_date": lastDeedDate,
	}).Error
}

// Delete removes the account, the deeds it owns with everything attached to
// them, and every comment, reaction, participation, rating and report it made.
func (r *UserRepository) Delete(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var deedIDs []string
		if err := tx.Model(&models.Deed{}).Where("user_id = ?", userID).Pluck("id", &deedIDs).Error; err != nil {
			return err
		}
		if err := deleteDeedChildren(tx, deedIDs); err != nil {
			return err
		}
		if len(deedIDs) > 0 {
			if err := tx.Where("id IN ?", deedIDs).Delete(&models.Deed{}).Error; err != nil {
				return err
			}
		}

		owned := []interface{}{
			&models.Comment{},
			&models.Reaction{},
			&models.Participant{},
			&models.Rating{},
			&models.Report{},
		}
		for _, model := range owned {
			if err := tx.Where("user_id = ?", userID).Delete(model).Error; err != nil {
				return err
			}
		}

		res := tx.Delete(&models.User{}, "id = ?", userID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
