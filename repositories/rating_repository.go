package repositories

import (
	"context"

	"gorm.io/gorm"

	"bragforgood-api/models"
)

type RatingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// Create fails with gorm.ErrDuplicatedKey if the user already rated the deed.
func (r *RatingRepository) Create(ctx context.Context, rating *models.Rating) error {
	return r.db.WithContext(ctx).Create(rating).Error
}
