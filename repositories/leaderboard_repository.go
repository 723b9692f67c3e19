package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"bragforgood-api/models"
)

type LeaderboardRepository struct {
	db *gorm.DB
}

func NewLeaderboardRepository(db *gorm.DB) *LeaderboardRepository {
	return &LeaderboardRepository{db: db}
}

// MonthlyDeedRow is one deed created in the ranking period with the number
// of reactions it has received.
type MonthlyDeedRow struct {
	DeedID    string
	UserID    string
	Category  models.Category
	CreatedAt time.Time
	Reactions int64
}

// DeedsSince returns every deed created at or after since, oldest first.
func (r *LeaderboardRepository) DeedsSince(ctx context.Context, since time.Time) ([]MonthlyDeedRow, error) {
	var rows []MonthlyDeedRow
	err := r.db.WithContext(ctx).Table("deeds").
		Select("deeds.id AS deed_id, deeds.user_id, deeds.category, deeds.created_at, COUNT(reactions.id) AS reactions").
		Joins("LEFT JOIN reactions ON reactions.deed_id = deeds.id").
		Where("deeds.created_at >= ?", since).
		Group("deeds.id, deeds.user_id, deeds.category, deeds.created_at").
		Order("deeds.created_at ASC, deeds.id ASC").
		Scan(&rows).Error
	return rows, err
}
