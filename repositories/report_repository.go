package repositories

import (
	"context"

	"gorm.io/gorm"

	"bragforgood-api/models"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// CreateAndFlag stores the report and bumps the deed's flag count atomically.
// A repeated report by the same user fails with gorm.ErrDuplicatedKey and
// leaves the count untouched.
func (r *ReportRepository) CreateAndFlag(ctx context.Context, report *models.Report) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(report).Error; err != nil {
			return err
		}
		return tx.Model(&models.Deed{}).
			Where("id = ?", report.DeedID).
			UpdateColumn("flag_count", gorm.Expr("flag_count + ?", 1)).Error
	})
}
