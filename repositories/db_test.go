package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"bragforgood-api/models"
)

// newTestDB opens a private in-memory SQLite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	require.NoError(t, err)

	// Every connection to :memory: is its own database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Deed{},
		&models.Comment{},
		&models.Reaction{},
		&models.Participant{},
		&models.Rating{},
		&models.Report{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, id string) *models.User {
	t.Helper()
	u := &models.User{
		ID:            id,
		Name:          "User " + id,
		Handle:        "h_" + id,
		Email:         id + "@example.com",
		Password:      "x",
		Role:          models.RoleUser,
		PreferredLang: "en",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedDeed(t *testing.T, db *gorm.DB, id, userID string, createdAt time.Time, opts ...func(*models.Deed)) *models.Deed {
	t.Helper()
	d := &models.Deed{
		ID:          id,
		UserID:      userID,
		Title:       "Deed " + id,
		Description: "did something good",
		Category:    models.CategoryKindness,
		Type:        models.DeedTypeBrag,
		PhotoUrls:   models.StringSlice{},
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	for _, opt := range opts {
		opt(d)
	}
	require.NoError(t, db.Create(d).Error)
	return d
}

func seedReaction(t *testing.T, db *gorm.DB, userID, deedID string, rt models.ReactionType) {
	t.Helper()
	require.NoError(t, db.Create(&models.Reaction{
		ID:     fmt.Sprintf("r-%s-%s-%s", userID, deedID, rt),
		DeedID: deedID,
		UserID: userID,
		Type:   rt,
	}).Error)
}

func callToAction(eventDate time.Time, spots *int) func(*models.Deed) {
	return func(d *models.Deed) {
		d.Type = models.DeedTypeCallToAction
		d.EventDate = &eventDate
		d.MaxSpots = spots
	}
}
