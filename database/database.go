// File: /database/database.go
package database

import (
	"fmt"
	"time"

	"bragforgood-api/config"
	"bragforgood-api/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Initialize(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseURL)
	default:
		dialector = mysql.Open(cfg.DatabaseURL)
	}

	level := logger.Warn
	if !cfg.IsProduction() && cfg.AppLogLevel == "debug" {
		level = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   logger.Default.LogMode(level),
		DisableForeignKeyConstraintWhenMigrating: true,
		// Unique index violations surface as gorm.ErrDuplicatedKey.
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Deed{},
		&models.Comment{},
		&models.Reaction{},
		&models.Participant{},
		&models.Rating{},
		&models.Report{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	addCustomIndexes(db)
	addDatabaseConstraints(db)

	return nil
}

type customIndex struct {
	model   interface{}
	name    string
	table   string
	columns string
}

var customIndexes = []customIndex{
	// Feed keyset pagination
	{&models.Deed{}, "idx_deeds_created_id", "deeds", "created_at, id"},
	{&models.Deed{}, "idx_deeds_user_created", "deeds", "user_id, created_at"},
	// Upcoming events
	{&models.Deed{}, "idx_deeds_type_event_date", "deeds", "type, event_date"},
	{&models.Participant{}, "idx_participants_deed_created", "participants", "deed_id, created_at"},
}

// addCustomIndexes is best effort: a failure is logged and migration goes on.
func addCustomIndexes(db *gorm.DB) {
	migrator := db.Migrator()
	for _, idx := range customIndexes {
		if migrator.HasIndex(idx.model, idx.name) {
			continue
		}
		stmt := fmt.Sprintf("CREATE INDEX %s ON %s(%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(stmt).Error; err != nil {
			log.WithError(err).WithField("index", idx.name).Warn("Could not create index")
		}
	}
}

func addDatabaseConstraints(db *gorm.DB) {
	if db.Migrator().HasConstraint(&models.Rating{}, "ck_ratings_score") {
		return
	}
	if err := db.Exec("ALTER TABLE ratings ADD CONSTRAINT ck_ratings_score CHECK (score BETWEEN 1 AND 5)").Error; err != nil {
		log.WithError(err).Warn("Could not add ratings score constraint")
	}
}

// SeedExamples fills an empty feed with a handful of example deeds so a
// fresh install has something to show. Example deeds are marked isExample.
func SeedExamples(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Deed{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count deeds: %w", err)
	}
	if count > 0 {
		return nil
	}

	// Nobody can log in as the example account.
	hashed, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	user := models.User{
		ID:            uuid.New().String(),
		Name:          "Bragforgood Team",
		Handle:        "bragforgood",
		Email:         "examples@bragforgood.app",
		Password:      string(hashed),
		Role:          models.RoleUser,
		Bio:           "Example deeds to get you started.",
		PreferredLang: "en",
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("handle = ?", user.Handle).FirstOrCreate(&user).Error; err != nil {
			return fmt.Errorf("failed to create example user: %w", err)
		}

		now := time.Now()
		eventDate := now.AddDate(0, 0, 14).Truncate(time.Hour)
		eventEnd := eventDate.Add(3 * time.Hour)
		meetingPoint := "Main entrance of the city park"
		whatToBring := "Gloves and a water bottle"
		spots := 20
		park := "City park"

		deeds := []models.Deed{
			{
				Title:       "Picked up litter on my morning walk",
				Description: "Filled a whole bag along the river path. Took twenty minutes and the path looks great.",
				Category:    models.CategoryEnvironment,
				Type:        models.DeedTypeBrag,
			},
			{
				Title:       "Helped my neighbour carry groceries",
				Description: "She lives on the fourth floor and the lift was broken all week.",
				Category:    models.CategoryKindness,
				Type:        models.DeedTypeBrag,
			},
			{
				Title:        "Park clean-up, join us!",
				Description:  "We are cleaning the city park together. Everyone is welcome, no experience needed.",
				Category:     models.CategoryCommunity,
				Type:         models.DeedTypeCallToAction,
				Location:     &park,
				EventDate:    &eventDate,
				EventEndDate: &eventEnd,
				MeetingPoint: &meetingPoint,
				WhatToBring:  &whatToBring,
				MaxSpots:     &spots,
			},
		}

		for i := range deeds {
			deeds[i].ID = uuid.New().String()
			deeds[i].UserID = user.ID
			deeds[i].IsExample = true
			deeds[i].PhotoUrls = models.StringSlice{}
			deeds[i].CreatedAt = now.Add(-time.Duration(len(deeds)-i) * time.Minute)
			if err := tx.Create(&deeds[i]).Error; err != nil {
				return fmt.Errorf("failed to create example deed: %w", err)
			}
		}

		log.WithField("count", len(deeds)).Info("Seeded example deeds")
		return nil
	})
}
