package models

import (
	"time"
)

// Reaction is unique per (user, deed, type); the index backs the toggle.
type Reaction struct {
	ID        string       `json:"id" gorm:"primaryKey;size:191"`
	DeedID    string       `json:"deedId" gorm:"not null;size:191;uniqueIndex:uk_reactions_user_deed_type,priority:2;index"`
	UserID    string       `json:"userId" gorm:"not null;size:191;uniqueIndex:uk_reactions_user_deed_type,priority:1"`
	Type      ReactionType `json:"type" gorm:"not null;size:32;uniqueIndex:uk_reactions_user_deed_type,priority:3"`
	CreatedAt time.Time    `json:"createdAt"`
}

type Participant struct {
	ID        string    `json:"id" gorm:"primaryKey;size:191"`
	DeedID    string    `json:"deedId" gorm:"not null;size:191;uniqueIndex:uk_participants_user_deed,priority:2;index"`
	UserID    string    `json:"userId" gorm:"not null;size:191;uniqueIndex:uk_participants_user_deed,priority:1"`
	Message   *string   `json:"message" gorm:"type:text"`
	IsPublic  bool      `json:"isPublic" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"createdAt"`

	User User `json:"user" gorm:"foreignKey:UserID"`
}

type Rating struct {
	ID        string    `json:"id" gorm:"primaryKey;size:191"`
	DeedID    string    `json:"deedId" gorm:"not null;size:191;uniqueIndex:uk_ratings_user_deed,priority:2;index"`
	UserID    string    `json:"userId" gorm:"not null;size:191;uniqueIndex:uk_ratings_user_deed,priority:1"`
	Score     int       `json:"score" gorm:"not null"`
	Comment   *string   `json:"comment" gorm:"type:text"`
	CreatedAt time.Time `json:"createdAt"`
}

type Report struct {
	ID        string    `json:"id" gorm:"primaryKey;size:191"`
	DeedID    string    `json:"deedId" gorm:"not null;size:191;uniqueIndex:uk_reports_user_deed,priority:2;index"`
	UserID    string    `json:"userId" gorm:"not null;size:191;uniqueIndex:uk_reports_user_deed,priority:1"`
	Reason    *string   `json:"reason" gorm:"type:text"`
	CreatedAt time.Time `json:"createdAt"`
}
