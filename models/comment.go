package models

import (
	"time"
)

type Comment struct {
	ID        string    `json:"id" gorm:"primaryKey;size:191"`
	DeedID    string    `json:"deedId" gorm:"not null;size:191;index:idx_comments_deed_created,priority:1"`
	UserID    string    `json:"userId" gorm:"not null;size:191;index"`
	Body      string    `json:"body" gorm:"not null;type:text"`
	CreatedAt time.Time `json:"createdAt" gorm:"index:idx_comments_deed_created,priority:2"`

	User User `json:"user" gorm:"foreignKey:UserID"`
}
