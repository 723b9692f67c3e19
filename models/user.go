// File: /models/user.go
package models

import (
	"strings"
	"time"
	"unicode"
)

type User struct {
	ID            string     `json:"id" gorm:"primaryKey;size:191"`
	Name          string     `json:"name" gorm:"not null;size:255"`
	Handle        string     `json:"handle" gorm:"uniqueIndex;not null;size:50"`
	Email         string     `json:"-" gorm:"uniqueIndex;not null;size:255"`
	Password      string     `json:"-" gorm:"not null;size:255"`
	Role          string     `json:"role" gorm:"not null;size:20;default:user"`
	Avatar        *string    `json:"avatar" gorm:"size:500"`
	Bio           string     `json:"bio" gorm:"type:text"`
	CurrentStreak int        `json:"currentStreak" gorm:"not null;default:0"`
	LongestStreak int        `json:"longestStreak" gorm:"not null;default:0"`
	LastDeedDate  *time.Time `json:"lastDeedDate" gorm:"type:date"`
	PreferredLang string     `json:"preferredLang" gorm:"not null;size:10;default:en"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// GenerateHandleFromName creates a handle candidate from a display name
func GenerateHandleFromName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('_')
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		}
	}

	handle := strings.Trim(b.String(), "_")
	if handle == "" {
		handle = "doer"
	}
	if len(handle) > 40 {
		handle = handle[:40]
	}
	return handle
}
