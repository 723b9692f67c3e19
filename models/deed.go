package models

import (
	"time"
)

// HiddenFlagThreshold is the report count at which a deed leaves public listings.
const HiddenFlagThreshold = 3

type Deed struct {
	ID           string      `json:"id" gorm:"primaryKey;size:191"`
	UserID       string      `json:"userId" gorm:"not null;size:191;index"`
	Title        string      `json:"title" gorm:"not null;size:255"`
	Description  string      `json:"description" gorm:"not null;type:text"`
	Category     Category    `json:"category" gorm:"not null;size:32;index"`
	PhotoUrls    StringSlice `json:"photoUrls" gorm:"type:json"`
	Location     *string     `json:"location" gorm:"size:255"`
	Type         DeedType    `json:"type" gorm:"not null;size:32;default:BRAG"`
	EventDate    *time.Time  `json:"eventDate"`
	EventEndDate *time.Time  `json:"eventEndDate"`
	MeetingPoint *string     `json:"meetingPoint" gorm:"size:255"`
	WhatToBring  *string     `json:"whatToBring" gorm:"type:text"`
	MaxSpots     *int        `json:"maxSpots"`
	FlagCount    int         `json:"flagCount" gorm:"not null;default:0"`
	IsExample    bool        `json:"isExample" gorm:"not null;default:false"`
	CreatedAt    time.Time   `json:"createdAt" gorm:"index"`
	UpdatedAt    time.Time   `json:"updatedAt"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}

func (d Deed) IsCallToAction() bool {
	return d.Type == DeedTypeCallToAction
}

func (d Deed) IsHidden() bool {
	return d.FlagCount >= HiddenFlagThreshold
}

// EventPassed reports whether a call to action's event date is behind now.
func (d Deed) EventPassed(now time.Time) bool {
	return d.IsCallToAction() && d.EventDate != nil && d.EventDate.Before(now)
}

// ClearEventFields drops event-only attributes, used for BRAG deeds.
func (d *Deed) ClearEventFields() {
	d.EventDate = nil
	d.EventEndDate = nil
	d.MeetingPoint = nil
	d.WhatToBring = nil
	d.MaxSpots = nil
}
