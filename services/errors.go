package services

import (
	"errors"
)

// Not found
var (
	ErrDeedNotFound = errors.New("deed not found")
	ErrUserNotFound = errors.New("user not found")
	ErrNotJoined    = errors.New("you have not joined this event")
)

// Authorization
var (
	ErrUnauthorized       = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("you are not allowed to do this")
	ErrOwnDeed            = errors.New("you cannot do this on your own deed")
)

// Conflicts
var (
	ErrAlreadyReported = errors.New("you already reported this deed")
	ErrAlreadyJoined   = errors.New("you already joined this event")
	ErrAlreadyRated    = errors.New("you already rated this event")
	ErrEventFull       = errors.New("this event is full")
	ErrEmailTaken      = errors.New("email already registered")
	ErrHandleTaken     = errors.New("handle already taken")
)

// Rule violations
var (
	ErrNotCallToAction  = errors.New("only calls to action support this")
	ErrEventPassed      = errors.New("this event has already taken place")
	ErrEventNotPassed   = errors.New("this event has not taken place yet")
	ErrNotParticipant   = errors.New("only participants can rate this event")
	ErrInvalidReaction  = errors.New("unknown reaction type")
	ErrInvalidScore     = errors.New("score must be between 1 and 5")
	ErrEventDateMissing = errors.New("calls to action need an event date")
	ErrEventEndBefore   = errors.New("event end must not be before its start")
)

var (
	ErrRateLimited        = errors.New("too many requests, please slow down")
	ErrUpstream           = errors.New("an upstream service failed")
	ErrStorageUnavailable = errors.New("photo uploads are not configured")
)

// ModerationError carries the moderation verdict back to the author.
type ModerationError struct {
	Reason string
}

func (e *ModerationError) Error() string {
	return e.Reason
}
