// Package ratelimit implements sliding-window request limits keyed by
// identity and action, e.g. "comment:<userID>" or "signup:<ip>".
package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Limiter decides whether one more attempt for key fits in the trailing window.
// Rejected attempts are not recorded.
type Limiter interface {
	Allow(ctx context.Context, key string, max int, window time.Duration) (bool, error)
}

// Policy is a per-action limit.
type Policy struct {
	Max    int
	Window time.Duration
}

func (p Policy) String() string {
	return fmt.Sprintf("%d per %s", p.Max, p.Window)
}

// Key joins an action and an identity into a limiter key.
func Key(action, identity string) string {
	return action + ":" + identity
}

// Clock returns the current time. Tests swap it for a fake.
type Clock func() time.Time
