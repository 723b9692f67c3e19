package services

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"bragforgood-api/ratelimit"
)

// Action names, used as the first half of limiter keys.
const (
	ActionSignup    = "signup"
	ActionDeed      = "deed"
	ActionComment   = "comment"
	ActionJoin      = "join"
	ActionReport    = "report"
	ActionTranslate = "translate"
	ActionAdmin     = "admin"
)

// RateGuard applies the per-action policies on top of a Limiter.
type RateGuard struct {
	limiter  ratelimit.Limiter
	policies map[string]ratelimit.Policy
}

func NewRateGuard(limiter ratelimit.Limiter, policies map[string]ratelimit.Policy) *RateGuard {
	return &RateGuard{limiter: limiter, policies: policies}
}

// Check records an attempt of action by identity and returns ErrRateLimited
// when the policy is exhausted. Actions without a policy are not limited.
func (g *RateGuard) Check(ctx context.Context, action, identity string) error {
	if g == nil {
		return nil
	}
	policy, ok := g.policies[action]
	if !ok {
		return nil
	}

	allowed, err := g.limiter.Allow(ctx, ratelimit.Key(action, identity), policy.Max, policy.Window)
	if err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	if !allowed {
		log.WithFields(log.Fields{
			"action":   action,
			"identity": identity,
			"policy":   policy.String(),
		}).Info("rate limit hit")
		return ErrRateLimited
	}
	return nil
}
