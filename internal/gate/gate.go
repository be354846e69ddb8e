// Package gate is the authorization and metering precondition every proxied
// endpoint passes before doing real work: key lookup, ban normalization,
// effective-quota computation and the atomic usage increment. It used to be
// duplicated per handler; every adapter now calls through here.
package gate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JzuvGTI/jzrestapi/internal/model"
	"github.com/JzuvGTI/jzrestapi/internal/op"
)

// Result reports an admitted request. Quota is consumed on admission: a slow
// or failing upstream afterwards does not refund the increment.
type Result struct {
	EffectiveLimit int
	UsedCount      int
}

// Remaining is what handlers surface as remaining_limit.
func (r Result) Remaining() int {
	if remaining := r.EffectiveLimit - r.UsedCount; remaining > 0 {
		return remaining
	}
	return 0
}

// AuthorizeAndConsume validates the caller-supplied key and burns one request
// from today's quota. Steps short-circuit in order: unknown key, revoked key,
// blocked owner (after lazy unban), exhausted quota.
func AuthorizeAndConsume(apiKey string, ctx context.Context) (Result, error) {
	if apiKey == "" {
		return Result{}, &Error{Kind: KindInvalidKey, Message: "apikey parameter is required"}
	}
	key, err := op.APIKeyGetByKey(apiKey, ctx)
	if err != nil {
		return Result{}, &Error{Kind: KindInvalidKey, Message: "invalid API key"}
	}
	if key.Status != model.APIKeyStatusActive {
		return Result{}, &Error{Kind: KindKeyNotActive, Message: "API key has been revoked"}
	}
	owner, err := op.UserGet(key.UserID, ctx)
	if err != nil {
		return Result{}, &Error{Kind: KindInvalidKey, Message: "invalid API key"}
	}
	owner, err = NormalizeBan(owner, ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to normalize ban state: %w", err)
	}
	if owner.IsBlocked {
		return Result{}, &Error{Kind: KindUserBlocked, Message: BanMessage(owner, time.Now())}
	}

	// The referral bonus is per user and applies to each key in full,
	// not divided across the user's keys.
	effectiveLimit := key.DailyLimit + owner.ReferralBonusDaily

	used, err := op.UsageConsume(key.ID, model.UsageDay(time.Now()), effectiveLimit, ctx)
	if errors.Is(err, op.ErrQuotaExceeded) {
		return Result{}, &Error{Kind: KindQuotaExceeded, Message: "daily request limit reached"}
	}
	if err != nil {
		return Result{}, err
	}
	return Result{EffectiveLimit: effectiveLimit, UsedCount: used}, nil
}

// CheckAvailability verifies the endpoint's operational status. It runs
// before authorization so an unavailable endpoint never consumes quota.
func CheckAvailability(slug string, ctx context.Context) error {
	endpoint, err := op.EndpointGetBySlug(slug, ctx)
	if err != nil {
		return &Error{Kind: KindServiceUnavailable, Message: fmt.Sprintf("service %s is currently non-active", slug)}
	}
	switch endpoint.Status {
	case model.EndpointStatusActive:
		return nil
	case model.EndpointStatusMaintenance:
		return &Error{Kind: KindServiceUnavailable, Message: fmt.Sprintf("service %s is under maintenance", endpoint.Name)}
	default:
		return &Error{Kind: KindServiceUnavailable, Message: fmt.Sprintf("service %s is currently non-active", endpoint.Name)}
	}
}
