package gate

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JzuvGTI/jzrestapi/internal/model"
	"github.com/JzuvGTI/jzrestapi/internal/op"
)

func TestAuthorizeAndConsumeCountsDown(t *testing.T) {
	ctx := context.Background()
	user := newTestUser(t, model.UserPlanFree)
	key := newTestKey(t, user.ID, 3)

	for i := 1; i <= 3; i++ {
		result, err := AuthorizeAndConsume(key.APIKey, ctx)
		if err != nil {
			t.Fatalf("request %d should be authorized: %v", i, err)
		}
		if result.EffectiveLimit != 3 {
			t.Errorf("effective limit = %d, want 3", result.EffectiveLimit)
		}
		if result.UsedCount != i {
			t.Errorf("used count = %d, want %d", result.UsedCount, i)
		}
		if result.Remaining() != 3-i {
			t.Errorf("remaining = %d, want %d", result.Remaining(), 3-i)
		}
	}

	_, err := AuthorizeAndConsume(key.APIKey, ctx)
	if gateKind(t, err) != KindQuotaExceeded {
		t.Fatalf("expected quota exceeded, got %v", err)
	}
	if err.(*Error).HTTPStatus() != http.StatusTooManyRequests {
		t.Errorf("quota exceeded should map to 429")
	}

	used, err := op.UsageToday(key.ID, model.UsageDay(time.Now()), ctx)
	if err != nil {
		t.Fatalf("failed to read ledger: %v", err)
	}
	if used != 3 {
		t.Errorf("stored count = %d, want exactly 3", used)
	}
}

func TestAuthorizeUnknownKey(t *testing.T) {
	for _, apiKey := range []string{"", "jz-never-issued"} {
		_, err := AuthorizeAndConsume(apiKey, context.Background())
		if gateKind(t, err) != KindInvalidKey {
			t.Errorf("key %q: expected invalid key, got %v", apiKey, err)
		}
		if err.(*Error).HTTPStatus() != http.StatusUnauthorized {
			t.Errorf("invalid key should map to 401")
		}
	}
}

func TestAuthorizeRevokedKey(t *testing.T) {
	ctx := context.Background()
	user := newTestUser(t, model.UserPlanFree)
	key := newTestKey(t, user.ID, 100)
	if err := op.APIKeyRevoke(key.ID, ctx); err != nil {
		t.Fatalf("failed to revoke: %v", err)
	}

	// Revoked wins regardless of remaining quota.
	_, err := AuthorizeAndConsume(key.APIKey, ctx)
	if gateKind(t, err) != KindKeyNotActive {
		t.Fatalf("expected key not active, got %v", err)
	}
	if err.(*Error).HTTPStatus() != http.StatusForbidden {
		t.Errorf("revoked key should map to 403")
	}
	used, _ := op.UsageToday(key.ID, model.UsageDay(time.Now()), ctx)
	if used != 0 {
		t.Errorf("revoked key must not consume quota, ledger = %d", used)
	}
}

func TestAuthorizePermanentBlock(t *testing.T) {
	ctx := context.Background()
	user := newTestUser(t, model.UserPlanFree)
	key := newTestKey(t, user.ID, 100)
	if err := op.UserBlock(user.ID, "abuse", 0, ctx); err != nil {
		t.Fatalf("failed to block: %v", err)
	}

	_, err := AuthorizeAndConsume(key.APIKey, ctx)
	if gateKind(t, err) != KindUserBlocked {
		t.Fatalf("expected user blocked, got %v", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "permanently") || !strings.Contains(msg, "abuse") {
		t.Errorf("unexpected ban message: %q", msg)
	}

	// Permanent blocks survive any number of normalization passes.
	reloaded, _ := op.UserGet(user.ID, ctx)
	if !reloaded.IsBlocked {
		t.Error("permanent block must never be lazily cleared")
	}
}

func TestAuthorizeTimedBlockStillActive(t *testing.T) {
	ctx := context.Background()
	user := newTestUser(t, model.UserPlanFree)
	key := newTestKey(t, user.ID, 100)
	until := time.Now().Add(2 * time.Hour).Unix()
	if err := op.UserBlock(user.ID, "spam", until, ctx); err != nil {
		t.Fatalf("failed to block: %v", err)
	}

	_, err := AuthorizeAndConsume(key.APIKey, ctx)
	if gateKind(t, err) != KindUserBlocked {
		t.Fatalf("expected user blocked, got %v", err)
	}
	if !strings.Contains(err.Error(), "until") {
		t.Errorf("timed ban message should carry the end timestamp: %q", err.Error())
	}
	used, _ := op.UsageToday(key.ID, model.UsageDay(time.Now()), ctx)
	if used != 0 {
		t.Errorf("blocked user must not consume quota, ledger = %d", used)
	}
}

func TestAuthorizeLazyUnban(t *testing.T) {
	ctx := context.Background()
	user := newTestUser(t, model.UserPlanFree)
	key := newTestKey(t, user.ID, 100)
	expired := time.Now().Add(-time.Minute).Unix()
	if err := op.UserBlock(user.ID, "cooldown", expired, ctx); err != nil {
		t.Fatalf("failed to block: %v", err)
	}

	// The first request after the ban window proceeds unblocked and the
	// transition is persisted.
	result, err := AuthorizeAndConsume(key.APIKey, ctx)
	if err != nil {
		t.Fatalf("expired ban should be lifted lazily: %v", err)
	}
	if result.UsedCount != 1 {
		t.Errorf("used count = %d, want 1", result.UsedCount)
	}
	reloaded, _ := op.UserGet(user.ID, ctx)
	if reloaded.IsBlocked || reloaded.BanUntil != 0 || reloaded.BanReason != "" {
		t.Errorf("ban fields not cleared: %+v", reloaded)
	}
}

func TestReferralBonusAppliesToEveryKey(t *testing.T) {
	ctx := context.Background()
	user := newTestUser(t, model.UserPlanFree)
	if err := op.UserAddReferralBonus(user.ID, 2, ctx); err != nil {
		t.Fatalf("failed to add bonus: %v", err)
	}
	first := newTestKey(t, user.ID, 4)
	second := newTestKey(t, user.ID, 1)

	// The bonus is not divided across keys: each key gets it in full.
	r1, err := AuthorizeAndConsume(first.APIKey, ctx)
	if err != nil {
		t.Fatalf("authorize failed: %v", err)
	}
	if r1.EffectiveLimit != 6 {
		t.Errorf("first key effective limit = %d, want 6", r1.EffectiveLimit)
	}
	r2, err := AuthorizeAndConsume(second.APIKey, ctx)
	if err != nil {
		t.Fatalf("authorize failed: %v", err)
	}
	if r2.EffectiveLimit != 3 {
		t.Errorf("second key effective limit = %d, want 3", r2.EffectiveLimit)
	}
}

func TestConcurrentConsumeAtLastSlot(t *testing.T) {
	ctx := context.Background()
	user := newTestUser(t, model.UserPlanFree)
	key := newTestKey(t, user.ID, 5)

	for i := 0; i < 4; i++ {
		if _, err := AuthorizeAndConsume(key.APIKey, ctx); err != nil {
			t.Fatalf("warmup request failed: %v", err)
		}
	}

	const workers = 8
	var wg sync.WaitGroup
	var successes, exceeded atomic.Int64
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := AuthorizeAndConsume(key.APIKey, ctx)
			switch {
			case err == nil:
				successes.Add(1)
			default:
				if gateErr, ok := err.(*Error); ok && gateErr.Kind == KindQuotaExceeded {
					exceeded.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	if successes.Load() != 1 {
		t.Errorf("successes = %d, want exactly 1", successes.Load())
	}
	if exceeded.Load() != workers-1 {
		t.Errorf("quota refusals = %d, want %d", exceeded.Load(), workers-1)
	}
	used, _ := op.UsageToday(key.ID, model.UsageDay(time.Now()), ctx)
	if used != 5 {
		t.Errorf("stored count = %d, want exactly the limit 5", used)
	}
}

func TestCheckAvailability(t *testing.T) {
	ctx := context.Background()
	endpoint := model.Endpoint{Slug: "avail-test", Name: "Availability Test"}
	if err := op.EndpointEnsure(&endpoint, ctx); err != nil {
		t.Fatalf("failed to seed endpoint: %v", err)
	}

	if err := CheckAvailability("avail-test", ctx); err != nil {
		t.Fatalf("active endpoint should pass: %v", err)
	}

	op.EndpointSetStatus("avail-test", model.EndpointStatusMaintenance, ctx)
	err := CheckAvailability("avail-test", ctx)
	if gateKind(t, err) != KindServiceUnavailable {
		t.Fatalf("expected service unavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "maintenance") {
		t.Errorf("maintenance message missing: %q", err.Error())
	}
	if err.(*Error).HTTPStatus() != http.StatusServiceUnavailable {
		t.Errorf("unavailable endpoint should map to 503")
	}

	op.EndpointSetStatus("avail-test", model.EndpointStatusNonActive, ctx)
	err = CheckAvailability("avail-test", ctx)
	if !strings.Contains(err.Error(), "non-active") {
		t.Errorf("non-active message missing: %q", err.Error())
	}

	if err := CheckAvailability("no-such-endpoint", ctx); err == nil {
		t.Error("unknown endpoint should be unavailable")
	}
}
