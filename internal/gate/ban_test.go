package gate

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/JzuvGTI/jzrestapi/internal/model"
	"github.com/JzuvGTI/jzrestapi/internal/op"
)

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		name     string
		d        time.Duration
		expected string
	}{
		{"seconds only", 45 * time.Second, "less than a minute"},
		{"minutes", 5 * time.Minute, "5 minutes"},
		{"one minute", time.Minute, "1 minute"},
		{"hours and minutes", 3*time.Hour + 5*time.Minute, "3 hours 5 minutes"},
		{"days and hours", 48*time.Hour + 3*time.Hour + 5*time.Minute, "2 days 3 hours"},
		{"days skip zero hours", 24*time.Hour + 5*time.Minute, "1 day 5 minutes"},
		{"exact day", 24 * time.Hour, "1 day"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatRemaining(tt.d); got != tt.expected {
				t.Errorf("formatRemaining(%v) = %q, want %q", tt.d, got, tt.expected)
			}
		})
	}
}

func TestBanMessage(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	permanent := model.User{IsBlocked: true, BanReason: "fraud"}
	msg := BanMessage(permanent, now)
	if msg != "account is blocked permanently, reason: fraud" {
		t.Errorf("unexpected permanent message: %q", msg)
	}

	noReason := model.User{IsBlocked: true}
	if msg := BanMessage(noReason, now); msg != "account is blocked permanently" {
		t.Errorf("unexpected message without reason: %q", msg)
	}

	timed := model.User{IsBlocked: true, BanUntil: now.Add(26 * time.Hour).Unix(), BanReason: "spam"}
	msg = BanMessage(timed, now)
	if !strings.Contains(msg, "1 day 2 hours") {
		t.Errorf("timed message should bucket the remaining time: %q", msg)
	}
	if !strings.Contains(msg, "until 2024-06-02 14:00:00 UTC") {
		t.Errorf("timed message should carry the absolute end: %q", msg)
	}
	if !strings.Contains(msg, "reason: spam") {
		t.Errorf("timed message should carry the reason: %q", msg)
	}

	clean := model.User{}
	if msg := BanMessage(clean, now); msg != "" {
		t.Errorf("unblocked user should have no message, got %q", msg)
	}
}

func TestBanInfoOf(t *testing.T) {
	now := time.Now()
	info := BanInfoOf(model.User{}, now)
	if info.Blocked || info.Reason != "" || info.Until != "" {
		t.Errorf("unblocked snapshot must produce the zero info, got %+v", info)
	}

	info = BanInfoOf(model.User{IsBlocked: true}, now)
	if !info.Blocked || !info.Permanent {
		t.Errorf("permanent snapshot misreported: %+v", info)
	}
}

func TestNormalizeBanIdempotent(t *testing.T) {
	ctx := context.Background()

	// Not blocked: nothing to do, no write.
	user := newTestUser(t, model.UserPlanFree)
	first, err := NormalizeBan(user, ctx)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	second, err := NormalizeBan(first, ctx)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if first != second {
		t.Errorf("normalize must be idempotent: %+v vs %+v", first, second)
	}

	// Expired ban: first call clears, second is a no-op with the same result.
	banned := newTestUser(t, model.UserPlanFree)
	if err := op.UserBlock(banned.ID, "late", time.Now().Add(-time.Hour).Unix(), ctx); err != nil {
		t.Fatalf("block failed: %v", err)
	}
	banned, _ = op.UserGet(banned.ID, ctx)
	cleared, err := NormalizeBan(banned, ctx)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if cleared.IsBlocked {
		t.Fatal("expired ban should be cleared")
	}
	again, err := NormalizeBan(cleared, ctx)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if cleared != again {
		t.Errorf("second normalize changed the snapshot: %+v vs %+v", cleared, again)
	}
}
