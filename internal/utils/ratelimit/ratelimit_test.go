package ratelimit

import (
	"testing"
	"time"
)

func TestLimiterFixedWindow(t *testing.T) {
	store := NewMemoryStore()
	now := time.Unix(1000, 0)
	store.Now = func() time.Time { return now }
	limiter := New(store)

	for i := 0; i < 3; i++ {
		ok, err := limiter.Allow("admin", "user_block", 3, time.Minute)
		if err != nil {
			t.Fatalf("allow failed: %v", err)
		}
		if !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	ok, _ := limiter.Allow("admin", "user_block", 3, time.Minute)
	if ok {
		t.Fatal("fourth request in the window should be rejected")
	}

	// Different scope has its own counter.
	ok, _ = limiter.Allow("admin", "key_revoke", 3, time.Minute)
	if !ok {
		t.Fatal("different scope should not share the counter")
	}

	// Next window starts fresh.
	now = now.Add(time.Minute)
	ok, _ = limiter.Allow("admin", "user_block", 3, time.Minute)
	if !ok {
		t.Fatal("new window should allow again")
	}
}
