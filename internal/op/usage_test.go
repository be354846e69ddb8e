package op

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/JzuvGTI/jzrestapi/internal/db"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "op-test-")
	if err != nil {
		panic(err)
	}
	if err := db.InitDB("sqlite", filepath.Join(dir, "test.db"), false); err != nil {
		panic(err)
	}
	if err := InitCache(); err != nil {
		panic(err)
	}
	code := m.Run()
	db.Close()
	os.RemoveAll(dir)
	os.Exit(code)
}

func TestUsageConsumeEnforcesCeiling(t *testing.T) {
	ctx := context.Background()
	const keyID, limit = 9001, 3

	for i := 1; i <= limit; i++ {
		used, err := UsageConsume(keyID, "2024-06-01", limit, ctx)
		if err != nil {
			t.Fatalf("consume %d failed: %v", i, err)
		}
		if used != i {
			t.Errorf("post-increment count = %d, want %d", used, i)
		}
	}

	_, err := UsageConsume(keyID, "2024-06-01", limit, ctx)
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	used, err := UsageToday(keyID, "2024-06-01", ctx)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if used != limit {
		t.Errorf("refused consume must not move the counter: %d", used)
	}
}

func TestUsageConsumeNewDayStartsFresh(t *testing.T) {
	ctx := context.Background()
	const keyID, limit = 9002, 2

	for i := 0; i < limit; i++ {
		if _, err := UsageConsume(keyID, "2024-06-01", limit, ctx); err != nil {
			t.Fatalf("consume failed: %v", err)
		}
	}
	if _, err := UsageConsume(keyID, "2024-06-01", limit, ctx); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("day one should be exhausted, got %v", err)
	}

	used, err := UsageConsume(keyID, "2024-06-02", limit, ctx)
	if err != nil {
		t.Fatalf("new day should start at zero: %v", err)
	}
	if used != 1 {
		t.Errorf("first request of the new day = %d, want 1", used)
	}

	// Old rows are retained for historical aggregation.
	total, err := UsageTotalByKey(keyID, ctx)
	if err != nil {
		t.Fatalf("total failed: %v", err)
	}
	if total != limit+1 {
		t.Errorf("all-time total = %d, want %d", total, limit+1)
	}
}

func TestUsageConsumeConcurrent(t *testing.T) {
	ctx := context.Background()
	const keyID, limit, workers = 9003, 10, 20

	var wg sync.WaitGroup
	var successes, refused atomic.Int64
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := UsageConsume(keyID, "2024-06-01", limit, ctx)
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, ErrQuotaExceeded):
				refused.Add(1)
			default:
				t.Errorf("unexpected consume error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes.Load() != limit {
		t.Errorf("successes = %d, want %d", successes.Load(), limit)
	}
	if refused.Load() != workers-limit {
		t.Errorf("refusals = %d, want %d", refused.Load(), workers-limit)
	}
	used, _ := UsageToday(keyID, "2024-06-01", ctx)
	if used != limit {
		t.Errorf("stored count = %d, want exactly %d, never an overshoot", used, limit)
	}
}

func TestUsageTodayMissingRowIsZero(t *testing.T) {
	used, err := UsageToday(424242, "2024-06-01", context.Background())
	if err != nil {
		t.Fatalf("missing row should not error: %v", err)
	}
	if used != 0 {
		t.Errorf("missing row = %d, want 0", used)
	}
}
