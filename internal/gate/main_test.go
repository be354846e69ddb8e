package gate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/JzuvGTI/jzrestapi/internal/db"
	"github.com/JzuvGTI/jzrestapi/internal/model"
	"github.com/JzuvGTI/jzrestapi/internal/op"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "gate-test-")
	if err != nil {
		panic(err)
	}
	if err := db.InitDB("sqlite", filepath.Join(dir, "test.db"), false); err != nil {
		panic(err)
	}
	if err := op.InitCache(); err != nil {
		panic(err)
	}
	code := m.Run()
	db.Close()
	os.RemoveAll(dir)
	os.Exit(code)
}

var testSeq atomic.Int64

func newTestUser(t *testing.T, plan model.UserPlan) model.User {
	t.Helper()
	user := model.User{
		Username: fmt.Sprintf("user-%d", testSeq.Add(1)),
		Password: "not-a-real-hash",
		Plan:     plan,
		Role:     model.UserRoleUser,
	}
	if err := op.UserCreate(&user, context.Background()); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func newTestKey(t *testing.T, userID uint, dailyLimit int) model.APIKey {
	t.Helper()
	key := model.APIKey{
		UserID:     userID,
		Name:       "test",
		APIKey:     fmt.Sprintf("jz-test-%d", testSeq.Add(1)),
		Status:     model.APIKeyStatusActive,
		DailyLimit: dailyLimit,
	}
	if err := op.APIKeyCreate(&key, context.Background()); err != nil {
		t.Fatalf("failed to create test key: %v", err)
	}
	return key
}

func gateKind(t *testing.T, err error) Kind {
	t.Helper()
	gateErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *gate.Error, got %T: %v", err, err)
	}
	return gateErr.Kind
}
