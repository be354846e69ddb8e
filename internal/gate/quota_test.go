package gate

import (
	"testing"

	"github.com/JzuvGTI/jzrestapi/internal/model"
	"github.com/JzuvGTI/jzrestapi/internal/op"
)

func TestBaseLimitDefaults(t *testing.T) {
	tests := []struct {
		plan     model.UserPlan
		expected int
	}{
		{model.UserPlanFree, 100},
		{model.UserPlanPaid, 5000},
		{model.UserPlanReseller, 500},
	}
	for _, tt := range tests {
		if got := BaseLimit(tt.plan); got != tt.expected {
			t.Errorf("BaseLimit(%s) = %d, want %d", tt.plan, got, tt.expected)
		}
	}
}

func TestBaseLimitFollowsSettings(t *testing.T) {
	if err := op.SettingSetInt(model.SettingKeyFreeDailyLimit, 250); err != nil {
		t.Fatalf("failed to set setting: %v", err)
	}
	defer op.SettingSetInt(model.SettingKeyFreeDailyLimit, 100)

	if got := BaseLimit(model.UserPlanFree); got != 250 {
		t.Errorf("BaseLimit(FREE) = %d, want the runtime setting 250", got)
	}
}

func TestKeyCreateRule(t *testing.T) {
	tests := []struct {
		name     string
		plan     model.UserPlan
		role     model.UserRole
		expected CreateRule
	}{
		{"free", model.UserPlanFree, model.UserRoleUser,
			CreateRule{CanCreate: false, MaxKeys: 1, MaxLimitPerKey: 100}},
		{"paid", model.UserPlanPaid, model.UserRoleUser,
			CreateRule{CanCreate: false, MaxKeys: 1, MaxLimitPerKey: 5000}},
		{"reseller", model.UserPlanReseller, model.UserRoleUser,
			CreateRule{CanCreate: true, MaxKeys: 25, MaxLimitPerKey: 500}},
		{"superadmin on free plan", model.UserPlanFree, model.UserRoleSuperadmin,
			CreateRule{CanCreate: true, MaxKeys: 0, MaxLimitPerKey: 5000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KeyCreateRule(tt.plan, tt.role); got != tt.expected {
				t.Errorf("KeyCreateRule(%s, %s) = %+v, want %+v", tt.plan, tt.role, got, tt.expected)
			}
		})
	}
}

func TestCapLimitSilentlyCaps(t *testing.T) {
	rule := CreateRule{CanCreate: true, MaxKeys: 25, MaxLimitPerKey: 500}
	if got := CapLimit(9999, rule); got != 500 {
		t.Errorf("over-asking should cap to 500, got %d", got)
	}
	if got := CapLimit(300, rule); got != 300 {
		t.Errorf("in-range request should pass through, got %d", got)
	}
	if got := CapLimit(500, rule); got != 500 {
		t.Errorf("exact ceiling should pass through, got %d", got)
	}
}
