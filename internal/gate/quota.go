package gate

import (
	"github.com/JzuvGTI/jzrestapi/internal/model"
	"github.com/JzuvGTI/jzrestapi/internal/op"
)

// Fallbacks when the settings cache has nothing usable (corrupt value,
// cold start).
const (
	defaultFreeDailyLimit     = 100
	defaultPaidDailyLimit     = 5000
	defaultResellerDailyLimit = 500
	defaultResellerMaxKeys    = 25
	defaultResellerMaxPerKey  = 500
)

// BaseLimit resolves the plan's base daily quota from runtime settings,
// falling back to the hardcoded defaults.
func BaseLimit(plan model.UserPlan) int {
	switch plan {
	case model.UserPlanPaid:
		return settingOr(model.SettingKeyPaidDailyLimit, defaultPaidDailyLimit)
	case model.UserPlanReseller:
		return settingOr(model.SettingKeyResellerDailyLimit, defaultResellerDailyLimit)
	default:
		return settingOr(model.SettingKeyFreeDailyLimit, defaultFreeDailyLimit)
	}
}

// CreateRule governs self-service key issuance.
// MaxKeys == 0 means unlimited.
type CreateRule struct {
	CanCreate      bool `json:"can_create"`
	MaxKeys        int  `json:"max_keys"`
	MaxLimitPerKey int  `json:"max_limit_per_key"`
}

func KeyCreateRule(plan model.UserPlan, role model.UserRole) CreateRule {
	if role == model.UserRoleSuperadmin {
		return CreateRule{
			CanCreate:      true,
			MaxKeys:        0,
			MaxLimitPerKey: BaseLimit(model.UserPlanPaid),
		}
	}
	switch plan {
	case model.UserPlanReseller:
		return CreateRule{
			CanCreate:      true,
			MaxKeys:        settingOr(model.SettingKeyResellerMaxKeys, defaultResellerMaxKeys),
			MaxLimitPerKey: settingOr(model.SettingKeyResellerMaxLimitPerKey, defaultResellerMaxPerKey),
		}
	default:
		return CreateRule{
			CanCreate:      false,
			MaxKeys:        1,
			MaxLimitPerKey: BaseLimit(plan),
		}
	}
}

// CapLimit silently caps a requested per-key limit at the rule ceiling.
// Over-asking is never an error; only non-positive requests are, and those
// are handled by the caller.
func CapLimit(requested int, rule CreateRule) int {
	if requested > rule.MaxLimitPerKey {
		return rule.MaxLimitPerKey
	}
	return requested
}

func settingOr(key model.SettingKey, fallback int) int {
	value, err := op.SettingGetInt(key)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
