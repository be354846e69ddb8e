package op

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/JzuvGTI/jzrestapi/internal/db"
	"github.com/JzuvGTI/jzrestapi/internal/model"
	"github.com/JzuvGTI/jzrestapi/internal/utils/cache"
	"github.com/JzuvGTI/jzrestapi/internal/utils/log"
)

var userCache = cache.New[uint, model.User](16)
var userNameIDMap = cache.New[string, uint](16)
var userReferralIDMap = cache.New[string, uint](16)

func UserCreate(user *model.User, ctx context.Context) error {
	if _, ok := userNameIDMap.Get(user.Username); ok {
		return fmt.Errorf("username already taken")
	}
	if user.ReferralCode == "" {
		user.ReferralCode = generateReferralCode()
	}
	if err := db.GetDB().WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	userCacheSet(*user)
	return nil
}

func UserGet(id uint, ctx context.Context) (model.User, error) {
	user, ok := userCache.Get(id)
	if !ok {
		return model.User{}, fmt.Errorf("user not found")
	}
	return user, nil
}

func UserGetByUsername(username string, ctx context.Context) (model.User, error) {
	id, ok := userNameIDMap.Get(username)
	if !ok {
		return model.User{}, fmt.Errorf("user not found")
	}
	return UserGet(id, ctx)
}

func UserGetByReferralCode(code string, ctx context.Context) (model.User, error) {
	id, ok := userReferralIDMap.Get(code)
	if !ok {
		return model.User{}, fmt.Errorf("user not found")
	}
	return UserGet(id, ctx)
}

func UserList(ctx context.Context) ([]model.User, error) {
	users := make([]model.User, 0, userCache.Len())
	for _, user := range userCache.GetAll() {
		users = append(users, user)
	}
	return users, nil
}

func UserSetPlan(id uint, plan model.UserPlan, ctx context.Context) error {
	user, ok := userCache.Get(id)
	if !ok {
		return fmt.Errorf("user not found")
	}
	if err := db.GetDB().WithContext(ctx).Model(&model.User{ID: id}).Update("plan", plan).Error; err != nil {
		return fmt.Errorf("failed to update user plan: %w", err)
	}
	user.Plan = plan
	userCacheSet(user)
	return nil
}

func UserBlock(id uint, reason string, banUntil int64, ctx context.Context) error {
	user, ok := userCache.Get(id)
	if !ok {
		return fmt.Errorf("user not found")
	}
	now := time.Now().Unix()
	updates := map[string]any{
		"is_blocked": true,
		"blocked_at": now,
		"ban_until":  banUntil,
		"ban_reason": reason,
	}
	if err := db.GetDB().WithContext(ctx).Model(&model.User{ID: id}).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to block user: %w", err)
	}
	user.IsBlocked = true
	user.BlockedAt = now
	user.BanUntil = banUntil
	user.BanReason = reason
	userCacheSet(user)
	return nil
}

// UserClearBan lifts a block. It is the write side of the lazy unban: callers
// may race here when several requests observe the same expired ban, the
// target values are identical so last write wins harmlessly.
func UserClearBan(id uint, ctx context.Context) (model.User, error) {
	user, ok := userCache.Get(id)
	if !ok {
		return model.User{}, fmt.Errorf("user not found")
	}
	updates := map[string]any{
		"is_blocked": false,
		"blocked_at": 0,
		"ban_until":  0,
		"ban_reason": "",
	}
	if err := db.GetDB().WithContext(ctx).Model(&model.User{ID: id}).Updates(updates).Error; err != nil {
		return model.User{}, fmt.Errorf("failed to clear user ban: %w", err)
	}
	user.IsBlocked = false
	user.BlockedAt = 0
	user.BanUntil = 0
	user.BanReason = ""
	userCacheSet(user)
	return user, nil
}

func UserAddReferralBonus(id uint, bonus int, ctx context.Context) error {
	user, ok := userCache.Get(id)
	if !ok {
		return fmt.Errorf("user not found")
	}
	user.ReferralBonusDaily += bonus
	if err := db.GetDB().WithContext(ctx).Model(&model.User{ID: id}).
		Update("referral_bonus_daily", user.ReferralBonusDaily).Error; err != nil {
		return fmt.Errorf("failed to add referral bonus: %w", err)
	}
	userCacheSet(user)
	return nil
}

func UserChangePassword(id uint, oldPassword, newPassword string, ctx context.Context) error {
	user, ok := userCache.Get(id)
	if !ok {
		return fmt.Errorf("user not found")
	}
	if err := user.ComparePassword(oldPassword); err != nil {
		return fmt.Errorf("incorrect old password: %w", err)
	}
	user.Password = newPassword
	if err := user.HashPassword(); err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}
	if err := db.GetDB().WithContext(ctx).Model(&model.User{ID: id}).Update("password", user.Password).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	userCacheSet(user)
	return nil
}

// UserInit makes sure a superadmin exists on first boot.
func UserInit() error {
	for _, user := range userCache.GetAll() {
		if user.Role == model.UserRoleSuperadmin {
			return nil
		}
	}
	admin := model.User{
		Username: "admin",
		Password: "admin",
		Plan:     model.UserPlanPaid,
		Role:     model.UserRoleSuperadmin,
	}
	if err := admin.HashPassword(); err != nil {
		return err
	}
	if err := UserCreate(&admin, context.Background()); err != nil {
		return err
	}
	log.Infof("initial superadmin created: admin, password: admin")
	return nil
}

func userCacheSet(user model.User) {
	userCache.Set(user.ID, user)
	userNameIDMap.Set(user.Username, user.ID)
	if user.ReferralCode != "" {
		userReferralIDMap.Set(user.ReferralCode, user.ID)
	}
}

func userRefreshCache(ctx context.Context) error {
	users := []model.User{}
	if err := db.GetDB().WithContext(ctx).Find(&users).Error; err != nil {
		return err
	}
	for _, user := range users {
		userCacheSet(user)
	}
	return nil
}

func generateReferralCode() string {
	const codeChars = "0123456789abcdefghijklmnopqrstuvwxyz"
	b := make([]byte, 8)
	maxI := big.NewInt(int64(len(codeChars)))
	for i := range b {
		n, err := rand.Int(rand.Reader, maxI)
		if err != nil {
			return ""
		}
		b[i] = codeChars[n.Int64()]
	}
	return string(b)
}
