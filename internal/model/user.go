package model

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

type UserPlan string

const (
	UserPlanFree     UserPlan = "FREE"
	UserPlanPaid     UserPlan = "PAID"
	UserPlanReseller UserPlan = "RESELLER"
)

type UserRole string

const (
	UserRoleUser       UserRole = "USER"
	UserRoleSuperadmin UserRole = "SUPERADMIN"
)

type User struct {
	ID       uint     `json:"id" gorm:"primaryKey"`
	Username string   `json:"username" gorm:"unique;not null"`
	Password string   `json:"-" gorm:"not null"`
	Plan     UserPlan `json:"plan" gorm:"default:FREE"`
	Role     UserRole `json:"role" gorm:"default:USER"`

	// Ban state. BlockedAt/BanUntil are unix seconds, 0 meaning unset.
	// BanUntil == 0 while IsBlocked means a permanent block.
	IsBlocked bool   `json:"is_blocked" gorm:"default:false"`
	BlockedAt int64  `json:"blocked_at,omitempty"`
	BanUntil  int64  `json:"ban_until,omitempty"`
	BanReason string `json:"ban_reason,omitempty"`

	ReferralCode       string `json:"referral_code" gorm:"unique"`
	ReferralBonusDaily int    `json:"referral_bonus_daily" gorm:"default:0"`
}

func (p UserPlan) Valid() bool {
	switch p {
	case UserPlanFree, UserPlanPaid, UserPlanReseller:
		return true
	}
	return false
}

type UserRegister struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Referral string `json:"referral,omitempty"`
}

type UserLogin struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Expire   int    `json:"expire"`
}

type UserLoginResponse struct {
	Token    string `json:"token"`
	ExpireAt string `json:"expire_at"`
}

type UserChangePassword struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type UserBlockRequest struct {
	UserID   uint   `json:"user_id"`
	Reason   string `json:"reason"`
	BanUntil int64  `json:"ban_until"` // unix seconds, 0 = permanent
}

type UserPlanRequest struct {
	UserID uint     `json:"user_id"`
	Plan   UserPlan `json:"plan"`
}

func (u *User) HashPassword() error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	u.Password = string(hashedPassword)
	return nil
}

func (u *User) ComparePassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
}
