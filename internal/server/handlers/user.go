package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/JzuvGTI/jzrestapi/internal/gate"
	"github.com/JzuvGTI/jzrestapi/internal/model"
	"github.com/JzuvGTI/jzrestapi/internal/op"
	"github.com/JzuvGTI/jzrestapi/internal/server/auth"
	"github.com/JzuvGTI/jzrestapi/internal/server/middleware"
	"github.com/JzuvGTI/jzrestapi/internal/server/resp"
	"github.com/JzuvGTI/jzrestapi/internal/server/router"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

func init() {
	router.NewGroupRouter("/api/v1/user").
		Use(middleware.RequireJSON()).
		AddRoute(
			router.NewRoute("/register", http.MethodPost).
				Handle(register),
		).
		AddRoute(
			router.NewRoute("/login", http.MethodPost).
				Handle(login),
		)
	router.NewGroupRouter("/api/v1/user").
		Use(middleware.Auth()).
		Use(middleware.RequireJSON()).
		AddRoute(
			router.NewRoute("/me", http.MethodGet).
				Handle(me),
		).
		AddRoute(
			router.NewRoute("/change-password", http.MethodPost).
				Handle(changePassword),
		)
	router.NewGroupRouter("/api/v1/admin/user").
		Use(middleware.Auth()).
		Use(middleware.RequireAdmin()).
		Use(middleware.RequireJSON()).
		AddRoute(
			router.NewRoute("/list", http.MethodGet).
				Handle(listUsers),
		).
		AddRoute(
			router.NewRoute("/block", http.MethodPost).
				Use(middleware.AdminRateLimit("user_block")).
				Handle(blockUser),
		).
		AddRoute(
			router.NewRoute("/unblock", http.MethodPost).
				Use(middleware.AdminRateLimit("user_block")).
				Handle(unblockUser),
		).
		AddRoute(
			router.NewRoute("/plan", http.MethodPost).
				Use(middleware.AdminRateLimit("user_plan")).
				Handle(setUserPlan),
		)
}

func register(c *gin.Context) {
	var req model.UserRegister
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Error(c, http.StatusBadRequest, resp.ErrInvalidJSON)
		return
	}
	if req.Username == "" || len(req.Password) < 6 {
		resp.Error(c, http.StatusBadRequest, "username is required and password must be at least 6 characters")
		return
	}

	user := model.User{
		Username: req.Username,
		Password: req.Password,
		Plan:     model.UserPlanFree,
		Role:     model.UserRoleUser,
	}
	if err := user.HashPassword(); err != nil {
		resp.Error(c, http.StatusInternalServerError, resp.ErrInternalServer)
		return
	}
	if err := op.UserCreate(&user, c.Request.Context()); err != nil {
		resp.Error(c, http.StatusConflict, err.Error())
		return
	}

	// Every account starts with one key at the plan's base limit.
	key := model.APIKey{
		UserID:     user.ID,
		Name:       "default",
		APIKey:     auth.GenerateAPIKey(),
		Status:     model.APIKeyStatusActive,
		DailyLimit: gate.BaseLimit(user.Plan),
	}
	if err := op.APIKeyCreate(&key, c.Request.Context()); err != nil {
		resp.Error(c, http.StatusInternalServerError, err.Error())
		return
	}

	// Referral bonus goes to the inviter and stacks indefinitely.
	if req.Referral != "" {
		if inviter, err := op.UserGetByReferralCode(req.Referral, c.Request.Context()); err == nil && inviter.ID != user.ID {
			bonus, err := op.SettingGetInt(model.SettingKeyReferralBonusPerInvite)
			if err == nil && bonus > 0 {
				op.UserAddReferralBonus(inviter.ID, bonus, c.Request.Context())
			}
		}
	}

	resp.Success(c, map[string]any{
		"user":    user,
		"api_key": key,
	})
}

func login(c *gin.Context) {
	var req model.UserLogin
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Error(c, http.StatusBadRequest, resp.ErrInvalidJSON)
		return
	}
	user, err := op.UserGetByUsername(req.Username, c.Request.Context())
	if err != nil {
		resp.Error(c, http.StatusUnauthorized, resp.ErrUnauthorized)
		return
	}
	if err := user.ComparePassword(req.Password); err != nil {
		resp.Error(c, http.StatusUnauthorized, resp.ErrUnauthorized)
		return
	}
	token, expireAt, err := auth.GenerateJWTToken(user.ID, req.Expire)
	if err != nil {
		resp.Error(c, http.StatusInternalServerError, resp.ErrInternalServer)
		return
	}
	resp.Success(c, model.UserLoginResponse{
		Token:    token,
		ExpireAt: expireAt,
	})
}

func me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	user, err := gate.NormalizeBan(user, c.Request.Context())
	if err != nil {
		resp.Error(c, http.StatusInternalServerError, resp.ErrInternalServer)
		return
	}
	resp.Success(c, map[string]any{
		"user":        user,
		"ban":         gate.BanInfoOf(user, time.Now()),
		"create_rule": gate.KeyCreateRule(user.Plan, user.Role),
	})
}

func changePassword(c *gin.Context) {
	var req model.UserChangePassword
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Error(c, http.StatusBadRequest, resp.ErrInvalidJSON)
		return
	}
	if len(req.NewPassword) < 6 {
		resp.Error(c, http.StatusBadRequest, "new password must be at least 6 characters")
		return
	}
	user := middleware.CurrentUser(c)
	if err := op.UserChangePassword(user.ID, req.OldPassword, req.NewPassword, c.Request.Context()); err != nil {
		resp.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	resp.Success(c, nil)
}

func listUsers(c *gin.Context) {
	users, err := op.UserList(c.Request.Context())
	if err != nil {
		resp.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	resp.Success(c, users)
}

func blockUser(c *gin.Context) {
	var req model.UserBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Error(c, http.StatusBadRequest, resp.ErrInvalidJSON)
		return
	}
	if req.BanUntil != 0 && req.BanUntil <= time.Now().Unix() {
		resp.Error(c, http.StatusBadRequest, "ban_until must be in the future, or 0 for permanent")
		return
	}
	actor := middleware.CurrentUser(c)
	if req.UserID == actor.ID {
		resp.Error(c, http.StatusBadRequest, "cannot block yourself")
		return
	}
	if err := op.UserBlock(req.UserID, req.Reason, req.BanUntil, c.Request.Context()); err != nil {
		resp.Error(c, http.StatusNotFound, err.Error())
		return
	}
	resp.Success(c, nil)
}

func unblockUser(c *gin.Context) {
	var req model.UserBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Error(c, http.StatusBadRequest, resp.ErrInvalidJSON)
		return
	}
	if _, err := op.UserClearBan(req.UserID, c.Request.Context()); err != nil {
		resp.Error(c, http.StatusNotFound, err.Error())
		return
	}
	resp.Success(c, nil)
}

func setUserPlan(c *gin.Context) {
	var req model.UserPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Error(c, http.StatusBadRequest, resp.ErrInvalidJSON)
		return
	}
	if !req.Plan.Valid() {
		validPlans := lo.Map([]model.UserPlan{model.UserPlanFree, model.UserPlanPaid, model.UserPlanReseller},
			func(p model.UserPlan, _ int) string { return string(p) })
		resp.Error(c, http.StatusBadRequest, "plan must be one of: "+strings.Join(validPlans, ", "))
		return
	}
	if err := op.UserSetPlan(req.UserID, req.Plan, c.Request.Context()); err != nil {
		resp.Error(c, http.StatusNotFound, err.Error())
		return
	}
	resp.Success(c, nil)
}
