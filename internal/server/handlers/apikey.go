package handlers

import (
	"net/http"
	"strconv"
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
	router.NewGroupRouter("/api/v1/apikey").
		Use(middleware.Auth()).
		Use(middleware.RequireJSON()).
		AddRoute(
			router.NewRoute("/create", http.MethodPost).
				Handle(createAPIKey),
		).
		AddRoute(
			router.NewRoute("/list", http.MethodGet).
				Handle(listAPIKeys),
		).
		AddRoute(
			router.NewRoute("/revoke/:id", http.MethodPost).
				Handle(revokeAPIKey),
		)
	router.NewGroupRouter("/api/v1/admin/apikey").
		Use(middleware.Auth()).
		Use(middleware.RequireAdmin()).
		Use(middleware.RequireJSON()).
		AddRoute(
			router.NewRoute("/create", http.MethodPost).
				Use(middleware.AdminRateLimit("key_create")).
				Handle(adminCreateAPIKey),
		).
		AddRoute(
			router.NewRoute("/limit", http.MethodPost).
				Use(middleware.AdminRateLimit("key_limit")).
				Handle(adminSetAPIKeyLimit),
		).
		AddRoute(
			router.NewRoute("/revoke/:id", http.MethodPost).
				Use(middleware.AdminRateLimit("key_revoke")).
				Handle(adminRevokeAPIKey),
		)
}

// issueKey applies the creation rule for the requesting principal: requested
// limits above the ceiling are silently capped, never rejected.
func issueKey(c *gin.Context, owner model.User, rule gate.CreateRule, req model.APIKeyCreate) {
	if !rule.CanCreate {
		resp.Error(c, http.StatusForbidden, "your plan does not allow creating API keys")
		return
	}
	if rule.MaxKeys > 0 && op.APIKeyCountActive(owner.ID, c.Request.Context()) >= rule.MaxKeys {
		resp.Error(c, http.StatusForbidden, "maximum number of API keys reached")
		return
	}
	if req.DailyLimit < 0 {
		resp.Error(c, http.StatusBadRequest, "daily limit must be positive")
		return
	}
	dailyLimit := req.DailyLimit
	if dailyLimit == 0 {
		dailyLimit = rule.MaxLimitPerKey
	}
	dailyLimit = gate.CapLimit(dailyLimit, rule)

	name := req.Name
	if name == "" {
		name = "key-" + time.Now().Format("20060102150405")
	}
	key := model.APIKey{
		UserID:     owner.ID,
		Name:       name,
		APIKey:     auth.GenerateAPIKey(),
		Status:     model.APIKeyStatusActive,
		DailyLimit: dailyLimit,
	}
	if err := op.APIKeyCreate(&key, c.Request.Context()); err != nil {
		resp.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	resp.Success(c, key)
}

func createAPIKey(c *gin.Context) {
	var req model.APIKeyCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Error(c, http.StatusBadRequest, resp.ErrInvalidJSON)
		return
	}
	user := middleware.CurrentUser(c)
	issueKey(c, user, gate.KeyCreateRule(user.Plan, user.Role), req)
}

func adminCreateAPIKey(c *gin.Context) {
	var req model.APIKeyCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Error(c, http.StatusBadRequest, resp.ErrInvalidJSON)
		return
	}
	owner, err := op.UserGet(req.UserID, c.Request.Context())
	if err != nil {
		resp.Error(c, http.StatusNotFound, err.Error())
		return
	}
	admin := middleware.CurrentUser(c)
	issueKey(c, owner, gate.KeyCreateRule(admin.Plan, admin.Role), req)
}

type apiKeyView struct {
	model.APIKey
	EffectiveLimit int `json:"effective_limit"`
	UsedToday      int `json:"used_today"`
	Remaining      int `json:"remaining"`
}

func listAPIKeys(c *gin.Context) {
	user := middleware.CurrentUser(c)
	keys, err := op.APIKeyListByUser(user.ID, c.Request.Context())
	if err != nil {
		resp.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	day := model.UsageDay(time.Now())
	views := lo.Map(keys, func(key model.APIKey, _ int) apiKeyView {
		used, _ := op.UsageToday(key.ID, day, c.Request.Context())
		effective := key.DailyLimit + user.ReferralBonusDaily
		remaining := effective - used
		if remaining < 0 {
			remaining = 0
		}
		return apiKeyView{APIKey: key, EffectiveLimit: effective, UsedToday: used, Remaining: remaining}
	})
	resp.Success(c, views)
}

func revokeAPIKey(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		resp.Error(c, http.StatusBadRequest, resp.ErrInvalidParam)
		return
	}
	user := middleware.CurrentUser(c)
	key, err := op.APIKeyGet(id, c.Request.Context())
	if err != nil {
		resp.Error(c, http.StatusNotFound, err.Error())
		return
	}
	if key.UserID != user.ID {
		resp.Error(c, http.StatusForbidden, resp.ErrForbidden)
		return
	}
	if err := op.APIKeyRevoke(id, c.Request.Context()); err != nil {
		resp.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	resp.Success(c, nil)
}

func adminRevokeAPIKey(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		resp.Error(c, http.StatusBadRequest, resp.ErrInvalidParam)
		return
	}
	if err := op.APIKeyRevoke(id, c.Request.Context()); err != nil {
		resp.Error(c, http.StatusNotFound, err.Error())
		return
	}
	resp.Success(c, nil)
}

func adminSetAPIKeyLimit(c *gin.Context) {
	var req model.APIKeyLimitUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Error(c, http.StatusBadRequest, resp.ErrInvalidJSON)
		return
	}
	if req.DailyLimit <= 0 {
		resp.Error(c, http.StatusBadRequest, "daily limit must be positive")
		return
	}
	admin := middleware.CurrentUser(c)
	capped := gate.CapLimit(req.DailyLimit, gate.KeyCreateRule(admin.Plan, admin.Role))
	if err := op.APIKeySetLimit(req.ID, capped, c.Request.Context()); err != nil {
		resp.Error(c, http.StatusNotFound, err.Error())
		return
	}
	resp.Success(c, nil)
}
