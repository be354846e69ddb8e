package handlers

import (
	"net/http"

	"github.com/JzuvGTI/jzrestapi/internal/model"
	"github.com/JzuvGTI/jzrestapi/internal/op"
	"github.com/JzuvGTI/jzrestapi/internal/server/middleware"
	"github.com/JzuvGTI/jzrestapi/internal/server/resp"
	"github.com/JzuvGTI/jzrestapi/internal/server/router"
	"github.com/gin-gonic/gin"
)

func init() {
	router.NewGroupRouter("/api/v1/admin/setting").
		Use(middleware.Auth()).
		Use(middleware.RequireAdmin()).
		Use(middleware.RequireJSON()).
		AddRoute(
			router.NewRoute("/list", http.MethodGet).
				Handle(listSettings),
		).
		AddRoute(
			router.NewRoute("/update", http.MethodPost).
				Use(middleware.AdminRateLimit("setting_update")).
				Handle(updateSetting),
		)
}

func listSettings(c *gin.Context) {
	settings, err := op.SettingList(c.Request.Context())
	if err != nil {
		resp.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	resp.Success(c, settings)
}

func updateSetting(c *gin.Context) {
	var req model.Setting
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Error(c, http.StatusBadRequest, resp.ErrInvalidJSON)
		return
	}
	if req.Key == model.SettingKeyJWTSecret {
		resp.Error(c, http.StatusForbidden, resp.ErrForbidden)
		return
	}
	if err := req.Validate(); err != nil {
		resp.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := op.SettingSetString(req.Key, req.Value); err != nil {
		resp.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	resp.Success(c, nil)
}
