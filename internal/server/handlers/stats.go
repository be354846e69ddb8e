package handlers

import (
	"net/http"
	"time"

	"github.com/JzuvGTI/jzrestapi/internal/model"
	"github.com/JzuvGTI/jzrestapi/internal/op"
	"github.com/JzuvGTI/jzrestapi/internal/server/middleware"
	"github.com/JzuvGTI/jzrestapi/internal/server/resp"
	"github.com/JzuvGTI/jzrestapi/internal/server/router"
	"github.com/gin-gonic/gin"
)

func init() {
	router.NewGroupRouter("/api/v1/stats").
		Use(middleware.Auth()).
		AddRoute(
			router.NewRoute("/me", http.MethodGet).
				Handle(myStats),
		)
	router.NewGroupRouter("/api/v1/admin/stats").
		Use(middleware.Auth()).
		Use(middleware.RequireAdmin()).
		AddRoute(
			router.NewRoute("/endpoints", http.MethodGet).
				Handle(endpointStats),
		)
}

type keyStats struct {
	KeyID     int              `json:"key_id"`
	Name      string           `json:"name"`
	UsedToday int              `json:"used_today"`
	Total     int64            `json:"total"`
	Series    []model.UsageLog `json:"series"`
}

func myStats(c *gin.Context) {
	user := middleware.CurrentUser(c)
	keys, err := op.APIKeyListByUser(user.ID, c.Request.Context())
	if err != nil {
		resp.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	day := model.UsageDay(time.Now())
	stats := make([]keyStats, 0, len(keys))
	for _, key := range keys {
		used, _ := op.UsageToday(key.ID, day, c.Request.Context())
		total, _ := op.UsageTotalByKey(key.ID, c.Request.Context())
		series, _ := op.UsageSeriesByKey(key.ID, 30, c.Request.Context())
		stats = append(stats, keyStats{
			KeyID:     key.ID,
			Name:      key.Name,
			UsedToday: used,
			Total:     total,
			Series:    series,
		})
	}
	totalAllTime, _ := op.UsageTotalByUser(user.ID, c.Request.Context())
	resp.Success(c, map[string]any{
		"keys":  stats,
		"total": totalAllTime,
	})
}

func endpointStats(c *gin.Context) {
	resp.Success(c, op.StatsEndpointList())
}
