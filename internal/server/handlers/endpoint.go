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
	router.NewGroupRouter("/api/v1/endpoint").
		AddRoute(
			router.NewRoute("/list", http.MethodGet).
				Handle(listEndpoints),
		)
	router.NewGroupRouter("/api/v1/admin/endpoint").
		Use(middleware.Auth()).
		Use(middleware.RequireAdmin()).
		Use(middleware.RequireJSON()).
		AddRoute(
			router.NewRoute("/status", http.MethodPost).
				Use(middleware.AdminRateLimit("endpoint_status")).
				Handle(setEndpointStatus),
		)
}

// listEndpoints is the public catalog.
func listEndpoints(c *gin.Context) {
	endpoints, err := op.EndpointList(c.Request.Context())
	if err != nil {
		resp.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	resp.Success(c, endpoints)
}

func setEndpointStatus(c *gin.Context) {
	var req model.EndpointStatusUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Error(c, http.StatusBadRequest, resp.ErrInvalidJSON)
		return
	}
	if err := op.EndpointSetStatus(req.Slug, req.Status, c.Request.Context()); err != nil {
		resp.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	resp.Success(c, nil)
}
