package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/JzuvGTI/jzrestapi/internal/gate"
	"github.com/JzuvGTI/jzrestapi/internal/model"
	"github.com/JzuvGTI/jzrestapi/internal/op"
	"github.com/JzuvGTI/jzrestapi/internal/server/resp"
	"github.com/JzuvGTI/jzrestapi/internal/server/router"
	"github.com/JzuvGTI/jzrestapi/internal/source"
	"github.com/gin-gonic/gin"
)

func init() {
	group := router.NewGroupRouter("/api")
	for _, adapter := range source.All() {
		group.AddRoute(
			router.NewRoute("/"+adapter.Slug(), http.MethodGet).
				Handle(proxyHandler(adapter)),
		)
	}
}

// proxyHandler is the shared flow of every proxied endpoint: availability,
// then the gate, then the adapter. Availability runs first so a disabled
// endpoint never burns quota; the adapter runs last so quota is charged for
// the attempt even when the upstream fails.
func proxyHandler(adapter source.Adapter) gin.HandlerFunc {
	slug := adapter.Slug()
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if err := gate.CheckAvailability(slug, ctx); err != nil {
			respondGateError(c, err)
			return
		}
		result, err := gate.AuthorizeAndConsume(c.Query("apikey"), ctx)
		if err != nil {
			respondGateError(c, err)
			return
		}

		fetchCtx, cancel := context.WithTimeout(ctx, upstreamTimeout())
		defer cancel()
		payload, err := adapter.Fetch(c.Request.URL.Query(), fetchCtx)
		if err != nil {
			op.StatsEndpointAdd(slug, false)
			var paramErr *source.ParamError
			if errors.As(err, &paramErr) {
				resp.ErrorWithRemaining(c, http.StatusBadRequest, paramErr.Message, result.Remaining())
				return
			}
			resp.ErrorWithRemaining(c, http.StatusBadGateway, source.FailureMessage(err), result.Remaining())
			return
		}
		op.StatsEndpointAdd(slug, true)
		resp.SuccessWithRemaining(c, payload, result.Remaining())
	}
}

func respondGateError(c *gin.Context, err error) {
	var gateErr *gate.Error
	if errors.As(err, &gateErr) {
		resp.Error(c, gateErr.HTTPStatus(), gateErr.Message)
		return
	}
	resp.Error(c, http.StatusInternalServerError, resp.ErrInternalServer)
}

func upstreamTimeout() time.Duration {
	seconds, err := op.SettingGetInt(model.SettingKeyUpstreamTimeout)
	if err != nil || seconds <= 0 {
		seconds = 15
	}
	return time.Duration(seconds) * time.Second
}
