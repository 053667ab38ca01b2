package main

import (
	"rc-analytics/internal/dashboard"
	"rc-analytics/internal/httpapi"
	"rc-analytics/internal/metrics"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, page dashboard.Handler) {
	// public
	r.GET("/healthz", httpapi.Healthz)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/", page.Page)

	api := r.Group("/api")
	{
		an := api.Group("/analytics")
		an.GET("", h.Summary)
		an.GET("/daily", h.Daily)
		an.GET("/extensions", h.Communications)

		api.GET("/reports/export", h.Export)
	}

	// Vendor and integration webhooks (public).
	wh := api.Group("/webhook")
	{
		wh.POST("/missed_call", h.MissedCallPOST)
		wh.GET("/missed_call", h.MissedCallGET)
		wh.OPTIONS("/missed_call", httpapi.WebhookOPTIONS)

		wh.POST("/msg_receive", h.SMSPOST)
		wh.GET("/msg_receive", h.SMSGET)

		wh.POST("/ringcentral", h.RingCentralEvent)
	}
}
