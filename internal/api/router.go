// internal/api/router.go
package api

import (
	"chat-automation/internal/common/logger"
	"chat-automation/internal/common/observability"
	"chat-automation/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter registers every route under /api plus /metrics.
func NewRouter(h *Handler, obs *observability.Observability, log logger.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(log), middleware.Logger(log), middleware.CORS(), middleware.Metrics(obs))

	api := r.Group("/api")
	{
		api.GET("/", h.Root)
		api.GET("/health", h.Health)

		api.POST("/chat", h.Chat)
		api.POST("/approve", h.Approve)
		api.GET("/history/:sessionId", h.History)
		api.DELETE("/history/:sessionId", h.ClearHistory)

		api.POST("/web-automation", h.WebAutomation)
		api.GET("/automation-history/:sessionId", h.AutomationHistory)
		api.GET("/automation-status/:intent", h.AutomationStatus)
		api.GET("/routing-stats/:sessionId", h.RoutingStats)

		api.POST("/gmail-automation", h.GmailAutomation)
		api.GET("/gmail-auth-status", h.GmailAuthStatus)
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}
