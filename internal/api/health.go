// internal/api/health.go
package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

const healthTimeout = 5 * time.Second

// Root handles GET /api/.
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Chat automation backend is running",
		"version": h.deps.Version,
	})
}

// Health handles GET /api/health. Any failed dependency turns the response
// into a 503.
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	names := make([]string, 0, len(h.deps.Health))
	for name := range h.deps.Health {
		names = append(names, name)
	}
	sort.Strings(names)

	deps := make(map[string]string, len(names))
	healthy := true
	for _, name := range names {
		if err := h.deps.Health[name](ctx); err != nil {
			healthy = false
			deps[name] = "error: " + err.Error()
			h.log.Warn("health check failed", map[string]interface{}{
				"dependency": name,
				"error":      err.Error(),
			})
			continue
		}
		deps[name] = "connected"
	}

	mailboxStatus := "not_authenticated"
	if h.deps.Mailbox != nil && h.deps.Mailbox.IsAuthenticated() {
		mailboxStatus = "available"
	}

	body := gin.H{
		"dependencies": deps,
		"mailbox":      mailboxStatus,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	}
	if !healthy {
		body["status"] = "unhealthy"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	body["status"] = "healthy"
	c.JSON(http.StatusOK, body)
}
