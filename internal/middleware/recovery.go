// internal/middleware/recovery.go
package middleware

import (
	"fmt"

	"chat-automation/internal/common/errors"
	"chat-automation/internal/common/logger"

	"github.com/gin-gonic/gin"
)

// Recovery converts a handler panic into a 500 INTERNAL_ERROR response.
func Recovery(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered", map[string]interface{}{
					"path":   c.Request.URL.Path,
					"method": c.Request.Method,
					"panic":  fmt.Sprintf("%v", r),
				})
				errors.Respond(c, errors.NewInternalError(fmt.Errorf("panic: %v", r)))
			}
		}()
		c.Next()
	}
}
