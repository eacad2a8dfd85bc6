package middleware

import (
	"net/http"

	"github.com/JasimIhsan/MentorsHub-sub002/pkg/jwt"
	"github.com/JasimIhsan/MentorsHub-sub002/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// InternalAPIAuthMiddleware validates the internal API token for
// service-to-service calls
func InternalAPIAuthMiddleware(validToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("x-internal-sessions-api-auth-token")

		if token == "" || !jwt.TimingSafeCompare(token, validToken) {
			logger.Warn("Invalid internal API token",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or missing internal API token"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// WebhookAuthMiddleware validates the shared secret on inbound wallet
// webhooks
func WebhookAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("x-webhook-secret")

		if token == "" || !jwt.TimingSafeCompare(token, secret) {
			logger.Warn("Invalid webhook secret",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or missing webhook secret"})
			c.Abort()
			return
		}

		c.Next()
	}
}
