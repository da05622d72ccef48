package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	headerRequestID      = "X-Request-Id"
	headerPrincipalID    = "X-Principal-Id"
	headerRole           = "X-Role"
	headerIdempotencyKey = "Idempotency-Key"

	roleOperator = "operator"
)

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.Info("request",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
		)
	}
}

// Principal requires an authenticated principal id. Token verification
// happens upstream; by the time a request reaches this service the header
// carries a vetted identity.
func Principal() gin.HandlerFunc {
	return func(c *gin.Context) {
		principalID := strings.TrimSpace(c.GetHeader(headerPrincipalID))
		if principalID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
			return
		}
		c.Set("principal_id", principalID)
		c.Set("operator", c.GetHeader(headerRole) == roleOperator)
		c.Next()
	}
}

func isOperator(c *gin.Context) bool {
	return c.GetBool("operator")
}
