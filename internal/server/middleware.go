package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ctxOrgKey = "org_id"

	headerOrgID   = "X-Org-ID"
	headerActorID = "X-Actor-ID"
)

// orgMiddleware resolves the organization for the request. Single-tenant
// deployments fall back to the configured default org.
func orgMiddleware(defaultOrgID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := defaultOrgID
		if raw := c.GetHeader(headerOrgID); raw != "" {
			parsed, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_org_header"})
				return
			}
			orgID = parsed
		}
		if orgID == 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing_organization"})
			return
		}
		c.Set(ctxOrgKey, snowflake.ID(orgID))
		c.Next()
	}
}

// actorID reads the identity supplied by the authentication subsystem.
func actorID(c *gin.Context) string {
	return c.GetHeader(headerActorID)
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
