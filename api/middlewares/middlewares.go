package middlewares

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"WorldCup/api/utils/httpctx"

	"github.com/gin-gonic/gin"
)

const (
	AdminKeyHeader  = "X-Admin-Key"
	SessionIDHeader = httpctx.SessionIDHeader
)

// AdminKeyMiddleware guards catalogue writes with a shared key. An empty key
// disables the guarded routes entirely.
func AdminKeyMiddleware(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		given := strings.TrimSpace(c.GetHeader(AdminKeyHeader))
		if subtle.ConstantTimeCompare([]byte(given), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// CORSMiddleware lets the configured frontends call the API.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		for _, o := range allowedOrigins {
			if o == origin || o == "*" {
				c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
				break
			}
		}

		c.Writer.Header().Set("Vary", "Origin")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers",
			"Content-Type, Content-Length, Accept, Origin, Cache-Control, X-Requested-With, "+AdminKeyHeader+", "+SessionIDHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods",
			"POST, GET, OPTIONS, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
