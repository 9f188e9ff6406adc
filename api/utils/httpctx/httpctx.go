package httpctx

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const SessionIDHeader = "X-Session-ID"

// SessionID returns the caller's play session from the request header.
func SessionID(c *gin.Context) (string, bool) {
	session := strings.TrimSpace(c.GetHeader(SessionIDHeader))
	return session, session != ""
}
