package router

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ResearcherAuth guards the results and export routes with a shared access
// key. Participant-facing routes stay open; only the aggregate data needs
// the key.
func ResearcherAuth(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			// No key configured: results surface is disabled outright
			// rather than left open.
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Results access is not configured"})
			return
		}

		provided := c.GetHeader("X-Research-Key")
		if provided == "" {
			provided = c.Query("key")
		}
		if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}
