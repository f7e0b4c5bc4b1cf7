// internal/api/response_helpers.go
package api

import (
	"github.com/gin-gonic/gin"
)

// respondError writes the {"error": msg} body used by every failing route.
func respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// getRequestID returns the ID set by requestIDMiddleware.
func getRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
