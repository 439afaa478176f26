package middleware

import "github.com/gin-gonic/gin"

// AllowPrivateIP bypasses rate limits for loopback and RFC 1918 clients
// (health checks, the seed script, internal tooling).
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		return isPrivate(ipFromCtx(c))
	}
}
