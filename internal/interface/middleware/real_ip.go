package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// RealIP sets the client IP into the context under "real_ip".
// Forwarding headers are honoured only when the direct peer is a private or
// loopback address (a local proxy); otherwise anyone could claim to be local.
// Priority:
// 1) CF-Connecting-IP
// 2) X-Forwarded-For (left-most)
// 3) the peer address
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		peer := c.RemoteIP()
		if isPrivate(peer) {
			if ip := parseIP(c.GetHeader("CF-Connecting-IP")); ip != "" {
				c.Set("real_ip", ip)
				c.Next()
				return
			}
			if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
				first, _, _ := strings.Cut(xff, ",")
				if ip := parseIP(first); ip != "" {
					c.Set("real_ip", ip)
					c.Next()
					return
				}
			}
		}
		c.Set("real_ip", peer)
		c.Next()
	}
}

func parseIP(s string) string {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil {
		return ""
	}
	return ip.String()
}

func isPrivate(s string) bool {
	ip := net.ParseIP(s)
	return ip != nil && (ip.IsLoopback() || ip.IsPrivate())
}
