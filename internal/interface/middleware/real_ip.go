package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

const CtxRealIPKey = "real_ip"

// RealIP resolves the client IP behind proxies and stores it in the context
// for the rate limiters. X-Forwarded-For (left-most entry) wins when it parses
// as a valid IP, otherwise Gin's ClientIP is used.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
			first := strings.TrimSpace(strings.SplitN(xff, ",", 2)[0])
			if ip := net.ParseIP(first); ip != nil {
				c.Set(CtxRealIPKey, ip.String())
				c.Next()
				return
			}
		}
		c.Set(CtxRealIPKey, c.ClientIP())
		c.Next()
	}
}
