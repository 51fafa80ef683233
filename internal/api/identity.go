package api

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// clientIdentity keys the rate limiter: first forwarded-for entry, then the
// bare connection address, then a literal "unknown". Spoofable, which is
// acceptable for a best-effort throttle.
func clientIdentity(c *gin.Context) string {
	if fwd := c.GetHeader("X-Forwarded-For"); fwd != "" {
		if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
			return first
		}
	}
	if addr := c.Request.RemoteAddr; addr != "" {
		if host, _, err := net.SplitHostPort(addr); err == nil {
			return host
		}
		return addr
	}
	return "unknown"
}

// admit runs the rate-limit stage of the pipeline. On rejection it writes
// the 429 envelope with a Retry-After hint and reports false.
func (t *toolkitAPI) admit(c *gin.Context, route string, limit int) bool {
	res := t.limiter.Allow(route+":"+clientIdentity(c), limit, rateWindow)
	if !res.OK {
		c.Header("Retry-After", strconv.Itoa(res.RetryAfterSeconds))
		c.JSON(http.StatusTooManyRequests, errorResponse{Error: "Too many requests. Please retry later."})
		return false
	}
	return true
}
