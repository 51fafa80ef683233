package api

import (
	"net/http"

	"github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"soc-toolkit/internal/ratelimit"
)

// routeMethods backs the Allow hint on 405 responses. gin knows the route
// table but does not expose it to the NoMethod handler.
var routeMethods = map[string]string{
	"/v1/breach":            http.MethodGet,
	"/v1/url/scan":          http.MethodPost,
	"/v1/username":          http.MethodGet,
	"/v1/password/strength": http.MethodPost,
	"/v1/platforms":         http.MethodGet,
}

// NewRouter builds the full engine: recovery, request logging, 405 handling
// and the /v1 toolkit routes.
func NewRouter(cfg Config, limiter *ratelimit.Limiter) (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.SetLogger(logger.WithLogger(func(c *gin.Context, z zerolog.Logger) zerolog.Logger {
		return zerolog.New(gin.DefaultWriter).With().Timestamp().Logger()
	})))

	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		if allow, ok := routeMethods[c.Request.URL.Path]; ok {
			c.Header("Allow", allow)
		}
		c.JSON(http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
	})

	v1 := router.Group("/v1")
	if err := RegisterToolkitAPI(v1, cfg, limiter); err != nil {
		return nil, err
	}

	return router, nil
}
