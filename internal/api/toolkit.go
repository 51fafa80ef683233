package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"soc-toolkit/internal/providers"
	"soc-toolkit/internal/ratelimit"
)

// Per-route request budgets, all over the same fixed window.
const (
	rateWindow    = time.Minute
	breachLimit   = 10
	scanLimit     = 10
	usernameLimit = 20
	strengthLimit = 30
)

type toolkitAPI struct {
	limiter *ratelimit.Limiter
	breach  *providers.BreachClient
	urls    *providers.URLScanClient
	users   *providers.UsernameClient
}

// RegisterToolkitAPI wires the four checks and the platform catalog into the
// route group. The limiter is passed in rather than owned so it can be
// scoped per test and shared across groups.
func RegisterToolkitAPI(group *gin.RouterGroup, cfg Config, limiter *ratelimit.Limiter) error {
	cache, err := providers.NewCache()
	if err != nil {
		return err
	}

	t := &toolkitAPI{
		limiter: limiter,
		breach: providers.NewBreachClient(providers.BreachConfig{
			HIBPAPIKey:      cfg.HIBPAPIKey,
			LeakCheckAPIKey: cfg.LeakCheckAPIKey,
		}, cache),
		urls:  providers.NewURLScanClient(cfg.VTAPIKey),
		users: providers.NewUsernameClient(cache),
	}
	t.register(group)

	return nil
}

func (t *toolkitAPI) register(group *gin.RouterGroup) {
	group.GET("/breach", t.checkBreach)
	group.POST("/url/scan", t.scanURL)
	group.GET("/username", t.checkUsername)
	group.POST("/password/strength", t.passwordStrength)
	group.GET("/platforms", t.listPlatforms)
}
