package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"soc-toolkit/internal/providers"
)

// listPlatforms serves the static platform catalog so the UI renders
// profile links and knows which platforms support verification.
func (t *toolkitAPI) listPlatforms(c *gin.Context) {
	c.JSON(http.StatusOK, platformsResponse{Ok: true, Platforms: providers.Platforms})
}
