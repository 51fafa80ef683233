package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"soc-toolkit/internal/providers"
	"soc-toolkit/internal/validate"
)

// checkUsername proxies the platform existence check. Unlike the other two
// routes, an upstream failure here is reported with HTTP 200 and ok:false;
// the UI treats it as "could not verify" rather than a hard error, and
// clients keep the profile link either way.
func (t *toolkitAPI) checkUsername(c *gin.Context) {
	platform := c.Query("platform")
	username := strings.TrimSpace(c.Query("username"))

	if !validate.IsValidUsername(username) {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid username"})
		return
	}

	if !t.admit(c, "uname", usernameLimit) {
		return
	}

	exists, err := t.users.CheckExists(c.Request.Context(), platform, username)
	if err != nil {
		var upe *providers.UnsupportedPlatformError
		if errors.As(err, &upe) {
			c.JSON(http.StatusBadRequest, errorResponse{Error: upe.Error()})
			return
		}
		c.JSON(http.StatusOK, errorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, usernameResponse{Ok: true, Exists: exists})
}
