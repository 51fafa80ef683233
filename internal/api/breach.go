package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"soc-toolkit/internal/validate"
)

// checkBreach proxies the breach-database lookup. Pipeline: validate,
// rate-limit, provider chain. Returns only normalized source metadata,
// never credential material.
func (t *toolkitAPI) checkBreach(c *gin.Context) {
	email := strings.TrimSpace(c.Query("email"))
	if !validate.IsValidEmail(email) {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid email"})
		return
	}

	if !t.admit(c, "hibp", breachLimit) {
		return
	}

	res, err := t.breach.Lookup(c.Request.Context(), email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, breachResponse{Ok: true, Found: res.Found, Breaches: res.Breaches})
}
