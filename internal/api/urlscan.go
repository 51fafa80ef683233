package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"soc-toolkit/internal/providers"
	"soc-toolkit/internal/validate"
)

// scanURL proxies the URL-reputation check. A missing credential is a
// distinct "not configured" condition (501 with a stable code) so the UI
// can disable the feature instead of showing a generic error.
func (t *toolkitAPI) scanURL(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}

	normalized, ok := validate.NormalizeURL(req.URL)
	if !ok {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid URL"})
		return
	}

	if !t.admit(c, "vt", scanLimit) {
		return
	}

	res, err := t.urls.Scan(c.Request.Context(), normalized)
	if err != nil {
		var ce *providers.ConfigError
		if errors.As(err, &ce) {
			c.JSON(http.StatusNotImplemented, errorResponse{Error: ce.Message, Code: ce.Code})
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, scanResponse{
		Ok:         true,
		URL:        res.URL,
		Verdict:    res.Verdict,
		Stats:      res.Stats,
		AnalysisID: res.AnalysisID,
	})
}
