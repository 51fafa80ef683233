package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nbutton23/zxcvbn-go"

	"soc-toolkit/internal/strength"
)

// passwordStrength runs the local entropy heuristic and attaches a zxcvbn
// score for comparison. No upstream call is involved; the password is
// processed in memory and discarded with the request.
func (t *toolkitAPI) passwordStrength(c *gin.Context) {
	var req strengthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}

	if !t.admit(c, "pwd", strengthLimit) {
		return
	}

	assessment := strength.Estimate(req.Password)
	entropy := zxcvbn.PasswordStrength(req.Password, nil)

	c.JSON(http.StatusOK, strengthResponse{
		Ok:               true,
		Assessment:       assessment,
		Score:            entropy.Score,
		CrackTime:        entropy.CrackTime,
		CrackTimeDisplay: entropy.CrackTimeDisplay,
	})
}
