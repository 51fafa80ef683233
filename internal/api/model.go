package api

import (
	"soc-toolkit/internal/providers"
	"soc-toolkit/internal/strength"
)

type scanRequest struct {
	URL string `json:"url" binding:"required"`
}

// strengthRequest has no required binding: an empty password is a valid
// input and yields the zero-bit assessment.
type strengthRequest struct {
	Password string `json:"password"`
}

type errorResponse struct {
	Ok    bool   `json:"ok"`
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type breachResponse struct {
	Ok       bool                      `json:"ok"`
	Found    bool                      `json:"found"`
	Breaches []providers.BreachSummary `json:"breaches"`
}

type scanResponse struct {
	Ok         bool           `json:"ok"`
	URL        string         `json:"url"`
	Verdict    string         `json:"verdict"`
	Stats      map[string]int `json:"stats"`
	AnalysisID string         `json:"analysisId,omitempty"`
}

type usernameResponse struct {
	Ok     bool `json:"ok"`
	Exists bool `json:"exists"`
}

type strengthResponse struct {
	Ok bool `json:"ok"`
	strength.Assessment
	Score            int     `json:"score"`
	CrackTime        float64 `json:"crackTime"`
	CrackTimeDisplay string  `json:"crackTimeDisplay"`
}

type platformsResponse struct {
	Ok        bool                 `json:"ok"`
	Platforms []providers.Platform `json:"platforms"`
}
