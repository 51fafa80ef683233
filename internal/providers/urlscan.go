package providers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const defaultVTBaseURL = "https://www.virustotal.com/api/v3"

// Verdict values, a closed set. Malicious always dominates, regardless of
// how many engines voted the other way.
const (
	VerdictMalicious  = "malicious"
	VerdictSuspicious = "suspicious"
	VerdictClean      = "clean"
	VerdictUnknown    = "unknown"
)

type URLScanResult struct {
	URL        string         `json:"url"`
	Verdict    string         `json:"verdict"`
	Stats      map[string]int `json:"stats"`
	AnalysisID string         `json:"analysisId,omitempty"`
}

// ComputeVerdict collapses per-category engine counts into one verdict.
// Precedence: malicious, then suspicious, then clean, else unknown.
func ComputeVerdict(stats map[string]int) string {
	switch {
	case stats[VerdictMalicious] > 0:
		return VerdictMalicious
	case stats[VerdictSuspicious] > 0:
		return VerdictSuspicious
	case stats["harmless"] > 0:
		return VerdictClean
	default:
		return VerdictUnknown
	}
}

// pollPolicy bounds the analysis polling loop. sleep is injected so tests
// run without wall-clock delays.
type pollPolicy struct {
	attempts int
	delay    time.Duration
	sleep    func(time.Duration)
}

type URLScanClient struct {
	key  string
	http *retryablehttp.Client
	poll pollPolicy

	// BaseURL may be overridden before first use; tests point it at a
	// local server.
	BaseURL string
}

func NewURLScanClient(apiKey string) *URLScanClient {
	return &URLScanClient{
		key:     apiKey,
		http:    initHTTPClient(),
		BaseURL: defaultVTBaseURL,
		poll: pollPolicy{
			attempts: 3,
			delay:    1500 * time.Millisecond,
			sleep:    time.Sleep,
		},
	}
}

// Scan submits the (already normalized) URL for analysis and polls for a
// completed report within the poll budget. When the budget runs out the
// analysis id is returned with an unknown verdict so the caller can retry
// later; that is a partial result, not an error.
func (c *URLScanClient) Scan(ctx context.Context, target string) (URLScanResult, error) {
	if c.key == "" {
		return URLScanResult{}, &ConfigError{
			Code:    "MISSING_VT_KEY",
			Message: "VirusTotal API key is not configured. Set VT_API_KEY.",
		}
	}

	analysisID, err := c.submit(ctx, target)
	if err != nil {
		return URLScanResult{}, err
	}

	for i := 0; i < c.poll.attempts; i++ {
		status, stats, err := c.fetchAnalysis(ctx, analysisID)
		if err != nil {
			return URLScanResult{}, err
		}

		if status == "completed" || status == "completed_successfully" {
			return URLScanResult{
				URL:        target,
				AnalysisID: analysisID,
				Stats:      stats,
				Verdict:    ComputeVerdict(stats),
			}, nil
		}

		c.poll.sleep(c.poll.delay)
	}

	return URLScanResult{
		URL:        target,
		AnalysisID: analysisID,
		Stats:      map[string]int{},
		Verdict:    VerdictUnknown,
	}, nil
}

func (c *URLScanClient) submit(ctx context.Context, target string) (string, error) {
	form := "url=" + url.QueryEscape(target)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/urls", strings.NewReader(form))
	if err != nil {
		return "", &UpstreamError{Provider: "VirusTotal", Message: err.Error()}
	}
	req.Header.Set("x-apikey", c.key)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	res, err := c.http.Do(req)
	if err != nil {
		return "", &UpstreamError{Provider: "VirusTotal", Message: err.Error()}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", &UpstreamError{Provider: "VirusTotal", Message: err.Error()}
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", &UpstreamError{Provider: "VirusTotal submit", Status: res.StatusCode, Message: truncateBody(body)}
	}

	var raw struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err = json.Unmarshal(body, &raw); err != nil || raw.Data.ID == "" {
		return "", &UpstreamError{Provider: "VirusTotal", Message: "returned no analysis id"}
	}
	return raw.Data.ID, nil
}

func (c *URLScanClient) fetchAnalysis(ctx context.Context, analysisID string) (string, map[string]int, error) {
	endpoint := c.BaseURL + "/analyses/" + url.PathEscape(analysisID)
	res, body, err := getJSON(ctx, c.http, endpoint, map[string]string{"x-apikey": c.key})
	if err != nil {
		return "", nil, &UpstreamError{Provider: "VirusTotal", Message: err.Error()}
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", nil, &UpstreamError{Provider: "VirusTotal analysis", Status: res.StatusCode, Message: truncateBody(body)}
	}

	var raw struct {
		Data struct {
			Attributes struct {
				Status string         `json:"status"`
				Stats  map[string]int `json:"stats"`
			} `json:"attributes"`
		} `json:"data"`
	}
	if err = json.Unmarshal(body, &raw); err != nil {
		return "", nil, &UpstreamError{Provider: "VirusTotal", Message: "unexpected response body"}
	}

	stats := raw.Data.Attributes.Stats
	if stats == nil {
		stats = map[string]int{}
	}
	return raw.Data.Attributes.Status, stats, nil
}
