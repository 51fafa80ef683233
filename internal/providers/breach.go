package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	defaultHIBPBaseURL      = "https://haveibeenpwned.com/api/v3"
	defaultLeakCheckBaseURL = "https://leakcheck.io"

	breachCacheTTL = 10 * time.Minute
)

// BreachSummary is the only breach information that ever reaches the
// caller. Credential material from the providers is discarded during
// normalization, never forwarded.
type BreachSummary struct {
	Name       string `json:"name"`
	Title      string `json:"title,omitempty"`
	BreachDate string `json:"breachDate,omitempty"`
	Domain     string `json:"domain,omitempty"`
}

type BreachResult struct {
	Found    bool            `json:"found"`
	Breaches []BreachSummary `json:"breaches"`
}

// breachProvider is one lookup strategy. The client tries an ordered chain
// of these and stops at the first success or non-fallback-eligible error.
type breachProvider interface {
	name() string
	lookup(ctx context.Context, email string) (BreachResult, error)
	// fallbackEligible reports whether err may be absorbed by trying the
	// next provider in the chain.
	fallbackEligible(err error) bool
}

// BreachConfig selects and parameterizes the provider chain. The base URLs
// default to the real services; tests point them at local servers.
type BreachConfig struct {
	HIBPAPIKey       string
	LeakCheckAPIKey  string
	HIBPBaseURL      string
	LeakCheckBaseURL string
}

type BreachClient struct {
	chain []breachProvider
	cache *Cache
}

// NewBreachClient builds the provider chain: HIBP exclusively when its key
// is configured, otherwise LeakCheck Pro with the public endpoint as a
// fallback for an invalid key, otherwise the public endpoint alone.
func NewBreachClient(cfg BreachConfig, cache *Cache) *BreachClient {
	if cfg.HIBPBaseURL == "" {
		cfg.HIBPBaseURL = defaultHIBPBaseURL
	}
	if cfg.LeakCheckBaseURL == "" {
		cfg.LeakCheckBaseURL = defaultLeakCheckBaseURL
	}

	httpc := initHTTPClient()

	var chain []breachProvider
	switch {
	case cfg.HIBPAPIKey != "":
		chain = []breachProvider{&hibpProvider{key: cfg.HIBPAPIKey, base: cfg.HIBPBaseURL, http: httpc}}
	case cfg.LeakCheckAPIKey != "":
		chain = []breachProvider{
			&leakCheckProProvider{key: cfg.LeakCheckAPIKey, base: cfg.LeakCheckBaseURL, http: httpc},
			&leakCheckPublicProvider{base: cfg.LeakCheckBaseURL, http: httpc},
		}
	default:
		chain = []breachProvider{&leakCheckPublicProvider{base: cfg.LeakCheckBaseURL, http: httpc}}
	}

	return &BreachClient{chain: chain, cache: cache}
}

// Lookup runs the chain for one email. A provider "not found" is a valid
// empty result, not an error.
func (c *BreachClient) Lookup(ctx context.Context, email string) (BreachResult, error) {
	key := cacheKey("breach", email)
	if cached, ok := c.cache.get(key); ok {
		if res, ok := cached.(BreachResult); ok {
			return res, nil
		}
	}

	var lastErr error
	for i, p := range c.chain {
		res, err := p.lookup(ctx, email)
		if err == nil {
			c.cache.set(key, res, breachCacheTTL)
			return res, nil
		}
		lastErr = err
		if i == len(c.chain)-1 || !p.fallbackEligible(err) {
			return BreachResult{}, err
		}
	}
	return BreachResult{}, lastErr
}

func getJSON(ctx context.Context, httpc *retryablehttp.Client, rawURL string, headers map[string]string) (*http.Response, []byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := httpc.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return res, nil, err
	}
	return res, body, nil
}

// hibpProvider queries the primary breach database. Requires a paid key and
// is used exclusively when one is configured.
type hibpProvider struct {
	key  string
	base string
	http *retryablehttp.Client
}

func (p *hibpProvider) name() string { return "HIBP" }

func (p *hibpProvider) fallbackEligible(error) bool { return false }

func (p *hibpProvider) lookup(ctx context.Context, email string) (BreachResult, error) {
	endpoint := fmt.Sprintf("%s/breachedaccount/%s?truncateResponse=false", p.base, url.PathEscape(email))
	res, body, err := getJSON(ctx, p.http, endpoint, map[string]string{"hibp-api-key": p.key})
	if err != nil {
		return BreachResult{}, &UpstreamError{Provider: p.name(), Message: err.Error()}
	}

	if res.StatusCode == http.StatusNotFound {
		return BreachResult{Found: false, Breaches: []BreachSummary{}}, nil
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return BreachResult{}, &UpstreamError{Provider: p.name(), Status: res.StatusCode, Message: truncateBody(body)}
	}

	var raw []struct {
		Name       string `json:"Name"`
		Title      string `json:"Title"`
		Domain     string `json:"Domain"`
		BreachDate string `json:"BreachDate"`
	}
	if err = json.Unmarshal(body, &raw); err != nil {
		return BreachResult{}, &UpstreamError{Provider: p.name(), Message: "unexpected response body"}
	}

	breaches := make([]BreachSummary, 0, len(raw))
	for _, b := range raw {
		breaches = append(breaches, BreachSummary{
			Name:       b.Name,
			Title:      b.Title,
			Domain:     b.Domain,
			BreachDate: b.BreachDate,
		})
	}
	return BreachResult{Found: true, Breaches: breaches}, nil
}

// errInvalidLeakCheckKey marks the one condition the Pro provider may hand
// over to the public endpoint.
var errInvalidLeakCheckKey = fmt.Errorf("leakcheck key rejected")

// leakCheckProProvider queries the keyed LeakCheck endpoint. Rows carry
// compromised fields (passwords and the like); only source metadata is kept.
type leakCheckProProvider struct {
	key  string
	base string
	http *retryablehttp.Client
}

func (p *leakCheckProProvider) name() string { return "LeakCheck" }

func (p *leakCheckProProvider) fallbackEligible(err error) bool {
	return err == errInvalidLeakCheckKey
}

func (p *leakCheckProProvider) lookup(ctx context.Context, email string) (BreachResult, error) {
	endpoint := fmt.Sprintf("%s/api/v2/query/%s?type=email", p.base, url.PathEscape(email))
	res, body, err := getJSON(ctx, p.http, endpoint, map[string]string{"X-API-Key": p.key})
	if err != nil {
		return BreachResult{}, &UpstreamError{Provider: p.name(), Message: err.Error()}
	}

	if res.StatusCode == http.StatusNotFound {
		return BreachResult{Found: false, Breaches: []BreachSummary{}}, nil
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		// Common when a key is missing/invalid or the plan is not active.
		if res.StatusCode == http.StatusUnauthorized || strings.Contains(string(body), "Invalid X-API-Key") {
			return BreachResult{}, errInvalidLeakCheckKey
		}
		return BreachResult{}, &UpstreamError{Provider: p.name(), Status: res.StatusCode, Message: truncateBody(body)}
	}

	var raw struct {
		Found  int `json:"found"`
		Result []struct {
			Source struct {
				Name       string `json:"name"`
				BreachDate string `json:"breach_date"`
			} `json:"source"`
		} `json:"result"`
	}
	if err = json.Unmarshal(body, &raw); err != nil {
		return BreachResult{}, &UpstreamError{Provider: p.name(), Message: "unexpected response body"}
	}

	breaches := make([]BreachSummary, 0, len(raw.Result))
	for _, row := range raw.Result {
		name := row.Source.Name
		if name == "" {
			name = "Unknown source"
		}
		breaches = append(breaches, BreachSummary{
			Name:       name,
			Title:      name,
			BreachDate: row.Source.BreachDate,
		})
	}
	return BreachResult{Found: raw.Found > 0, Breaches: breaches}, nil
}

// leakCheckPublicProvider queries the keyless public endpoint. Last resort.
type leakCheckPublicProvider struct {
	base string
	http *retryablehttp.Client
}

func (p *leakCheckPublicProvider) name() string { return "LeakCheck public" }

func (p *leakCheckPublicProvider) fallbackEligible(error) bool { return false }

func (p *leakCheckPublicProvider) lookup(ctx context.Context, email string) (BreachResult, error) {
	endpoint := fmt.Sprintf("%s/api/public?check=%s", p.base, url.QueryEscape(email))
	res, body, err := getJSON(ctx, p.http, endpoint, nil)
	if err != nil {
		return BreachResult{}, &UpstreamError{Provider: p.name(), Message: err.Error()}
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return BreachResult{}, &UpstreamError{Provider: p.name(), Status: res.StatusCode, Message: truncateBody(body)}
	}

	var raw struct {
		Found   int `json:"found"`
		Sources []struct {
			Name string `json:"name"`
			Date string `json:"date"`
		} `json:"sources"`
	}
	if err = json.Unmarshal(body, &raw); err != nil {
		return BreachResult{}, &UpstreamError{Provider: p.name(), Message: "unexpected response body"}
	}

	breaches := make([]BreachSummary, 0, len(raw.Sources))
	for _, src := range raw.Sources {
		name := src.Name
		if name == "" {
			name = "Unknown source"
		}
		breaches = append(breaches, BreachSummary{
			Name:       name,
			Title:      name,
			BreachDate: src.Date,
		})
	}
	return BreachResult{Found: raw.Found > 0, Breaches: breaches}, nil
}
