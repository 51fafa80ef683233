package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"soc-toolkit/internal/providers"
	"soc-toolkit/internal/ratelimit"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestAPI wires a toolkit API against stub provider endpoints.
func newTestAPI(t *testing.T, upstream http.HandlerFunc) (*gin.Engine, *httptest.Server) {
	t.Helper()

	var srv *httptest.Server
	if upstream != nil {
		srv = httptest.NewServer(upstream)
	}

	users := providers.NewUsernameClient(nil)
	breachCfg := providers.BreachConfig{HIBPAPIKey: "test-key"}
	if srv != nil {
		users.GitHubBaseURL = srv.URL
		users.RedditBaseURL = srv.URL
		breachCfg.HIBPBaseURL = srv.URL
	}

	api := &toolkitAPI{
		limiter: ratelimit.New(),
		breach:  providers.NewBreachClient(breachCfg, nil),
		urls:    providers.NewURLScanClient(""),
		users:   users,
	}

	router := gin.New()
	api.register(router.Group("/v1"))
	return router, srv
}

func do(router *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestBreachInvalidEmail(t *testing.T) {
	router, _ := newTestAPI(t, nil)
	w := do(router, http.MethodGet, "/v1/breach?email=not-an-email", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Invalid email should be 400, got %d", w.Code)
	}
}

func TestBreachSuccess(t *testing.T) {
	router, srv := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer srv.Close()

	w := do(router, http.MethodGet, "/v1/breach?email=user@example.com", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Should be 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Ok       bool          `json:"ok"`
		Found    bool          `json:"found"`
		Breaches []interface{} `json:"breaches"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Should decode: %s", err)
	}
	if !resp.Ok || resp.Found {
		t.Errorf("Unbreached address should be ok and not found, got %+v", resp)
	}
	if resp.Breaches == nil {
		t.Errorf("Breaches should serialize as an empty array, not null")
	}
}

func TestBreachRateLimited(t *testing.T) {
	router, srv := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer srv.Close()

	var last *httptest.ResponseRecorder
	for i := 0; i <= breachLimit; i++ {
		last = do(router, http.MethodGet, "/v1/breach?email=user@example.com", "")
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("Request %d should be 429, got %d", breachLimit+1, last.Code)
	}
	if last.Header().Get("Retry-After") == "" {
		t.Errorf("429 should carry a Retry-After hint")
	}
}

func TestScanInvalidURL(t *testing.T) {
	router, _ := newTestAPI(t, nil)
	w := do(router, http.MethodPost, "/v1/url/scan", `{"url":"http://localhost/x"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Localhost URL should be 400, got %d", w.Code)
	}
}

func TestScanNotConfigured(t *testing.T) {
	router, _ := newTestAPI(t, nil)
	w := do(router, http.MethodPost, "/v1/url/scan", `{"url":"example.com"}`)
	if w.Code != http.StatusNotImplemented {
		t.Fatalf("Missing key should be 501, got %d", w.Code)
	}

	var resp errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Should decode: %s", err)
	}
	if resp.Code != "MISSING_VT_KEY" {
		t.Errorf("Envelope should carry the stable code, got %q", resp.Code)
	}
}

func TestUsernameUnsupportedPlatform(t *testing.T) {
	router, _ := newTestAPI(t, nil)
	w := do(router, http.MethodGet, "/v1/username?platform=tiktok&username=someone", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Unsupported platform should be 400, got %d", w.Code)
	}
}

func TestUsernameUpstreamFailureIsSoft(t *testing.T) {
	router, srv := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer srv.Close()

	// upstream failures on this route keep a 200 transport status
	w := do(router, http.MethodGet, "/v1/username?platform=github&username=someone", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Upstream failure should still be 200 on this route, got %d", w.Code)
	}

	var resp errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Should decode: %s", err)
	}
	if resp.Ok {
		t.Errorf("Body should carry ok:false")
	}
	if resp.Error == "" {
		t.Errorf("Body should carry the error message")
	}
}

func TestUsernameExists(t *testing.T) {
	router, srv := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"login":"someone"}`))
	})
	defer srv.Close()

	w := do(router, http.MethodGet, "/v1/username?platform=github&username=someone", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Should be 200, got %d", w.Code)
	}

	var resp usernameResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Should decode: %s", err)
	}
	if !resp.Ok || !resp.Exists {
		t.Errorf("Should report existence, got %+v", resp)
	}
}

func TestPasswordStrengthEndpoint(t *testing.T) {
	router, _ := newTestAPI(t, nil)
	w := do(router, http.MethodPost, "/v1/password/strength", `{"password":"abcd1234"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Should be 200, got %d", w.Code)
	}

	var resp struct {
		Ok       bool     `json:"ok"`
		Label    string   `json:"label"`
		Warnings []string `json:"warnings"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Should decode: %s", err)
	}
	if !resp.Ok {
		t.Errorf("Should be ok")
	}
	if len(resp.Warnings) == 0 {
		t.Errorf("Sequential password should carry warnings")
	}
}

func TestPlatformCatalogEndpoint(t *testing.T) {
	router, _ := newTestAPI(t, nil)
	w := do(router, http.MethodGet, "/v1/platforms", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Should be 200, got %d", w.Code)
	}

	var resp platformsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Should decode: %s", err)
	}
	if len(resp.Platforms) != 7 {
		t.Errorf("Catalog should list 7 platforms, got %d", len(resp.Platforms))
	}
}

func TestMethodNotAllowed(t *testing.T) {
	limiter := ratelimit.New()
	router, err := NewRouter(Config{}, limiter)
	if err != nil {
		t.Fatalf("Should not fail building the router: %s", err)
	}

	w := do(router, http.MethodPost, "/v1/breach", `{}`)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("Wrong method should be 405, got %d", w.Code)
	}
	if got := w.Header().Get("Allow"); got != http.MethodGet {
		t.Errorf("Allow hint should be GET, got %q", got)
	}
}

func TestClientIdentity(t *testing.T) {
	var got string
	router := gin.New()
	router.GET("/x", func(c *gin.Context) { got = clientIdentity(c) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	router.ServeHTTP(httptest.NewRecorder(), req)
	if got != "203.0.113.7" {
		t.Errorf("First forwarded entry should win, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = "198.51.100.4:5555"
	router.ServeHTTP(httptest.NewRecorder(), req)
	if got != "198.51.100.4" {
		t.Errorf("Connection address should be the fallback, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = ""
	router.ServeHTTP(httptest.NewRecorder(), req)
	if got != "unknown" {
		t.Errorf("Literal unknown should be the last resort, got %q", got)
	}
}
