package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestComputeVerdict(t *testing.T) {
	cases := []struct {
		stats map[string]int
		want  string
	}{
		{map[string]int{"malicious": 1, "suspicious": 5, "harmless": 10}, VerdictMalicious},
		{map[string]int{"malicious": 0, "suspicious": 2, "harmless": 10}, VerdictSuspicious},
		{map[string]int{"malicious": 0, "suspicious": 0, "harmless": 5}, VerdictClean},
		{map[string]int{}, VerdictUnknown},
		{map[string]int{"timeout": 7}, VerdictUnknown},
	}
	for _, c := range cases {
		if got := ComputeVerdict(c.stats); got != c.want {
			t.Errorf("ComputeVerdict(%v) = %s, want %s", c.stats, got, c.want)
		}
	}
}

func newScanTestClient(base string) (*URLScanClient, *int) {
	c := NewURLScanClient("test-key")
	c.BaseURL = base
	sleeps := 0
	c.poll.sleep = func(time.Duration) { sleeps++ }
	return c, &sleeps
}

func TestScanCompleted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/urls":
			if got := r.Header.Get("x-apikey"); got != "test-key" {
				t.Errorf("API key header should be sent, got %q", got)
			}
			w.Write([]byte(`{"data":{"id":"an-id"}}`))
		case strings.HasPrefix(r.URL.Path, "/analyses/"):
			w.Write([]byte(`{"data":{"attributes":{"status":"completed","stats":{"malicious":1,"harmless":70}}}}`))
		default:
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	c, sleeps := newScanTestClient(srv.URL)
	res, err := c.Scan(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("Should not fail: %s", err)
	}
	if res.Verdict != VerdictMalicious {
		t.Errorf("Verdict should be malicious, got %s", res.Verdict)
	}
	if res.AnalysisID != "an-id" {
		t.Errorf("Analysis id should be surfaced, got %q", res.AnalysisID)
	}
	if res.Stats["harmless"] != 70 {
		t.Errorf("Stats should be carried through, got %v", res.Stats)
	}
	if *sleeps != 0 {
		t.Errorf("A first-poll completion should not sleep, slept %d times", *sleeps)
	}
}

func TestScanBudgetExhausted(t *testing.T) {
	polls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.Write([]byte(`{"data":{"id":"queued-id"}}`))
			return
		}
		polls++
		w.Write([]byte(`{"data":{"attributes":{"status":"queued"}}}`))
	}))
	defer srv.Close()

	c, sleeps := newScanTestClient(srv.URL)
	res, err := c.Scan(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("An exhausted poll budget is a partial result, not an error: %s", err)
	}
	if polls != 3 {
		t.Errorf("Should poll exactly 3 times, polled %d", polls)
	}
	if *sleeps != 3 {
		t.Errorf("Should sleep after each incomplete poll, slept %d times", *sleeps)
	}
	if res.Verdict != VerdictUnknown {
		t.Errorf("Verdict should be unknown, got %s", res.Verdict)
	}
	if res.AnalysisID != "queued-id" {
		t.Errorf("Analysis id should still be returned for a later retry, got %q", res.AnalysisID)
	}
	if len(res.Stats) != 0 {
		t.Errorf("Stats should be empty, got %v", res.Stats)
	}
}

func TestScanMissingKey(t *testing.T) {
	c := NewURLScanClient("")
	_, err := c.Scan(context.Background(), "https://example.com")

	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("Should be a ConfigError, got %v", err)
	}
	if ce.Code != "MISSING_VT_KEY" {
		t.Errorf("Code should be stable, got %q", ce.Code)
	}
}

func TestScanSubmitFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("WrongCredentialsError"))
	}))
	defer srv.Close()

	c, _ := newScanTestClient(srv.URL)
	_, err := c.Scan(context.Background(), "https://example.com")

	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("Should be an UpstreamError, got %v", err)
	}
	if ue.Status != http.StatusForbidden {
		t.Errorf("Status should be 403, got %d", ue.Status)
	}
}

func TestScanNoAnalysisID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	c, _ := newScanTestClient(srv.URL)
	if _, err := c.Scan(context.Background(), "https://example.com"); err == nil {
		t.Errorf("A missing analysis id should be an error")
	}
}
