// Package providers wraps the external lookup services (breach database,
// URL reputation, platform existence) behind uniform fetch-and-normalize
// clients. Every result is collapsed into a small closed shape before it
// leaves this package; raw provider payloads and credentials never do.
package providers

import (
	"context"
	"net"
	"net/http"
	"runtime"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const userAgent = "soc-toolkit/1.0 (security awareness project)"

func initHTTPClient() *retryablehttp.Client {
	client := retryablehttp.NewClient()
	// Request logging happens at the handler layer already.
	client.Logger = nil

	// Retry a few times on protocol errors only. A non-2xx status is a
	// provider answer, not a transport failure, and must reach the adapter
	// untouched (404 carries meaning for several providers).
	client.RetryMax = 3
	client.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return err != nil, nil
	}

	client.HTTPClient = &http.Client{
		Timeout: 20 * time.Second,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       10 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
			MaxIdleConnsPerHost:   runtime.GOMAXPROCS(0) + 1,
		},
	}

	return client
}
