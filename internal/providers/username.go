package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	defaultGitHubBaseURL = "https://api.github.com"
	defaultRedditBaseURL = "https://www.reddit.com"

	usernameCacheTTL = 5 * time.Minute
)

// UsernameClient checks whether a username exists on the platforms of the
// verification allow-list. Everything else is UnsupportedPlatformError by
// design, independent of configuration.
type UsernameClient struct {
	http  *retryablehttp.Client
	cache *Cache

	GitHubBaseURL string
	RedditBaseURL string
}

func NewUsernameClient(cache *Cache) *UsernameClient {
	return &UsernameClient{
		http:          initHTTPClient(),
		cache:         cache,
		GitHubBaseURL: defaultGitHubBaseURL,
		RedditBaseURL: defaultRedditBaseURL,
	}
}

// CheckExists resolves one (platform, username) pair. A provider 404 means
// the account does not exist; any other non-2xx status is an upstream
// failure.
func (c *UsernameClient) CheckExists(ctx context.Context, platform, username string) (bool, error) {
	var endpoint string
	switch platform {
	case "github":
		endpoint = fmt.Sprintf("%s/users/%s", c.GitHubBaseURL, url.PathEscape(username))
	case "reddit":
		endpoint = fmt.Sprintf("%s/user/%s/about.json", c.RedditBaseURL, url.PathEscape(username))
	default:
		return false, &UnsupportedPlatformError{Platform: platform}
	}

	key := cacheKey("uname:"+platform, username)
	if cached, ok := c.cache.get(key); ok {
		if exists, ok := cached.(bool); ok {
			return exists, nil
		}
	}

	res, body, err := getJSON(ctx, c.http, endpoint, nil)
	if err != nil {
		return false, &UpstreamError{Provider: platform, Message: err.Error()}
	}

	switch {
	case res.StatusCode == http.StatusNotFound:
		c.cache.set(key, false, usernameCacheTTL)
		return false, nil
	case res.StatusCode >= 200 && res.StatusCode < 300:
		c.cache.set(key, true, usernameCacheTTL)
		return true, nil
	default:
		return false, &UpstreamError{Provider: platform, Status: res.StatusCode, Message: truncateBody(body)}
	}
}
