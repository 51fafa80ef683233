package validate

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	// pragmatic validation (avoids over-restricting)
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]{2,}$`)
	// bare dotted-quad hosts are never scanned
	ipv4Re = regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}$`)
)

// IsValidEmail reports whether s looks like a deliverable address. The
// grammar is intentionally permissive; the upstream breach databases are the
// real authority on what an address is.
func IsValidEmail(s string) bool {
	return emailRe.MatchString(strings.TrimSpace(s))
}

// IsValidUsername accepts 2-30 characters of ASCII letters, digits, dots,
// underscores and hyphens. Permissive but safe to embed in provider URLs.
func IsValidUsername(s string) bool {
	u := strings.TrimSpace(s)
	if len(u) < 2 || len(u) > 30 {
		return false
	}
	for _, r := range u {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '.' || r == '_' || r == '-':
		default:
			return false
		}
	}
	return true
}

// NormalizeURL trims the input, defaults the scheme to https and returns the
// canonical serialization. It rejects non-http(s) schemes, localhost, *.local
// hosts and bare IPv4 addresses. This is an allow-list filter, not a full
// SSRF defense: IPv6 literals, redirects and DNS rebinding are out of scope.
func NormalizeURL(s string) (string, bool) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return "", false
	}

	withScheme := raw
	if !strings.Contains(raw, "://") {
		withScheme = "https://" + raw
	}

	u, err := url.Parse(withScheme)
	if err != nil {
		return "", false
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}

	host := u.Hostname()
	if host == "" || host == "localhost" || strings.HasSuffix(host, ".local") || ipv4Re.MatchString(host) {
		return "", false
	}

	return u.String(), true
}
