package providers

import "fmt"

// maxErrorBody caps how much of an upstream error body is echoed back to the
// caller. Provider payloads can be large and may include fields we never
// want to forward.
const maxErrorBody = 400

// UpstreamError covers any network failure, non-2xx status or malformed body
// from a provider. It is transient from the caller's point of view and is
// never retried server-side beyond the URL-scan poll budget.
type UpstreamError struct {
	Provider string
	Status   int
	Message  string
}

func (e *UpstreamError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s request failed (%d). %s", e.Provider, e.Status, e.Message)
	}
	return fmt.Sprintf("%s request failed. %s", e.Provider, e.Message)
}

// ConfigError means a required credential is missing. It is surfaced with a
// stable machine-readable code so the UI can say "feature unavailable"
// instead of a generic error.
type ConfigError struct {
	Code    string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

// UnsupportedPlatformError is a caller error, by design: only platforms with
// a public, ToS-safe check endpoint are ever queried.
type UnsupportedPlatformError struct {
	Platform string
}

func (e *UnsupportedPlatformError) Error() string {
	return "Verification not supported for this platform. This is intentional to avoid scraping and ToS issues; links are still generated on the client."
}

func truncateBody(body []byte) string {
	if len(body) > maxErrorBody {
		return string(body[:maxErrorBody])
	}
	return string(body)
}
