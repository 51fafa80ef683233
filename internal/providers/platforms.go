package providers

import (
	"net/url"
	"strings"
)

// Platform describes one social platform in the catalog. Only platforms
// with SupportsVerification true are ever queried by the username client;
// the rest are link-only, the profile URL is handed to the user to check
// manually.
type Platform struct {
	ID                   string `json:"id"`
	Label                string `json:"label"`
	ProfileURLTemplate   string `json:"profileUrlTemplate"`
	SupportsVerification bool   `json:"supportsVerification"`
}

// ProfileURL substitutes the escaped username into the template.
func (p Platform) ProfileURL(username string) string {
	return strings.ReplaceAll(p.ProfileURLTemplate, "{username}", url.PathEscape(username))
}

// Platforms is the full catalog, in display order.
var Platforms = []Platform{
	{ID: "instagram", Label: "Instagram", ProfileURLTemplate: "https://www.instagram.com/{username}/"},
	{ID: "x", Label: "X (Twitter)", ProfileURLTemplate: "https://x.com/{username}"},
	{ID: "tiktok", Label: "TikTok", ProfileURLTemplate: "https://www.tiktok.com/@{username}"},
	{ID: "facebook", Label: "Facebook", ProfileURLTemplate: "https://www.facebook.com/{username}"},
	{ID: "youtube", Label: "YouTube (handle)", ProfileURLTemplate: "https://www.youtube.com/@{username}"},
	{ID: "github", Label: "GitHub", ProfileURLTemplate: "https://github.com/{username}", SupportsVerification: true},
	{ID: "reddit", Label: "Reddit", ProfileURLTemplate: "https://www.reddit.com/user/{username}/", SupportsVerification: true},
}
