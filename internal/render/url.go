package render

import (
	"net/url"
	"strings"
)

// CleanURL reduces a URL to scheme://host[:port] for headlines.
// Anything that does not parse as an absolute URL is returned unchanged.
func CleanURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return raw
	}
	if u.Scheme == "" {
		return u.Host
	}
	return u.Scheme + "://" + u.Host
}
