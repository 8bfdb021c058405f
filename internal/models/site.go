package models

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// DeadCheck overrides the computed status when its keyword appears in the response body.
type DeadCheck struct {
	Keyword       string `json:"keyword" yaml:"keyword"`
	Override      Status `json:"response" yaml:"response"`
	CaseSensitive bool   `json:"case_sensitive" yaml:"case_sensitive"`
}

// RuleSet holds the per-site classification rules.
// An empty ExpectedContent and a zero ExpectedStatus mean "not checked".
type RuleSet struct {
	ExpectedContent string      `json:"expected_content,omitempty" yaml:"expected_content,omitempty"`
	ExpectedStatus  int         `json:"expected_status,omitempty" yaml:"expected_status,omitempty"`
	CaseSensitive   bool        `json:"case_sensitive" yaml:"case_sensitive"`
	DeadChecks      []DeadCheck `json:"dead_checks,omitempty" yaml:"dead_checks,omitempty"`
}

// HasContentCheck reports whether the expected content is evaluated.
// Whitespace-only content counts as unset.
func (r RuleSet) HasContentCheck() bool {
	return strings.TrimSpace(r.ExpectedContent) != ""
}

// HasStatusCheck reports whether the HTTP status code is evaluated.
func (r RuleSet) HasStatusCheck() bool {
	return r.ExpectedStatus != 0
}

// Site is one monitored website together with where its status message lives.
type Site struct {
	Name        string  `json:"name" yaml:"name"`
	URL         string  `json:"url" yaml:"url"`
	Destination string  `json:"channel" yaml:"channel"`
	Rules       RuleSet `json:"rules" yaml:"rules"`
}

// ID returns the identity used to key persisted notification state.
// Webhook tokens in the destination are replaced by a digest.
func (s Site) ID() string {
	return RedactDestination(s.Destination) + "|" + s.URL + "|" + s.Name
}

// RedactDestination replaces the token segment of a Discord webhook URL
// (.../webhooks/<id>/<token>) with a short SHA-256 digest of the token.
// Any other destination, such as a channel ID, is returned unchanged.
func RedactDestination(destination string) string {
	parsed, err := url.Parse(destination)
	if err != nil || parsed.Host == "" {
		return destination
	}

	segments := strings.Split(parsed.Path, "/")
	for i, segment := range segments {
		if segment != "webhooks" || i+2 >= len(segments) || segments[i+2] == "" {
			continue
		}
		sum := sha256.Sum256([]byte(segments[i+2]))
		segments[i+2] = "token-" + hex.EncodeToString(sum[:])[:12]
		parsed.Path = strings.Join(segments, "/")
		parsed.RawPath = ""
		return parsed.String()
	}
	return destination
}

// SiteIDs returns the identities of the given sites in order.
func SiteIDs(sites []Site) []string {
	ids := make([]string, 0, len(sites))
	for _, s := range sites {
		ids = append(ids, s.ID())
	}
	return ids
}
