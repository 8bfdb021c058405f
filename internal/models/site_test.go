package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactDestination(t *testing.T) {
	const token = "s3cr3t-T0ken_value"
	webhook := "https://discord.com/api/webhooks/123456/" + token

	redacted := RedactDestination(webhook)
	assert.NotContains(t, redacted, token)
	assert.True(t, strings.HasPrefix(redacted, "https://discord.com/api/webhooks/123456/token-"))
	assert.Equal(t, redacted, RedactDestination(webhook), "digest must be stable")

	other := RedactDestination("https://discord.com/api/webhooks/123456/another-token")
	assert.NotEqual(t, redacted, other, "distinct tokens must stay distinct")

	withThread := RedactDestination(webhook + "?thread_id=42")
	assert.NotContains(t, withThread, token)
	assert.Contains(t, withThread, "thread_id=42")

	assert.Equal(t, "987654321", RedactDestination("987654321"))
	assert.Equal(t, "https://example.com/hooks/abc", RedactDestination("https://example.com/hooks/abc"))
	assert.Equal(t, "https://discord.com/api/webhooks/123456", RedactDestination("https://discord.com/api/webhooks/123456"))
}

func TestSite_IDOmitsWebhookToken(t *testing.T) {
	const token = "s3cr3t-T0ken_value"
	site := Site{Name: "Docs", URL: "https://docs.example.com", Destination: "https://discord.com/api/webhooks/123456/" + token}

	assert.NotContains(t, site.ID(), token)
	assert.Contains(t, site.ID(), "|https://docs.example.com|Docs")

	rotated := site
	rotated.Destination = "https://discord.com/api/webhooks/123456/rotated"
	assert.NotEqual(t, site.ID(), rotated.ID())
}
