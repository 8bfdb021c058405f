package models

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// DiscordEmbed represents a Discord embed object.
type DiscordEmbed struct {
	Title       string              `json:"title,omitempty"`       // Title of embed
	Description string              `json:"description,omitempty"` // Description of embed
	URL         string              `json:"url,omitempty"`         // URL of embed
	Timestamp   string              `json:"timestamp,omitempty"`   // ISO8601 timestamp
	Color       int                 `json:"color,omitempty"`       // Color code of the embed
	Footer      *DiscordEmbedFooter `json:"footer,omitempty"`
	Fields      []DiscordEmbedField `json:"fields,omitempty"` // Array of embed field objects
}

// DiscordEmbedFooter represents the footer of an embed.
type DiscordEmbedFooter struct {
	Text    string `json:"text"`
	IconURL string `json:"icon_url,omitempty"`
}

// DiscordEmbedField represents a field in an embed.
type DiscordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// AllowedMentions specifies how mentions should be handled in a message.
type AllowedMentions struct {
	Parse []string `json:"parse"` // Empty list disables every mention
}

// DiscordMessagePayload represents the JSON payload sent to a Discord webhook.
type DiscordMessagePayload struct {
	Content         string           `json:"content"`
	Username        string           `json:"username,omitempty"`
	AvatarURL       string           `json:"avatar_url,omitempty"`
	Embeds          []DiscordEmbed   `json:"embeds"`
	AllowedMentions *AllowedMentions `json:"allowed_mentions,omitempty"`
}

// RenderedContent is the complete body of one status message.
type RenderedContent struct {
	Content string        `json:"content"`
	Embed   *DiscordEmbed `json:"embed,omitempty"`
}

// Hash returns a stable digest of the content. Identical content always hashes identically.
func (c RenderedContent) Hash() string {
	// Marshalling a struct of strings, ints and slices cannot fail.
	data, _ := json.Marshal(c)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// IsEmpty reports whether there is nothing to send.
func (c RenderedContent) IsEmpty() bool {
	return c.Content == "" && c.Embed == nil
}
