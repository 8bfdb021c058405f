package discord

import "github.com/aleister1102/sitewatch/internal/models"

// Discord API limits for messages and embeds.
const (
	MaxContentLength     = 2000
	MaxTitleLength       = 256
	MaxDescriptionLength = 4096
	MaxFields            = 25
	MaxFieldNameLength   = 256
	MaxFieldValueLength  = 1024
	MaxFooterTextLength  = 2048
	MaxEmbedTotalLength  = 6000
)

// NewDiscordEmbedFooter creates a new Discord embed footer
func NewDiscordEmbedFooter(text, iconURL string) *models.DiscordEmbedFooter {
	return &models.DiscordEmbedFooter{
		Text:    text,
		IconURL: iconURL,
	}
}

// NewDiscordEmbedField creates a new Discord embed field
func NewDiscordEmbedField(name, value string, inline bool) models.DiscordEmbedField {
	return models.DiscordEmbedField{
		Name:   name,
		Value:  value,
		Inline: inline,
	}
}

// embedLength counts the characters Discord sums against MaxEmbedTotalLength.
func embedLength(embed models.DiscordEmbed) int {
	n := runeLen(embed.Title) + runeLen(embed.Description)
	for _, f := range embed.Fields {
		n += runeLen(f.Name) + runeLen(f.Value)
	}
	if embed.Footer != nil {
		n += runeLen(embed.Footer.Text)
	}
	return n
}
