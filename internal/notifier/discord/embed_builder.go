package discord

import (
	"time"

	"github.com/aleister1102/sitewatch/internal/models"
)

// DiscordEmbedBuilder helps in constructing embeds that Discord will accept.
// Text is truncated to the API limits as it is set.
type DiscordEmbedBuilder struct {
	embed     models.DiscordEmbed
	validator *DiscordEmbedValidator
}

// NewDiscordEmbedBuilder creates a new Discord embed builder
func NewDiscordEmbedBuilder() *DiscordEmbedBuilder {
	return &DiscordEmbedBuilder{
		validator: NewDiscordEmbedValidator(),
	}
}

// WithTitle sets the embed title
func (deb *DiscordEmbedBuilder) WithTitle(title string) *DiscordEmbedBuilder {
	deb.embed.Title = Truncate(title, MaxTitleLength)
	return deb
}

// WithDescription sets the embed description
func (deb *DiscordEmbedBuilder) WithDescription(description string) *DiscordEmbedBuilder {
	deb.embed.Description = Truncate(description, MaxDescriptionLength)
	return deb
}

// WithURL makes the title a link
func (deb *DiscordEmbedBuilder) WithURL(url string) *DiscordEmbedBuilder {
	deb.embed.URL = url
	return deb
}

// WithTimestamp sets the embed timestamp. A zero time leaves it unset.
func (deb *DiscordEmbedBuilder) WithTimestamp(timestamp time.Time) *DiscordEmbedBuilder {
	if timestamp.IsZero() {
		deb.embed.Timestamp = ""
		return deb
	}
	deb.embed.Timestamp = timestamp.UTC().Format(time.RFC3339)
	return deb
}

// WithColor sets the embed color
func (deb *DiscordEmbedBuilder) WithColor(color int) *DiscordEmbedBuilder {
	deb.embed.Color = color
	return deb
}

// WithFooter sets the embed footer
func (deb *DiscordEmbedBuilder) WithFooter(text, iconURL string) *DiscordEmbedBuilder {
	deb.embed.Footer = NewDiscordEmbedFooter(Truncate(text, MaxFooterTextLength), iconURL)
	return deb
}

// AddField adds a field to the embed. Fields past the limit are dropped.
func (deb *DiscordEmbedBuilder) AddField(name, value string, inline bool) *DiscordEmbedBuilder {
	if len(deb.embed.Fields) >= MaxFields {
		return deb
	}
	field := NewDiscordEmbedField(Truncate(name, MaxFieldNameLength), Truncate(value, MaxFieldValueLength), inline)
	deb.embed.Fields = append(deb.embed.Fields, field)
	return deb
}

// Validate validates the current embed
func (deb *DiscordEmbedBuilder) Validate() error {
	return deb.validator.ValidateEmbed(deb.embed)
}

// Build returns the embed, or the first limit it breaks.
func (deb *DiscordEmbedBuilder) Build() (models.DiscordEmbed, error) {
	if err := deb.Validate(); err != nil {
		return models.DiscordEmbed{}, err
	}
	embed := deb.embed
	embed.Fields = append([]models.DiscordEmbedField(nil), deb.embed.Fields...)
	return embed, nil
}
