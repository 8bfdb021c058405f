package discord

import "github.com/aleister1102/sitewatch/internal/models"

// DiscordMessagePayloadBuilder helps in constructing webhook payloads.
type DiscordMessagePayloadBuilder struct {
	payload models.DiscordMessagePayload
}

// NewDiscordMessagePayloadBuilder creates a builder whose payload never pings anyone.
func NewDiscordMessagePayloadBuilder() *DiscordMessagePayloadBuilder {
	return &DiscordMessagePayloadBuilder{
		payload: models.DiscordMessagePayload{
			Embeds:          []models.DiscordEmbed{},
			AllowedMentions: &models.AllowedMentions{Parse: []string{}},
		},
	}
}

// WithContent sets the message text.
func (b *DiscordMessagePayloadBuilder) WithContent(content string) *DiscordMessagePayloadBuilder {
	b.payload.Content = Truncate(content, MaxContentLength)
	return b
}

// WithUsername overrides the webhook's username.
func (b *DiscordMessagePayloadBuilder) WithUsername(username string) *DiscordMessagePayloadBuilder {
	b.payload.Username = username
	return b
}

// WithAvatarURL overrides the webhook's avatar.
func (b *DiscordMessagePayloadBuilder) WithAvatarURL(avatarURL string) *DiscordMessagePayloadBuilder {
	b.payload.AvatarURL = avatarURL
	return b
}

// AddEmbed appends an embed.
func (b *DiscordMessagePayloadBuilder) AddEmbed(embed models.DiscordEmbed) *DiscordMessagePayloadBuilder {
	b.payload.Embeds = append(b.payload.Embeds, embed)
	return b
}

// WithRendered replaces text and embeds with a rendered status message.
// An edit must clear whatever the previous render left behind, so a missing
// embed still produces an empty list.
func (b *DiscordMessagePayloadBuilder) WithRendered(content models.RenderedContent) *DiscordMessagePayloadBuilder {
	b.payload.Content = Truncate(content.Content, MaxContentLength)
	b.payload.Embeds = []models.DiscordEmbed{}
	if content.Embed != nil {
		b.payload.Embeds = append(b.payload.Embeds, *content.Embed)
	}
	return b
}

// Build returns the constructed payload.
func (b *DiscordMessagePayloadBuilder) Build() models.DiscordMessagePayload {
	return b.payload
}
