package notifier

import (
	"context"
	"strings"
	"sync"

	"github.com/aleister1102/sitewatch/internal/common/errorwrapper"
	"github.com/aleister1102/sitewatch/internal/config"
	"github.com/aleister1102/sitewatch/internal/models"
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

const (
	opSend = "send"
	opEdit = "edit"
)

// channelMessageAPI is the part of *discordgo.Session the messenger calls.
type channelMessageAPI interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type gatewayAPI interface {
	Open() error
	Close() error
	UpdateGameStatus(idle int, name string) error
}

// BotMessenger posts status messages as a bot user. Destinations are channel IDs.
type BotMessenger struct {
	api      channelMessageAPI
	gateway  gatewayAPI
	cfg      config.NotificationConfig
	logger   zerolog.Logger
	mu       sync.Mutex
	gwOpened bool
}

// NewBotMessenger creates a REST session for the configured bot token.
func NewBotMessenger(cfg config.NotificationConfig, logger zerolog.Logger) (*BotMessenger, error) {
	token := strings.TrimSpace(cfg.BotToken)
	if token == "" {
		return nil, errorwrapper.NewValidationError("notification_config.bot_token", "", "a bot token is required for the bot transport")
	}
	if !strings.HasPrefix(token, "Bot ") {
		token = "Bot " + token
	}

	session, err := discordgo.New(token)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to create Discord session")
	}
	// Rate limits surface as transient failures; the next cycle retries.
	session.ShouldRetryOnRateLimit = false
	session.Identify.Intents = discordgo.IntentsGuilds

	return newBotMessenger(session, session, cfg, logger), nil
}

func newBotMessenger(api channelMessageAPI, gateway gatewayAPI, cfg config.NotificationConfig, logger zerolog.Logger) *BotMessenger {
	return &BotMessenger{
		api:     api,
		gateway: gateway,
		cfg:     cfg,
		logger:  logger.With().Str("component", "BotMessenger").Logger(),
	}
}

// Send posts a new message into the channel.
func (b *BotMessenger) Send(ctx context.Context, destination string, content models.RenderedContent) (models.MessageHandle, error) {
	msg, err := b.api.ChannelMessageSendComplex(destination, &discordgo.MessageSend{
		Content:         content.Content,
		Embeds:          toMessageEmbeds(content.Embed),
		AllowedMentions: noMentions(),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return models.MessageHandle{}, classifyDiscordgoError(opSend, models.MessageHandle{Destination: destination}, err)
	}

	b.logger.Debug().Str("channel_id", destination).Str("message_id", msg.ID).Msg("Message created")
	return models.MessageHandle{Destination: destination, MessageID: msg.ID}, nil
}

// Edit replaces the content and embeds of an existing message.
func (b *BotMessenger) Edit(ctx context.Context, handle models.MessageHandle, content models.RenderedContent) error {
	edit := discordgo.NewMessageEdit(handle.Destination, handle.MessageID).
		SetContent(content.Content).
		SetEmbeds(toMessageEmbeds(content.Embed))
	edit.AllowedMentions = noMentions()

	if _, err := b.api.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx)); err != nil {
		return classifyDiscordgoError(opEdit, handle, err)
	}

	b.logger.Debug().Str("channel_id", handle.Destination).Str("message_id", handle.MessageID).Msg("Message edited")
	return nil
}

// Start opens the gateway when configured, so the bot shows as online with a
// presence line, and holds it until ctx ends. REST calls never need it.
func (b *BotMessenger) Start(ctx context.Context) error {
	if !b.cfg.OpenGateway {
		<-ctx.Done()
		return nil
	}

	if err := b.gateway.Open(); err != nil {
		return errorwrapper.WrapError(err, "failed to open Discord gateway")
	}
	b.mu.Lock()
	b.gwOpened = true
	b.mu.Unlock()
	b.logger.Info().Msg("Discord gateway connected")

	if b.cfg.PresenceText != "" {
		if err := b.gateway.UpdateGameStatus(0, b.cfg.PresenceText); err != nil {
			b.logger.Warn().Err(err).Msg("Failed to set bot presence")
		}
	}

	<-ctx.Done()
	return nil
}

// Close disconnects the gateway if Start opened it.
func (b *BotMessenger) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.gwOpened {
		return nil
	}
	b.gwOpened = false
	b.logger.Info().Msg("Closing Discord gateway")
	return b.gateway.Close()
}

func noMentions() *discordgo.MessageAllowedMentions {
	return &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{}}
}

// toMessageEmbeds always returns a non-nil slice so an edit clears old embeds.
func toMessageEmbeds(embed *models.DiscordEmbed) []*discordgo.MessageEmbed {
	embeds := []*discordgo.MessageEmbed{}
	if embed == nil {
		return embeds
	}

	out := &discordgo.MessageEmbed{
		Type:        discordgo.EmbedTypeRich,
		Title:       embed.Title,
		Description: embed.Description,
		URL:         embed.URL,
		Timestamp:   embed.Timestamp,
		Color:       embed.Color,
	}
	if embed.Footer != nil {
		out.Footer = &discordgo.MessageEmbedFooter{Text: embed.Footer.Text, IconURL: embed.Footer.IconURL}
	}
	for _, field := range embed.Fields {
		out.Fields = append(out.Fields, &discordgo.MessageEmbedField{
			Name:   field.Name,
			Value:  field.Value,
			Inline: field.Inline,
		})
	}
	return append(embeds, out)
}
