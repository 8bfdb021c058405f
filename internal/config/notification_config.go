package config

import "time"

// NotificationConfig selects and tunes the messaging transport.
type NotificationConfig struct {
	Transport string `json:"transport,omitempty" yaml:"transport,omitempty" validate:"omitempty,oneof=bot webhook"`
	// BotToken is usually supplied through DISCORD_BOT_TOKEN rather than the file.
	BotToken string `json:"bot_token,omitempty" yaml:"bot_token,omitempty"`
	// ArtificialDelayMillis spaces out remote calls; 0 disables throttling.
	ArtificialDelayMillis int    `json:"artificial_delay_millis,omitempty" yaml:"artificial_delay_millis,omitempty" validate:"omitempty,min=0"`
	RemoteTimeoutSeconds  int    `json:"remote_timeout_seconds,omitempty" yaml:"remote_timeout_seconds,omitempty" validate:"omitempty,min=1,max=120"`
	// RevalidateAfterSeconds re-sends an unchanged message this long after its
	// last write so deleted messages are noticed; 0 disables it.
	RevalidateAfterSeconds int    `json:"revalidate_after_seconds" yaml:"revalidate_after_seconds" validate:"min=0"`
	OpenGateway            bool   `json:"open_gateway" yaml:"open_gateway"`
	PresenceText           string `json:"presence_text,omitempty" yaml:"presence_text,omitempty"`
	WebhookUsername        string `json:"webhook_username,omitempty" yaml:"webhook_username,omitempty"`
	WebhookAvatarURL       string `json:"webhook_avatar_url,omitempty" yaml:"webhook_avatar_url,omitempty" validate:"omitempty,url"`
}

// NewDefaultNotificationConfig creates default notification configuration
func NewDefaultNotificationConfig() NotificationConfig {
	return NotificationConfig{
		Transport:              TransportBot,
		ArtificialDelayMillis:  DefaultArtificialDelayMillis,
		RemoteTimeoutSeconds:   DefaultRemoteTimeoutSeconds,
		RevalidateAfterSeconds: DefaultRevalidateAfterSeconds,
		PresenceText:           DefaultPresenceText,
	}
}

// ArtificialDelay is the minimum gap between two remote calls.
func (c NotificationConfig) ArtificialDelay() time.Duration {
	return time.Duration(c.ArtificialDelayMillis) * time.Millisecond
}

// RemoteTimeout bounds a single send or edit.
func (c NotificationConfig) RemoteTimeout() time.Duration {
	if c.RemoteTimeoutSeconds <= 0 {
		return DefaultRemoteTimeoutSeconds * time.Second
	}
	return time.Duration(c.RemoteTimeoutSeconds) * time.Second
}

// RevalidateAfter is how long an unchanged message goes without a remote check.
func (c NotificationConfig) RevalidateAfter() time.Duration {
	return time.Duration(c.RevalidateAfterSeconds) * time.Second
}
