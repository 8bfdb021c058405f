package config

// StatusStyle is how one status is drawn.
type StatusStyle struct {
	Emoji  string `json:"emoji,omitempty" yaml:"emoji,omitempty"`
	Color  int    `json:"color,omitempty" yaml:"color,omitempty" validate:"omitempty,min=0,max=16777215"`
	Phrase string `json:"phrase,omitempty" yaml:"phrase,omitempty"`
}

// RenderConfig controls the look of status messages.
type RenderConfig struct {
	OutputMode string `json:"output_mode,omitempty" yaml:"output_mode,omitempty" validate:"omitempty,outputmode"`
	// EmbedMessage: nil sends the embed alone, "" repeats the embed description
	// as message text, anything else is sent as text above the embed.
	EmbedMessage *string `json:"embed_message,omitempty" yaml:"embed_message,omitempty"`
	InlineFields bool    `json:"inline_fields" yaml:"inline_fields"`
	TimeFormat   string  `json:"time_format,omitempty" yaml:"time_format,omitempty"`
	TimeZone     string  `json:"time_zone,omitempty" yaml:"time_zone,omitempty" validate:"omitempty,timezone"`
	// Styles overrides the built-in look per status, keyed by status name ("up", "Partially Up", ...).
	Styles map[string]StatusStyle `json:"styles,omitempty" yaml:"styles,omitempty" validate:"omitempty,dive,keys,statusname,endkeys"`
}

// NewDefaultRenderConfig creates default render configuration
func NewDefaultRenderConfig() RenderConfig {
	return RenderConfig{
		OutputMode:   DefaultOutputMode,
		InlineFields: DefaultInlineFields,
		TimeFormat:   DefaultTimeFormat,
		TimeZone:     DefaultTimeZone,
	}
}
