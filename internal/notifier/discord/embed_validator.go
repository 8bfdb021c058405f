package discord

import (
	"fmt"

	"github.com/aleister1102/sitewatch/internal/common/errorwrapper"
	"github.com/aleister1102/sitewatch/internal/models"
)

// DiscordEmbedValidator validates Discord embed objects
type DiscordEmbedValidator struct{}

// NewDiscordEmbedValidator creates a new embed validator
func NewDiscordEmbedValidator() *DiscordEmbedValidator {
	return &DiscordEmbedValidator{}
}

// ValidateEmbed validates a Discord embed
func (dev *DiscordEmbedValidator) ValidateEmbed(embed models.DiscordEmbed) error {
	if runeLen(embed.Title) > MaxTitleLength {
		return errorwrapper.NewValidationError("title", embed.Title, fmt.Sprintf("title cannot exceed %d characters", MaxTitleLength))
	}

	if runeLen(embed.Description) > MaxDescriptionLength {
		return errorwrapper.NewValidationError("description", embed.Description, fmt.Sprintf("description cannot exceed %d characters", MaxDescriptionLength))
	}

	if len(embed.Fields) > MaxFields {
		return errorwrapper.NewValidationError("fields", len(embed.Fields), fmt.Sprintf("cannot have more than %d fields", MaxFields))
	}

	for i, field := range embed.Fields {
		if field.Name == "" {
			return errorwrapper.NewValidationError("field_name", field.Name, fmt.Sprintf("field %d name cannot be empty", i))
		}
		if field.Value == "" {
			return errorwrapper.NewValidationError("field_value", field.Value, fmt.Sprintf("field %d value cannot be empty", i))
		}
		if runeLen(field.Name) > MaxFieldNameLength {
			return errorwrapper.NewValidationError("field_name", field.Name, fmt.Sprintf("field %d name cannot exceed %d characters", i, MaxFieldNameLength))
		}
		if runeLen(field.Value) > MaxFieldValueLength {
			return errorwrapper.NewValidationError("field_value", field.Value, fmt.Sprintf("field %d value cannot exceed %d characters", i, MaxFieldValueLength))
		}
	}

	if embed.Footer != nil && runeLen(embed.Footer.Text) > MaxFooterTextLength {
		return errorwrapper.NewValidationError("footer_text", embed.Footer.Text, fmt.Sprintf("footer text cannot exceed %d characters", MaxFooterTextLength))
	}

	if total := embedLength(embed); total > MaxEmbedTotalLength {
		return errorwrapper.NewValidationError("embed", total, fmt.Sprintf("embed text cannot exceed %d characters in total", MaxEmbedTotalLength))
	}

	return nil
}
