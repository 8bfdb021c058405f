package render

import (
	"github.com/aleister1102/sitewatch/internal/config"
	"github.com/aleister1102/sitewatch/internal/models"
)

// Style is how one status is drawn.
type Style struct {
	Emoji  string
	Color  int
	Verb   string
	Phrase string
}

// DefaultStyles is the built-in look of each status.
func DefaultStyles() map[models.Status]Style {
	return map[models.Status]Style{
		models.StatusUp:            {Emoji: ":green_circle:", Color: 0x2ECC71, Verb: "is", Phrase: "UP and Operational"},
		models.StatusPartiallyUp:   {Emoji: ":yellow_circle:", Color: 0xF1C40F, Verb: "is", Phrase: "UP but NOT Operational"},
		models.StatusDown:          {Emoji: ":red_circle:", Color: 0xE74C3C, Verb: "is", Phrase: "DOWN"},
		models.StatusUnknownStatus: {Emoji: ":purple_circle:", Color: 0x9B59B6, Verb: "has an", Phrase: "UNHANDLED STATUS '(Unknown Status)'"},
	}
}

// mergeStyles applies the non-empty parts of configured overrides.
// Keys were checked by config validation; unknown ones are ignored here.
func mergeStyles(overrides map[string]config.StatusStyle) map[models.Status]Style {
	styles := DefaultStyles()
	for name, o := range overrides {
		status, ok := models.ParseStatus(name)
		if !ok {
			continue
		}
		s := styles[status]
		if o.Emoji != "" {
			s.Emoji = o.Emoji
		}
		if o.Color != 0 {
			s.Color = o.Color
		}
		if o.Phrase != "" {
			s.Phrase = o.Phrase
		}
		styles[status] = s
	}
	return styles
}

func (r *Renderer) styleFor(status models.Status) Style {
	if s, ok := r.styles[status]; ok {
		return s
	}
	return r.styles[models.StatusUnknownStatus]
}
