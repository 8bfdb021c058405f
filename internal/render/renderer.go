// Package render turns a status report into the body of a status message.
// Output depends only on the report and the configuration, so identical
// inputs always hash identically.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/aleister1102/sitewatch/internal/config"
	"github.com/aleister1102/sitewatch/internal/models"
	"github.com/aleister1102/sitewatch/internal/notifier/discord"
)

// Renderer formats status messages in one output mode.
type Renderer struct {
	mode         string
	embedMessage *string
	inline       bool
	timeFormat   string
	location     *time.Location
	styles       map[models.Status]Style
}

// NewRenderer builds a renderer from render_config.
func NewRenderer(cfg config.RenderConfig) (*Renderer, error) {
	mode, ok := config.NormalizeOutputMode(cfg.OutputMode)
	if !ok {
		return nil, fmt.Errorf("unknown output mode '%s'", cfg.OutputMode)
	}

	zone := cfg.TimeZone
	if zone == "" {
		zone = config.DefaultTimeZone
	}
	location, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone '%s': %w", zone, err)
	}

	timeFormat := cfg.TimeFormat
	if timeFormat == "" {
		timeFormat = config.DefaultTimeFormat
	}

	var embedMessage *string
	if cfg.EmbedMessage != nil {
		msg := *cfg.EmbedMessage
		embedMessage = &msg
	}

	return &Renderer{
		mode:         mode,
		embedMessage: embedMessage,
		inline:       cfg.InlineFields,
		timeFormat:   timeFormat,
		location:     location,
		styles:       mergeStyles(cfg.Styles),
	}, nil
}

// Mode returns the output mode in use.
func (r *Renderer) Mode() string {
	return r.mode
}

// Render draws the message for one site.
func (r *Renderer) Render(report models.StatusReport) (models.RenderedContent, error) {
	switch r.mode {
	case config.OutputModeRaw:
		return models.RenderedContent{Content: r.text(report, false)}, nil
	case config.OutputModeMarkdown:
		return models.RenderedContent{Content: r.text(report, true)}, nil
	default:
		return r.embed(report)
	}
}

func (r *Renderer) headline(report models.StatusReport, bold bool) string {
	style := r.styleFor(report.Status)
	phrase := style.Phrase
	if bold {
		phrase = "**" + phrase + "**"
	}
	return fmt.Sprintf("%s Website '(%s)' %s %s", style.Emoji, CleanURL(report.Site.URL), style.Verb, phrase)
}

func (r *Renderer) formatSince(since time.Time) string {
	if since.IsZero() {
		return "never"
	}
	return since.In(r.location).Format(r.timeFormat)
}

func (r *Renderer) text(report models.StatusReport, markdown bool) string {
	label := func(name string) string {
		if markdown {
			return "**" + name + "**"
		}
		return name
	}

	lines := []string{
		r.headline(report, markdown),
		fmt.Sprintf("%s: %s", label("Name"), report.Site.Name),
		fmt.Sprintf("%s: %s", label("Full url"), report.Site.URL),
		fmt.Sprintf("%s: %s", label("Last updated"), r.formatSince(report.Since)),
	}
	return discord.Truncate(strings.Join(lines, "\n"), discord.MaxContentLength)
}

func (r *Renderer) embed(report models.StatusReport) (models.RenderedContent, error) {
	style := r.styleFor(report.Status)
	description := r.headline(report, false)

	embed, err := discord.NewDiscordEmbedBuilder().
		WithTitle(report.Site.Name).
		WithDescription(description).
		WithColor(style.Color).
		WithTimestamp(report.Since).
		AddField(fmt.Sprintf("%s '(%s)'", style.Emoji, CleanURL(report.Site.URL)), style.Phrase, r.inline).
		AddField("Full url", report.Site.URL, r.inline).
		AddField("Last updated", r.formatSince(report.Since), r.inline).
		Build()
	if err != nil {
		return models.RenderedContent{}, fmt.Errorf("failed to build embed for '%s': %w", report.Site.Name, err)
	}

	content := models.RenderedContent{Embed: &embed}
	if r.embedMessage != nil {
		if *r.embedMessage == "" {
			content.Content = discord.Truncate(embed.Description, discord.MaxContentLength)
		} else {
			content.Content = discord.Truncate(*r.embedMessage, discord.MaxContentLength)
		}
	}
	return content, nil
}
