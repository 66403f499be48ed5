package generation

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/kingrea/draftdesk/internal/content"
	"github.com/kingrea/draftdesk/internal/workflow"
)

const maxTitleRunes = 80

// Composer turns a generation request into a markdown draft and its HTML
// rendering. It stands in for a language model.
type Composer struct {
	md goldmark.Markdown
}

// NewComposer returns a composer rendering GitHub-flavoured markdown.
func NewComposer() *Composer {
	return &Composer{md: goldmark.New(goldmark.WithExtensions(extension.GFM))}
}

// Compose builds the draft for req. GeneratedAt is stamped by the store.
func (c *Composer) Compose(req workflow.GenerationRequest) (workflow.GenerationResult, error) {
	title := Title(req)
	markdown := c.Markdown(req)
	rendered, err := c.RenderHTML(markdown)
	if err != nil {
		return workflow.GenerationResult{}, err
	}
	return workflow.GenerationResult{Title: title, Content: markdown, HTML: rendered}, nil
}

// Title picks the draft title: the topic, else the opening of the base text.
func Title(req workflow.GenerationRequest) string {
	if topic := strings.TrimSpace(req.Topic); topic != "" {
		return topic
	}
	if paras := paragraphs(req.BaseText); len(paras) > 0 {
		return truncateRunes(paras[0], maxTitleRunes)
	}
	return "Untitled draft"
}

// Markdown lays the draft out: title, byline, lead, body, context, quotes,
// further material and credit.
func (c *Composer) Markdown(req workflow.GenerationRequest) string {
	cfg := req.Configuration
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", Title(req))

	if byline := byline(cfg); byline != "" {
		fmt.Fprintf(&sb, "_%s_\n\n", byline)
	}
	if lead := strings.TrimSpace(cfg.LeadGuidance); lead != "" {
		fmt.Fprintf(&sb, "**%s**\n\n", lead)
	}

	body := paragraphs(req.BaseText)
	if len(body) == 0 {
		subject := strings.TrimSpace(req.Topic)
		if subject == "" {
			subject = "this subject"
		}
		fmt.Fprintf(&sb, "This draft covers %s. No base text was curated, so the body needs reporting before publication.\n\n", subject)
	}
	for _, para := range body {
		sb.WriteString(para)
		sb.WriteString("\n\n")
	}

	if extra := strings.TrimSpace(cfg.AdditionalContext); extra != "" {
		fmt.Fprintf(&sb, "## Context\n\n%s\n\n", extra)
	}
	for _, q := range cfg.Quotes {
		if text := strings.TrimSpace(q.Text); text != "" {
			fmt.Fprintf(&sb, "> %s\n\n", text)
		}
	}
	if req.Materials.Total() > 0 {
		sb.WriteString("## Further material\n\n")
		for _, category := range content.MaterialCategories {
			for _, m := range req.Materials.List(category) {
				fmt.Fprintf(&sb, "- %s: %s\n", category, m.Reference)
			}
		}
		sb.WriteString("\n")
	}
	if cfg.CreditRequired {
		credit := strings.TrimSpace(cfg.CreditSource)
		if credit == "" {
			credit = req.SourceKind.FriendlyName()
		}
		fmt.Fprintf(&sb, "_Source: %s_\n", credit)
	}
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// RenderHTML converts markdown to HTML.
func (c *Composer) RenderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("generation: render html: %w", err)
	}
	return buf.String(), nil
}

func byline(cfg workflow.Configuration) string {
	var parts []string
	if persona := strings.TrimSpace(cfg.Persona); persona != "" {
		parts = append(parts, "By "+persona)
	}
	if tone := strings.TrimSpace(cfg.Tone); tone != "" {
		parts = append(parts, "Tone: "+tone)
	}
	if !cfg.PublicationDate.IsZero() {
		parts = append(parts, cfg.PublicationDate.Format("2 January 2006"))
	}
	return strings.Join(parts, " · ")
}

func paragraphs(text string) []string {
	var out []string
	for _, para := range strings.Split(text, "\n\n") {
		if trimmed := strings.TrimSpace(para); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return strings.TrimSpace(string(runes[:limit-1])) + "…"
}
