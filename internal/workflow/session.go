package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kingrea/draftdesk/internal/content"
)

// EditMode selects which base-text representation is active.
type EditMode string

const (
	EditModeBlocks   EditMode = "blocks"
	EditModeFullText EditMode = "fulltext"
)

// ParseEditMode validates a mode name.
func ParseEditMode(value string) (EditMode, error) {
	switch mode := EditMode(strings.ToLower(strings.TrimSpace(value))); mode {
	case EditModeBlocks, EditModeFullText:
		return mode, nil
	}
	return "", fmt.Errorf("workflow: unknown edit mode %q", value)
}

// ExtractionStatus records whether extraction has run and what it produced.
type ExtractionStatus string

const (
	ExtractionPending ExtractionStatus = "pending"
	ExtractionReady   ExtractionStatus = "ready"
	ExtractionEmpty   ExtractionStatus = "empty"
)

// ExtractionState is the session's view of the last extraction.
type ExtractionState struct {
	Status ExtractionStatus  `json:"status"`
	Title  string            `json:"title,omitempty"`
	Reason string            `json:"reason,omitempty"`
	Meta   map[string]string `json:"meta,omitempty"`
}

// BaseText holds both base-text representations. Only the one named by
// EditMode feeds assembly.
type BaseText struct {
	Blocks     []content.Block   `json:"blocks,omitempty"`
	FullText   string            `json:"full_text,omitempty"`
	EditMode   EditMode          `json:"edit_mode"`
	Selected   content.Selection `json:"selected"`
	Extraction ExtractionState   `json:"extraction"`
	// SkipCuration is the explicit choice to continue a trending-topic
	// source without picking articles.
	SkipCuration bool `json:"skip_curation,omitempty"`
}

// Configuration is the optional editorial brief for generation.
type Configuration struct {
	PublicationDate   time.Time       `json:"publication_date,omitempty"`
	LeadGuidance      string          `json:"lead_guidance,omitempty"`
	Quotes            []content.Quote `json:"quotes,omitempty"`
	AdditionalContext string          `json:"additional_context,omitempty"`
	CreditRequired    bool            `json:"credit_required,omitempty"`
	CreditSource      string          `json:"credit_source,omitempty"`
	Persona           string          `json:"persona,omitempty"`
	Tone              string          `json:"tone,omitempty"`
	AIInstructions    string          `json:"ai_instructions,omitempty"`
}

// ConfigPatch shallow-merges into Configuration: nil fields are left alone.
// Quotes have their own actions.
type ConfigPatch struct {
	PublicationDate   *time.Time
	LeadGuidance      *string
	AdditionalContext *string
	CreditRequired    *bool
	CreditSource      *string
	Persona           *string
	Tone              *string
	AIInstructions    *string
}

// Empty reports whether the patch sets nothing.
func (p ConfigPatch) Empty() bool {
	return p.PublicationDate == nil && p.LeadGuidance == nil && p.AdditionalContext == nil &&
		p.CreditRequired == nil && p.CreditSource == nil && p.Persona == nil &&
		p.Tone == nil && p.AIInstructions == nil
}

func (p ConfigPatch) apply(cfg Configuration) Configuration {
	if p.PublicationDate != nil {
		cfg.PublicationDate = *p.PublicationDate
	}
	if p.LeadGuidance != nil {
		cfg.LeadGuidance = *p.LeadGuidance
	}
	if p.AdditionalContext != nil {
		cfg.AdditionalContext = *p.AdditionalContext
	}
	if p.CreditRequired != nil {
		cfg.CreditRequired = *p.CreditRequired
	}
	if p.CreditSource != nil {
		cfg.CreditSource = *p.CreditSource
	}
	if p.Persona != nil {
		cfg.Persona = *p.Persona
	}
	if p.Tone != nil {
		cfg.Tone = *p.Tone
	}
	if p.AIInstructions != nil {
		cfg.AIInstructions = *p.AIInstructions
	}
	return cfg
}

// GenerationResult is the draft produced for the session. Regenerating
// overwrites it entirely.
type GenerationResult struct {
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	HTML        string    `json:"html,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Generation is the in-flight view of the mocked generation.
type Generation struct {
	Active   bool `json:"active"`
	Progress int  `json:"progress"`
}

// Session is the root aggregate of one creation flow.
type Session struct {
	ID             string            `json:"id"`
	Source         content.Source    `json:"source"`
	BaseText       BaseText          `json:"base_text"`
	Configuration  Configuration     `json:"configuration"`
	Materials      content.Materials `json:"materials"`
	Result         *GenerationResult `json:"result,omitempty"`
	CurrentStep    Step              `json:"current_step"`
	CompletedSteps StepSet           `json:"completed_steps"`
	Generation     Generation        `json:"generation"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// NewSession returns the pristine state every flow starts from.
func NewSession() Session {
	return Session{
		ID:       uuid.NewString(),
		Source:   content.NoSource(),
		BaseText: newBaseText(),
	}
}

func newBaseText() BaseText {
	return BaseText{
		EditMode:   EditModeBlocks,
		Extraction: ExtractionState{Status: ExtractionPending},
	}
}

// Clone deep-copies the session. Source payloads are never mutated after
// construction and are shared.
func (s Session) Clone() Session {
	out := s
	out.BaseText = s.BaseText.clone()
	out.Configuration.Quotes = cloneQuotes(s.Configuration.Quotes)
	out.Materials = s.Materials.Clone()
	if s.Result != nil {
		result := *s.Result
		out.Result = &result
	}
	return out
}

func (b BaseText) clone() BaseText {
	out := b
	out.Blocks = content.CloneBlocks(b.Blocks)
	out.Selected = b.Selected.Retain(content.BlockIDs(b.Blocks))
	out.Extraction.Meta = cloneMeta(b.Extraction.Meta)
	return out
}

func cloneQuotes(values []content.Quote) []content.Quote {
	if len(values) == 0 {
		return nil
	}
	out := make([]content.Quote, len(values))
	copy(out, values)
	return out
}

func cloneMeta(values map[string]string) map[string]string {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}

// SelectedBlocks returns the selected blocks in block order.
func (s Session) SelectedBlocks() []content.Block {
	return content.SelectedBlocks(s.BaseText.Blocks, s.BaseText.Selected)
}

// AssembleBaseText flattens the active representation. In fulltext mode the
// full text is returned verbatim; otherwise the selected blocks' current
// content is joined by blank lines in block order. A trending topic that
// skipped curation has no base text; its selection is kept so curating again
// restores it.
func (s Session) AssembleBaseText() string {
	if s.curationSkipped() {
		return ""
	}
	if s.BaseText.EditMode == EditModeFullText {
		return s.BaseText.FullText
	}
	selected := s.SelectedBlocks()
	parts := make([]string, 0, len(selected))
	for _, block := range selected {
		parts = append(parts, block.Content)
	}
	return strings.Join(parts, "\n\n")
}

func (s Session) curationSkipped() bool {
	return s.Source.Kind == content.KindTrendingTopic && s.BaseText.SkipCuration
}

// TotalWordCount counts the words of the assembled base text.
func (s Session) TotalWordCount() int {
	return content.CountWords(s.AssembleBaseText())
}

// TotalMaterialsCount sums the three material lists.
func (s Session) TotalMaterialsCount() int {
	return s.Materials.Total()
}

// CanAdvance reports whether step has satisfied its exit guard.
func (s Session) CanAdvance(step Step) bool {
	return s.CompletedSteps.Has(step)
}

// Topic names the subject of the session for titles and logs.
func (s Session) Topic() string {
	if p, ok := s.Source.Payload.(content.TrendingTopicPayload); ok && p.Topic.Name != "" {
		return p.Topic.Name
	}
	return s.BaseText.Extraction.Title
}
