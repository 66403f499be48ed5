package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/draftdesk/internal/content"
	"github.com/kingrea/draftdesk/internal/debounce"
	"github.com/kingrea/draftdesk/internal/workflow"
)

const publicationDateLayout = "2006-01-02"

type formField int

const (
	fieldDate formField = iota
	fieldPersona
	fieldTone
	fieldLead
	fieldContext
	fieldCredit
	fieldInstructions
	fieldQuote
	fieldMaterial
	fieldCount
)

var fieldLabels = [fieldCount]string{
	fieldDate:         "Publication date",
	fieldPersona:      "Persona",
	fieldTone:         "Tone",
	fieldLead:         "Lead guidance",
	fieldContext:      "Additional context",
	fieldCredit:       "Credit source",
	fieldInstructions: "AI instructions",
	fieldQuote:        "Add quote",
	fieldMaterial:     "Add material",
}

type configCommitMsg struct {
	ticket debounce.Ticket
}

type materialExtractedMsg struct {
	category content.MaterialCategory
	id       string
}

type configureView struct {
	app         *App
	inputs      [fieldCount]textinput.Model
	focus       formField
	categoryIdx int
	dateErr     string
	commits     *debounce.Debouncer[workflow.ConfigPatch]
	seeded      string
}

func newConfigureView(app *App) *configureView {
	v := &configureView{
		app:     app,
		commits: debounce.New[workflow.ConfigPatch](app.config.DebounceWindow()),
	}
	placeholders := [fieldCount]string{
		fieldDate:         publicationDateLayout,
		fieldPersona:      "who is writing",
		fieldTone:         "neutral, formal, conversational…",
		fieldLead:         "what the opening should stress",
		fieldContext:      "background the draft should know",
		fieldCredit:       "agency or outlet to credit",
		fieldInstructions: "anything else for the generator",
		fieldQuote:        "enter adds the quote",
		fieldMaterial:     "enter adds the link, video or document",
	}
	for i := range v.inputs {
		v.inputs[i] = newTextInput(placeholders[i], 500)
	}
	v.inputs[fieldDate].CharLimit = len(publicationDateLayout)
	return v
}

func (v *configureView) category() content.MaterialCategory {
	return content.MaterialCategories[v.categoryIdx%len(content.MaterialCategories)]
}

func (v *configureView) enter() tea.Cmd {
	sess := v.app.store.Snapshot()
	v.seedDefaults(sess)
	cfg := v.app.store.Snapshot().Configuration
	values := map[formField]string{
		fieldPersona:      cfg.Persona,
		fieldTone:         cfg.Tone,
		fieldLead:         cfg.LeadGuidance,
		fieldContext:      cfg.AdditionalContext,
		fieldCredit:       cfg.CreditSource,
		fieldInstructions: cfg.AIInstructions,
	}
	if !cfg.PublicationDate.IsZero() {
		values[fieldDate] = cfg.PublicationDate.Format(publicationDateLayout)
	}
	for field := range v.inputs {
		v.inputs[field].SetValue(values[formField(field)])
	}
	v.dateErr = ""
	return v.setFocus(v.focus)
}

// seedDefaults copies the editor defaults from the project config into a
// session's brief, once per session.
func (v *configureView) seedDefaults(sess workflow.Session) {
	if v.seeded == sess.ID {
		return
	}
	v.seeded = sess.ID
	editor := v.app.config.Editor()
	var patch workflow.ConfigPatch
	if sess.Configuration.Persona == "" && editor.Persona != "" {
		patch.Persona = &editor.Persona
	}
	if sess.Configuration.Tone == "" && editor.Tone != "" {
		patch.Tone = &editor.Tone
	}
	if sess.Configuration.CreditSource == "" && editor.CreditSource != "" {
		patch.CreditSource = &editor.CreditSource
	}
	if !patch.Empty() {
		v.app.store.SetConfiguration(patch)
	}
}

func (v *configureView) flush() {
	if !v.commits.Pending() {
		return
	}
	v.commits.Cancel()
	v.app.store.SetConfiguration(v.patch())
}

func (v *configureView) discard() {
	v.commits.Cancel()
	v.seeded = ""
}

func (v *configureView) resize(width, _ int) {
	for i := range v.inputs {
		v.inputs[i].Width = max(10, width-24)
	}
}

func (v *configureView) setFocus(field formField) tea.Cmd {
	if field < 0 {
		field = fieldCount - 1
	}
	if field >= fieldCount {
		field = 0
	}
	v.focus = field
	for i := range v.inputs {
		v.inputs[i].Blur()
	}
	return v.inputs[field].Focus()
}

// patch reads every brief field from the form. An unparseable date is left
// out and reported inline.
func (v *configureView) patch() workflow.ConfigPatch {
	value := func(field formField) *string {
		s := strings.TrimSpace(v.inputs[field].Value())
		return &s
	}
	patch := workflow.ConfigPatch{
		Persona:           value(fieldPersona),
		Tone:              value(fieldTone),
		LeadGuidance:      value(fieldLead),
		AdditionalContext: value(fieldContext),
		CreditSource:      value(fieldCredit),
		AIInstructions:    value(fieldInstructions),
	}
	v.dateErr = ""
	raw := strings.TrimSpace(v.inputs[fieldDate].Value())
	if raw == "" {
		patch.PublicationDate = &time.Time{}
	} else if date, err := time.Parse(publicationDateLayout, raw); err == nil {
		patch.PublicationDate = &date
	} else if len(raw) == len(publicationDateLayout) {
		v.dateErr = fmt.Sprintf("use %s", publicationDateLayout)
	}
	return patch
}

func (v *configureView) update(msg tea.Msg) tea.Cmd {
	switch m := msg.(type) {
	case configCommitMsg:
		if patch, ok := v.commits.Commit(m.ticket); ok {
			v.app.store.SetConfiguration(patch)
		}
		return nil
	case materialExtractedMsg:
		// The material may have been removed or the session reset meanwhile.
		if err := v.app.store.MarkMaterialExtracted(m.category, m.id); err != nil {
			v.app.logger.WithError(err).WithField("category", m.category).Debug("late material extraction dropped")
		}
		return nil
	case tea.KeyMsg:
		return v.handleKey(m)
	}
	return nil
}

func (v *configureView) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab", "down":
		return v.setFocus(v.focus + 1)
	case "shift+tab", "up":
		return v.setFocus(v.focus - 1)
	case "ctrl+t":
		credit := !v.app.store.Snapshot().Configuration.CreditRequired
		v.app.store.SetConfiguration(workflow.ConfigPatch{CreditRequired: &credit})
		return nil
	case "ctrl+o":
		v.categoryIdx++
		return nil
	case "ctrl+x":
		v.removeLast()
		return nil
	case "enter":
		switch v.focus {
		case fieldQuote:
			return v.addQuote()
		case fieldMaterial:
			return v.addMaterial()
		}
		v.flush()
		return v.setFocus(v.focus + 1)
	}
	before := v.inputs[v.focus].Value()
	var cmd tea.Cmd
	v.inputs[v.focus], cmd = v.inputs[v.focus].Update(msg)
	if v.focus >= fieldQuote || v.inputs[v.focus].Value() == before {
		return cmd
	}
	ticket := v.commits.Schedule(v.patch())
	commit := tea.Tick(v.commits.Window(), func(time.Time) tea.Msg {
		return configCommitMsg{ticket: ticket}
	})
	return tea.Batch(cmd, commit)
}

func (v *configureView) addQuote() tea.Cmd {
	quote, err := v.app.store.AddQuote(v.inputs[fieldQuote].Value())
	if err != nil {
		v.app.setStatus(err.Error())
		return nil
	}
	v.inputs[fieldQuote].SetValue("")
	v.app.logInfo("Quote added: %s", truncate(quote.Text, 48))
	return nil
}

func (v *configureView) addMaterial() tea.Cmd {
	category := v.category()
	material, err := v.app.store.AddMaterial(category, v.inputs[fieldMaterial].Value())
	if err != nil {
		v.app.setStatus(err.Error())
		return nil
	}
	v.inputs[fieldMaterial].SetValue("")
	v.app.logInfo("Material added to %s: %s", category, material.Reference)
	return tea.Tick(v.app.config.GenerationTick(), func(time.Time) tea.Msg {
		return materialExtractedMsg{category: category, id: material.ID}
	})
}

func (v *configureView) removeLast() {
	sess := v.app.store.Snapshot()
	switch v.focus {
	case fieldQuote:
		if n := len(sess.Configuration.Quotes); n > 0 {
			if err := v.app.store.RemoveQuote(n - 1); err == nil {
				v.app.setStatus("Last quote removed")
			}
		}
	case fieldMaterial:
		category := v.category()
		if n := len(sess.Materials.List(category)); n > 0 {
			if err := v.app.store.RemoveMaterial(category, n-1); err == nil {
				v.app.setStatus(fmt.Sprintf("Last %s entry removed", category))
			}
		}
	}
}

func (v *configureView) view() string {
	sess := v.app.store.Snapshot()
	cfg := sess.Configuration
	lines := []string{"Configure the draft", ""}
	for i := range v.inputs {
		field := formField(i)
		label := fieldLabels[field]
		if field == fieldMaterial {
			label = fmt.Sprintf("Add %s", v.category())
		}
		marker := "  "
		if field == v.focus {
			marker = cursorStyle.Render("› ")
		}
		lines = append(lines, fmt.Sprintf("%s%-20s %s", marker, label, v.inputs[i].View()))
		if field == fieldDate && v.dateErr != "" {
			lines = append(lines, labelStyleBlocked.Render("    "+v.dateErr))
		}
	}
	credit := "[ ]"
	if cfg.CreditRequired {
		credit = labelStyleReady.Render("[x]")
	}
	lines = append(lines, "", fmt.Sprintf("%s credit required", credit))

	if len(cfg.Quotes) > 0 {
		lines = append(lines, "", fmt.Sprintf("Quotes (%d)", len(cfg.Quotes)))
		for _, q := range cfg.Quotes {
			lines = append(lines, detailTextStyle.Render("  “"+truncate(q.Text, 60)+"”"))
		}
	}
	if sess.TotalMaterialsCount() > 0 {
		lines = append(lines, "", fmt.Sprintf("Materials (%d)", sess.TotalMaterialsCount()))
		for _, category := range content.MaterialCategories {
			for _, m := range sess.Materials.List(category) {
				status := labelStyleGate.Render(string(m.Status))
				if m.Status == content.MaterialExtracted {
					status = labelStyleReady.Render(string(m.Status))
				}
				lines = append(lines, fmt.Sprintf("  %s · %s · %s", category, truncate(m.Reference, 48), status))
			}
		}
	}
	return strings.Join(lines, "\n")
}

func (v *configureView) help() string {
	return "tab/↑/↓=field  enter=add/next  ctrl+t=credit  ctrl+o=material type  ctrl+x=remove last  ctrl+n=generate"
}
