package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/draftdesk/internal/content"
	"github.com/kingrea/draftdesk/internal/debounce"
	"github.com/kingrea/draftdesk/internal/workflow"
)

type fullTextCommitMsg struct {
	ticket debounce.Ticket
}

type baseTextView struct {
	app      *App
	cursor   int
	editing  string
	editor   textarea.Model
	fullText textarea.Model
	drafts   *debounce.Debouncer[string]
	width    int
}

func newBaseTextView(app *App) *baseTextView {
	return &baseTextView{
		app:      app,
		editor:   newTextArea("Block text", 6),
		fullText: newTextArea("Write or paste the base text", 12),
		drafts:   debounce.New[string](app.config.DebounceWindow()),
		width:    72,
	}
}

func newTextArea(placeholder string, height int) textarea.Model {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(height)
	ta.SetWidth(72)
	ta.Cursor.SetMode(cursor.CursorStatic)
	return ta
}

func (v *baseTextView) enter() tea.Cmd {
	sess := v.app.store.Snapshot()
	v.cursor = clampCursor(v.cursor, len(sess.BaseText.Blocks))
	v.editing = ""
	v.editor.Blur()
	v.fullText.SetValue(sess.BaseText.FullText)
	if sess.BaseText.EditMode == workflow.EditModeFullText {
		return v.fullText.Focus()
	}
	v.fullText.Blur()
	return nil
}

// flush writes a pending full-text edit straight to the store.
func (v *baseTextView) flush() {
	if !v.drafts.Pending() {
		return
	}
	v.drafts.Cancel()
	v.app.store.SetFullText(v.fullText.Value())
}

func (v *baseTextView) discard() {
	v.drafts.Cancel()
	v.editing = ""
	v.cursor = 0
}

func (v *baseTextView) resize(width, height int) {
	v.width = width
	v.editor.SetWidth(width)
	v.fullText.SetWidth(width)
	v.fullText.SetHeight(max(4, height))
}

func (v *baseTextView) update(msg tea.Msg) tea.Cmd {
	switch m := msg.(type) {
	case fullTextCommitMsg:
		if text, ok := v.drafts.Commit(m.ticket); ok {
			v.app.store.SetFullText(text)
		}
		return nil
	case tea.KeyMsg:
		sess := v.app.store.Snapshot()
		if m.String() == "ctrl+t" {
			return v.toggleMode(sess)
		}
		if v.editing != "" {
			return v.handleEditorKey(m)
		}
		if sess.BaseText.EditMode == workflow.EditModeFullText {
			return v.handleFullTextKey(m)
		}
		return v.handleBlockKey(sess, m)
	}
	return nil
}

func (v *baseTextView) toggleMode(sess workflow.Session) tea.Cmd {
	v.editing = ""
	v.editor.Blur()
	next := workflow.EditModeFullText
	if sess.BaseText.EditMode == workflow.EditModeFullText {
		v.flush()
		next = workflow.EditModeBlocks
	}
	if next == workflow.EditModeFullText && strings.TrimSpace(sess.BaseText.FullText) == "" {
		if seed := sess.AssembleBaseText(); seed != "" {
			v.app.store.SetFullText(seed)
		}
	}
	if err := v.app.store.SetEditMode(next); err != nil {
		v.app.setStatus(err.Error())
		return nil
	}
	v.app.logInfo("Base text mode: %s", next)
	if next == workflow.EditModeFullText {
		v.fullText.SetValue(v.app.store.Snapshot().BaseText.FullText)
		return v.fullText.Focus()
	}
	v.fullText.Blur()
	return nil
}

func (v *baseTextView) handleBlockKey(sess workflow.Session, msg tea.KeyMsg) tea.Cmd {
	blocks := sess.BaseText.Blocks
	switch msg.String() {
	case "up", "k":
		v.cursor = clampCursor(v.cursor-1, len(blocks))
	case "down", "j":
		v.cursor = clampCursor(v.cursor+1, len(blocks))
	case " ":
		if len(blocks) > 0 {
			v.app.store.ToggleBlockSelected(blocks[v.cursor].ID)
		}
	case "a":
		if v.app.store.SelectAllBlocks() {
			v.app.setStatus(fmt.Sprintf("All %d block(s) selected", len(blocks)))
		}
	case "x":
		if v.app.store.ClearSelection() {
			v.app.setStatus("Selection cleared")
		}
	case "e", "enter":
		if len(blocks) == 0 {
			return nil
		}
		block := blocks[v.cursor]
		v.editing = block.ID
		v.editor.SetValue(block.Content)
		return v.editor.Focus()
	case "s":
		if sess.Source.Kind != content.KindTrendingTopic {
			return nil
		}
		skip := !sess.BaseText.SkipCuration
		if err := v.app.store.SetSkipCuration(skip); err != nil {
			v.app.setStatus(err.Error())
			return nil
		}
		if skip {
			v.app.setStatus("Continuing without curated articles")
		} else {
			v.app.setStatus("Curating articles again")
		}
	}
	return nil
}

func (v *baseTextView) handleEditorKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		v.editing = ""
		v.editor.Blur()
		v.app.setStatus("Edit discarded")
		return nil
	case "ctrl+d":
		id := v.editing
		v.editing = ""
		v.editor.Blur()
		if v.app.store.UpdateBlockContent(id, v.editor.Value()) {
			v.app.setStatus(fmt.Sprintf("Block updated · %d word(s) selected", v.app.store.TotalWordCount()))
		}
		return nil
	}
	var cmd tea.Cmd
	v.editor, cmd = v.editor.Update(msg)
	return cmd
}

func (v *baseTextView) handleFullTextKey(msg tea.KeyMsg) tea.Cmd {
	before := v.fullText.Value()
	var cmd tea.Cmd
	v.fullText, cmd = v.fullText.Update(msg)
	value := v.fullText.Value()
	if value == before {
		return cmd
	}
	ticket := v.drafts.Schedule(value)
	commit := tea.Tick(v.drafts.Window(), func(time.Time) tea.Msg {
		return fullTextCommitMsg{ticket: ticket}
	})
	return tea.Batch(cmd, commit)
}

func (v *baseTextView) view() string {
	sess := v.app.store.Snapshot()
	bt := sess.BaseText
	title := bt.Extraction.Title
	if title == "" {
		title = sess.Source.Kind.FriendlyName()
	}
	lines := []string{fmt.Sprintf("Base text · %s", title)}

	switch {
	case sess.Source.Kind == content.KindTrendingTopic && bt.SkipCuration:
		lines = append(lines, "",
			labelStyleGate.Render("Continuing without curated articles."),
			detailTextStyle.Render("The draft will be written from the topic alone. Press s to curate again."))
		return strings.Join(lines, "\n")
	case bt.EditMode == workflow.EditModeFullText:
		lines = append(lines,
			fmt.Sprintf("Full text · %d word(s)", content.CountWords(v.fullText.Value())),
			"",
			v.fullText.View())
		return strings.Join(lines, "\n")
	case bt.Extraction.Status == workflow.ExtractionEmpty:
		reason := bt.Extraction.Reason
		if reason == "" {
			reason = "the source produced no text"
		}
		lines = append(lines, "",
			labelStyleBlocked.Render("Nothing to curate: "+reason),
			detailTextStyle.Render("ctrl+t writes the base text by hand · ctrl+b picks another source"))
		if sess.Source.Kind == content.KindTrendingTopic {
			lines = append(lines, detailTextStyle.Render("s continues without curated articles"))
		}
		return strings.Join(lines, "\n")
	}

	lines = append(lines,
		fmt.Sprintf("%d of %d block(s) selected · %d word(s)", bt.Selected.Count(), len(bt.Blocks), sess.TotalWordCount()),
		"")
	textWidth := max(20, v.width-24)
	rows := make([]string, len(bt.Blocks))
	for i, block := range bt.Blocks {
		rows[i] = fmt.Sprintf("%s %s", detailTextStyle.Render(fmt.Sprintf("%-12s", truncate(block.Label(), 12))), truncate(block.Content, textWidth))
	}
	lines = append(lines, renderCursorList(rows, v.cursor, func(i int) (bool, bool) {
		return bt.Selected.Has(bt.Blocks[i].ID), true
	}))
	if v.editing != "" {
		lines = append(lines, "", labelStyleRunning.Render("Editing block"), v.editor.View())
	}
	return strings.Join(lines, "\n")
}

func (v *baseTextView) help() string {
	sess := v.app.store.Snapshot()
	switch {
	case v.editing != "":
		return "ctrl+d=save block  esc=discard"
	case sess.BaseText.EditMode == workflow.EditModeFullText:
		return "type=edit  ctrl+t=back to blocks"
	}
	help := "space=toggle  a=all  x=none  e=edit  ctrl+t=full text"
	if sess.Source.Kind == content.KindTrendingTopic {
		help += "  s=skip curation"
	}
	return help
}
