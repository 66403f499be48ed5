package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/draftdesk/internal/artifact"
	"github.com/kingrea/draftdesk/internal/content"
	"github.com/kingrea/draftdesk/internal/workflow"
)

// generationTickMsg advances the mocked generation identified by ticket.
type generationTickMsg struct {
	ticket workflow.Ticket
}

type resultView struct {
	app      *App
	bar      progress.Model
	spinner  spinner.Model
	showHTML bool
	offset   int
	height   int
}

func newResultView(app *App) *resultView {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = labelStyleRunning
	return &resultView{
		app:     app,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(48)),
		spinner: s,
		height:  16,
	}
}

func (v *resultView) enter() tea.Cmd {
	v.offset = 0
	sess := v.app.store.Snapshot()
	if !sess.Generation.Active && sess.Result == nil {
		v.app.setStatus("No draft yet · press r to generate")
	}
	return nil
}

func (v *resultView) resize(width, height int) {
	v.bar.Width = max(10, min(64, width-4))
	v.height = max(6, height)
}

// start drives ticket until it completes or is superseded.
func (v *resultView) start(ticket workflow.Ticket) tea.Cmd {
	v.offset = 0
	req := v.app.nav.GenerationRequest()
	v.app.logInfo("Generating draft · %d word(s) of base text, %d quote(s), %d material(s)",
		req.WordCount, len(req.Configuration.Quotes), req.Materials.Total())
	return tea.Batch(v.tick(ticket), v.spinner.Tick)
}

func (v *resultView) tick(ticket workflow.Ticket) tea.Cmd {
	return tea.Tick(v.app.config.GenerationTick(), func(time.Time) tea.Msg {
		return generationTickMsg{ticket: ticket}
	})
}

func (v *resultView) update(msg tea.Msg) tea.Cmd {
	switch m := msg.(type) {
	case generationTickMsg:
		return v.advance(m.ticket)
	case spinner.TickMsg:
		if !v.app.store.Snapshot().Generation.Active {
			return nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(m)
		return cmd
	case tea.KeyMsg:
		return v.handleKey(m)
	}
	return nil
}

// advance reports the next progress value for ticket, or completes it.
// Ticks for a superseded ticket are dropped.
func (v *resultView) advance(ticket workflow.Ticket) tea.Cmd {
	if !v.app.store.Current(ticket) {
		return nil
	}
	sess := v.app.store.Snapshot()
	if next, ok := v.app.simulator.Next(sess.Generation.Progress); ok {
		v.app.store.ReportProgress(ticket, next)
		return v.tick(ticket)
	}
	result, err := v.app.composer.Compose(workflow.RequestFor(sess))
	if err != nil {
		v.app.store.CancelGeneration()
		v.app.setStatus(fmt.Sprintf("Generation failed: %v", err))
		v.app.logError("Generation failed: %v", err)
		return nil
	}
	if v.app.store.CompleteGeneration(ticket, result) {
		v.app.setStatus(fmt.Sprintf("Draft ready: %s", result.Title))
		v.app.logInfo("Draft ready · %s · %d word(s)", result.Title, content.CountWords(result.Content))
	}
	return nil
}

func (v *resultView) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "r":
		ticket, err := v.app.nav.Regenerate()
		if err != nil {
			v.app.reject(err)
			return nil
		}
		v.app.setStatus("Regenerating draft")
		return v.start(ticket)
	case "w":
		v.export()
	case "h":
		v.showHTML = !v.showHTML
		v.offset = 0
	case "up", "k":
		if v.offset > 0 {
			v.offset--
		}
	case "down", "j":
		v.offset++
	}
	return nil
}

// export writes the current draft under the drafts directory.
func (v *resultView) export() {
	sess := v.app.store.Snapshot()
	if sess.Generation.Active {
		v.app.setStatus("Wait for the draft to finish before exporting")
		return
	}
	draft, err := artifact.FromSession(sess)
	if err != nil {
		v.app.setStatus("No draft to export yet")
		return
	}
	path, err := v.app.drafts.Write(draft)
	if err != nil {
		v.app.setStatus(fmt.Sprintf("Export failed: %v", err))
		v.app.logError("Export failed: %v", err)
		return
	}
	v.app.setStatus(fmt.Sprintf("Draft exported to %s", filepath.Base(path)))
	v.app.logInfo("Draft exported · %s", path)
}

func (v *resultView) view() string {
	sess := v.app.store.Snapshot()
	if sess.Generation.Active {
		pct := float64(sess.Generation.Progress) / 100
		return strings.Join([]string{
			fmt.Sprintf("%s Generating draft…", v.spinner.View()),
			"",
			v.bar.ViewAs(pct),
		}, "\n")
	}
	if sess.Result == nil {
		return strings.Join([]string{
			"Result",
			"",
			labelStyleSkipped.Render("No draft has been generated for this session."),
		}, "\n")
	}
	res := sess.Result
	body := res.Content
	format := "markdown"
	if v.showHTML {
		body = res.HTML
		format = "html"
	}
	lines := strings.Split(strings.TrimRight(body, "\n"), "\n")
	v.offset = clampCursor(v.offset, len(lines))
	end := min(len(lines), v.offset+v.height)
	header := []string{
		labelStyleReady.Render(res.Title),
		detailTextStyle.Render(fmt.Sprintf("Generated %s · %d word(s) · %s", res.GeneratedAt.Local().Format("02 Jan 2006 15:04"), content.CountWords(res.Content), format)),
		"",
	}
	return strings.Join(append(header, lines[v.offset:end]...), "\n")
}

func (v *resultView) help() string {
	return "r=regenerate  w=export  h=markdown/html  ↑/↓=scroll  ctrl+b=back  ctrl+r=start over"
}
