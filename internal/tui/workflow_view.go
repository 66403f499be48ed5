package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/draftdesk/internal/workflow"
)

var (
	labelStyleReady   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	labelStyleBlocked = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	labelStyleRunning = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	labelStyleGate    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true)
	labelStyleSkipped = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999"))
	labelStyleDefault = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC"))
	detailTextStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
	cursorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
)

// stepView is one screen of the creation flow.
type stepView interface {
	// enter resets view-local state from the store when the step becomes
	// current.
	enter() tea.Cmd
	update(msg tea.Msg) tea.Cmd
	view() string
	help() string
	resize(width, height int)
}

// pendingFlusher is implemented by views that debounce edits into the store.
type pendingFlusher interface {
	flush()
}

// renderStepper draws the four steps with their state.
func (a *App) renderStepper(width int) string {
	sess := a.store.Snapshot()
	parts := make([]string, 0, len(workflow.Steps))
	for _, step := range workflow.Steps {
		label := fmt.Sprintf("%d %s", int(step)+1, step.FriendlyName())
		parts = append(parts, stepLabelStyle(sess, step).Render(label))
	}
	line := strings.Join(parts, labelStyleSkipped.Render(" → "))
	return lipgloss.NewStyle().Width(max(20, width)).Render(line)
}

func stepLabelStyle(sess workflow.Session, step workflow.Step) lipgloss.Style {
	switch {
	case step == sess.CurrentStep && step == workflow.StepResult && sess.Generation.Active:
		return labelStyleRunning.Underline(true)
	case step == sess.CurrentStep:
		if ok, _ := workflow.Guard(sess, step); ok || step == workflow.StepResult {
			return labelStyleGate.Underline(true)
		}
		return labelStyleBlocked.Underline(true)
	case sess.CompletedSteps.Has(step):
		return labelStyleReady
	case step > sess.CurrentStep:
		return labelStyleSkipped
	default:
		return labelStyleDefault
	}
}

// enterStep prepares the view of step and clears stale status.
func (a *App) enterStep(step workflow.Step) tea.Cmd {
	switch step {
	case workflow.StepBaseText:
		return a.baseTextView.enter()
	case workflow.StepConfigure:
		return a.configureView.enter()
	case workflow.StepResult:
		return a.resultView.enter()
	default:
		return a.sourceView.enter()
	}
}

func (a *App) flushPending() {
	for _, view := range a.views() {
		if f, ok := view.(pendingFlusher); ok {
			f.flush()
		}
	}
}

// advance leaves the current step through its guard. Leaving Configure
// starts a generation, which the result view drives.
func (a *App) advance() tea.Cmd {
	a.flushPending()
	tr, err := a.nav.Advance()
	if err != nil {
		a.reject(err)
		return nil
	}
	a.rejection = nil
	a.setStatus(fmt.Sprintf("%s → %s", tr.From.FriendlyName(), tr.To.FriendlyName()))
	cmd := a.enterStep(tr.To)
	if tr.Ticket.Valid() {
		return tea.Batch(cmd, a.resultView.start(tr.Ticket))
	}
	return cmd
}

func (a *App) back() tea.Cmd {
	a.flushPending()
	tr, ok := a.nav.Back()
	if !ok {
		a.setStatus("Already at the first step")
		return nil
	}
	a.rejection = nil
	a.setStatus(fmt.Sprintf("Back to %s", tr.To.FriendlyName()))
	return a.enterStep(tr.To)
}

// goTo jumps straight to step; forward jumps are refused by the navigator.
func (a *App) goTo(step workflow.Step) tea.Cmd {
	a.flushPending()
	tr, err := a.nav.GoTo(step)
	if err != nil {
		a.reject(err)
		return nil
	}
	a.rejection = nil
	if tr.From == tr.To {
		return nil
	}
	cmd := a.enterStep(tr.To)
	if tr.Ticket.Valid() {
		return tea.Batch(cmd, a.resultView.start(tr.Ticket))
	}
	return cmd
}

func (a *App) reset() tea.Cmd {
	for _, view := range a.views() {
		if f, ok := view.(interface{ discard() }); ok {
			f.discard()
		}
	}
	a.store.ResetSession()
	a.rejection = nil
	a.setStatus("Started a new session")
	return a.enterStep(workflow.StepSource)
}

// reject surfaces a refused transition inline.
func (a *App) reject(err error) {
	if rej, ok := rejectionFrom(err); ok {
		a.rejection = &rej
		a.logWarn("Blocked (%s): %s", rej.Code, rej.Detail)
		return
	}
	a.setStatus(fmt.Sprintf("Navigation failed: %v", err))
	a.logError("Navigation failed: %v", err)
}

func (a *App) setStatus(message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	a.statusMsg = message
	a.logProgress(message)
}

// renderCursorList draws rows with a cursor marker and optional checkboxes.
func renderCursorList(rows []string, cursor int, checked func(int) (bool, bool)) string {
	if len(rows) == 0 {
		return labelStyleSkipped.Render("(nothing to show)")
	}
	lines := make([]string, len(rows))
	for i, row := range rows {
		marker := "  "
		if i == cursor {
			marker = cursorStyle.Render("› ")
		}
		if checked != nil {
			if on, show := checked(i); show {
				box := "[ ] "
				if on {
					box = labelStyleReady.Render("[x] ")
				}
				row = box + row
			}
		}
		lines[i] = marker + row
	}
	return strings.Join(lines, "\n")
}

func clampCursor(cursor, length int) int {
	if length == 0 || cursor < 0 {
		return 0
	}
	if cursor >= length {
		return length - 1
	}
	return cursor
}

func truncate(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if limit <= 1 || len(runes) <= limit {
		return text
	}
	return string(runes[:limit-1]) + "…"
}
