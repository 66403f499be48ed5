// internal/tui/app.go
//
// This is the main TUI (Terminal User Interface) for draftdesk.
// It uses bubbletea, which follows The Elm Architecture:
//
// 1. Model: the App, which wraps the workflow store
// 2. Update: folds key presses and timer messages into store actions
// 3. View: renders the current step plus the session summary
//
// The store is the only owner of session state. Views keep cursors and
// half-typed input, never copies of content.

package tui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/draftdesk/internal/artifact"
	"github.com/kingrea/draftdesk/internal/config"
	"github.com/kingrea/draftdesk/internal/content"
	"github.com/kingrea/draftdesk/internal/generation"
	"github.com/kingrea/draftdesk/internal/logbook"
	"github.com/kingrea/draftdesk/internal/logging"
	"github.com/kingrea/draftdesk/internal/source"
	"github.com/kingrea/draftdesk/internal/workflow"
)

const logPanelLines = 6

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithLogbook attaches the session journal shown in the log panel.
func WithLogbook(lb *logbook.Logbook) AppOption {
	return func(a *App) {
		a.logbook = lb
	}
}

// WithLogger attaches the diagnostic logger.
func WithLogger(logger *logging.Logger) AppOption {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithRepository enables ctrl+s snapshots.
func WithRepository(repo workflow.SnapshotStore) AppOption {
	return func(a *App) {
		a.repo = repo
	}
}

// WithDrafts overrides where the result step exports drafts.
func WithDrafts(drafts *artifact.Store) AppOption {
	return func(a *App) {
		if drafts != nil {
			a.drafts = drafts
		}
	}
}

// WithRegistry overrides the adapter registry built from the catalog.
func WithRegistry(reg *source.Registry) AppOption {
	return func(a *App) {
		if reg != nil {
			a.registry = reg
		}
	}
}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	config    *config.Config
	store     *workflow.Store
	nav       *workflow.Navigator
	catalog   *source.Catalog
	registry  *source.Registry
	trending  *source.TrendingAdapter
	composer  *generation.Composer
	simulator generation.Simulator
	logbook   *logbook.Logbook
	logger    *logging.Logger
	repo      workflow.SnapshotStore
	drafts    *artifact.Store

	sourceView    *sourceView
	baseTextView  *baseTextView
	configureView *configureView
	resultView    *resultView

	statusMsg     string
	rejection     *workflow.Rejection
	lastLogStatus string
	showLog       bool

	// Window size (we get this from bubbletea)
	width  int
	height int
}

// NewApp binds the TUI to store. A nil catalog falls back to the bundled one.
func NewApp(cfg *config.Config, store *workflow.Store, catalog *source.Catalog, opts ...AppOption) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("tui: config is required")
	}
	if store == nil {
		store = workflow.NewStore()
	}
	if catalog == nil {
		var err error
		if catalog, err = source.DefaultCatalog(); err != nil {
			return nil, err
		}
	}
	app := &App{
		config:    cfg,
		store:     store,
		nav:       workflow.NewNavigator(store),
		catalog:   catalog,
		composer:  generation.NewComposer(),
		simulator: generation.Simulator{Step: cfg.GenerationStep()},
		logger:    logging.Discard(),
		drafts:    artifact.NewStore(cfg.DraftsDir()),
		showLog:   true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	if app.registry == nil {
		app.registry = source.NewDefaultRegistry(catalog)
	}
	app.trending = trendingAdapter(app.registry, catalog)
	app.sourceView = newSourceView(app)
	app.baseTextView = newBaseTextView(app)
	app.configureView = newConfigureView(app)
	app.resultView = newResultView(app)
	return app, nil
}

func trendingAdapter(reg *source.Registry, cat *source.Catalog) *source.TrendingAdapter {
	if adapter, err := reg.Resolve(content.KindTrendingTopic); err == nil {
		if trending, ok := adapter.(*source.TrendingAdapter); ok {
			return trending
		}
	}
	return source.NewTrendingAdapter(cat)
}

// Store exposes the session store the App drives.
func (a *App) Store() *workflow.Store {
	return a.store
}

func (a *App) logInfo(format string, args ...any) {
	a.logger.Infof(format, args...)
	if a.logbook == nil {
		return
	}
	a.logbook.Step(a.nav.Current().String()).Info(format, args...)
}

func (a *App) logWarn(format string, args ...any) {
	a.logger.Warnf(format, args...)
	if a.logbook == nil {
		return
	}
	a.logbook.Step(a.nav.Current().String()).Warn(format, args...)
}

func (a *App) logError(format string, args ...any) {
	a.logger.Errorf(format, args...)
	if a.logbook == nil {
		return
	}
	a.logbook.Error(format, args...)
}

func (a *App) logProgress(status string) {
	status = strings.TrimSpace(status)
	if status == "" || status == a.lastLogStatus {
		return
	}
	a.lastLogStatus = status
	a.logInfo("%s", status)
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	step := a.nav.Current()
	a.logInfo("Session opened · step: %s", step.FriendlyName())
	return a.enterStep(step)
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		for _, view := range a.views() {
			view.resize(max(20, msg.Width-8), max(6, msg.Height-18))
		}
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			a.logInfo("Session closed at %s", a.nav.Current().FriendlyName())
			return a, tea.Quit
		case "ctrl+n":
			return a, a.advance()
		case "ctrl+b":
			return a, a.back()
		case "ctrl+r":
			return a, a.reset()
		case "ctrl+s":
			a.saveSnapshot()
			return a, nil
		case "ctrl+l":
			a.showLog = !a.showLog
			return a, nil
		case "f1", "f2", "f3", "f4":
			step := workflow.Step(msg.String()[1] - '1')
			return a, a.goTo(step)
		}
		return a, a.activeView().update(msg)
	}

	// Timer and debounce messages belong to whichever view issued them,
	// even after the user moved to another step.
	var cmds []tea.Cmd
	for _, view := range a.views() {
		if cmd := view.update(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return a, tea.Batch(cmds...)
}

func (a *App) views() []stepView {
	return []stepView{a.sourceView, a.baseTextView, a.configureView, a.resultView}
}

func (a *App) activeView() stepView {
	switch a.nav.Current() {
	case workflow.StepBaseText:
		return a.baseTextView
	case workflow.StepConfigure:
		return a.configureView
	case workflow.StepResult:
		return a.resultView
	default:
		return a.sourceView
	}
}

func (a *App) saveSnapshot() {
	if a.repo == nil {
		a.setStatus("Snapshots are disabled")
		return
	}
	if err := a.repo.Save(a.store.Snapshot()); err != nil {
		a.setStatus(fmt.Sprintf("Snapshot failed: %v", err))
		a.logError("Snapshot failed: %v", err)
		return
	}
	name := "session.json"
	if repo, ok := a.repo.(*workflow.Repository); ok {
		name = filepath.Base(repo.Path())
	}
	a.setStatus(fmt.Sprintf("Session saved to %s", name))
}

// View renders the current state to a string.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}
	rightWidth := max(32, width/3)
	leftWidth := width - rightWidth - 4
	if leftWidth < 40 {
		leftWidth = width - 4
	}
	if leftWidth < 20 {
		leftWidth = width
		rightWidth = 0
	}
	return a.renderStatusBoard(a.activeView().view(), leftWidth, rightWidth)
}

func (a *App) renderStatusBoard(mainContent string, leftWidth, rightWidth int) string {
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF6B6B")).
		MarginBottom(1).
		Render("✎ DRAFTDESK")
	left := lipgloss.JoinVertical(lipgloss.Left,
		a.renderStepper(leftWidth-4),
		"",
		a.renderMainArea(mainContent, leftWidth-4),
	)
	leftBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Width(max(20, leftWidth)).
		Render(left)
	var body string
	if rightWidth > 0 {
		rightBox := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1).
			Width(max(20, rightWidth)).
			Render(a.renderSessionPanel(rightWidth - 4))
		body = lipgloss.JoinHorizontal(lipgloss.Top, leftBox, rightBox)
	} else {
		body = leftBox
	}
	sections := []string{header, body}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	sections = append(sections, a.renderFooter())
	return strings.Join(sections, "\n")
}

func (a *App) renderMainArea(content string, width int) string {
	help := a.activeView().help()
	if help != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, content, "", detailTextStyle.Render(help))
	}
	return lipgloss.NewStyle().Width(max(20, width)).Render(content)
}

func (a *App) renderSessionPanel(width int) string {
	sess := a.store.Snapshot()
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render("Session")
	lines := []string{
		fmt.Sprintf("Source: %s", sess.Source.Kind.FriendlyName()),
	}
	if topic := strings.TrimSpace(sess.Topic()); topic != "" {
		lines = append(lines, fmt.Sprintf("Topic: %s", topic))
	}
	switch {
	case sess.BaseText.SkipCuration:
		lines = append(lines, "Base text: skipped")
	case sess.BaseText.EditMode == workflow.EditModeFullText:
		lines = append(lines, "Base text: full text")
	default:
		lines = append(lines, fmt.Sprintf("Blocks: %d of %d selected", len(sess.SelectedBlocks()), len(sess.BaseText.Blocks)))
	}
	lines = append(lines,
		fmt.Sprintf("Words: %d", sess.TotalWordCount()),
		fmt.Sprintf("Quotes: %d · Materials: %d", len(sess.Configuration.Quotes), sess.TotalMaterialsCount()),
	)
	switch {
	case sess.Generation.Active:
		lines = append(lines, labelStyleRunning.Render(fmt.Sprintf("Generating %d%%", sess.Generation.Progress)))
	case sess.Result != nil:
		lines = append(lines, labelStyleReady.Render("Draft ready"))
	}
	body := lipgloss.NewStyle().Width(max(20, width)).Render(strings.Join(lines, "\n"))
	return lipgloss.JoinVertical(lipgloss.Left, title, body)
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil || !a.showLog {
		return ""
	}
	entries, total := a.logbook.Tail(logPanelLines)
	if len(entries) == 0 {
		return ""
	}
	lines := make([]string, len(entries))
	for i, entry := range entries {
		lines[i] = entry.String()
	}
	fileName := filepath.Base(a.logbook.Path())
	if fileName == "." || fileName == "" {
		fileName = "log"
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("LOG · %s (%d)", fileName, total))
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(fmt.Sprintf("%s\n%s", head, body))
}

func (a *App) renderFooter() string {
	lines := []string{}
	if a.rejection != nil {
		lines = append(lines, labelStyleBlocked.Render(fmt.Sprintf("⚠ %s", a.rejection)))
	}
	if a.statusMsg != "" {
		lines = append(lines, a.statusMsg)
	}
	lines = append(lines, "ctrl+n=next  ctrl+b=back  ctrl+r=start over  ctrl+s=save  ctrl+l=log  ctrl+c=quit")
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginTop(1).
		Render(strings.Join(lines, "\n"))
}

// rejectionFrom extracts the guard rejection carried by err, if any.
func rejectionFrom(err error) (workflow.Rejection, bool) {
	var te *workflow.TransitionError
	if errors.As(err, &te) {
		return te.Rejection, true
	}
	return workflow.Rejection{}, false
}
