package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/draftdesk/internal/artifact"
	"github.com/kingrea/draftdesk/internal/config"
	"github.com/kingrea/draftdesk/internal/content"
	"github.com/kingrea/draftdesk/internal/logbook"
	"github.com/kingrea/draftdesk/internal/logging"
	"github.com/kingrea/draftdesk/internal/workflow"
)

func TestAdvanceWithoutSourceShowsRejection(t *testing.T) {
	app := newTestApp(t)
	app = press(t, app, "ctrl+n")
	if got := app.nav.Current(); got != workflow.StepSource {
		t.Fatalf("expected to stay on source, got %s", got)
	}
	if app.rejection == nil || app.rejection.Code != workflow.RejectNoSource {
		t.Fatalf("expected no-source rejection, got %+v", app.rejection)
	}
	if view := app.View(); !strings.Contains(view, "choose a source to continue") {
		t.Fatalf("rejection should be rendered inline:\n%s", view)
	}
}

func TestFeedFlowCuratesAndGenerates(t *testing.T) {
	app := newTestApp(t)
	app = pickFeedArticles(t, app, 2)
	if got := app.nav.Current(); got != workflow.StepBaseText {
		t.Fatalf("picking articles should move to base text, got %s", got)
	}
	sess := app.store.Snapshot()
	if len(sess.BaseText.Blocks) != 6 || sess.BaseText.Selected.Count() != 6 {
		t.Fatalf("expected 6 selected blocks, got %d of %d", sess.BaseText.Selected.Count(), len(sess.BaseText.Blocks))
	}

	app = press(t, app, " ", "down", " ")
	sess = app.store.Snapshot()
	if got := len(sess.SelectedBlocks()); got != 4 {
		t.Fatalf("expected 4 selected blocks after deselecting two, got %d", got)
	}
	want := content.SelectedWordCount(sess.BaseText.Blocks, sess.BaseText.Selected)
	if got := app.store.TotalWordCount(); got != want {
		t.Fatalf("word count %d does not follow the selection (%d)", got, want)
	}

	app = press(t, app, "ctrl+n")
	if got := app.nav.Current(); got != workflow.StepConfigure {
		t.Fatalf("expected configure, got %s", got)
	}
	app = press(t, app, "ctrl+n")
	sess = app.store.Snapshot()
	if sess.CurrentStep != workflow.StepResult || sess.Result == nil {
		t.Fatalf("expected a generated draft, got step %s result %v", sess.CurrentStep, sess.Result)
	}
	if sess.Generation.Active || sess.Generation.Progress != 100 {
		t.Fatalf("generation should be finished: %+v", sess.Generation)
	}
	if !sess.CompletedSteps.Has(workflow.StepResult) {
		t.Fatalf("result step should be completed")
	}
	if !strings.Contains(app.View(), "· markdown") {
		t.Fatalf("result view should show the rendered draft:\n%s", app.View())
	}
}

func TestFullTextModeGuard(t *testing.T) {
	app := newTestApp(t)
	app = pickFeedArticles(t, app, 1)
	app = press(t, app, "x", "ctrl+t", "ctrl+n")
	if app.rejection == nil || app.rejection.Code != workflow.RejectEmptyFullText {
		t.Fatalf("expected empty-fulltext rejection, got %+v", app.rejection)
	}
	app = typeText(t, app, "algo")
	if got := app.store.Snapshot().BaseText.FullText; got != "algo" {
		t.Fatalf("debounced full text not committed, got %q", got)
	}
	app = press(t, app, "ctrl+n")
	if got := app.nav.Current(); got != workflow.StepConfigure {
		t.Fatalf("expected configure after writing text, got %s", got)
	}
	if got := app.store.AssembleBaseText(); got != "algo" {
		t.Fatalf("full text mode should assemble the full text, got %q", got)
	}
}

func TestFullTextStartsFromSelectedBlocks(t *testing.T) {
	app := newTestApp(t)
	app = pickFeedArticles(t, app, 1)
	curated := app.store.AssembleBaseText()
	if curated == "" {
		t.Fatalf("expected curated blocks before switching modes")
	}
	app = press(t, app, "ctrl+t")
	sess := app.store.Snapshot()
	if sess.BaseText.EditMode != workflow.EditModeFullText || sess.BaseText.FullText != curated {
		t.Fatalf("full text should start from the selected blocks, got mode=%s text=%q", sess.BaseText.EditMode, sess.BaseText.FullText)
	}
	app = press(t, app, "ctrl+t")
	if got := app.store.AssembleBaseText(); got != curated {
		t.Fatalf("switching back should restore the block text, got %q", got)
	}
	app = press(t, app, "ctrl+t", "ctrl+n")
	if got := app.nav.Current(); got != workflow.StepConfigure {
		t.Fatalf("seeded full text should satisfy the guard, got %s", got)
	}
}

func TestPendingFullTextFlushesOnAdvance(t *testing.T) {
	app := newTestApp(t)
	app = pickFeedArticles(t, app, 1)
	app = press(t, app, "ctrl+t")
	// Type without running the debounce timer.
	model, _ := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("rascunho")})
	app = model.(*App)
	app = press(t, app, "ctrl+n")
	if got := app.nav.Current(); got != workflow.StepConfigure {
		t.Fatalf("pending text should be flushed before the guard runs, got %s", got)
	}
}

func TestEmptyWebPageBlocksCuration(t *testing.T) {
	app := newTestApp(t)
	app = press(t, app, "down", "down", "down", "down", "enter")
	app = typeText(t, app, "https://galeria.example/fotos")
	app = press(t, app, "enter")
	sess := app.store.Snapshot()
	if sess.BaseText.Extraction.Status != workflow.ExtractionEmpty {
		t.Fatalf("expected empty extraction, got %+v", sess.BaseText.Extraction)
	}
	if !strings.Contains(app.View(), "Nothing to curate") {
		t.Fatalf("empty extraction should explain itself")
	}
	app = press(t, app, "ctrl+n")
	if app.rejection == nil || app.rejection.Code != workflow.RejectEmptyExtraction {
		t.Fatalf("expected empty-extraction rejection, got %+v", app.rejection)
	}
}

func TestInvalidLinkIsRejectedInline(t *testing.T) {
	app := newTestApp(t)
	app = press(t, app, "down", "down", "down", "down", "enter")
	app = typeText(t, app, "not a url")
	app = press(t, app, "enter")
	if !app.store.Snapshot().Source.IsZero() {
		t.Fatalf("invalid link must not become the source")
	}
	if !strings.HasPrefix(app.statusMsg, "Invalid link") {
		t.Fatalf("unexpected status: %q", app.statusMsg)
	}
}

func TestTrendingSearchAndSkipCuration(t *testing.T) {
	app := newTestApp(t)
	app = press(t, app, "enter")
	if app.sourceView.phase != phaseTopics {
		t.Fatalf("expected topic search, got phase %d", app.sourceView.phase)
	}
	// Keystrokes land before any timer fires: only the last search commits.
	var cmds []tea.Cmd
	for _, r := range "solar" {
		model, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		app = model.(*App)
		cmds = append(cmds, cmd)
	}
	app = drain(t, app, tea.Batch(cmds...))
	if len(app.sourceView.topics) != 1 {
		t.Fatalf("expected one topic for the final query, got %d", len(app.sourceView.topics))
	}
	if got := app.sourceView.topics[0].Name; got != "Energia solar" {
		t.Fatalf("unexpected best match %q", got)
	}

	app = press(t, app, "enter")
	if len(app.sourceView.articles) == 0 {
		t.Fatalf("expected candidate articles for the topic")
	}
	app = press(t, app, "enter")
	if !app.store.Snapshot().Source.IsZero() {
		t.Fatalf("enter without picks must not set the source")
	}
	app = press(t, app, "s")
	sess := app.store.Snapshot()
	if sess.CurrentStep != workflow.StepBaseText || !sess.BaseText.SkipCuration {
		t.Fatalf("expected skipped curation on base text, got %s %+v", sess.CurrentStep, sess.BaseText)
	}
	app = press(t, app, "ctrl+n", "ctrl+n")
	sess = app.store.Snapshot()
	if sess.Result == nil || sess.Result.Title != "Energia solar" {
		t.Fatalf("expected a draft titled after the topic, got %+v", sess.Result)
	}
	if !strings.Contains(sess.Result.Content, "No base text was curated") {
		t.Fatalf("draft should note the missing base text:\n%s", sess.Result.Content)
	}
}

func TestConfigureFormCommitsBrief(t *testing.T) {
	app := newTestApp(t)
	app = pickFeedArticles(t, app, 1)
	app = press(t, app, "ctrl+n")
	app = typeText(t, app, "2026-11-02")
	app = press(t, app, "tab")
	app = typeText(t, app, "Ana Lima")
	cfg := app.store.Snapshot().Configuration
	if cfg.Persona != "Ana Lima" {
		t.Fatalf("persona not committed: %+v", cfg)
	}
	if got := cfg.PublicationDate.Format(publicationDateLayout); got != "2026-11-02" {
		t.Fatalf("unexpected publication date %s", got)
	}

	app = press(t, app, "ctrl+t")
	if !app.store.Snapshot().Configuration.CreditRequired {
		t.Fatalf("ctrl+t should require credit")
	}

	app.configureView.setFocus(fieldQuote)
	app = typeText(t, app, "A conta de luz cai já no primeiro mês")
	app = press(t, app, "enter")
	if got := len(app.store.Snapshot().Configuration.Quotes); got != 1 {
		t.Fatalf("expected one quote, got %d", got)
	}

	app.configureView.setFocus(fieldMaterial)
	app = typeText(t, app, "ftp://example.com/file")
	app = press(t, app, "enter")
	if app.store.TotalMaterialsCount() != 0 {
		t.Fatalf("non-http link must be refused")
	}
	app.configureView.inputs[fieldMaterial].SetValue("")
	app = typeText(t, app, "https://example.com/relatorio")
	app = press(t, app, "enter")
	links := app.store.Snapshot().Materials.Links
	if len(links) != 1 || links[0].Status != content.MaterialExtracted {
		t.Fatalf("expected one extracted link, got %+v", links)
	}

	app = press(t, app, "ctrl+x")
	if app.store.TotalMaterialsCount() != 0 {
		t.Fatalf("ctrl+x should remove the last material")
	}
}

func TestLateMaterialExtractionIsLogged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	logger, err := logging.NewFile(path, "debug")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	app := newTestApp(t, WithLogger(logger))
	app = drain(t, app, func() tea.Msg {
		return materialExtractedMsg{category: content.MaterialLinks, id: "gone"}
	})
	if got := app.store.TotalMaterialsCount(); got != 0 {
		t.Fatalf("a stale extraction must not add materials, got %d", got)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("close logger: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "late material extraction dropped") || !strings.Contains(text, "category=links") {
		t.Fatalf("expected the dropped extraction in the debug log:\n%s", text)
	}
}

func TestResetDuringGenerationDropsTicks(t *testing.T) {
	app := newTestApp(t)
	app = pickFeedArticles(t, app, 1)
	app = press(t, app, "ctrl+n")
	model, generate := app.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	app = model.(*App)
	if !app.store.Snapshot().Generation.Active {
		t.Fatalf("leaving configure should start a generation")
	}
	app = press(t, app, "ctrl+r")
	app = drain(t, app, generate)
	sess := app.store.Snapshot()
	if sess.Result != nil || sess.Generation.Active {
		t.Fatalf("a reset session must never receive the old draft: %+v", sess.Generation)
	}
	if sess.CurrentStep != workflow.StepSource || !sess.Source.IsZero() {
		t.Fatalf("expected a pristine session, got %s", sess.CurrentStep)
	}
}

func TestRegenerateSupersedesRunningDraft(t *testing.T) {
	app := newTestApp(t)
	completions := 0
	app.store.Observe(func(ev workflow.Event) {
		if ev.Action == "complete-generation" {
			completions++
		}
	})
	app = pickFeedArticles(t, app, 1)
	app = press(t, app, "ctrl+n", "ctrl+n")
	if completions != 1 {
		t.Fatalf("expected first draft, got %d completions", completions)
	}
	model, first := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	app = model.(*App)
	model, second := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	app = model.(*App)
	app = drain(t, app, tea.Batch(first, second))
	if completions != 2 {
		t.Fatalf("only the latest regeneration may complete, got %d completions", completions)
	}
}

func TestExportDraft(t *testing.T) {
	drafts := artifact.NewStore(t.TempDir())
	app := newTestApp(t, WithDrafts(drafts))
	app = pickFeedArticles(t, app, 1)
	app = press(t, app, "ctrl+n", "ctrl+n", "w")
	results, err := drafts.List()
	if err != nil {
		t.Fatalf("list drafts: %v", err)
	}
	if len(results) != 1 || results[0].State != artifact.StateReady {
		t.Fatalf("expected one exported draft, got %+v", results)
	}
	if got := results[0].Metadata.Title; got != app.store.Snapshot().Result.Title {
		t.Fatalf("exported title %q does not match the draft", got)
	}
	if !strings.HasPrefix(app.statusMsg, "Draft exported to") {
		t.Fatalf("unexpected status %q", app.statusMsg)
	}
}

func TestBackAndJumpNavigation(t *testing.T) {
	app := newTestApp(t)
	app = pickFeedArticles(t, app, 1)
	app = press(t, app, "ctrl+n")
	app = press(t, app, "f1")
	if got := app.nav.Current(); got != workflow.StepSource {
		t.Fatalf("f1 should jump back to source, got %s", got)
	}
	app = press(t, app, "f3")
	if app.rejection == nil || app.rejection.Code != workflow.RejectSkipForward {
		t.Fatalf("forward jumps must be refused, got %+v", app.rejection)
	}
	app = press(t, app, "ctrl+n", "ctrl+b")
	if got := app.nav.Current(); got != workflow.StepSource {
		t.Fatalf("ctrl+b should go back, got %s", got)
	}
}

func TestSnapshotAndLogPanel(t *testing.T) {
	projectDir := t.TempDir()
	repo := workflow.NewRepository(t.TempDir())
	app := newTestAppIn(t, projectDir, WithRepository(repo))
	app = pickFeedArticles(t, app, 1)
	app = press(t, app, "ctrl+s")
	if _, err := os.Stat(repo.Path()); err != nil {
		t.Fatalf("expected snapshot file: %v", err)
	}
	saved, err := repo.Load()
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if saved.CurrentStep != workflow.StepBaseText || len(saved.BaseText.Blocks) != 3 {
		t.Fatalf("unexpected snapshot: step %s blocks %d", saved.CurrentStep, len(saved.BaseText.Blocks))
	}
	if view := app.View(); !strings.Contains(view, "LOG · journal.jsonl") {
		t.Fatalf("log panel missing:\n%s", view)
	}
	app = press(t, app, "ctrl+l")
	if strings.Contains(app.View(), "LOG ·") {
		t.Fatalf("ctrl+l should hide the log panel")
	}
}

func pickFeedArticles(t *testing.T, app *App, count int) *App {
	t.Helper()
	app = press(t, app, "down", "enter")
	for i := 0; i < count; i++ {
		app = press(t, app, " ", "down")
	}
	return press(t, app, "enter")
}

func newTestApp(t *testing.T, opts ...AppOption) *App {
	t.Helper()
	return newTestAppIn(t, t.TempDir(), opts...)
}

func newTestAppIn(t *testing.T, projectDir string, opts ...AppOption) *App {
	t.Helper()
	if err := config.InitDir(projectDir); err != nil {
		t.Fatalf("init dir: %v", err)
	}
	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	cfg.Project.Timing.DebounceMS = 0
	cfg.Project.Timing.GenerationTickMS = 1
	book, err := logbook.New(cfg.JournalPath())
	if err != nil {
		t.Fatalf("logbook: %v", err)
	}
	app, err := NewApp(cfg, workflow.NewStore(), nil, append([]AppOption{WithLogbook(book)}, opts...)...)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return drain(t, app, app.Init())
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+n":
		return tea.KeyMsg{Type: tea.KeyCtrlN}
	case "ctrl+b":
		return tea.KeyMsg{Type: tea.KeyCtrlB}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+t":
		return tea.KeyMsg{Type: tea.KeyCtrlT}
	case "ctrl+l":
		return tea.KeyMsg{Type: tea.KeyCtrlL}
	case "ctrl+x":
		return tea.KeyMsg{Type: tea.KeyCtrlX}
	case "f1":
		return tea.KeyMsg{Type: tea.KeyF1}
	case "f3":
		return tea.KeyMsg{Type: tea.KeyF3}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

func press(t *testing.T, app *App, keys ...string) *App {
	t.Helper()
	for _, key := range keys {
		model, cmd := app.Update(keyMsg(key))
		app = drain(t, model.(*App), cmd)
	}
	return app
}

func typeText(t *testing.T, app *App, text string) *App {
	t.Helper()
	model, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return drain(t, model.(*App), cmd)
}

// drain runs cmd and every follow-up command to completion, expanding
// batches. Spinner frames are skipped so runs stay fast.
func drain(t *testing.T, app *App, cmd tea.Cmd) *App {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 1000 {
			t.Fatalf("commands did not settle")
		}
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case spinner.TickMsg, tea.QuitMsg:
		default:
			model, follow := app.Update(msg)
			var ok bool
			app, ok = model.(*App)
			if !ok {
				t.Fatalf("unexpected model type: %T", model)
			}
			queue = append(queue, follow)
		}
	}
	return app
}
