// Package main is the draftdesk CLI. Running `draftdesk` with no arguments
// opens the creation flow TUI for the current directory.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kingrea/draftdesk/internal/artifact"
	"github.com/kingrea/draftdesk/internal/config"
	"github.com/kingrea/draftdesk/internal/logbook"
	"github.com/kingrea/draftdesk/internal/logging"
	"github.com/kingrea/draftdesk/internal/source"
	"github.com/kingrea/draftdesk/internal/tui"
	"github.com/kingrea/draftdesk/internal/workflow"
)

const appName = "draftdesk"

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		projectDir string
		fresh      bool
	)
	cmd := &cobra.Command{
		Use:   appName,
		Short: "Turn a source into a news draft",
		Long: `draftdesk walks an editor through four steps: pick a source, curate
the base text, configure the brief and generate a draft.

Project state lives in .draftdesk/ under the project directory.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(projectDir, fresh)
		},
	}
	cmd.PersistentFlags().StringVar(&projectDir, "project", "", "project directory (defaults to cwd)")
	cmd.Flags().BoolVar(&fresh, "fresh", false, "ignore the autosaved session")

	cmd.AddCommand(demoCmd(&projectDir))
	cmd.AddCommand(catalogCmd(&projectDir))
	cmd.AddCommand(draftsCmd(&projectDir))
	return cmd
}

// openProject resolves dir, creates .draftdesk/ and loads its config.
func openProject(dir string) (*config.Config, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("determine working directory: %w", err)
		}
		dir = cwd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve project dir: %w", err)
	}
	if err := config.InitDir(abs); err != nil {
		return nil, fmt.Errorf("init %s: %w", config.ProjectDirName, err)
	}
	cfg, err := config.NewConfig(abs)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func runTUI(projectDir string, fresh bool) error {
	cfg, err := openProject(projectDir)
	if err != nil {
		return err
	}
	logger, err := logging.NewFile(cfg.LogPath(), cfg.LogLevel())
	if err != nil {
		return err
	}
	defer logger.Close()

	book, err := logbook.New(cfg.JournalPath())
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	catalog, err := source.LoadCatalog(cfg.CatalogPath())
	if err != nil {
		return err
	}

	store := workflow.NewStore()
	store.Observe(func(ev workflow.Event) {
		logger.WithFields(logging.Fields{
			"action":  ev.Action,
			"step":    ev.Step.String(),
			"session": ev.SessionID,
		}).Debug(ev.Detail)
	})

	opts := []tui.AppOption{
		tui.WithLogbook(book),
		tui.WithLogger(logger),
		tui.WithDrafts(artifact.NewStore(cfg.DraftsDir())),
	}
	if cfg.AutosaveEnabled() {
		repo := workflow.NewRepository(cfg.StateDir())
		if !fresh {
			restoreSession(store, repo, book, logger)
		}
		store.Observe(workflow.Autosave(store, repo, func(err error) {
			logger.WithError(err).Warn("autosave failed")
		}))
		opts = append(opts, tui.WithRepository(repo))
	}

	app, err := tui.NewApp(cfg, store, catalog, opts...)
	if err != nil {
		return err
	}
	logger.WithField("project", cfg.ProjectDir).Info("draftdesk started")
	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	logger.Info("draftdesk stopped")
	return nil
}

func restoreSession(store *workflow.Store, repo *workflow.Repository, book *logbook.Logbook, logger *logging.Logger) {
	saved, err := repo.Load()
	if errors.Is(err, workflow.ErrSnapshotNotFound) {
		return
	}
	if err == nil {
		err = store.Restore(saved)
	}
	if err != nil {
		logger.WithError(err).Warn("discarding autosaved session")
		book.Warn("Autosaved session could not be restored: %v", err)
		return
	}
	book.Step(saved.CurrentStep.String()).Info("Session restored from %s", filepath.Base(repo.Path()))
}
