// internal/config/config.go
//
// This package handles configuration and the .draftdesk directory structure.
// Every project that uses draftdesk gets a .draftdesk/ folder in its root.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	// ProjectDirName is the name of the directory we create in each project
	ProjectDirName = ".draftdesk"

	// EnvCatalog overrides catalog.path.
	EnvCatalog = "DRAFTDESK_CATALOG"
	// EnvLogLevel overrides logging.level.
	EnvLogLevel = "DRAFTDESK_LOG_LEVEL"

	defaultDebounceMS       = 300
	defaultGenerationTickMS = 150
	defaultGenerationStep   = 10
	defaultLogLevel         = "info"
)

const defaultProjectConfigYAML = `# draftdesk project configuration
version: 1

# Defaults applied to every new draft's configuration step.
editor:
  persona: ""
  tone: ""
  credit_source: ""

# Timings for the interactive front-end.
timing:
  debounce_ms: 300          # delay before a search box filters the catalog
  generation_tick_ms: 150   # interval between simulated generation progress updates
  generation_step: 10       # progress added per tick (1-99)

# Candidate catalog. Leave empty to use the bundled one.
catalog:
  path: ""

# Save the session to .draftdesk/state/session.json on every step change.
autosave:
  enabled: true

logging:
  level: info
`

// EditorConfig seeds the configuration step.
type EditorConfig struct {
	Persona      string `yaml:"persona"`
	Tone         string `yaml:"tone"`
	CreditSource string `yaml:"credit_source"`
}

// TimingConfig controls debounce and simulated generation pacing.
type TimingConfig struct {
	DebounceMS       int `yaml:"debounce_ms"`
	GenerationTickMS int `yaml:"generation_tick_ms"`
	GenerationStep   int `yaml:"generation_step"`
}

// CatalogConfig points at an alternative candidate catalog.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// AutosaveConfig toggles session snapshots.
type AutosaveConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LoggingConfig sets the diagnostic log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ProjectConfig models .draftdesk/config.yaml.
type ProjectConfig struct {
	Version  int            `yaml:"version"`
	Editor   EditorConfig   `yaml:"editor"`
	Timing   TimingConfig   `yaml:"timing"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Autosave AutosaveConfig `yaml:"autosave"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// Config holds the runtime configuration for draftdesk.
type Config struct {
	// ProjectDir is the directory where the user ran `draftdesk` from
	ProjectDir string

	// DraftdeskDir is ProjectDir/.draftdesk
	DraftdeskDir string

	Project ProjectConfig
}

// InitDir creates the .draftdesk directory structure in the given project
// directory. This is called before the TUI starts.
//
// Structure created:
// .draftdesk/
// ├── config.yaml
// ├── drafts/       <- exported drafts
// ├── logs/         <- diagnostic log and session journal
// └── state/        <- autosaved session
func InitDir(projectDir string) error {
	root := filepath.Join(projectDir, ProjectDirName)
	for _, dir := range []string{
		filepath.Join(root, "drafts"),
		filepath.Join(root, "logs"),
		filepath.Join(root, "state"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return ensureProjectConfig(filepath.Join(root, "config.yaml"))
}

// NewConfig loads .env and .draftdesk/config.yaml from projectDir. Missing
// files fall back to defaults.
func NewConfig(projectDir string) (*Config, error) {
	if err := loadDotEnv(filepath.Join(projectDir, ".env")); err != nil {
		return nil, err
	}
	cfg := &Config{
		ProjectDir:   projectDir,
		DraftdeskDir: filepath.Join(projectDir, ProjectDirName),
		Project:      defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns an in-memory configuration rooted at projectDir without
// touching the filesystem.
func Default(projectDir string) *Config {
	return &Config{
		ProjectDir:   projectDir,
		DraftdeskDir: filepath.Join(projectDir, ProjectDirName),
		Project:      defaultProjectConfig(),
	}
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.DraftdeskDir, "logs")
}

// StateDir returns the path to the state directory
func (c *Config) StateDir() string {
	return filepath.Join(c.DraftdeskDir, "state")
}

// LogPath returns the diagnostic log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.LogsDir(), "draftdesk.log")
}

// DraftsDir returns where exported drafts are written.
func (c *Config) DraftsDir() string {
	return filepath.Join(c.DraftdeskDir, "drafts")
}

// JournalPath returns the session journal file.
func (c *Config) JournalPath() string {
	return filepath.Join(c.LogsDir(), "journal.jsonl")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.DraftdeskDir, "config.yaml")
}

// DebounceWindow is the search debounce delay.
func (c *Config) DebounceWindow() time.Duration {
	return time.Duration(c.Project.Timing.DebounceMS) * time.Millisecond
}

// GenerationTick is the interval between progress updates.
func (c *Config) GenerationTick() time.Duration {
	return time.Duration(c.Project.Timing.GenerationTickMS) * time.Millisecond
}

// GenerationStep is the progress added per tick.
func (c *Config) GenerationStep() int {
	return c.Project.Timing.GenerationStep
}

// CatalogPath returns the configured catalog file, or "" for the bundled one.
func (c *Config) CatalogPath() string {
	return c.Project.Catalog.Path
}

// AutosaveEnabled reports whether sessions are snapshotted.
func (c *Config) AutosaveEnabled() bool {
	return c.Project.Autosave.Enabled
}

// LogLevel returns the configured diagnostic level.
func (c *Config) LogLevel() string {
	return c.Project.Logging.Level
}

// Editor returns the configuration-step defaults.
func (c *Config) Editor() EditorConfig {
	return c.Project.Editor
}

// SetAutosave updates autosave.enabled and persists the value back to
// .draftdesk/config.yaml.
func (c *Config) SetAutosave(enabled bool) error {
	c.Project.Autosave.Enabled = enabled
	return c.saveProjectConfig()
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	parsed := defaultProjectConfig()
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize(c.ProjectDir)
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvCatalog)); v != "" {
		c.Project.Catalog.Path = resolvePath(c.ProjectDir, v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.Project.Logging.Level = strings.ToLower(v)
	}
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: environment: %w", err)
	}
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		Timing: TimingConfig{
			DebounceMS:       defaultDebounceMS,
			GenerationTickMS: defaultGenerationTickMS,
			GenerationStep:   defaultGenerationStep,
		},
		Autosave: AutosaveConfig{Enabled: true},
		Logging:  LoggingConfig{Level: defaultLogLevel},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if pc.Timing.GenerationTickMS == 0 {
		pc.Timing.GenerationTickMS = defaultGenerationTickMS
	}
	if pc.Timing.GenerationStep == 0 {
		pc.Timing.GenerationStep = defaultGenerationStep
	}
	if strings.TrimSpace(pc.Logging.Level) == "" {
		pc.Logging.Level = defaultLogLevel
	}
}

func (pc *ProjectConfig) normalize(base string) {
	pc.Editor.Persona = strings.TrimSpace(pc.Editor.Persona)
	pc.Editor.Tone = strings.TrimSpace(pc.Editor.Tone)
	pc.Editor.CreditSource = strings.TrimSpace(pc.Editor.CreditSource)
	pc.Catalog.Path = resolvePath(base, pc.Catalog.Path)
	pc.Logging.Level = strings.ToLower(strings.TrimSpace(pc.Logging.Level))
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if pc.Timing.DebounceMS < 0 || pc.Timing.DebounceMS > 5000 {
		return fmt.Errorf("timing.debounce_ms must be between 0 and 5000")
	}
	if pc.Timing.GenerationTickMS < 1 || pc.Timing.GenerationTickMS > 10000 {
		return fmt.Errorf("timing.generation_tick_ms must be between 1 and 10000")
	}
	if pc.Timing.GenerationStep < 1 || pc.Timing.GenerationStep > 99 {
		return fmt.Errorf("timing.generation_step must be between 1 and 99")
	}
	if _, err := logrus.ParseLevel(pc.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0644)
}

func (c *Config) saveProjectConfig() error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	c.Project.applyDefaults()
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(c.DraftdeskDir, 0o755); err != nil {
		return fmt.Errorf("config: ensure draftdesk dir: %w", err)
	}
	data, err := yaml.Marshal(c.Project)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.WriteFile(c.ProjectConfigPath(), data, 0644); err != nil {
		return fmt.Errorf("config: write project config: %w", err)
	}
	return nil
}
