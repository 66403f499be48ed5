package logbook

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log entry.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Entry is one journal line.
type Entry struct {
	Time    time.Time `json:"time"`
	Level   Level     `json:"level"`
	Step    string    `json:"step,omitempty"`
	Message string    `json:"message"`
}

// String renders the entry for the log panel.
func (e Entry) String() string {
	if e.Step == "" {
		return fmt.Sprintf("%s %-5s %s", e.Time.Local().Format("15:04:05"), e.Level, e.Message)
	}
	return fmt.Sprintf("%s %-5s [%s] %s", e.Time.Local().Format("15:04:05"), e.Level, e.Step, e.Message)
}

// Logbook is the session journal, persisted as JSON lines.
type Logbook struct {
	path  string
	mu    sync.Mutex
	clock func() time.Time
}

// New creates a logbook that writes to the provided path.
func New(path string) (*Logbook, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &Logbook{path: path, clock: time.Now}, nil
}

// Path returns the file backing this logbook.
func (l *Logbook) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Record writes entry, stamping its time when unset.
func (l *Logbook) Record(entry Entry) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if entry.Time.IsZero() {
		entry.Time = l.clock()
	}
	entry.Time = entry.Time.UTC()
	entry.Message = strings.TrimSpace(entry.Message)
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("logbook: encode entry: %w", err)
	}
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("logbook: open %s: %w", l.path, err)
	}
	defer file.Close()
	_, err = file.Write(append(line, '\n'))
	return err
}

// Append writes a single entry without a step.
func (l *Logbook) Append(level Level, message string) {
	_ = l.Record(Entry{Level: level, Message: message})
}

// Tail returns up to maxLines of the most recent entries and the total
// number of entries. Lines that fail to decode are skipped.
func (l *Logbook) Tail(maxLines int) ([]Entry, int) {
	if l == nil || maxLines <= 0 {
		return nil, 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	file, err := os.Open(l.path)
	if err != nil {
		return nil, 0
	}
	defer file.Close()

	var entries []Entry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var entry Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	total := len(entries)
	if total == 0 {
		return nil, 0
	}
	if total > maxLines {
		entries = entries[total-maxLines:]
	}
	return entries, total
}

// Step returns a writer that tags every entry with step.
func (l *Logbook) Step(step string) StepWriter {
	return StepWriter{book: l, step: step}
}

// StepWriter tags entries with a workflow step.
type StepWriter struct {
	book *Logbook
	step string
}

func (w StepWriter) Info(format string, args ...any) {
	_ = w.book.Record(Entry{Level: LevelInfo, Step: w.step, Message: fmt.Sprintf(format, args...)})
}

func (w StepWriter) Warn(format string, args ...any) {
	_ = w.book.Record(Entry{Level: LevelWarn, Step: w.step, Message: fmt.Sprintf(format, args...)})
}

// Info appends an informational entry.
func (l *Logbook) Info(format string, args ...any) {
	l.Append(LevelInfo, fmt.Sprintf(format, args...))
}

// Warn appends a warning entry.
func (l *Logbook) Warn(format string, args ...any) {
	l.Append(LevelWarn, fmt.Sprintf(format, args...))
}

// Error appends an error entry.
func (l *Logbook) Error(format string, args ...any) {
	l.Append(LevelError, fmt.Sprintf(format, args...))
}
