package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewFileWritesLevelFilteredLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "draftdesk.log")
	logger, err := NewFile(path, "warn")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info("hidden")
	logger.WithFields(Fields{"step": "base-text"}).Warn("selection cleared")
	if err := logger.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	text := string(data)
	if strings.Contains(text, "hidden") {
		t.Fatalf("info line should be filtered: %s", text)
	}
	if !strings.Contains(text, "selection cleared") || !strings.Contains(text, "step=base-text") {
		t.Fatalf("missing warn line: %s", text)
	}
}

func TestNewRejectsUnknownLevelAndFormat(t *testing.T) {
	if _, err := New(LogConfig{Level: "chatty"}); err == nil {
		t.Fatalf("expected level error")
	}
	if _, err := New(LogConfig{Format: "xml"}); err == nil {
		t.Fatalf("expected format error")
	}
}

func TestDiscardAndNilSafety(t *testing.T) {
	Discard().Printf("nothing %d\n", 1)
	var nilLogger *Logger
	nilLogger.Printf("ignored")
	if err := nilLogger.Close(); err != nil {
		t.Fatalf("nil close: %v", err)
	}
}
