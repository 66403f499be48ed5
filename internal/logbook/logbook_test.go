package logbook

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTailReturnsRecentLinesAndTotal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.jsonl")
	book, err := New(path)
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	for i := 0; i < 5; i++ {
		book.Info("entry-%d", i)
	}
	entries, total := book.Tail(3)
	if total != 5 {
		t.Fatalf("total entries = %d, want 5", total)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	for idx, want := range []string{"entry-2", "entry-3", "entry-4"} {
		if entries[idx].Message != want {
			t.Fatalf("entry %d = %q, want %s", idx, entries[idx].Message, want)
		}
	}
}

func TestStepWriterTagsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.jsonl")
	book, err := New(path)
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	book.Step("base-text").Warn("  %d block(s) deselected ", 2)
	entries, _ := book.Tail(1)
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	got := entries[0]
	if got.Level != LevelWarn || got.Step != "base-text" || got.Message != "2 block(s) deselected" {
		t.Fatalf("unexpected entry: %+v", got)
	}
	if !strings.Contains(got.String(), "[base-text] 2 block(s) deselected") {
		t.Fatalf("unexpected rendering: %s", got.String())
	}
}

func TestTailSkipsCorruptLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.jsonl")
	book, err := New(path)
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	book.Info("first")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("not json\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()
	book.Error("second")
	entries, total := book.Tail(10)
	if total != 2 || entries[1].Level != LevelError {
		t.Fatalf("unexpected tail: total=%d entries=%+v", total, entries)
	}
}
