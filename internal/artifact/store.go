package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Store manages exported drafts rooted at a directory.
type Store struct {
	dir string
	now func() time.Time
}

// StoreOption customizes a Store during construction.
type StoreOption func(*Store)

// WithClock overrides the clock used for export timestamps.
func WithClock(clock func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = clock
	}
}

// NewStore builds a store writing into dir.
func NewStore(dir string, opts ...StoreOption) *Store {
	store := &Store{
		dir: dir,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Dir returns the export directory.
func (s *Store) Dir() string {
	return s.dir
}

// Write exports draft and returns the file it wrote. Re-exporting the same
// session and title overwrites the previous file.
func (s *Store) Write(draft Draft) (string, error) {
	prepared := draft.Metadata.WithDefaults(draft.Body, s.now())
	if err := prepared.Validate(); err != nil {
		return "", err
	}
	document, err := WriteFrontMatter(prepared, draft.Body)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, fileName(prepared))
	if err := os.WriteFile(path, document, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Check inspects the draft at path and verifies its checksum.
func (s *Store) Check(path string) (CheckResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return CheckResult{Path: path, State: StateMissing}, nil
		}
		return CheckResult{Path: path, State: StateError, Err: err}, err
	}
	meta, body, err := ParseFrontMatter(data)
	if err != nil {
		return invalidResult(path, err)
	}
	if meta.Checksum != "" && meta.Checksum != Checksum(body) {
		return CheckResult{Path: path, State: StateInvalid, Metadata: &meta, Err: fmt.Errorf("artifact: %s was edited after export", filepath.Base(path))}, nil
	}
	return CheckResult{Path: path, State: StateReady, Metadata: &meta}, nil
}

// List checks every exported draft, newest export first. A missing
// directory yields no drafts.
func (s *Store) List() ([]CheckResult, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var results []CheckResult
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		result, err := s.Check(filepath.Join(s.dir, entry.Name()))
		if err != nil && result.State == StateError {
			return nil, err
		}
		results = append(results, result)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return exportedAt(results[i]).After(exportedAt(results[j]))
	})
	return results, nil
}

func exportedAt(result CheckResult) time.Time {
	if result.Metadata == nil {
		return time.Time{}
	}
	return result.Metadata.ExportedAt
}

func fileName(meta Metadata) string {
	session := meta.SessionID
	if len(session) > 8 {
		session = session[:8]
	}
	return fmt.Sprintf("%s-%s.md", Slug(meta.Title), session)
}

func invalidResult(path string, err error) (CheckResult, error) {
	return CheckResult{Path: path, State: StateInvalid, Err: err}, nil
}
