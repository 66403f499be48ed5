package workflow

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrSnapshotNotFound is returned when no session has been saved yet.
var ErrSnapshotNotFound = errors.New("workflow: session snapshot not found")

// SnapshotStore persists session snapshots for autosave.
type SnapshotStore interface {
	Load() (Session, error)
	Save(Session) error
}

// Repository stores the session as JSON inside the state directory.
type Repository struct {
	path string
}

// NewRepository creates a repository writing dir/session.json.
func NewRepository(dir string) *Repository {
	return &Repository{path: filepath.Join(dir, "session.json")}
}

// Path returns the snapshot file location.
func (r *Repository) Path() string {
	return r.path
}

// Load reads the persisted session if present.
func (r *Repository) Load() (Session, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Session{}, ErrSnapshotNotFound
		}
		return Session{}, err
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, fmt.Errorf("workflow: decode %s: %w", r.path, err)
	}
	return sess, nil
}

// Save writes the session, replacing the previous snapshot via rename.
func (r *Repository) Save(sess Session) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return err
	}
	encoded, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("workflow: encode session: %w", err)
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, append(encoded, '\n'), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, r.path)
}

// Clear removes the snapshot. A missing file is not an error.
func (r *Repository) Clear() error {
	if err := os.Remove(r.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Autosave saves a snapshot after each event that changes the step or
// completes a draft. Errors go to onError.
func Autosave(store *Store, repo SnapshotStore, onError func(error)) func(Event) {
	return func(ev Event) {
		switch ev.Action {
		case "goto-step", "complete-generation", "set-result", "reset", "apply-extraction":
		default:
			return
		}
		if err := repo.Save(store.Snapshot()); err != nil && onError != nil {
			onError(err)
		}
	}
}
