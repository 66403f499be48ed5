// Package artifact exports generated drafts as markdown documents with a
// YAML frontmatter block recording where the draft came from. Exported
// drafts live under .draftdesk/drafts and can be checked for tampering via
// the body checksum.
package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/kingrea/draftdesk/internal/content"
	"github.com/kingrea/draftdesk/internal/workflow"
)

// State summarises an exported draft on disk.
type State string

const (
	StateReady   State = "ready"
	StateMissing State = "missing"
	StateInvalid State = "invalid"
	StateError   State = "error"
)

// Metadata captures provenance stored inside the draft frontmatter.
type Metadata struct {
	SessionID   string
	Title       string
	Source      string
	Words       int
	GeneratedAt time.Time
	ExportedAt  time.Time
	Checksum    string
	Notes       map[string]string
}

// WithDefaults stamps the export time and body checksum.
func (m Metadata) WithDefaults(body []byte, now time.Time) Metadata {
	clone := m
	if clone.ExportedAt.IsZero() {
		clone.ExportedAt = now
	}
	if clone.GeneratedAt.IsZero() {
		clone.GeneratedAt = clone.ExportedAt
	}
	clone.Checksum = Checksum(body)
	clone.Notes = cloneNotes(m.Notes)
	return clone
}

// Validate ensures the metadata can be written.
func (m Metadata) Validate() error {
	if strings.TrimSpace(m.SessionID) == "" {
		return fmt.Errorf("artifact: session id is required")
	}
	if strings.TrimSpace(m.Title) == "" {
		return fmt.Errorf("artifact: title is required for session %s", m.SessionID)
	}
	if strings.TrimSpace(m.Source) == "" {
		return fmt.Errorf("artifact: source is required for session %s", m.SessionID)
	}
	return nil
}

// CheckResult summarises the on-disk status of an exported draft.
type CheckResult struct {
	Path     string
	State    State
	Metadata *Metadata
	Err      error
}

// Draft is a generated result ready to be exported.
type Draft struct {
	Metadata Metadata
	Body     []byte
}

// FromSession builds the export for the session's generated draft. It
// fails when no draft has been generated yet.
func FromSession(sess workflow.Session) (Draft, error) {
	if sess.Result == nil {
		return Draft{}, fmt.Errorf("artifact: session %s has no generated draft", sess.ID)
	}
	res := sess.Result
	notes := map[string]string{}
	if title := sess.BaseText.Extraction.Title; title != "" {
		notes["extraction"] = title
	}
	if cfg := sess.Configuration; cfg.Persona != "" {
		notes["persona"] = cfg.Persona
	}
	if !sess.Configuration.PublicationDate.IsZero() {
		notes["publication_date"] = sess.Configuration.PublicationDate.Format("2006-01-02")
	}
	return Draft{
		Metadata: Metadata{
			SessionID:   sess.ID,
			Title:       res.Title,
			Source:      string(sess.Source.Kind),
			Words:       content.CountWords(res.Content),
			GeneratedAt: res.GeneratedAt,
			Notes:       notes,
		},
		Body: []byte(res.Content),
	}, nil
}

// Checksum returns the sha256 of body as hex.
func Checksum(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// Slug turns a title into a file-name friendly token.
func Slug(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if b.Len() >= 48 {
			break
		}
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "draft"
	}
	return slug
}
