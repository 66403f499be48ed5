package artifact

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// ErrMissingFrontMatter indicates the document did not start with a YAML fence.
	ErrMissingFrontMatter = errors.New("artifact: missing frontmatter")
	// ErrMalformedFrontMatter indicates the YAML block could not be parsed.
	ErrMalformedFrontMatter = errors.New("artifact: malformed frontmatter")
)

// ParseFrontMatter extracts the metadata block and body from a document that
// starts with `---` YAML fences.
func ParseFrontMatter(content []byte) (Metadata, []byte, error) {
	if len(content) == 0 {
		return Metadata{}, nil, ErrMissingFrontMatter
	}
	normalized := normalizeNewlines(content)
	if !bytes.HasPrefix(normalized, []byte("---\n")) {
		return Metadata{}, nil, ErrMissingFrontMatter
	}
	parts := bytes.SplitN(normalized[4:], []byte("\n---\n"), 2)
	if len(parts) < 2 {
		return Metadata{}, nil, ErrMalformedFrontMatter
	}
	var envelope draftEnvelope
	if err := yaml.Unmarshal(parts[0], &envelope); err != nil {
		return Metadata{}, nil, fmt.Errorf("artifact: parse frontmatter: %w", err)
	}
	meta, err := envelope.toMetadata()
	if err != nil {
		return Metadata{}, nil, err
	}
	return meta, bytes.TrimPrefix(parts[1], []byte("\n")), nil
}

// WriteFrontMatter renders metadata + body with YAML fences.
func WriteFrontMatter(meta Metadata, body []byte) ([]byte, error) {
	if meta.SessionID == "" {
		return nil, fmt.Errorf("artifact: metadata missing session id")
	}
	envelope := draftEnvelope{}
	envelope.fromMetadata(meta)
	data, err := yaml.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("artifact: encode frontmatter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(bytes.TrimRight(data, "\n"))
	buf.WriteString("\n---\n\n")
	buf.Write(body)
	return buf.Bytes(), nil
}

type draftEnvelope struct {
	Draftdesk draftMetadata `yaml:"draftdesk"`
}

type draftMetadata struct {
	Session   string            `yaml:"session"`
	Title     string            `yaml:"title"`
	Source    string            `yaml:"source"`
	Words     int               `yaml:"words"`
	Generated string            `yaml:"generated"`
	Exported  string            `yaml:"exported"`
	Checksum  string            `yaml:"checksum,omitempty"`
	Notes     map[string]string `yaml:"notes,omitempty"`
}

func (e draftEnvelope) toMetadata() (Metadata, error) {
	d := e.Draftdesk
	if d.Session == "" || d.Title == "" || d.Source == "" {
		return Metadata{}, ErrMalformedFrontMatter
	}
	generated, err := parseTime(d.Generated)
	if err != nil {
		return Metadata{}, fmt.Errorf("artifact: parse generated timestamp: %w", err)
	}
	exported, err := parseTime(d.Exported)
	if err != nil {
		return Metadata{}, fmt.Errorf("artifact: parse exported timestamp: %w", err)
	}
	return Metadata{
		SessionID:   d.Session,
		Title:       d.Title,
		Source:      d.Source,
		Words:       d.Words,
		GeneratedAt: generated,
		ExportedAt:  exported,
		Checksum:    d.Checksum,
		Notes:       cloneNotes(d.Notes),
	}, nil
}

func (e *draftEnvelope) fromMetadata(meta Metadata) {
	e.Draftdesk = draftMetadata{
		Session:   meta.SessionID,
		Title:     meta.Title,
		Source:    meta.Source,
		Words:     meta.Words,
		Generated: meta.GeneratedAt.UTC().Format(timeLayout),
		Exported:  meta.ExportedAt.UTC().Format(timeLayout),
		Checksum:  meta.Checksum,
		Notes:     cloneNotes(meta.Notes),
	}
}

func cloneNotes(notes map[string]string) map[string]string {
	if len(notes) == 0 {
		return nil
	}
	cloned := make(map[string]string, len(notes))
	for k, v := range notes {
		cloned[k] = v
	}
	return cloned
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

func parseTime(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, fmt.Errorf("artifact: empty timestamp")
	}
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func normalizeNewlines(content []byte) []byte {
	return bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
}
