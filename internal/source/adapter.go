package source

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kingrea/draftdesk/internal/content"
)

// Extraction is the uniform result every adapter produces.
type Extraction struct {
	Kind      content.Kind
	Title     string
	Blocks    []content.Block
	Selection content.Selection
	// FullText is an alternative single-text representation, when the source
	// offers one (web pages).
	FullText string
	Meta     map[string]string
	// Reason explains an empty extraction to the user.
	Reason string
	// Skipped marks an explicit decision to continue without blocks.
	Skipped bool
}

// Empty reports whether the extraction produced nothing to curate.
func (e Extraction) Empty() bool {
	return len(e.Blocks) == 0
}

// WordCount sums words over the selected blocks.
func (e Extraction) WordCount() int {
	return content.SelectedWordCount(e.Blocks, e.Selection)
}

// Adapter normalizes one source kind's raw payload into blocks.
type Adapter interface {
	Kind() content.Kind
	// Extract never returns an error for empty input; it reports an empty
	// extraction with a Reason instead. A payload of the wrong type panics
	// with *MalformedPayloadError.
	Extract(payload content.Payload) Extraction
}

// MalformedPayloadError is raised (as a panic value) when an adapter receives
// a payload that belongs to another kind.
type MalformedPayloadError struct {
	Adapter content.Kind
	Payload content.Payload
}

func (e *MalformedPayloadError) Error() string {
	got := content.Kind("nil")
	if e.Payload != nil {
		got = e.Payload.Kind()
	}
	return fmt.Sprintf("source: %s adapter received %T (%s payload)", e.Adapter, e.Payload, got)
}

// expectPayload asserts the payload shape at the adapter boundary. A nil
// payload is reported as absent (ok=false); anything else of the wrong type
// panics.
func expectPayload[T content.Payload](kind content.Kind, payload content.Payload) (T, bool) {
	var zero T
	if payload == nil {
		return zero, false
	}
	typed, ok := payload.(T)
	if !ok {
		panic(&MalformedPayloadError{Adapter: kind, Payload: payload})
	}
	return typed, true
}

func emptyExtraction(kind content.Kind, reason string) Extraction {
	return Extraction{Kind: kind, Reason: reason}
}

func newExtraction(kind content.Kind, title string, blocks []content.Block) Extraction {
	ext := Extraction{
		Kind:      kind,
		Title:     title,
		Blocks:    blocks,
		Selection: content.SelectionOf(content.BlockIDs(blocks)...),
	}
	return ext
}

// Registry maps source kinds to adapters.
type Registry struct {
	mu       sync.RWMutex
	adapters map[content.Kind]Adapter
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: map[content.Kind]Adapter{}}
}

// NewDefaultRegistry registers every built-in adapter against cat.
func NewDefaultRegistry(cat *Catalog) *Registry {
	if cat == nil {
		cat = &Catalog{}
	}
	reg := NewRegistry()
	reg.MustRegister(NewVideoAdapter())
	reg.MustRegister(NewTranscriptAdapter())
	reg.MustRegister(NewTrendingAdapter(cat))
	reg.MustRegister(NewFeedAdapter())
	reg.MustRegister(NewWebLinkAdapter(cat))
	return reg
}

// Register installs an adapter. Returns an error if its kind already exists.
func (r *Registry) Register(adapter Adapter) error {
	if adapter == nil {
		return fmt.Errorf("source: adapter is required")
	}
	kind := adapter.Kind()
	if !kind.Valid() || kind == content.KindNone {
		return fmt.Errorf("source: adapter kind %q is not registrable", kind)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.adapters[kind]; exists {
		return fmt.Errorf("source: %s adapter already registered", kind)
	}
	r.adapters[kind] = adapter
	return nil
}

// MustRegister panics if registration fails.
func (r *Registry) MustRegister(adapter Adapter) {
	if err := r.Register(adapter); err != nil {
		panic(err)
	}
}

// Resolve returns the adapter for kind.
func (r *Registry) Resolve(kind content.Kind) (Adapter, error) {
	r.mu.RLock()
	adapter, ok := r.adapters[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("source: no adapter for kind %s", kind)
	}
	return adapter, nil
}

// Kinds returns the registered kinds, sorted.
func (r *Registry) Kinds() []content.Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]content.Kind, 0, len(r.adapters))
	for kind := range r.adapters {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Extract routes src to its adapter.
func (r *Registry) Extract(src content.Source) (Extraction, error) {
	if src.IsZero() {
		return Extraction{}, fmt.Errorf("source: no source selected")
	}
	adapter, err := r.Resolve(src.Kind)
	if err != nil {
		return Extraction{}, err
	}
	return adapter.Extract(src.Payload), nil
}
