package workflow

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kingrea/draftdesk/internal/content"
	"github.com/kingrea/draftdesk/internal/source"
)

// Event is emitted after every action that changed the session.
type Event struct {
	Action    string
	Step      Step
	Detail    string
	SessionID string
	At        time.Time
}

// Ticket identifies one generation run. Late callbacks carrying an old
// ticket are dropped.
type Ticket struct {
	epoch uint64
	seq   uint64
}

// Valid reports whether the ticket was issued by a store.
func (t Ticket) Valid() bool {
	return t.seq != 0
}

// Store is the single owner of the creation session. Every action replaces
// the session with an updated copy; snapshots handed out are never mutated.
type Store struct {
	mu        sync.RWMutex
	session   Session
	epoch     uint64
	genSeq    uint64
	active    Ticket
	clock     func() time.Time
	observers []func(Event)
}

// Option customizes the store instance.
type Option func(*Store)

// WithClock injects a deterministic clock (primarily for tests).
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithObserver registers a callback for session events. It runs outside the
// store lock and may read the store.
func WithObserver(fn func(Event)) Option {
	return func(s *Store) {
		if fn != nil {
			s.observers = append(s.observers, fn)
		}
	}
}

// Observe registers an additional observer after construction.
func (s *Store) Observe(fn func(Event)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

// NewStore returns a store holding a pristine session.
func NewStore(opts ...Option) *Store {
	s := &Store{clock: time.Now, epoch: 1}
	for _, opt := range opts {
		opt(s)
	}
	s.session = NewSession()
	s.session.UpdatedAt = s.clock()
	return s
}

// update runs fn against a copy of the session and installs the copy when
// fn reports a change.
func (s *Store) update(action string, fn func(sess *Session) (string, bool)) bool {
	s.mu.Lock()
	next := s.session.Clone()
	detail, changed := fn(&next)
	var ev Event
	if changed {
		syncCompletion(&next)
		next.UpdatedAt = s.clock()
		s.session = next
		ev = Event{Action: action, Step: next.CurrentStep, Detail: detail, SessionID: next.ID, At: next.UpdatedAt}
	}
	observers := s.observers
	s.mu.Unlock()
	if changed {
		for _, fn := range observers {
			fn(ev)
		}
	}
	return changed
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Clone()
}

// AssembleBaseText flattens the active base-text representation.
func (s *Store) AssembleBaseText() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.AssembleBaseText()
}

// TotalWordCount counts the words of AssembleBaseText.
func (s *Store) TotalWordCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.TotalWordCount()
}

// TotalMaterialsCount sums the supplementary material lists.
func (s *Store) TotalMaterialsCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.TotalMaterialsCount()
}

// CanAdvance reports whether step is in the completed set.
func (s *Store) CanAdvance(step Step) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.CanAdvance(step)
}

// SetSource replaces the source. The base text is discarded, any generation
// is cancelled and async work tied to the previous source becomes stale.
func (s *Store) SetSource(src content.Source) error {
	if src.Kind == "" {
		src = content.NoSource()
	}
	if _, err := content.NewSource(src.Kind, src.Payload); err != nil {
		return err
	}
	s.update("set-source", func(sess *Session) (string, bool) {
		s.epoch++
		s.active = Ticket{}
		sess.Source = src
		sess.BaseText = newBaseText()
		sess.Result = nil
		sess.Generation = Generation{}
		sess.CompletedSteps = sess.CompletedSteps.Without(StepResult)
		return src.Kind.FriendlyName(), true
	})
	return nil
}

// ApplyExtraction installs an adapter result for the current source. An
// extraction for another kind is stale and dropped.
func (s *Store) ApplyExtraction(ext source.Extraction) bool {
	return s.update("apply-extraction", func(sess *Session) (string, bool) {
		if sess.Source.IsZero() || ext.Kind != sess.Source.Kind {
			return "", false
		}
		bt := newBaseText()
		bt.Blocks = content.CloneBlocks(ext.Blocks)
		bt.Selected = content.Selection{}.SelectAll(content.BlockIDs(bt.Blocks))
		bt.FullText = ext.FullText
		bt.SkipCuration = ext.Skipped
		bt.Extraction = ExtractionState{Status: ExtractionReady, Title: ext.Title, Meta: cloneMeta(ext.Meta)}
		if ext.Empty() && !ext.Skipped {
			bt.Extraction.Status = ExtractionEmpty
			bt.Extraction.Reason = ext.Reason
		}
		return fmt.Sprintf("%d block(s), %s", len(bt.Blocks), bt.Extraction.Status), true
	})
}

// SetBlocks replaces the block list and selects every new block.
func (s *Store) SetBlocks(blocks []content.Block) {
	s.update("set-blocks", func(sess *Session) (string, bool) {
		bt := &sess.BaseText
		bt.Blocks = content.CloneBlocks(blocks)
		bt.Selected = content.Selection{}.SelectAll(content.BlockIDs(bt.Blocks))
		bt.SkipCuration = false
		if len(bt.Blocks) == 0 {
			bt.Extraction.Status = ExtractionEmpty
			if bt.Extraction.Reason == "" {
				bt.Extraction.Reason = "no blocks were extracted"
			}
		} else {
			bt.Extraction.Status = ExtractionReady
			bt.Extraction.Reason = ""
		}
		return fmt.Sprintf("%d block(s)", len(bt.Blocks)), true
	})
}

// ToggleBlockSelected flips the membership of id. Unknown ids are ignored.
func (s *Store) ToggleBlockSelected(id string) bool {
	return s.update("toggle-block", func(sess *Session) (string, bool) {
		if !hasBlock(sess.BaseText.Blocks, id) {
			return "", false
		}
		sess.BaseText.Selected = sess.BaseText.Selected.Toggle(id)
		return id, true
	})
}

// SelectAllBlocks selects every block.
func (s *Store) SelectAllBlocks() bool {
	return s.update("select-all", func(sess *Session) (string, bool) {
		ids := content.BlockIDs(sess.BaseText.Blocks)
		next := sess.BaseText.Selected.SelectAll(ids)
		if next.Equal(sess.BaseText.Selected) {
			return "", false
		}
		sess.BaseText.Selected = next
		return fmt.Sprintf("%d selected", next.Count()), true
	})
}

// ClearSelection deselects every block.
func (s *Store) ClearSelection() bool {
	return s.update("clear-selection", func(sess *Session) (string, bool) {
		if sess.BaseText.Selected.Count() == 0 {
			return "", false
		}
		sess.BaseText.Selected = sess.BaseText.Selected.Clear()
		return "", true
	})
}

// UpdateBlockContent overwrites a block's text. The previous text is not
// kept.
func (s *Store) UpdateBlockContent(id, text string) bool {
	return s.update("edit-block", func(sess *Session) (string, bool) {
		for i := range sess.BaseText.Blocks {
			if sess.BaseText.Blocks[i].ID != id {
				continue
			}
			if sess.BaseText.Blocks[i].Content == text {
				return "", false
			}
			sess.BaseText.Blocks[i].Content = text
			return id, true
		}
		return "", false
	})
}

// SetFullText replaces the full-text representation.
func (s *Store) SetFullText(text string) {
	s.update("set-fulltext", func(sess *Session) (string, bool) {
		sess.BaseText.FullText = text
		return fmt.Sprintf("%d word(s)", content.CountWords(text)), true
	})
}

// SetEditMode switches the active base-text representation.
func (s *Store) SetEditMode(mode EditMode) error {
	if mode != EditModeBlocks && mode != EditModeFullText {
		return fmt.Errorf("workflow: unknown edit mode %q", mode)
	}
	s.update("set-edit-mode", func(sess *Session) (string, bool) {
		if sess.BaseText.EditMode == mode {
			return "", false
		}
		sess.BaseText.EditMode = mode
		return string(mode), true
	})
	return nil
}

// SetSkipCuration records the choice to continue a trending-topic source
// without curating articles.
func (s *Store) SetSkipCuration(skip bool) error {
	var err error
	s.update("skip-curation", func(sess *Session) (string, bool) {
		if sess.Source.Kind != content.KindTrendingTopic {
			err = fmt.Errorf("workflow: curation can only be skipped for %s sources", content.KindTrendingTopic.FriendlyName())
			return "", false
		}
		if sess.BaseText.SkipCuration == skip {
			return "", false
		}
		sess.BaseText.SkipCuration = skip
		return fmt.Sprint(skip), true
	})
	return err
}

// ConfirmStep adds step to the completed set. Source and base text follow
// their data, so confirming them while their guard fails has no effect.
func (s *Store) ConfirmStep(step Step) error {
	if !step.Valid() {
		return fmt.Errorf("workflow: invalid step %d", int(step))
	}
	s.update("confirm-step", func(sess *Session) (string, bool) {
		if sess.CompletedSteps.Has(step) || dataDerived(step) {
			return "", false
		}
		sess.CompletedSteps = sess.CompletedSteps.With(step)
		return step.String(), true
	})
	return nil
}

// SetConfiguration merges patch into the configuration.
func (s *Store) SetConfiguration(patch ConfigPatch) {
	if patch.Empty() {
		return
	}
	s.update("set-configuration", func(sess *Session) (string, bool) {
		sess.Configuration = patch.apply(sess.Configuration)
		return "", true
	})
}

// AddQuote appends a quote.
func (s *Store) AddQuote(text string) (content.Quote, error) {
	quote := content.NewQuote(text)
	if quote.Text == "" {
		return content.Quote{}, fmt.Errorf("workflow: quote text is required")
	}
	s.update("add-quote", func(sess *Session) (string, bool) {
		sess.Configuration.Quotes = append(sess.Configuration.Quotes, quote)
		return quote.ID, true
	})
	return quote, nil
}

// RemoveQuote drops the quote at index.
func (s *Store) RemoveQuote(index int) error {
	var err error
	s.update("remove-quote", func(sess *Session) (string, bool) {
		quotes := sess.Configuration.Quotes
		if index < 0 || index >= len(quotes) {
			err = fmt.Errorf("workflow: quote index %d out of range (%d quotes)", index, len(quotes))
			return "", false
		}
		sess.Configuration.Quotes = append(quotes[:index:index], quotes[index+1:]...)
		return quotes[index].ID, true
	})
	return err
}

// AddMaterial appends a pending material to category.
func (s *Store) AddMaterial(category content.MaterialCategory, reference string) (content.Material, error) {
	if _, err := content.ParseMaterialCategory(string(category)); err != nil {
		return content.Material{}, err
	}
	material := content.NewMaterial(reference)
	if material.Reference == "" {
		return content.Material{}, fmt.Errorf("workflow: material reference is required")
	}
	if category != content.MaterialDocuments {
		if err := source.ValidateURL(material.Reference); err != nil {
			return content.Material{}, fmt.Errorf("workflow: %s material: %w", category, err)
		}
	}
	s.update("add-material", func(sess *Session) (string, bool) {
		list := sess.Materials.List(category)
		sess.Materials = sess.Materials.With(category, append(list, material))
		return fmt.Sprintf("%s %s", category, material.Reference), true
	})
	return material, nil
}

// RemoveMaterial drops the material at index from category.
func (s *Store) RemoveMaterial(category content.MaterialCategory, index int) error {
	var err error
	s.update("remove-material", func(sess *Session) (string, bool) {
		list := sess.Materials.List(category)
		if index < 0 || index >= len(list) {
			err = fmt.Errorf("workflow: %s index %d out of range (%d items)", category, index, len(list))
			return "", false
		}
		removed := list[index]
		sess.Materials = sess.Materials.With(category, append(list[:index:index], list[index+1:]...))
		return fmt.Sprintf("%s %s", category, removed.Reference), true
	})
	return err
}

// MarkMaterialExtracted flags a material as processed.
func (s *Store) MarkMaterialExtracted(category content.MaterialCategory, id string) error {
	err := fmt.Errorf("workflow: no %s material with id %s", category, id)
	s.update("material-extracted", func(sess *Session) (string, bool) {
		list := sess.Materials.List(category)
		for i := range list {
			if list[i].ID != id {
				continue
			}
			err = nil
			if list[i].Status == content.MaterialExtracted {
				return "", false
			}
			list[i].Status = content.MaterialExtracted
			sess.Materials = sess.Materials.With(category, list)
			return list[i].Reference, true
		}
		return "", false
	})
	return err
}

// SetGenerationResult stores result, stamping GeneratedAt, and completes
// the result step. Any in-flight generation is superseded.
func (s *Store) SetGenerationResult(result GenerationResult) {
	s.update("set-result", func(sess *Session) (string, bool) {
		s.active = Ticket{}
		s.installResult(sess, result)
		return result.Title, true
	})
}

func (s *Store) installResult(sess *Session, result GenerationResult) {
	result.GeneratedAt = s.clock()
	sess.Result = &result
	sess.Generation = Generation{Active: false, Progress: 100}
	sess.CompletedSteps = sess.CompletedSteps.With(StepResult)
}

// BeginGeneration starts a generation, superseding any in-flight one.
func (s *Store) BeginGeneration() Ticket {
	var ticket Ticket
	s.update("begin-generation", func(sess *Session) (string, bool) {
		s.genSeq++
		ticket = Ticket{epoch: s.epoch, seq: s.genSeq}
		s.active = ticket
		sess.Generation = Generation{Active: true, Progress: 0}
		return fmt.Sprintf("run %d", ticket.seq), true
	})
	return ticket
}

// ReportProgress records progress for ticket. Stale tickets and
// non-increasing values are dropped.
func (s *Store) ReportProgress(ticket Ticket, pct int) bool {
	if pct > 100 {
		pct = 100
	}
	return s.update("generation-progress", func(sess *Session) (string, bool) {
		if !s.current(ticket) || pct <= sess.Generation.Progress {
			return "", false
		}
		sess.Generation.Progress = pct
		return fmt.Sprintf("%d%%", pct), true
	})
}

// CompleteGeneration installs result when ticket is still the active run.
// A ticket completes at most once.
func (s *Store) CompleteGeneration(ticket Ticket, result GenerationResult) bool {
	return s.update("complete-generation", func(sess *Session) (string, bool) {
		if !s.current(ticket) {
			return "", false
		}
		s.active = Ticket{}
		s.installResult(sess, result)
		return result.Title, true
	})
}

// CancelGeneration stops the in-flight generation, if any. Its later
// callbacks are dropped.
func (s *Store) CancelGeneration() bool {
	return s.update("cancel-generation", func(sess *Session) (string, bool) {
		if !s.active.Valid() {
			return "", false
		}
		s.active = Ticket{}
		sess.Generation = Generation{}
		return "", true
	})
}

// Current reports whether ticket belongs to the in-flight generation.
func (s *Store) Current(ticket Ticket) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current(ticket)
}

func (s *Store) current(ticket Ticket) bool {
	return ticket.Valid() && ticket == s.active && ticket.epoch == s.epoch
}

// SetCurrentStep moves the session pointer. Leaving the result step while a
// generation runs cancels it.
func (s *Store) SetCurrentStep(step Step) error {
	if !step.Valid() {
		return fmt.Errorf("workflow: invalid step %d", int(step))
	}
	s.update("goto-step", func(sess *Session) (string, bool) {
		if sess.CurrentStep == step {
			return "", false
		}
		if sess.CurrentStep == StepResult && s.active.Valid() {
			s.active = Ticket{}
			sess.Generation = Generation{}
		}
		from := sess.CurrentStep
		sess.CurrentStep = step
		return fmt.Sprintf("%s -> %s", from, step), true
	})
	return nil
}

// ResetSession discards everything and starts a pristine session.
func (s *Store) ResetSession() {
	s.update("reset", func(sess *Session) (string, bool) {
		s.epoch++
		s.active = Ticket{}
		*sess = NewSession()
		return sess.ID, true
	})
}

// Restore installs a previously saved session. Generations do not survive a
// restore.
func (s *Store) Restore(saved Session) error {
	if !saved.CurrentStep.Valid() {
		return fmt.Errorf("workflow: restore: invalid step %d", int(saved.CurrentStep))
	}
	if saved.Source.Kind == "" {
		saved.Source = content.NoSource()
	}
	if _, err := content.NewSource(saved.Source.Kind, saved.Source.Payload); err != nil {
		return fmt.Errorf("workflow: restore: %w", err)
	}
	if saved.BaseText.EditMode == "" {
		saved.BaseText.EditMode = EditModeBlocks
	}
	if _, err := ParseEditMode(string(saved.BaseText.EditMode)); err != nil {
		return fmt.Errorf("workflow: restore: %w", err)
	}
	if saved.BaseText.Extraction.Status == "" {
		saved.BaseText.Extraction.Status = ExtractionPending
	}
	if strings.TrimSpace(saved.ID) == "" {
		saved.ID = NewSession().ID
	}
	s.update("restore", func(sess *Session) (string, bool) {
		s.epoch++
		s.active = Ticket{}
		*sess = saved.Clone()
		sess.Generation = Generation{}
		return sess.ID, true
	})
	return nil
}

func hasBlock(blocks []content.Block, id string) bool {
	for _, b := range blocks {
		if b.ID == id {
			return true
		}
	}
	return false
}
