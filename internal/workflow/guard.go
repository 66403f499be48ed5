package workflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kingrea/draftdesk/internal/content"
)

// ErrInvalidTransition is wrapped by every refused navigation.
var ErrInvalidTransition = errors.New("workflow: invalid transition")

// RejectionCode enumerates why a step may not be left.
type RejectionCode string

const (
	RejectNoSource          RejectionCode = "no-source"
	RejectEmptyExtraction   RejectionCode = "empty-extraction"
	RejectEmptyFullText     RejectionCode = "empty-fulltext"
	RejectEmptySelection    RejectionCode = "empty-selection"
	RejectGenerationRunning RejectionCode = "generation-running"
	RejectTerminalStep      RejectionCode = "terminal-step"
	RejectSkipForward       RejectionCode = "skip-forward"
)

// Rejection explains a failed guard in terms a user can act on.
type Rejection struct {
	Code   RejectionCode `json:"code"`
	Detail string        `json:"detail"`
}

func (r Rejection) String() string {
	if r.Detail == "" {
		return string(r.Code)
	}
	return r.Detail
}

// TransitionError reports a refused navigation. It unwraps to
// ErrInvalidTransition.
type TransitionError struct {
	From      Step
	To        Step
	Rejection Rejection
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("workflow: cannot move from %s to %s: %s", e.From.FriendlyName(), e.To.FriendlyName(), e.Rejection)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// Guard evaluates the exit guard of step against sess.
func Guard(sess Session, step Step) (bool, Rejection) {
	switch step {
	case StepSource:
		if sess.Source.IsZero() {
			return false, Rejection{Code: RejectNoSource, Detail: "choose a source to continue"}
		}
		return true, Rejection{}
	case StepBaseText:
		return baseTextGuard(sess)
	case StepConfigure:
		if sess.Generation.Active {
			return false, Rejection{Code: RejectGenerationRunning, Detail: "a draft is already being generated"}
		}
		return true, Rejection{}
	case StepResult:
		return false, Rejection{Code: RejectTerminalStep, Detail: "the draft is ready; start over to create another"}
	default:
		return false, Rejection{Code: RejectSkipForward, Detail: fmt.Sprintf("unknown step %d", int(step))}
	}
}

func baseTextGuard(sess Session) (bool, Rejection) {
	if sess.Source.IsZero() {
		return false, Rejection{Code: RejectNoSource, Detail: "choose a source to continue"}
	}
	bt := sess.BaseText
	if sess.curationSkipped() {
		return true, Rejection{}
	}
	if bt.EditMode == EditModeFullText {
		if strings.TrimSpace(bt.FullText) == "" {
			return false, Rejection{Code: RejectEmptyFullText, Detail: "write or paste some text to continue"}
		}
		return true, Rejection{}
	}
	if bt.Extraction.Status == ExtractionEmpty {
		detail := "nothing to curate"
		if bt.Extraction.Reason != "" {
			detail = "nothing to curate: " + bt.Extraction.Reason
		}
		return false, Rejection{Code: RejectEmptyExtraction, Detail: detail}
	}
	if len(sess.SelectedBlocks()) == 0 {
		return false, Rejection{Code: RejectEmptySelection, Detail: "select at least one block"}
	}
	return true, Rejection{}
}

// dataDerived reports whether step's completion follows session data rather
// than explicit confirmation.
func dataDerived(step Step) bool {
	return step == StepSource || step == StepBaseText
}

// syncCompletion re-evaluates the data-derived steps.
func syncCompletion(sess *Session) {
	for _, step := range []Step{StepSource, StepBaseText} {
		if ok, _ := Guard(*sess, step); ok {
			sess.CompletedSteps = sess.CompletedSteps.With(step)
		} else {
			sess.CompletedSteps = sess.CompletedSteps.Without(step)
		}
	}
}

// Transition describes a completed navigation. Ticket is valid when the move
// started a generation.
type Transition struct {
	From   Step
	To     Step
	Ticket Ticket
}

// Navigator drives the linear step sequence over a Store.
type Navigator struct {
	store *Store
}

// NewNavigator binds a navigator to store.
func NewNavigator(store *Store) *Navigator {
	return &Navigator{store: store}
}

// Current returns the step the session is on.
func (n *Navigator) Current() Step {
	return n.store.Snapshot().CurrentStep
}

// Check evaluates the exit guard of the current step.
func (n *Navigator) Check() (bool, Rejection) {
	sess := n.store.Snapshot()
	return Guard(sess, sess.CurrentStep)
}

// Advance leaves the current step when its guard passes. Leaving Configure
// starts a generation.
func (n *Navigator) Advance() (Transition, error) {
	sess := n.store.Snapshot()
	from := sess.CurrentStep
	to, ok := from.Next()
	if !ok {
		_, rej := Guard(sess, from)
		return Transition{From: from, To: from}, &TransitionError{From: from, To: from, Rejection: rej}
	}
	if ok, rej := Guard(sess, from); !ok {
		return Transition{From: from, To: from}, &TransitionError{From: from, To: to, Rejection: rej}
	}
	if err := n.store.ConfirmStep(from); err != nil {
		return Transition{From: from, To: from}, err
	}
	tr := Transition{From: from, To: to}
	if from == StepConfigure {
		tr.Ticket = n.store.BeginGeneration()
	}
	if err := n.store.SetCurrentStep(to); err != nil {
		return Transition{From: from, To: from}, err
	}
	return tr, nil
}

// Back moves one step backwards. It reports false on the first step.
func (n *Navigator) Back() (Transition, bool) {
	from := n.Current()
	to, ok := from.Prev()
	if !ok {
		return Transition{From: from, To: from}, false
	}
	if err := n.store.SetCurrentStep(to); err != nil {
		return Transition{From: from, To: from}, false
	}
	return Transition{From: from, To: to}, true
}

// GoTo jumps to step. Backwards is always allowed; forwards only to the
// next step and only through its guard.
func (n *Navigator) GoTo(step Step) (Transition, error) {
	from := n.Current()
	if !step.Valid() {
		return Transition{From: from, To: from}, fmt.Errorf("workflow: invalid step %d", int(step))
	}
	switch {
	case step == from:
		return Transition{From: from, To: from}, nil
	case step < from:
		if err := n.store.SetCurrentStep(step); err != nil {
			return Transition{From: from, To: from}, err
		}
		return Transition{From: from, To: step}, nil
	case step == from+1:
		return n.Advance()
	default:
		rej := Rejection{Code: RejectSkipForward, Detail: fmt.Sprintf("finish %s first", from.FriendlyName())}
		return Transition{From: from, To: from}, &TransitionError{From: from, To: step, Rejection: rej}
	}
}

// Regenerate supersedes any in-flight generation with a new one. Only valid
// on the result step.
func (n *Navigator) Regenerate() (Ticket, error) {
	from := n.Current()
	if from != StepResult {
		rej := Rejection{Code: RejectSkipForward, Detail: "drafts are generated from the result step"}
		return Ticket{}, &TransitionError{From: from, To: StepResult, Rejection: rej}
	}
	return n.store.BeginGeneration(), nil
}

// GenerationRequest is everything the generator consumes.
type GenerationRequest struct {
	SessionID     string
	SourceKind    content.Kind
	Topic         string
	BaseText      string
	WordCount     int
	Configuration Configuration
	Materials     content.Materials
}

// GenerationRequest snapshots the current session for the generator.
func (n *Navigator) GenerationRequest() GenerationRequest {
	return RequestFor(n.store.Snapshot())
}

// RequestFor builds a generation request from sess.
func RequestFor(sess Session) GenerationRequest {
	text := sess.AssembleBaseText()
	return GenerationRequest{
		SessionID:     sess.ID,
		SourceKind:    sess.Source.Kind,
		Topic:         sess.Topic(),
		BaseText:      text,
		WordCount:     content.CountWords(text),
		Configuration: sess.Clone().Configuration,
		Materials:     sess.Materials.Clone(),
	}
}
