package workflow

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Step is an index into the fixed creation sequence.
type Step int

const (
	StepSource Step = iota
	StepBaseText
	StepConfigure
	StepResult
)

// Steps lists the sequence in order.
var Steps = []Step{StepSource, StepBaseText, StepConfigure, StepResult}

// String returns the stable identifier used in snapshots and logs.
func (s Step) String() string {
	switch s {
	case StepSource:
		return "source"
	case StepBaseText:
		return "base-text"
	case StepConfigure:
		return "configure"
	case StepResult:
		return "result"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// FriendlyName returns a short title suitable for the step header.
func (s Step) FriendlyName() string {
	switch s {
	case StepSource:
		return "Source"
	case StepBaseText:
		return "Base Text"
	case StepConfigure:
		return "Configure"
	case StepResult:
		return "Result"
	default:
		return "Unknown"
	}
}

// Valid reports whether s is part of the sequence.
func (s Step) Valid() bool {
	return s >= StepSource && s <= StepResult
}

// Next returns the following step. The result step has none.
func (s Step) Next() (Step, bool) {
	if !s.Valid() || s == StepResult {
		return s, false
	}
	return s + 1, true
}

// Prev returns the preceding step. The source step has none.
func (s Step) Prev() (Step, bool) {
	if !s.Valid() || s == StepSource {
		return s, false
	}
	return s - 1, true
}

// ParseStep accepts either the identifier or the index.
func ParseStep(value string) (Step, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	for _, step := range Steps {
		if trimmed == step.String() || trimmed == fmt.Sprint(int(step)) {
			return step, nil
		}
	}
	return 0, fmt.Errorf("workflow: unknown step %q", value)
}

func (s Step) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("workflow: invalid step %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Step) UnmarshalText(data []byte) error {
	parsed, err := ParseStep(string(data))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// StepSet is the set of completed step indices. The zero value is empty and
// every method returns a new set.
type StepSet uint8

// StepSetOf builds a set from steps, ignoring invalid ones.
func StepSetOf(steps ...Step) StepSet {
	var set StepSet
	for _, step := range steps {
		set = set.With(step)
	}
	return set
}

func (s StepSet) Has(step Step) bool {
	if !step.Valid() {
		return false
	}
	return s&(1<<uint(step)) != 0
}

func (s StepSet) With(step Step) StepSet {
	if !step.Valid() {
		return s
	}
	return s | 1<<uint(step)
}

func (s StepSet) Without(step Step) StepSet {
	if !step.Valid() {
		return s
	}
	return s &^ (1 << uint(step))
}

// Steps returns the members in sequence order.
func (s StepSet) Steps() []Step {
	var out []Step
	for _, step := range Steps {
		if s.Has(step) {
			out = append(out, step)
		}
	}
	return out
}

func (s StepSet) Len() int {
	return len(s.Steps())
}

func (s StepSet) MarshalJSON() ([]byte, error) {
	steps := s.Steps()
	if steps == nil {
		steps = []Step{}
	}
	return json.Marshal(steps)
}

func (s *StepSet) UnmarshalJSON(data []byte) error {
	var steps []Step
	if err := json.Unmarshal(data, &steps); err != nil {
		return fmt.Errorf("workflow: decode completed steps: %w", err)
	}
	*s = StepSetOf(steps...)
	return nil
}
