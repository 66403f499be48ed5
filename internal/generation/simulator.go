package generation

import (
	"context"
	"fmt"
	"time"

	"github.com/kingrea/draftdesk/internal/workflow"
)

// DefaultStep is the progress increment used when none is configured.
const DefaultStep = 10

// Simulator produces the progress sequence of a mocked generation run.
type Simulator struct {
	Step int
}

func (s Simulator) step() int {
	if s.Step <= 0 || s.Step >= 100 {
		return DefaultStep
	}
	return s.Step
}

// Next returns the progress value after current. It reports false once the
// run should complete; 100 is reserved for completion.
func (s Simulator) Next(current int) (int, bool) {
	if current < 0 {
		current = 0
	}
	next := current + s.step()
	if next >= 100 {
		return current, false
	}
	return next, true
}

// Sequence lists every intermediate progress value.
func (s Simulator) Sequence() []int {
	var out []int
	for pct, ok := s.Next(0); ok; pct, ok = s.Next(pct) {
		out = append(out, pct)
	}
	return out
}

// Sink is the slice of the store a run reports to.
type Sink interface {
	Current(workflow.Ticket) bool
	ReportProgress(workflow.Ticket, int) bool
	CompleteGeneration(workflow.Ticket, workflow.GenerationResult) bool
}

// Runner drives a generation to completion outside the UI loop.
type Runner struct {
	Simulator Simulator
	Composer  *Composer
	Interval  time.Duration
	// OnProgress is called after each accepted progress report.
	OnProgress func(pct int)
}

// Run reports progress for ticket every interval and then completes it. It
// returns false when the ticket was superseded before completion and the
// context error when ctx ends first.
func (r Runner) Run(ctx context.Context, sink Sink, ticket workflow.Ticket, req workflow.GenerationRequest) (bool, error) {
	if sink == nil {
		return false, fmt.Errorf("generation: sink is required")
	}
	composer := r.Composer
	if composer == nil {
		composer = NewComposer()
	}
	interval := r.Interval
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for _, pct := range r.Simulator.Sequence() {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-ticker.C:
		}
		if !sink.ReportProgress(ticket, pct) && !sink.Current(ticket) {
			return false, nil
		}
		if r.OnProgress != nil {
			r.OnProgress(pct)
		}
	}
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-ticker.C:
	}
	result, err := composer.Compose(req)
	if err != nil {
		return false, err
	}
	return sink.CompleteGeneration(ticket, result), nil
}

// Run is Runner.Run with defaults.
func Run(ctx context.Context, sink Sink, ticket workflow.Ticket, req workflow.GenerationRequest, interval time.Duration) (bool, error) {
	return Runner{Interval: interval}.Run(ctx, sink, ticket, req)
}
