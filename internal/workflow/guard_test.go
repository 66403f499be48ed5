package workflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/draftdesk/internal/content"
)

func TestGuardRejections(t *testing.T) {
	sess := NewSession()
	ok, rej := Guard(sess, StepSource)
	assert.False(t, ok)
	assert.Equal(t, RejectNoSource, rej.Code)

	sess.Source = content.MustSource(content.KindWebLink, content.WebLinkPayload{URL: "https://example.com"})
	ok, _ = Guard(sess, StepSource)
	assert.True(t, ok)

	_, rej = Guard(sess, StepBaseText)
	assert.Equal(t, RejectEmptySelection, rej.Code)

	sess.BaseText.EditMode = EditModeFullText
	sess.BaseText.FullText = "  \n"
	_, rej = Guard(sess, StepBaseText)
	assert.Equal(t, RejectEmptyFullText, rej.Code)

	ok, _ = Guard(sess, StepConfigure)
	assert.True(t, ok)
	sess.Generation.Active = true
	_, rej = Guard(sess, StepConfigure)
	assert.Equal(t, RejectGenerationRunning, rej.Code)

	_, rej = Guard(sess, StepResult)
	assert.Equal(t, RejectTerminalStep, rej.Code)
}

func TestNavigatorWalksTheSequence(t *testing.T) {
	store, _ := feedStore(t, "art-solar-1")
	nav := NewNavigator(store)

	tr, err := nav.Advance()
	require.NoError(t, err)
	assert.Equal(t, StepBaseText, tr.To)
	assert.False(t, tr.Ticket.Valid())

	tr, err = nav.Advance()
	require.NoError(t, err)
	assert.Equal(t, StepConfigure, tr.To)

	tr, err = nav.Advance()
	require.NoError(t, err)
	assert.Equal(t, StepResult, tr.To)
	require.True(t, tr.Ticket.Valid())
	assert.True(t, store.Snapshot().Generation.Active)
	assert.True(t, store.CanAdvance(StepConfigure))

	_, err = nav.Advance()
	var te *TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, RejectTerminalStep, te.Rejection.Code)
}

func TestNavigatorRefusesWithReason(t *testing.T) {
	store := newTestStore(t)
	nav := NewNavigator(store)
	_, err := nav.Advance()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	var te *TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, RejectNoSource, te.Rejection.Code)
	assert.Contains(t, err.Error(), "choose a source")
	assert.Equal(t, StepSource, nav.Current())
}

func TestNavigatorNoSkippingForward(t *testing.T) {
	store, _ := feedStore(t, "art-solar-1")
	nav := NewNavigator(store)
	_, err := nav.GoTo(StepConfigure)
	var te *TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, RejectSkipForward, te.Rejection.Code)

	tr, err := nav.GoTo(StepBaseText)
	require.NoError(t, err)
	assert.Equal(t, StepBaseText, tr.To)
	_, err = nav.GoTo(Step(-1))
	assert.Error(t, err)
}

func TestNavigatorBackIsAlwaysAllowed(t *testing.T) {
	store, ext := feedStore(t, "art-solar-1")
	nav := NewNavigator(store)
	_, err := nav.Advance()
	require.NoError(t, err)
	for _, b := range ext.Blocks {
		store.ToggleBlockSelected(b.ID)
	}
	ok, rej := nav.Check()
	assert.False(t, ok)
	assert.Equal(t, RejectEmptySelection, rej.Code)

	tr, moved := nav.Back()
	assert.True(t, moved)
	assert.Equal(t, StepSource, tr.To)
	_, moved = nav.Back()
	assert.False(t, moved)
}

func TestBackFromResultCancelsGeneration(t *testing.T) {
	store, _ := feedStore(t, "art-solar-1")
	nav := NewNavigator(store)
	var ticket Ticket
	for i := 0; i < 3; i++ {
		tr, err := nav.Advance()
		require.NoError(t, err)
		ticket = tr.Ticket
	}
	require.True(t, store.ReportProgress(ticket, 40))
	_, moved := nav.Back()
	require.True(t, moved)
	assert.False(t, store.CompleteGeneration(ticket, GenerationResult{Title: "late"}))
	assert.Nil(t, store.Snapshot().Result)
}

func TestRegenerateOnlyOnResult(t *testing.T) {
	store, _ := feedStore(t, "art-solar-1")
	nav := NewNavigator(store)
	_, err := nav.Regenerate()
	assert.ErrorIs(t, err, ErrInvalidTransition)

	var first Ticket
	for i := 0; i < 3; i++ {
		tr, err := nav.Advance()
		require.NoError(t, err)
		first = tr.Ticket
	}
	second, err := nav.Regenerate()
	require.NoError(t, err)
	assert.False(t, store.Current(first))
	assert.True(t, store.Current(second))
}

func TestGenerationRequestCarriesAssembledText(t *testing.T) {
	store, _ := feedStore(t, "art-solar-1")
	_, err := store.AddQuote("citação")
	require.NoError(t, err)
	req := NewNavigator(store).GenerationRequest()
	assert.Equal(t, store.AssembleBaseText(), req.BaseText)
	assert.Equal(t, store.TotalWordCount(), req.WordCount)
	assert.Equal(t, content.KindFeedArticles, req.SourceKind)
	assert.NotEmpty(t, req.Topic)
	assert.Len(t, req.Configuration.Quotes, 1)
}

func TestStepParsing(t *testing.T) {
	step, err := ParseStep("base-text")
	require.NoError(t, err)
	assert.Equal(t, StepBaseText, step)
	step, err = ParseStep("3")
	require.NoError(t, err)
	assert.Equal(t, StepResult, step)
	_, err = ParseStep("publish")
	assert.Error(t, err)

	next, ok := StepConfigure.Next()
	assert.True(t, ok)
	assert.Equal(t, StepResult, next)
	_, ok = StepResult.Next()
	assert.False(t, ok)
}
