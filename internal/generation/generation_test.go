package generation

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/draftdesk/internal/content"
	"github.com/kingrea/draftdesk/internal/workflow"
)

func TestSimulatorSequence(t *testing.T) {
	assert.Equal(t, []int{25, 50, 75}, Simulator{Step: 25}.Sequence())
	assert.Equal(t, []int{10, 20, 30, 40, 50, 60, 70, 80, 90}, Simulator{}.Sequence())
	assert.Len(t, Simulator{Step: 100}.Sequence(), 9)

	next, ok := Simulator{Step: 30}.Next(90)
	assert.False(t, ok)
	assert.Equal(t, 90, next)
}

func TestComposeBuildsDraft(t *testing.T) {
	req := workflow.GenerationRequest{
		SourceKind: content.KindWebLink,
		Topic:      "Hortas urbanas",
		BaseText:   "Primeiro parágrafo.\n\nSegundo parágrafo.",
		Configuration: workflow.Configuration{
			LeadGuidance:   "Abrir com os números",
			Quotes:         []content.Quote{{ID: "q1", Text: "A horta mudou o bairro."}},
			CreditRequired: true,
			Persona:        "repórter",
			Tone:           "neutro",
		},
		Materials: content.Materials{Links: []content.Material{{ID: "m1", Reference: "https://example.com/relatorio"}}},
	}
	result, err := NewComposer().Compose(req)
	require.NoError(t, err)
	assert.Equal(t, "Hortas urbanas", result.Title)
	assert.True(t, strings.HasPrefix(result.Content, "# Hortas urbanas\n"))
	assert.Contains(t, result.Content, "_By repórter · Tone: neutro_")
	assert.Contains(t, result.Content, "**Abrir com os números**")
	assert.Contains(t, result.Content, "Segundo parágrafo.")
	assert.Contains(t, result.Content, "> A horta mudou o bairro.")
	assert.Contains(t, result.Content, "- links: https://example.com/relatorio")
	assert.Contains(t, result.Content, "_Source: Web Link_")
	assert.Contains(t, result.HTML, "<h1>Hortas urbanas</h1>")
	assert.Contains(t, result.HTML, "<blockquote>")
}

func TestTitleFallsBackToBaseText(t *testing.T) {
	long := strings.Repeat("palavra ", 30)
	title := Title(workflow.GenerationRequest{BaseText: long})
	assert.LessOrEqual(t, len([]rune(title)), maxTitleRunes)
	assert.True(t, strings.HasSuffix(title, "…"))
	assert.Equal(t, "Untitled draft", Title(workflow.GenerationRequest{}))
}

func TestComposeWithoutBaseText(t *testing.T) {
	result, err := NewComposer().Compose(workflow.GenerationRequest{SourceKind: content.KindTrendingTopic, Topic: "Dengue"})
	require.NoError(t, err)
	assert.Contains(t, result.Content, "This draft covers Dengue.")
}

func TestRunCompletesTicket(t *testing.T) {
	store := workflow.NewStore()
	ticket := store.BeginGeneration()
	var seen []int
	runner := Runner{Simulator: Simulator{Step: 30}, Interval: time.Millisecond, OnProgress: func(pct int) { seen = append(seen, pct) }}
	done, err := runner.Run(context.Background(), store, ticket, workflow.GenerationRequest{Topic: "Energia"})
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, []int{30, 60, 90}, seen)
	sess := store.Snapshot()
	require.NotNil(t, sess.Result)
	assert.Equal(t, "Energia", sess.Result.Title)
	assert.Equal(t, 100, sess.Generation.Progress)
}

func TestRunStopsWhenSuperseded(t *testing.T) {
	store := workflow.NewStore()
	ticket := store.BeginGeneration()
	runner := Runner{
		Simulator: Simulator{Step: 20},
		Interval:  time.Millisecond,
		OnProgress: func(pct int) {
			if pct == 40 {
				store.ResetSession()
			}
		},
	}
	done, err := runner.Run(context.Background(), store, ticket, workflow.GenerationRequest{Topic: "Energia"})
	require.NoError(t, err)
	assert.False(t, done)
	assert.Nil(t, store.Snapshot().Result)
}

func TestRunHonoursContext(t *testing.T) {
	store := workflow.NewStore()
	ticket := store.BeginGeneration()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	done, err := Run(ctx, store, ticket, workflow.GenerationRequest{}, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, done)
	assert.Nil(t, store.Snapshot().Result)
}
