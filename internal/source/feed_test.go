package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/draftdesk/internal/content"
)

func articles(t *testing.T, ids ...string) []content.Article {
	t.Helper()
	cat := mustCatalog(t)
	out := make([]content.Article, 0, len(ids))
	for _, id := range ids {
		a, ok := cat.Article(id)
		require.True(t, ok, "article %s", id)
		out = append(out, a)
	}
	return out
}

func TestFeedAdapterYieldsUpToThreeBlocksPerArticle(t *testing.T) {
	ext := NewFeedAdapter().Extract(content.FeedArticlesPayload{Articles: articles(t, "art-solar-1", "art-solar-2")})
	require.Len(t, ext.Blocks, 6)
	assert.Equal(t, 6, ext.Selection.Count())
	assert.Equal(t, content.CategoryIntro, ext.Blocks[0].Metadata.Category)
	assert.Equal(t, content.CategoryIntro, ext.Blocks[3].Metadata.Category)
	for _, b := range ext.Blocks {
		assert.Contains(t, content.Categories, b.Metadata.Category)
		assert.NotEmpty(t, b.Metadata.Provenance)
	}
}

func TestFeedAdapterNeverPads(t *testing.T) {
	article := content.Article{ID: "one", Title: "One", Body: "Only one sentence is long enough here. Too short."}
	ext := NewFeedAdapter().Extract(content.FeedArticlesPayload{Articles: []content.Article{article}})
	require.Len(t, ext.Blocks, 1)
	assert.Equal(t, "Only one sentence is long enough here.", ext.Blocks[0].Content)
}

func TestFeedAdapterReportsArticlesWithoutUsableText(t *testing.T) {
	ext := NewFeedAdapter().Extract(content.FeedArticlesPayload{Articles: articles(t, "art-curta")})
	assert.True(t, ext.Empty())
	assert.Contains(t, ext.Reason, "usable sentence")
}

func TestFeedAdapterEmptyPayload(t *testing.T) {
	ext := NewFeedAdapter().Extract(content.FeedArticlesPayload{})
	assert.True(t, ext.Empty())
	assert.NotEmpty(t, ext.Reason)
}

func TestSplitSentences(t *testing.T) {
	got := SplitSentences("  First one here.  Second?\nThird without stop")
	assert.Equal(t, []string{"First one here.", "Second?", "Third without stop"}, got)
	assert.Nil(t, SplitSentences("   "))
}

func TestClassify(t *testing.T) {
	cases := []struct {
		sentence string
		position int
		want     content.Category
	}{
		{"Anything at all goes first.", 0, content.CategoryIntro},
		{"\"We tried\", said the mayor.", 2, content.CategoryQuote},
		{"Ridership rose 22% this month.", 2, content.CategoryData},
		{"It happened because the budget shrank.", 2, content.CategoryCause},
		{"As a result the line closed early.", 2, content.CategoryConsequence},
		{"The council announced a new plan.", 2, content.CategoryAction},
		{"The line runs along the river.", 1, content.CategoryContext},
		{"The line runs along the river.", 3, content.CategoryFact},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.sentence, tc.position), tc.sentence)
	}
}
