package source

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/draftdesk/internal/content"
)

func TestTopicsNormalizeEveryCatalog(t *testing.T) {
	adapter := NewTrendingAdapter(mustCatalog(t))
	topics := adapter.Topics()
	require.Len(t, topics, 8)
	origins := map[content.TopicOrigin]int{}
	for i, topic := range topics {
		origins[topic.Origin]++
		assert.NotEmpty(t, topic.Name)
		if i > 0 {
			assert.GreaterOrEqual(t, topics[i-1].Popularity, topic.Popularity)
		}
	}
	assert.Equal(t, 3, origins[content.OriginFeed])
	assert.Equal(t, 3, origins[content.OriginSearch])
	assert.Equal(t, 2, origins[content.OriginSocial])

	copa, ok := adapter.FindTopic("social-copa-feminina")
	require.True(t, ok)
	assert.Equal(t, "CopaFeminina", copa.Name)
	assert.Equal(t, content.TrendUp, copa.Direction)

	dengue, ok := adapter.FindTopic("search-dengue")
	require.True(t, ok)
	assert.Equal(t, content.TrendDown, dengue.Direction)
}

func TestSearchTopicsFuzzy(t *testing.T) {
	adapter := NewTrendingAdapter(mustCatalog(t))
	got := adapter.SearchTopics("solar")
	require.NotEmpty(t, got)
	assert.Equal(t, "topic-energia-solar", got[0].ID)
	assert.Len(t, adapter.SearchTopics(""), 8)
	assert.Empty(t, adapter.SearchTopics("zzzzqqq"))
}

func TestCandidateArticlesForTopic(t *testing.T) {
	adapter := NewTrendingAdapter(mustCatalog(t))
	topic, ok := adapter.FindTopic("topic-energia-solar")
	require.True(t, ok)
	candidates := adapter.CandidateArticles(topic)
	require.Len(t, candidates, 2)
	assert.Equal(t, "art-solar-1", candidates[0].ID)
}

func TestTrendingExtractOneBlockPerSelectedArticle(t *testing.T) {
	adapter := NewTrendingAdapter(mustCatalog(t))
	topic, _ := adapter.FindTopic("topic-energia-solar")
	selected := adapter.CandidateArticles(topic)[:1]
	ext := adapter.Extract(content.TrendingTopicPayload{Topic: topic, Selected: selected})
	require.Len(t, ext.Blocks, 1)
	assert.Equal(t, strings.TrimSpace(selected[0].Body), ext.Blocks[0].Content)
	assert.Equal(t, "Energia solar", ext.Blocks[0].Metadata.TopicLabel)
}

func TestTrendingExtractWithoutArticles(t *testing.T) {
	adapter := NewTrendingAdapter(mustCatalog(t))
	topic, _ := adapter.FindTopic("topic-energia-solar")

	ext := adapter.Extract(content.TrendingTopicPayload{Topic: topic})
	assert.True(t, ext.Empty())
	assert.False(t, ext.Skipped)
	assert.Contains(t, ext.Reason, "no articles selected")

	skipped := adapter.Extract(content.TrendingTopicPayload{Topic: topic, SkipCuration: true})
	assert.True(t, skipped.Empty())
	assert.True(t, skipped.Skipped)
	assert.Empty(t, skipped.Reason)
}
