package source

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/kingrea/draftdesk/internal/content"
)

// TrendingAdapter works in two phases: resolve a topic from the trend
// catalogs, then list candidate articles for it. Blocks exist only once the
// user has picked articles.
type TrendingAdapter struct {
	catalog *Catalog
}

// NewTrendingAdapter wires the adapter to a catalog. A nil catalog behaves
// as an empty one.
func NewTrendingAdapter(cat *Catalog) *TrendingAdapter {
	if cat == nil {
		cat = &Catalog{}
	}
	return &TrendingAdapter{catalog: cat}
}

func (a *TrendingAdapter) Kind() content.Kind { return content.KindTrendingTopic }

// Topics normalizes every catalog into a single list, most popular first.
func (a *TrendingAdapter) Topics() []content.Topic {
	cat := a.catalog
	topics := make([]content.Topic, 0, len(cat.FeedTopics)+len(cat.SearchTrends)+len(cat.SocialTrends))
	for _, t := range cat.FeedTopics {
		topics = append(topics, t.Normalize())
	}
	for _, t := range cat.SearchTrends {
		topics = append(topics, t.Normalize())
	}
	for _, t := range cat.SocialTrends {
		topics = append(topics, t.Normalize())
	}
	sort.SliceStable(topics, func(i, j int) bool { return topics[i].Popularity > topics[j].Popularity })
	return topics
}

// SearchTopics fuzzy-matches query against topic names. An empty query
// returns every topic.
func (a *TrendingAdapter) SearchTopics(query string) []content.Topic {
	topics := a.Topics()
	query = strings.TrimSpace(query)
	if query == "" {
		return topics
	}
	names := make([]string, len(topics))
	for i, t := range topics {
		names[i] = t.Name
	}
	matches := fuzzy.Find(query, names)
	out := make([]content.Topic, 0, len(matches))
	for _, m := range matches {
		out = append(out, topics[m.Index])
	}
	return out
}

// FindTopic looks a topic up by id.
func (a *TrendingAdapter) FindTopic(id string) (content.Topic, bool) {
	for _, t := range a.Topics() {
		if t.ID == id {
			return t, true
		}
	}
	return content.Topic{}, false
}

// CandidateArticles lists the articles tagged with topic, by id or name.
func (a *TrendingAdapter) CandidateArticles(topic content.Topic) []content.Article {
	var out []content.Article
	for _, article := range a.catalog.Articles {
		if articleMatchesTopic(article, topic) {
			out = append(out, article)
		}
	}
	return out
}

func articleMatchesTopic(article content.Article, topic content.Topic) bool {
	for _, tag := range article.Topics {
		if tag == topic.ID || strings.EqualFold(tag, topic.Name) {
			return true
		}
	}
	return false
}

// Extract yields one block per selected article, with the full article text
// as content.
func (a *TrendingAdapter) Extract(payload content.Payload) Extraction {
	p, ok := expectPayload[content.TrendingTopicPayload](a.Kind(), payload)
	if !ok {
		return emptyExtraction(a.Kind(), "no topic selected")
	}
	if p.SkipCuration {
		return Extraction{Kind: a.Kind(), Title: p.Topic.Name, Skipped: true}
	}
	if len(p.Selected) == 0 {
		return emptyExtraction(a.Kind(), fmt.Sprintf("no articles selected for %q", p.Topic.Name))
	}
	blocks := make([]content.Block, 0, len(p.Selected))
	for _, article := range p.Selected {
		text := strings.TrimSpace(article.Body)
		if text == "" {
			text = strings.TrimSpace(article.Summary)
		}
		if text == "" {
			continue
		}
		blocks = append(blocks, content.NewBlock(a.Kind(), text, content.Metadata{
			TopicLabel: p.Topic.Name,
			Provenance: provenance(article),
		}))
	}
	if len(blocks) == 0 {
		return emptyExtraction(a.Kind(), "the selected articles have no text")
	}
	return newExtraction(a.Kind(), p.Topic.Name, blocks)
}
