package source

import (
	"fmt"

	"github.com/kingrea/draftdesk/internal/content"
)

// maxBlocksPerArticle caps how many candidate blocks one article yields.
const maxBlocksPerArticle = 3

// FeedAdapter synthesizes candidate blocks from already-selected feed
// articles by sentence segmentation.
type FeedAdapter struct{}

// NewFeedAdapter returns the feed-articles adapter.
func NewFeedAdapter() *FeedAdapter {
	return &FeedAdapter{}
}

func (a *FeedAdapter) Kind() content.Kind { return content.KindFeedArticles }

func (a *FeedAdapter) Extract(payload content.Payload) Extraction {
	p, ok := expectPayload[content.FeedArticlesPayload](a.Kind(), payload)
	if !ok || len(p.Articles) == 0 {
		return emptyExtraction(a.Kind(), "no feed articles selected")
	}
	var blocks []content.Block
	for _, article := range p.Articles {
		blocks = append(blocks, articleBlocks(article)...)
	}
	if len(blocks) == 0 {
		return emptyExtraction(a.Kind(), fmt.Sprintf("none of the %d selected article(s) has a usable sentence", len(p.Articles)))
	}
	title := p.Articles[0].Title
	if len(p.Articles) > 1 {
		title = fmt.Sprintf("%s (+%d)", title, len(p.Articles)-1)
	}
	return newExtraction(a.Kind(), title, blocks)
}

// articleBlocks never pads: an article with one usable sentence yields one
// block.
func articleBlocks(article content.Article) []content.Block {
	sentences := UsableSentences(article.Body)
	if len(sentences) > maxBlocksPerArticle {
		sentences = sentences[:maxBlocksPerArticle]
	}
	label := ""
	if len(article.Topics) > 0 {
		label = article.Topics[0]
	}
	blocks := make([]content.Block, 0, len(sentences))
	for i, sentence := range sentences {
		blocks = append(blocks, content.NewBlock(content.KindFeedArticles, sentence, content.Metadata{
			Category:   Classify(sentence, i),
			TopicLabel: label,
			Provenance: provenance(article),
		}))
	}
	return blocks
}

func provenance(article content.Article) string {
	if article.Outlet != "" {
		return fmt.Sprintf("%s · %s", article.Outlet, article.Title)
	}
	return article.Title
}
