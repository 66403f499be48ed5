package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/draftdesk/internal/content"
)

func TestWebLinkExtractsParagraphsAndMeta(t *testing.T) {
	adapter := NewWebLinkAdapter(mustCatalog(t))
	ext := adapter.Extract(content.WebLinkPayload{URL: "https://revista.example/cidades/hortas-urbanas/"})
	require.False(t, ext.Empty(), ext.Reason)
	assert.Equal(t, "Hortas urbanas transformam terrenos vazios", ext.Title)
	assert.Equal(t, "Marina Costa", ext.Meta["author"])
	assert.NotEmpty(t, ext.Meta["description"])
	assert.Equal(t, "2026-06-30T10:00:00Z", ext.Meta["published"])

	require.Len(t, ext.Blocks, 4)
	assert.Equal(t, content.CategoryIntro, ext.Blocks[0].Metadata.Category)
	assert.Equal(t, content.CategoryQuote, ext.Blocks[2].Metadata.Category)
	for _, b := range ext.Blocks {
		assert.NotContains(t, b.Content, "Todos os direitos")
		assert.NotContains(t, b.Content, "Início")
	}
	assert.Contains(t, ext.FullText, "Hortas urbanas")
	assert.Contains(t, ext.FullText, "> A horta")
	assert.Equal(t, 4, ext.Selection.Count())
}

func TestWebLinkPageWithoutParagraphs(t *testing.T) {
	ext := NewWebLinkAdapter(mustCatalog(t)).Extract(content.WebLinkPayload{URL: "https://galeria.example/fotos"})
	assert.True(t, ext.Empty())
	assert.Contains(t, ext.Reason, "no readable paragraphs")
	assert.Equal(t, "Galeria", ext.Title)
}

func TestWebLinkUnknownAndInvalidURLs(t *testing.T) {
	adapter := NewWebLinkAdapter(mustCatalog(t))
	unknown := adapter.Extract(content.WebLinkPayload{URL: "https://nowhere.example/x"})
	assert.True(t, unknown.Empty())
	assert.Contains(t, unknown.Reason, "nothing could be extracted")

	invalid := adapter.Extract(content.WebLinkPayload{URL: "ftp://files.example/doc"})
	assert.True(t, invalid.Empty())
	assert.Contains(t, invalid.Reason, "http")
}

func TestValidateURL(t *testing.T) {
	assert.NoError(t, ValidateURL("https://example.com/a"))
	assert.Error(t, ValidateURL("example.com"))
	assert.Error(t, ValidateURL("https://"))
}
