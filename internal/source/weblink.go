package source

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"github.com/kingrea/draftdesk/internal/content"
)

// maxPageBlocks caps how many paragraphs a page contributes.
const maxPageBlocks = 8

// ErrPageNotFound is returned by a PageSource that has nothing for a URL.
var ErrPageNotFound = errors.New("source: page not found")

// Page is raw HTML retrieved for a URL.
type Page struct {
	URL  string
	HTML string
}

// PageSource resolves a URL to its HTML. The default implementation is the
// catalog's fixture pages; nothing here performs network I/O.
type PageSource interface {
	Page(rawURL string) (Page, error)
}

// WebLinkAdapter extracts category-tagged blocks and a markdown full text
// from a single web page.
type WebLinkAdapter struct {
	pages     PageSource
	converter *md.Converter
}

// NewWebLinkAdapter wires the adapter to a page source.
func NewWebLinkAdapter(pages PageSource) *WebLinkAdapter {
	return &WebLinkAdapter{
		pages:     pages,
		converter: md.NewConverter("", true, nil),
	}
}

func (a *WebLinkAdapter) Kind() content.Kind { return content.KindWebLink }

func (a *WebLinkAdapter) Extract(payload content.Payload) Extraction {
	p, ok := expectPayload[content.WebLinkPayload](a.Kind(), payload)
	if !ok || strings.TrimSpace(p.URL) == "" {
		return emptyExtraction(a.Kind(), "no link provided")
	}
	if err := ValidateURL(p.URL); err != nil {
		return emptyExtraction(a.Kind(), err.Error())
	}
	if a.pages == nil {
		return emptyExtraction(a.Kind(), "link extraction is unavailable")
	}
	page, err := a.pages.Page(p.URL)
	if err != nil {
		return emptyExtraction(a.Kind(), fmt.Sprintf("nothing could be extracted from %s", p.URL))
	}
	return a.extractPage(page)
}

func (a *WebLinkAdapter) extractPage(page Page) Extraction {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return emptyExtraction(a.Kind(), fmt.Sprintf("unreadable page: %v", err))
	}
	meta := map[string]string{"url": page.URL}
	if v := metaContent(doc, `meta[name="description"]`); v != "" {
		meta["description"] = v
	}
	if v := metaContent(doc, `meta[name="author"]`); v != "" {
		meta["author"] = v
	}
	if v := metaContent(doc, `meta[property="article:published_time"]`); v != "" {
		meta["published"] = v
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	scope := mainContent(doc)
	var blocks []content.Block
	position := 0
	scope.Find("p, blockquote").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if len(blocks) >= maxPageBlocks {
			return false
		}
		// paragraphs nested in a blockquote are handled by the blockquote
		if goquery.NodeName(s) == "p" && s.ParentsFiltered("blockquote").Length() > 0 {
			return true
		}
		text := strings.Join(strings.Fields(s.Text()), " ")
		if content.CountWords(text) < minSentenceWords {
			return true
		}
		category := Classify(text, position)
		if goquery.NodeName(s) == "blockquote" {
			category = content.CategoryQuote
		}
		blocks = append(blocks, content.NewBlock(a.Kind(), text, content.Metadata{
			Category:   category,
			Provenance: page.URL,
		}))
		position++
		return true
	})

	fullText := ""
	if html, err := goquery.OuterHtml(scope); err == nil {
		if converted, err := a.converter.ConvertString(html); err == nil {
			fullText = strings.TrimSpace(converted)
		}
	}
	if len(blocks) == 0 {
		ext := emptyExtraction(a.Kind(), fmt.Sprintf("no readable paragraphs found at %s", page.URL))
		ext.Title, ext.Meta, ext.FullText = title, meta, fullText
		return ext
	}
	ext := newExtraction(a.Kind(), title, blocks)
	ext.Meta = meta
	ext.FullText = fullText
	return ext
}

func mainContent(doc *goquery.Document) *goquery.Selection {
	for _, selector := range []string{"article", "main", "[role=main]"} {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			return sel
		}
	}
	return doc.Find("body").First()
}

func metaContent(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().AttrOr("content", ""))
}

// ValidateURL accepts absolute http(s) URLs with a host.
func ValidateURL(rawURL string) error {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("only http and https links are supported")
	}
	if parsed.Hostname() == "" {
		return fmt.Errorf("link has no host")
	}
	return nil
}

func normalizeURL(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return strings.TrimSpace(rawURL)
	}
	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""
	parsed.Path = strings.TrimRight(parsed.Path, "/")
	return parsed.String()
}
