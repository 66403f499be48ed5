package source

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/draftdesk/internal/content"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// FeedTopic is an entry of the news-feed topic catalog.
type FeedTopic struct {
	ID           string `yaml:"id"`
	Title        string `yaml:"title"`
	ArticleCount int    `yaml:"article_count"`
	// Trend is one of rising, falling, steady.
	Trend string `yaml:"trend"`
}

// Normalize maps the feed catalog's fields onto a Topic.
func (t FeedTopic) Normalize() content.Topic {
	dir := content.TrendStable
	switch strings.ToLower(strings.TrimSpace(t.Trend)) {
	case "rising":
		dir = content.TrendUp
	case "falling":
		dir = content.TrendDown
	}
	return content.Topic{ID: t.ID, Name: t.Title, Popularity: t.ArticleCount, Direction: dir, Origin: content.OriginFeed}
}

// SearchTrend is an entry of the search-trend catalog.
type SearchTrend struct {
	ID           string  `yaml:"id"`
	Query        string  `yaml:"query"`
	SearchVolume int     `yaml:"search_volume"`
	ChangePct    float64 `yaml:"change_pct"`
}

// Normalize maps the search catalog's fields onto a Topic.
func (t SearchTrend) Normalize() content.Topic {
	return content.Topic{
		ID:         t.ID,
		Name:       t.Query,
		Popularity: t.SearchVolume,
		Direction:  content.DirectionFromChange(t.ChangePct),
		Origin:     content.OriginSearch,
	}
}

// SocialTrend is an entry of the social-trend catalog.
type SocialTrend struct {
	ID       string  `yaml:"id"`
	Hashtag  string  `yaml:"hashtag"`
	Mentions int     `yaml:"mentions"`
	Growth   float64 `yaml:"growth"`
}

// Normalize maps the social catalog's fields onto a Topic.
func (t SocialTrend) Normalize() content.Topic {
	return content.Topic{
		ID:         t.ID,
		Name:       strings.TrimPrefix(t.Hashtag, "#"),
		Popularity: t.Mentions,
		Direction:  content.DirectionFromChange(t.Growth),
		Origin:     content.OriginSocial,
	}
}

// VideoEntry is a video with its timed transcript.
type VideoEntry struct {
	ID       string            `yaml:"id"`
	Title    string            `yaml:"title"`
	URL      string            `yaml:"url"`
	Segments []content.Segment `yaml:"segments"`
}

// Payload converts the entry into a video payload.
func (v VideoEntry) Payload() content.VideoPayload {
	return content.VideoPayload{ID: v.ID, Title: v.Title, URL: v.URL, Segments: v.Segments}
}

// TranscriptEntry is an uploaded transcript.
type TranscriptEntry struct {
	ID       string            `yaml:"id"`
	Title    string            `yaml:"title"`
	Segments []content.Segment `yaml:"segments"`
}

// Payload converts the entry into a transcript payload.
func (t TranscriptEntry) Payload() content.TranscriptPayload {
	return content.TranscriptPayload{ID: t.ID, Title: t.Title, Segments: t.Segments}
}

// PageEntry is a fixture web page served in place of a real fetch.
type PageEntry struct {
	URL  string `yaml:"url"`
	HTML string `yaml:"html"`
}

// Catalog is the read-only candidate data offered to the user.
type Catalog struct {
	FeedTopics   []FeedTopic       `yaml:"feed_topics"`
	SearchTrends []SearchTrend     `yaml:"search_trends"`
	SocialTrends []SocialTrend     `yaml:"social_trends"`
	Articles     []content.Article `yaml:"articles"`
	Videos       []VideoEntry      `yaml:"videos"`
	Transcripts  []TranscriptEntry `yaml:"transcripts"`
	Pages        []PageEntry       `yaml:"pages"`
}

// DefaultCatalog parses the catalog bundled with the binary.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalogYAML)
}

// LoadCatalog reads a catalog file. An empty path yields the bundled one.
func LoadCatalog(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("source: read catalog %s: %w", path, err)
	}
	cat, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("source: %s: %w", path, err)
	}
	return cat, nil
}

// ParseCatalog decodes and validates catalog YAML.
func ParseCatalog(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("source: parse catalog: %w", err)
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

// Validate reports duplicate ids, articles tagged with unknown topics, and
// pages with invalid URLs.
func (c *Catalog) Validate() error {
	var errs []error
	topicIDs := map[string]struct{}{}
	topicNames := map[string]struct{}{}
	addTopic := func(id, name string) {
		if id == "" {
			errs = append(errs, fmt.Errorf("topic %q: id is required", name))
			return
		}
		if _, dup := topicIDs[id]; dup {
			errs = append(errs, fmt.Errorf("topic %s: duplicate id", id))
		}
		topicIDs[id] = struct{}{}
		topicNames[strings.ToLower(name)] = struct{}{}
	}
	for _, t := range c.FeedTopics {
		addTopic(t.ID, t.Title)
	}
	for _, t := range c.SearchTrends {
		addTopic(t.ID, t.Query)
	}
	for _, t := range c.SocialTrends {
		addTopic(t.ID, strings.TrimPrefix(t.Hashtag, "#"))
	}

	seen := map[string]struct{}{}
	checkID := func(scope, id string) {
		if id == "" {
			errs = append(errs, fmt.Errorf("%s: id is required", scope))
			return
		}
		key := scope + "/" + id
		if _, dup := seen[key]; dup {
			errs = append(errs, fmt.Errorf("%s %s: duplicate id", scope, id))
		}
		seen[key] = struct{}{}
	}
	for _, a := range c.Articles {
		checkID("article", a.ID)
		for _, tag := range a.Topics {
			_, byID := topicIDs[tag]
			_, byName := topicNames[strings.ToLower(tag)]
			if !byID && !byName {
				errs = append(errs, fmt.Errorf("article %s: unknown topic %q", a.ID, tag))
			}
		}
	}
	for _, v := range c.Videos {
		checkID("video", v.ID)
	}
	for _, t := range c.Transcripts {
		checkID("transcript", t.ID)
	}
	for _, p := range c.Pages {
		if err := ValidateURL(p.URL); err != nil {
			errs = append(errs, fmt.Errorf("page %q: %w", p.URL, err))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("source: invalid catalog: %w", errors.Join(errs...))
}

// Article returns the article with id.
func (c *Catalog) Article(id string) (content.Article, bool) {
	for _, a := range c.Articles {
		if a.ID == id {
			return a, true
		}
	}
	return content.Article{}, false
}

// Video returns the video with id.
func (c *Catalog) Video(id string) (VideoEntry, bool) {
	for _, v := range c.Videos {
		if v.ID == id {
			return v, true
		}
	}
	return VideoEntry{}, false
}

// Transcript returns the transcript with id.
func (c *Catalog) Transcript(id string) (TranscriptEntry, bool) {
	for _, t := range c.Transcripts {
		if t.ID == id {
			return t, true
		}
	}
	return TranscriptEntry{}, false
}

// Page implements PageSource by serving fixture HTML.
func (c *Catalog) Page(rawURL string) (Page, error) {
	want := normalizeURL(rawURL)
	for _, p := range c.Pages {
		if normalizeURL(p.URL) == want {
			return Page{URL: p.URL, HTML: p.HTML}, nil
		}
	}
	return Page{}, ErrPageNotFound
}
