package content

import (
	"encoding/json"
	"fmt"
	"time"
)

// Payload is the kind-specific raw data attached to a Source. Each concrete
// payload reports the single Kind it belongs to.
type Payload interface {
	Kind() Kind
}

// Segment is one timed slice of a video or transcript. Start and End are
// offsets in seconds.
type Segment struct {
	Start      float64 `json:"start" yaml:"start"`
	End        float64 `json:"end" yaml:"end"`
	Text       string  `json:"text" yaml:"text"`
	TopicLabel string  `json:"topic_label,omitempty" yaml:"topic_label,omitempty"`
}

// Article is a feed or news article offered as curation material.
type Article struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Outlet      string    `json:"outlet,omitempty" yaml:"outlet,omitempty"`
	URL         string    `json:"url,omitempty" yaml:"url,omitempty"`
	Summary     string    `json:"summary,omitempty" yaml:"summary,omitempty"`
	Body        string    `json:"body" yaml:"body"`
	Topics      []string  `json:"topics,omitempty" yaml:"topics,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty" yaml:"published_at,omitempty"`
}

// VideoPayload carries a video and its timed segments.
type VideoPayload struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	URL      string    `json:"url,omitempty"`
	Segments []Segment `json:"segments"`
}

func (VideoPayload) Kind() Kind { return KindVideo }

// TranscriptPayload carries an uploaded transcript split into timed segments.
type TranscriptPayload struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Segments []Segment `json:"segments"`
}

func (TranscriptPayload) Kind() Kind { return KindTranscript }

// TrendingTopicPayload carries the resolved topic plus the articles the user
// picked for it. SkipCuration records an explicit choice to continue without
// any article.
type TrendingTopicPayload struct {
	Topic        Topic     `json:"topic"`
	Selected     []Article `json:"selected,omitempty"`
	SkipCuration bool      `json:"skip_curation,omitempty"`
}

func (TrendingTopicPayload) Kind() Kind { return KindTrendingTopic }

// FeedArticlesPayload carries articles already selected from the feed.
type FeedArticlesPayload struct {
	Articles []Article `json:"articles"`
}

func (FeedArticlesPayload) Kind() Kind { return KindFeedArticles }

// WebLinkPayload carries a single URL to extract.
type WebLinkPayload struct {
	URL string `json:"url"`
}

func (WebLinkPayload) Kind() Kind { return KindWebLink }

// Source is the tagged union of a kind and its payload.
type Source struct {
	Kind    Kind
	Payload Payload
}

// NoSource returns the empty source every session starts with.
func NoSource() Source {
	return Source{Kind: KindNone}
}

// NewSource pairs kind with payload, rejecting mismatched shapes.
func NewSource(kind Kind, payload Payload) (Source, error) {
	if !kind.Valid() {
		return Source{}, fmt.Errorf("content: unknown source kind %q", kind)
	}
	if kind == KindNone {
		if payload != nil {
			return Source{}, fmt.Errorf("content: source kind none must not carry a payload")
		}
		return NoSource(), nil
	}
	if payload == nil {
		return Source{}, fmt.Errorf("content: source kind %s requires a payload", kind)
	}
	if payload.Kind() != kind {
		return Source{}, fmt.Errorf("content: payload %T does not match source kind %s", payload, kind)
	}
	return Source{Kind: kind, Payload: payload}, nil
}

// MustSource is NewSource for literals known to be well formed.
func MustSource(kind Kind, payload Payload) Source {
	src, err := NewSource(kind, payload)
	if err != nil {
		panic(err)
	}
	return src
}

// IsZero reports whether no source has been chosen.
func (s Source) IsZero() bool {
	return s.Kind == "" || s.Kind == KindNone
}

type sourceEnvelope struct {
	Kind    Kind            `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MarshalJSON encodes the source as {"kind": ..., "payload": ...}.
func (s Source) MarshalJSON() ([]byte, error) {
	env := sourceEnvelope{Kind: s.Kind}
	if env.Kind == "" {
		env.Kind = KindNone
	}
	if s.Payload != nil {
		raw, err := json.Marshal(s.Payload)
		if err != nil {
			return nil, err
		}
		env.Payload = raw
	}
	return json.Marshal(env)
}

// UnmarshalJSON decodes the envelope and picks the payload type from the kind.
func (s *Source) UnmarshalJSON(data []byte) error {
	var env sourceEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	kind := env.Kind
	if kind == "" {
		kind = KindNone
	}
	if kind == KindNone {
		*s = NoSource()
		return nil
	}
	payload, err := decodePayload(kind, env.Payload)
	if err != nil {
		return err
	}
	decoded, err := NewSource(kind, payload)
	if err != nil {
		return err
	}
	*s = decoded
	return nil
}

func decodePayload(kind Kind, raw json.RawMessage) (Payload, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("content: source kind %s is missing its payload", kind)
	}
	switch kind {
	case KindVideo:
		var p VideoPayload
		err := json.Unmarshal(raw, &p)
		return p, err
	case KindTranscript:
		var p TranscriptPayload
		err := json.Unmarshal(raw, &p)
		return p, err
	case KindTrendingTopic:
		var p TrendingTopicPayload
		err := json.Unmarshal(raw, &p)
		return p, err
	case KindFeedArticles:
		var p FeedArticlesPayload
		err := json.Unmarshal(raw, &p)
		return p, err
	case KindWebLink:
		var p WebLinkPayload
		err := json.Unmarshal(raw, &p)
		return p, err
	}
	return nil, fmt.Errorf("content: unknown source kind %q", kind)
}
