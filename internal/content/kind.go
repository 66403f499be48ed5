package content

import (
	"fmt"
	"strings"
)

// Kind identifies which variant of source a session was started from.
type Kind string

const (
	KindNone          Kind = "none"
	KindVideo         Kind = "video"
	KindTranscript    Kind = "transcript"
	KindTrendingTopic Kind = "trending-topic"
	KindFeedArticles  Kind = "feed-articles"
	KindWebLink       Kind = "web-link"
)

// Kinds lists every selectable source kind in menu order.
var Kinds = []Kind{
	KindTrendingTopic,
	KindFeedArticles,
	KindVideo,
	KindTranscript,
	KindWebLink,
}

// ParseKind converts user input (flags, config, JSON) into a Kind.
func ParseKind(value string) (Kind, error) {
	normalized := Kind(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return KindNone, nil
	}
	if normalized.Valid() {
		return normalized, nil
	}
	return KindNone, fmt.Errorf("content: unknown source kind %q", value)
}

// Valid reports whether k is one of the known kinds, including none.
func (k Kind) Valid() bool {
	switch k {
	case KindNone, KindVideo, KindTranscript, KindTrendingTopic, KindFeedArticles, KindWebLink:
		return true
	}
	return false
}

// FriendlyName returns the label shown in menus and status lines.
func (k Kind) FriendlyName() string {
	switch k {
	case KindVideo:
		return "Video"
	case KindTranscript:
		return "Transcript"
	case KindTrendingTopic:
		return "Trending Topic"
	case KindFeedArticles:
		return "Feed Articles"
	case KindWebLink:
		return "Web Link"
	default:
		return "No Source"
	}
}

// Timed reports whether blocks of this kind carry timeline metadata.
func (k Kind) Timed() bool {
	return k == KindVideo || k == KindTranscript
}
