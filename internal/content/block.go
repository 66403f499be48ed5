package content

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Category tags a block with its editorial role.
type Category string

const (
	CategoryFact        Category = "fact"
	CategoryContext     Category = "context"
	CategoryCause       Category = "cause"
	CategoryConsequence Category = "consequence"
	CategoryAction      Category = "action"
	CategoryQuote       Category = "quote"
	CategoryData        Category = "data"
	CategoryIntro       Category = "intro"
)

// Categories is the fixed taxonomy, in the order used for round-robin tagging.
var Categories = []Category{
	CategoryIntro,
	CategoryFact,
	CategoryContext,
	CategoryCause,
	CategoryConsequence,
	CategoryAction,
	CategoryQuote,
	CategoryData,
}

// Metadata is optional provenance attached to a block.
type Metadata struct {
	// Timestamp is the "mm:ss" label used for timeline navigation.
	Timestamp  string   `json:"timestamp,omitempty"`
	Start      float64  `json:"start,omitempty"`
	End        float64  `json:"end,omitempty"`
	TopicLabel string   `json:"topic_label,omitempty"`
	Category   Category `json:"category,omitempty"`
	// Provenance points back at the article, page, or video the text came from.
	Provenance string `json:"provenance,omitempty"`
}

// Block is the atomic unit of curated base text.
type Block struct {
	ID         string   `json:"id"`
	Content    string   `json:"content"`
	OriginKind Kind     `json:"origin_kind"`
	Metadata   Metadata `json:"metadata"`
}

// NewBlockID returns a fresh identifier, unique within any session.
func NewBlockID() string {
	return uuid.NewString()
}

// NewBlock builds a block with a fresh id and trimmed content.
func NewBlock(kind Kind, text string, meta Metadata) Block {
	return Block{
		ID:         NewBlockID(),
		Content:    strings.TrimSpace(text),
		OriginKind: kind,
		Metadata:   meta,
	}
}

// Label returns the short heading shown next to a block in lists.
func (b Block) Label() string {
	switch {
	case b.Metadata.Timestamp != "" && b.Metadata.TopicLabel != "":
		return fmt.Sprintf("%s · %s", b.Metadata.Timestamp, b.Metadata.TopicLabel)
	case b.Metadata.Timestamp != "":
		return b.Metadata.Timestamp
	case b.Metadata.Category != "":
		return string(b.Metadata.Category)
	case b.Metadata.TopicLabel != "":
		return b.Metadata.TopicLabel
	}
	return string(b.OriginKind)
}

// BlockIDs returns the ids of blocks in list order.
func BlockIDs(blocks []Block) []string {
	if len(blocks) == 0 {
		return nil
	}
	ids := make([]string, len(blocks))
	for i, b := range blocks {
		ids[i] = b.ID
	}
	return ids
}

// CloneBlocks copies a block list so callers can't alias session state.
func CloneBlocks(blocks []Block) []Block {
	if len(blocks) == 0 {
		return nil
	}
	out := make([]Block, len(blocks))
	copy(out, blocks)
	return out
}

// FormatTimestamp renders seconds as mm:ss, or h:mm:ss past the hour.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
