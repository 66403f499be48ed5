package source

import (
	"sort"

	"github.com/kingrea/draftdesk/internal/content"
)

// TimedAdapter turns timed segments into one block per segment, ordered by
// start time. The same adapter serves videos and uploaded transcripts.
type TimedAdapter struct {
	kind content.Kind
}

// NewVideoAdapter returns the adapter for video sources.
func NewVideoAdapter() *TimedAdapter {
	return &TimedAdapter{kind: content.KindVideo}
}

// NewTranscriptAdapter returns the adapter for transcript sources.
func NewTranscriptAdapter() *TimedAdapter {
	return &TimedAdapter{kind: content.KindTranscript}
}

func (a *TimedAdapter) Kind() content.Kind { return a.kind }

func (a *TimedAdapter) Extract(payload content.Payload) Extraction {
	var (
		title    string
		segments []content.Segment
		origin   string
	)
	switch a.kind {
	case content.KindVideo:
		p, ok := expectPayload[content.VideoPayload](a.kind, payload)
		if !ok {
			return emptyExtraction(a.kind, "no video selected")
		}
		title, segments, origin = p.Title, p.Segments, firstNonEmpty(p.URL, p.ID)
	default:
		p, ok := expectPayload[content.TranscriptPayload](a.kind, payload)
		if !ok {
			return emptyExtraction(a.kind, "no transcript selected")
		}
		title, segments, origin = p.Title, p.Segments, p.ID
	}
	if len(segments) == 0 {
		return emptyExtraction(a.kind, "the transcript has no segments")
	}
	ordered := make([]content.Segment, len(segments))
	copy(ordered, segments)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Start < ordered[j].Start })

	blocks := make([]content.Block, 0, len(ordered))
	for _, seg := range ordered {
		blocks = append(blocks, content.NewBlock(a.kind, seg.Text, content.Metadata{
			Timestamp:  content.FormatTimestamp(seg.Start),
			Start:      seg.Start,
			End:        seg.End,
			TopicLabel: seg.TopicLabel,
			Provenance: origin,
		}))
	}
	return newExtraction(a.kind, title, blocks)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
