package content

// TrendDirection describes where a topic's popularity is heading.
type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

// TopicOrigin names the catalog a topic was normalized from.
type TopicOrigin string

const (
	OriginFeed   TopicOrigin = "feed"
	OriginSearch TopicOrigin = "search"
	OriginSocial TopicOrigin = "social"
)

// Topic is the normalized view of an entry from any trend catalog.
type Topic struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Popularity int            `json:"popularity"`
	Direction  TrendDirection `json:"direction"`
	Origin     TopicOrigin    `json:"origin"`
}

// Arrow renders the direction as a single glyph.
func (d TrendDirection) Arrow() string {
	switch d {
	case TrendUp:
		return "↑"
	case TrendDown:
		return "↓"
	default:
		return "→"
	}
}

// DirectionFromChange maps a signed percentage change onto a direction.
// Changes within ±2% count as stable.
func DirectionFromChange(change float64) TrendDirection {
	switch {
	case change > 2:
		return TrendUp
	case change < -2:
		return TrendDown
	default:
		return TrendStable
	}
}
