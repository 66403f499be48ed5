package content

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Quote is an attributed excerpt the draft must include. Quotes are appended
// or removed, never edited in place.
type Quote struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// NewQuote trims text and assigns an id.
func NewQuote(text string) Quote {
	return Quote{ID: uuid.NewString(), Text: strings.TrimSpace(text)}
}

// MaterialCategory groups supplementary materials.
type MaterialCategory string

const (
	MaterialLinks     MaterialCategory = "links"
	MaterialVideos    MaterialCategory = "videos"
	MaterialDocuments MaterialCategory = "documents"
)

// MaterialCategories lists the categories in display order.
var MaterialCategories = []MaterialCategory{MaterialLinks, MaterialVideos, MaterialDocuments}

// ParseMaterialCategory validates a category name.
func ParseMaterialCategory(value string) (MaterialCategory, error) {
	switch c := MaterialCategory(strings.ToLower(strings.TrimSpace(value))); c {
	case MaterialLinks, MaterialVideos, MaterialDocuments:
		return c, nil
	}
	return "", fmt.Errorf("content: unknown material category %q", value)
}

// MaterialStatus tracks whether a material has been processed.
type MaterialStatus string

const (
	MaterialPending   MaterialStatus = "pending"
	MaterialExtracted MaterialStatus = "extracted"
)

// Material is a supplementary link, video, or document.
type Material struct {
	ID        string         `json:"id"`
	Reference string         `json:"reference"`
	Status    MaterialStatus `json:"status"`
}

// NewMaterial creates a pending material for reference (URL or file name).
func NewMaterial(reference string) Material {
	return Material{
		ID:        uuid.NewString(),
		Reference: strings.TrimSpace(reference),
		Status:    MaterialPending,
	}
}

// Materials holds the three supplementary material lists.
type Materials struct {
	Links     []Material `json:"links,omitempty"`
	Videos    []Material `json:"videos,omitempty"`
	Documents []Material `json:"documents,omitempty"`
}

// List returns the list for category.
func (m Materials) List(category MaterialCategory) []Material {
	switch category {
	case MaterialLinks:
		return m.Links
	case MaterialVideos:
		return m.Videos
	case MaterialDocuments:
		return m.Documents
	}
	return nil
}

// With returns a copy of m where category's list is replaced by list.
func (m Materials) With(category MaterialCategory, list []Material) Materials {
	out := m.Clone()
	switch category {
	case MaterialLinks:
		out.Links = list
	case MaterialVideos:
		out.Videos = list
	case MaterialDocuments:
		out.Documents = list
	}
	return out
}

// Total returns the combined length of all three lists.
func (m Materials) Total() int {
	return len(m.Links) + len(m.Videos) + len(m.Documents)
}

// Clone deep-copies the lists.
func (m Materials) Clone() Materials {
	return Materials{
		Links:     cloneMaterials(m.Links),
		Videos:    cloneMaterials(m.Videos),
		Documents: cloneMaterials(m.Documents),
	}
}

func cloneMaterials(values []Material) []Material {
	if len(values) == 0 {
		return nil
	}
	out := make([]Material, len(values))
	copy(out, values)
	return out
}
