package content

import (
	"encoding/json"
	"sort"
)

// Selection is a membership-only set of block ids. It has value semantics:
// every operation returns a new Selection and leaves the receiver untouched,
// so a session snapshot can hold one without defensive copies.
type Selection struct {
	members map[string]struct{}
}

// SelectionOf builds a selection containing ids.
func SelectionOf(ids ...string) Selection {
	return Selection{}.SelectAll(ids)
}

// Has reports membership.
func (s Selection) Has(id string) bool {
	_, ok := s.members[id]
	return ok
}

// Count returns the number of selected ids.
func (s Selection) Count() int {
	return len(s.members)
}

// Toggle adds id if absent and removes it if present.
func (s Selection) Toggle(id string) Selection {
	out := s.clone()
	if _, ok := out.members[id]; ok {
		delete(out.members, id)
	} else {
		out.members[id] = struct{}{}
	}
	return out
}

// SelectAll adds every candidate id. Calling it twice is a no-op.
func (s Selection) SelectAll(ids []string) Selection {
	out := s.clone()
	for _, id := range ids {
		if id == "" {
			continue
		}
		out.members[id] = struct{}{}
	}
	return out
}

// Clear returns an empty selection.
func (s Selection) Clear() Selection {
	return Selection{}
}

// Retain drops members that are not in ids.
func (s Selection) Retain(ids []string) Selection {
	keep := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}
	out := Selection{members: map[string]struct{}{}}
	for id := range s.members {
		if _, ok := keep[id]; ok {
			out.members[id] = struct{}{}
		}
	}
	return out
}

// IDs returns the members sorted, for stable display and encoding only.
func (s Selection) IDs() []string {
	if len(s.members) == 0 {
		return nil
	}
	ids := make([]string, 0, len(s.members))
	for id := range s.members {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Equal reports whether both selections hold the same ids.
func (s Selection) Equal(other Selection) bool {
	if s.Count() != other.Count() {
		return false
	}
	for id := range s.members {
		if !other.Has(id) {
			return false
		}
	}
	return true
}

func (s Selection) clone() Selection {
	out := Selection{members: make(map[string]struct{}, len(s.members)+1)}
	for id := range s.members {
		out.members[id] = struct{}{}
	}
	return out
}

// MarshalJSON encodes the selection as a sorted id array.
func (s Selection) MarshalJSON() ([]byte, error) {
	ids := s.IDs()
	if ids == nil {
		ids = []string{}
	}
	return json.Marshal(ids)
}

// UnmarshalJSON decodes an id array.
func (s *Selection) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = SelectionOf(ids...)
	return nil
}
