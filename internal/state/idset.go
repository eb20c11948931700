package state

import (
	"encoding/json"
	"slices"

	"github.com/samber/lo"
)

// IDSet is a set of remote item ids. It marshals as a sorted JSON array.
type IDSet map[string]struct{}

// NewIDSet returns a set holding ids.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	s.Add(ids...)
	return s
}

// Add inserts ids, ignoring empty strings.
func (s IDSet) Add(ids ...string) {
	for _, id := range ids {
		if id != "" {
			s[id] = struct{}{}
		}
	}
}

// Has reports whether id is in the set. A nil set contains nothing.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Merge adds every member of other.
func (s IDSet) Merge(other IDSet) {
	for id := range other {
		s[id] = struct{}{}
	}
}

// Union returns a new set with the members of s and all others.
func (s IDSet) Union(others ...IDSet) IDSet {
	out := make(IDSet, len(s))
	out.Merge(s)
	for _, o := range others {
		out.Merge(o)
	}
	return out
}

// Sorted returns the members in ascending order.
func (s IDSet) Sorted() []string {
	keys := lo.Keys(s)
	slices.Sort(keys)
	return keys
}

func (s IDSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *IDSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewIDSet(ids...)
	return nil
}
