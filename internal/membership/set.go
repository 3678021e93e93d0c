package membership

import (
	"sort"
)

// Set is an unordered set of identifiers. The zero value is not usable, use NewSet.
type Set map[string]struct{}

// NewSet builds a set from ids. Duplicates collapse and empty ids are skipped.
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s Set) Add(id string) {
	if id == "" {
		return
	}
	s[id] = struct{}{}
}

func (s Set) Remove(id string) {
	delete(s, id)
}

// Toggle flips membership of id and reports whether it is now a member.
func (s Set) Toggle(id string) bool {
	if s.Has(id) {
		s.Remove(id)
		return false
	}
	s.Add(id)
	return s.Has(id)
}

func (s Set) Len() int { return len(s) }

// Equal compares as sets, order never matters.
func (s Set) Equal(o Set) bool {
	if len(s) != len(o) {
		return false
	}
	for id := range s {
		if !o.Has(id) {
			return false
		}
	}
	return true
}

func (s Set) Clone() Set {
	c := make(Set, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// Sorted returns the members in ascending order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Diff returns what must be inserted and deleted to turn current into desired.
// Both slices are sorted.
func Diff(current, desired Set) (toAdd, toRemove []string) {
	for id := range desired {
		if !current.Has(id) {
			toAdd = append(toAdd, id)
		}
	}
	for id := range current {
		if !desired.Has(id) {
			toRemove = append(toRemove, id)
		}
	}
	sort.Strings(toAdd)
	sort.Strings(toRemove)
	return toAdd, toRemove
}
