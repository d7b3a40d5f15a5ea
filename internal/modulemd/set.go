package modulemd

import (
	"maps"
	"slices"

	"github.com/emirpasic/gods/sets/treeset"
)

// Set is an ordered set of strings. The zero value is an empty set ready to
// use; a nil *Set reads as empty.
type Set struct {
	tree *treeset.Set
}

// NewSet returns a set holding values.
func NewSet(values ...string) *Set {
	s := &Set{}
	s.Add(values...)
	return s
}

func (s *Set) init() {
	if s.tree == nil {
		s.tree = treeset.NewWithStringComparator()
	}
}

// Add inserts values, ignoring ones already present.
func (s *Set) Add(values ...string) {
	s.init()
	for _, v := range values {
		s.tree.Add(v)
	}
}

// Remove deletes value if present.
func (s *Set) Remove(value string) {
	if s == nil || s.tree == nil {
		return
	}
	s.tree.Remove(value)
}

// Contains reports whether value is in the set.
func (s *Set) Contains(value string) bool {
	if s == nil || s.tree == nil {
		return false
	}
	return s.tree.Contains(value)
}

// Len returns the number of values.
func (s *Set) Len() int {
	if s == nil || s.tree == nil {
		return 0
	}
	return s.tree.Size()
}

// Values returns the values in ascending order.
func (s *Set) Values() []string {
	if s.Len() == 0 {
		return nil
	}
	out := make([]string, 0, s.tree.Size())
	it := s.tree.Iterator()
	for it.Next() {
		out = append(out, it.Value().(string))
	}
	return out
}

// Copy returns an independent copy. Copying a nil set yields an empty set.
func (s *Set) Copy() *Set {
	return NewSet(s.Values()...)
}

// Equal reports whether both sets hold the same values. Nil and empty sets
// are equal.
func (s *Set) Equal(other *Set) bool {
	if s.Len() != other.Len() {
		return false
	}
	a, b := s.Values(), other.Values()
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Union returns a new set holding the values of every argument.
func Union(sets ...*Set) *Set {
	out := NewSet()
	for _, s := range sets {
		out.Add(s.Values()...)
	}
	return out
}

func copyStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func equalStringMap(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if w, ok := b[k]; !ok || w != v {
			return false
		}
	}
	return true
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
