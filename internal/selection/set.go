// Package selection implements the insertion-ordered selection set used by
// the list engine. The set tracks which items are currently selected and
// which of them is "active": the most recently inserted member that is
// still present.
package selection

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Set is an insertion-ordered set of selected items.
//
// Membership checks are O(1) and iteration follows insertion order.
// Re-adding an item that is already a member does not refresh its
// position; an item only becomes the newest member again after being
// removed and re-added.
type Set[T comparable] struct {
	members *orderedmap.OrderedMap[T, struct{}]
}

// New creates an empty Set.
func New[T comparable]() *Set[T] {
	return &Set[T]{
		members: orderedmap.New[T, struct{}](),
	}
}

// Add inserts item into the set. It reports whether the item was newly
// added; adding an existing member is a no-op.
func (s *Set[T]) Add(item T) bool {
	if _, ok := s.members.Get(item); ok {
		return false
	}
	s.members.Set(item, struct{}{})
	return true
}

// Remove deletes item from the set, reporting whether it was a member.
func (s *Set[T]) Remove(item T) bool {
	_, ok := s.members.Delete(item)
	return ok
}

// Clear removes every member.
func (s *Set[T]) Clear() {
	s.members = orderedmap.New[T, struct{}]()
}

// Contains reports whether item is a member.
func (s *Set[T]) Contains(item T) bool {
	_, ok := s.members.Get(item)
	return ok
}

// Len returns the number of members.
func (s *Set[T]) Len() int {
	return s.members.Len()
}

// Active returns the most recently inserted member still present.
// The second return value is false when the set is empty.
func (s *Set[T]) Active() (T, bool) {
	newest := s.members.Newest()
	if newest == nil {
		var zero T
		return zero, false
	}
	return newest.Key, true
}

// Items returns the members in insertion order.
func (s *Set[T]) Items() []T {
	out := make([]T, 0, s.members.Len())
	for pair := s.members.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}
