package locator

import "reflect"

// singletonTracker records, per scope, whether the latest registration of a
// type went through a singleton operation. Reads fall through to the parent
// scope until a scope that registered the type is found; writes are always
// local.
type singletonTracker struct {
	parent *singletonTracker
	marked map[reflect.Type]bool
}

func newSingletonTracker(parent *singletonTracker) *singletonTracker {
	return &singletonTracker{
		parent: parent,
		marked: make(map[reflect.Type]bool),
	}
}

func (s *singletonTracker) Mark(t reflect.Type) {
	s.marked[t] = true
}

// Unmark records a non-singleton registration of t, shadowing marks of
// parent scopes.
func (s *singletonTracker) Unmark(t reflect.Type) {
	s.marked[t] = false
}

func (s *singletonTracker) IsMarked(t reflect.Type) bool {
	for c := s; c != nil; c = c.parent {
		if m, ok := c.marked[t]; ok {
			return m
		}
	}

	return false
}

func (s *singletonTracker) Clear() {
	s.marked = make(map[reflect.Type]bool)
	s.parent = nil
}
