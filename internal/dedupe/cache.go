package dedupe

import "sync"

// Set remembers keys seen while assembling one response. It is safe for the
// goroutines of a single fan-out to share.
type Set struct {
	mu    sync.Mutex
	items map[string]struct{}
	order []string
}

// NewSet creates an empty set sized for capacity keys.
func NewSet(capacity int) *Set {
	if capacity < 0 {
		capacity = 0
	}
	return &Set{
		items: make(map[string]struct{}, capacity),
		order: make([]string, 0, capacity),
	}
}

// IsSeen reports whether key has been added. Empty keys are never seen.
func (s *Set) IsSeen(key string) bool {
	if key == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.items[key]
	return ok
}

// Add records key and reports whether it was new. Empty keys are rejected so
// records without an id can never collapse into one another.
func (s *Set) Add(key string) bool {
	if key == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[key]; ok {
		return false
	}
	s.items[key] = struct{}{}
	s.order = append(s.order, key)
	return true
}

// Keys returns the recorded keys in insertion order.
func (s *Set) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of distinct keys.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Unique keeps the first item for every key, preserving order. Items whose key
// is empty are dropped.
func Unique[T any](items []T, key func(T) string) []T {
	seen := NewSet(len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		if seen.Add(key(item)) {
			out = append(out, item)
		}
	}
	return out
}
