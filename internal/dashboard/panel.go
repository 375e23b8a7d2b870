package dashboard

import (
	"sync"

	"gym-manager/backend/internal/scope"
)

// list is the cached result of a panel's last applied fetch. Every fetch
// takes a generation number; a response is applied only when no newer
// fetch has been applied already, so a slow stale response never
// overwrites a fresh one.
type list[T any] struct {
	mu      sync.RWMutex
	gen     uint64
	applied uint64
	items   []T
	failed  []scope.Failure
}

func (l *list[T]) begin() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	return l.gen
}

// apply stores items fetched by generation gen and reports whether they
// were kept.
func (l *list[T]) apply(gen uint64, items []T, failed []scope.Failure) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen <= l.applied {
		return false
	}
	l.applied = gen
	if items == nil {
		items = []T{}
	}
	l.items = items
	l.failed = failed
	return true
}

func (l *list[T]) snapshot() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]T(nil), l.items...)
}

func (l *list[T]) failures() []scope.Failure {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]scope.Failure(nil), l.failed...)
}

func (l *list[T]) filter(keep func(T) bool) []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := []T{}
	for _, it := range l.items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// matchAll treats "" and "all" as no constraint.
func matchAll(want, got string) bool {
	return want == "" || want == "all" || want == got
}
