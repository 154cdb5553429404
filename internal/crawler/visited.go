package crawler

import "sync"

// VisitedSet records the URLs a fetch was attempted for.
// It is safe for concurrent use.
type VisitedSet struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	order []string
}

// NewVisitedSet creates an empty set.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{seen: make(map[string]struct{})}
}

// MarkIfNew adds u and reports true, or reports false if u was already
// present. The check and the insert are one atomic step.
func (v *VisitedSet) MarkIfNew(u string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.seen[u]; ok {
		return false
	}
	v.seen[u] = struct{}{}
	v.order = append(v.order, u)
	return true
}

// Contains reports whether u was marked.
func (v *VisitedSet) Contains(u string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.seen[u]
	return ok
}

// Len returns the number of marked URLs.
func (v *VisitedSet) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.order)
}

// URLs returns the marked URLs in marking order.
func (v *VisitedSet) URLs() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]string, len(v.order))
	copy(out, v.order)
	return out
}
