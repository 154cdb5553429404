package crawler

import "fmt"

// Traversal is the order in which the frontier hands out URLs.
type Traversal int

const (
	// BreadthFirst visits URLs in discovery order (FIFO).
	BreadthFirst Traversal = iota
	// DepthFirst follows the most recently discovered URL first (LIFO).
	DepthFirst
)

// String returns the traversal name.
func (t Traversal) String() string {
	switch t {
	case BreadthFirst:
		return "breadth-first"
	case DepthFirst:
		return "depth-first"
	default:
		return fmt.Sprintf("traversal(%d)", int(t))
	}
}

// Frontier holds discovered URLs that have not been claimed yet.
// A URL is held at most once. Frontier is not safe for concurrent use; the
// session goroutine owns it.
type Frontier struct {
	order  Traversal
	items  []string
	queued map[string]struct{}
}

// NewFrontier creates an empty frontier.
func NewFrontier(order Traversal) *Frontier {
	return &Frontier{
		order:  order,
		queued: make(map[string]struct{}),
	}
}

// Push adds u unless it is already held. It reports whether u was added.
func (f *Frontier) Push(u string) bool {
	if _, ok := f.queued[u]; ok {
		return false
	}
	f.queued[u] = struct{}{}
	f.items = append(f.items, u)
	return true
}

// PushAll adds the links of one page. In depth-first order they are pushed
// in reverse, so the page's first link is still followed first.
func (f *Frontier) PushAll(links []string) {
	if f.order == DepthFirst {
		for i := len(links) - 1; i >= 0; i-- {
			f.Push(links[i])
		}
		return
	}
	for _, u := range links {
		f.Push(u)
	}
}

// Pop removes and returns the next URL.
func (f *Frontier) Pop() (string, bool) {
	if len(f.items) == 0 {
		return "", false
	}

	var u string
	if f.order == DepthFirst {
		last := len(f.items) - 1
		u = f.items[last]
		f.items = f.items[:last]
	} else {
		u = f.items[0]
		f.items[0] = ""
		f.items = f.items[1:]
	}
	delete(f.queued, u)
	return u, true
}

// Len returns the number of held URLs.
func (f *Frontier) Len() int {
	return len(f.items)
}
