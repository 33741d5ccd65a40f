package orchestration

import "sync"

const processedCallLimit = 1024

// processedCalls remembers tool call IDs already executed so duplicate
// deliveries are dropped. The set is bounded; the oldest IDs are evicted
// first.
type processedCalls struct {
	mu    sync.Mutex
	limit int
	seen  map[string]struct{}
	order []string
}

func newProcessedCalls(limit int) *processedCalls {
	if limit <= 0 {
		limit = processedCallLimit
	}
	return &processedCalls{limit: limit, seen: map[string]struct{}{}}
}

// Add records the ID and reports whether it was fresh. IDs without a value
// cannot be deduplicated and always count as fresh.
func (p *processedCalls) Add(id string) bool {
	if id == "" {
		return true
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.seen[id]; ok {
		return false
	}

	p.seen[id] = struct{}{}
	p.order = append(p.order, id)
	for len(p.order) > p.limit {
		delete(p.seen, p.order[0])
		p.order = p.order[1:]
	}
	return true
}

// Reset forgets all recorded IDs. Called when the listening session is
// replaced, since call IDs are scoped to a session.
func (p *processedCalls) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen = map[string]struct{}{}
	p.order = nil
}
