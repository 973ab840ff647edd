package resilience

import "sync"

// SingleFlight collapses concurrent calls that share a key into a single
// execution. Late arrivals block on the leader's result instead of issuing
// their own call.
type SingleFlight struct {
	mu      sync.Mutex
	pending map[string]*flightResult
}

type flightResult struct {
	done chan struct{}
	val  any
	err  error
}

// Do runs fn once per concurrent key; the third return reports whether the
// result was shared from another caller's execution.
func (g *SingleFlight) Do(key string, fn func() (any, error)) (any, error, bool) {
	g.mu.Lock()
	if g.pending == nil {
		g.pending = make(map[string]*flightResult)
	}
	if r, ok := g.pending[key]; ok {
		g.mu.Unlock()
		<-r.done
		return r.val, r.err, true
	}

	r := &flightResult{done: make(chan struct{})}
	g.pending[key] = r
	g.mu.Unlock()

	r.val, r.err = fn()

	g.mu.Lock()
	delete(g.pending, key)
	g.mu.Unlock()
	close(r.done)

	return r.val, r.err, false
}
