package generate

import "sync"

// Guard lets at most one generation run at a time. The zero value is idle.
type Guard struct {
	mu   sync.Mutex
	busy bool
}

// TryAcquire moves the guard from idle to in-flight. It returns false when
// a generation is already running. The returned release func moves it back
// to idle; calling it more than once is harmless.
func (g *Guard) TryAcquire() (release func(), ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.busy {
		return nil, false
	}
	g.busy = true

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			g.busy = false
			g.mu.Unlock()
		})
	}, true
}

// InFlight reports whether a generation currently holds the guard.
func (g *Guard) InFlight() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.busy
}
