package cache

import (
	"sync"
	"time"
)

// guard stops calling Redis for a cooldown period after threshold
// consecutive failures, then lets a single trial call through. Queries keep
// being answered from the index meanwhile.
type guard struct {
	threshold int
	cooldown  time.Duration
	now       func() time.Time

	mu          sync.Mutex
	failures    int
	openedAt    time.Time
	open        bool
	trialActive bool
}

func newGuard(threshold int, cooldown time.Duration) *guard {
	return &guard{threshold: threshold, cooldown: cooldown, now: time.Now}
}

func (g *guard) allow() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.open {
		return true
	}
	if g.trialActive || g.now().Sub(g.openedAt) < g.cooldown {
		return false
	}
	g.trialActive = true
	return true
}

func (g *guard) success() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failures = 0
	g.open = false
	g.trialActive = false
}

// failure records a failed call and reports whether it opened the guard.
func (g *guard) failure() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failures++
	g.trialActive = false
	if g.open {
		g.openedAt = g.now()
		return false
	}
	if g.failures >= g.threshold {
		g.open = true
		g.openedAt = g.now()
		return true
	}
	return false
}
