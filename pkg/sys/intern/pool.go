// Package intern deduplicates strings that repeat across many graph
// elements, such as node types, dependency types and edge endpoints.
package intern

import "sync"

// Pool hands out one canonical copy per distinct string.
// The zero value is not usable; call New.
type Pool struct {
	mu    sync.RWMutex
	store map[string]string
}

func New() *Pool {
	return &Pool{store: make(map[string]string)}
}

// Intern returns the canonical copy of s, storing s if it is new.
func (p *Pool) Intern(s string) string {
	if s == "" {
		return ""
	}

	p.mu.RLock()
	c, ok := p.store[s]
	p.mu.RUnlock()
	if ok {
		return c
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Double-check
	if c, ok := p.store[s]; ok {
		return c
	}
	p.store[s] = s
	return s
}

// Len returns the number of distinct strings held.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.store)
}

// Reset drops every stored string.
func (p *Pool) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.store = make(map[string]string)
}
