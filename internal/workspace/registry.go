// Package workspace keeps each browser's open sessions in memory.
package workspace

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value V
	seen  time.Time
}

// Registry maps keys to values that expire after ttl without use.
type Registry[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]*entry[V]
}

func NewRegistry[V any](ttl time.Duration) *Registry[V] {
	return &Registry[V]{
		ttl:     ttl,
		now:     time.Now,
		entries: map[string]*entry[V]{},
	}
}

func (r *Registry[V]) expired(e *entry[V], now time.Time) bool {
	return r.ttl > 0 && now.Sub(e.seen) > r.ttl
}

// Get returns the value and refreshes its idle timer.
func (r *Registry[V]) Get(key string) (V, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	e, ok := r.entries[key]
	if !ok || r.expired(e, now) {
		delete(r.entries, key)
		var zero V
		return zero, false
	}
	e.seen = now
	return e.value, true
}

func (r *Registry[V]) Put(key string, v V) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.sweep(now)
	r.entries[key] = &entry[V]{value: v, seen: now}
}

func (r *Registry[V]) Delete(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key)
}

// Sweep drops every idle entry and returns how many were dropped.
func (r *Registry[V]) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweep(r.now())
}

func (r *Registry[V]) sweep(now time.Time) int {
	n := 0
	for k, e := range r.entries {
		if r.expired(e, now) {
			delete(r.entries, k)
			n++
		}
	}
	return n
}

func (r *Registry[V]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
