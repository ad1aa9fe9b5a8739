/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"sync"
	"time"

	"github.com/Seednode/commandle/internal/cards"
	"github.com/Seednode/commandle/internal/guess"
)

// playerState is what a player keeps across pairwise connections.
type playerState struct {
	streak  guess.Streak
	filters cards.FilterConfig
}

type idleEntry[V any] struct {
	value      V
	lastActive time.Time
}

// idleMap is a keyed store whose entries can be dropped once they have gone
// unused for long enough.
type idleMap[V any] struct {
	mu      sync.Mutex
	entries map[string]*idleEntry[V]
}

func newIdleMap[V any]() *idleMap[V] {
	return &idleMap[V]{
		entries: make(map[string]*idleEntry[V]),
	}
}

// get returns the value for key and marks it active.
func (m *idleMap[V]) get(key string, now time.Time) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	e.lastActive = now

	return e.value, true
}

// getOrCreate returns the value for key, storing create() first if there
// is none.
func (m *idleMap[V]) getOrCreate(key string, now time.Time, create func() V) V {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		e = &idleEntry[V]{value: create()}
		m.entries[key] = e
	}
	e.lastActive = now

	return e.value
}

func (m *idleMap[V]) put(key string, v V, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = &idleEntry[V]{value: v, lastActive: now}
}

func (m *idleMap[V]) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.entries)
}

// reap drops every entry last used before cutoff and returns how many went.
func (m *idleMap[V]) reap(cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for key, e := range m.entries {
		if e.lastActive.Before(cutoff) {
			delete(m.entries, key)
			n++
		}
	}

	return n
}

// reaperLoop periodically removes entries idle longer than idleTimeout,
// until ctx is done.
func (m *idleMap[V]) reaperLoop(ctx context.Context, idleTimeout time.Duration, now func() time.Time, reaped func(int)) {
	ticker := time.NewTicker(max(idleTimeout/2, time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.reap(now().Add(-idleTimeout)); n > 0 && reaped != nil {
				reaped(n)
			}
		}
	}
}
