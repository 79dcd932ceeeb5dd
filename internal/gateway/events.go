package gateway

import (
	"context"
	"sort"
	"sync"
	"time"
)

// SessionExpired is published after an unauthorized response has already
// cleared the persisted token.
type SessionExpired struct {
	Method string
	Route  string
	At     time.Time
}

// ExpiryListener is called synchronously, in subscription order, from the
// goroutine that received the unauthorized response.
type ExpiryListener func(ctx context.Context, ev SessionExpired)

type listeners struct {
	mu   sync.Mutex
	next int
	fns  map[int]ExpiryListener
}

func (l *listeners) add(fn ExpiryListener) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[int]ExpiryListener)
	}
	id := l.next
	l.next++
	l.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.fns, id)
			l.mu.Unlock()
		})
	}
}

func (l *listeners) snapshot() []ExpiryListener {
	l.mu.Lock()
	defer l.mu.Unlock()
	ids := make([]int, 0, len(l.fns))
	for id := range l.fns {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]ExpiryListener, 0, len(ids))
	for _, id := range ids {
		out = append(out, l.fns[id])
	}
	return out
}

func (l *listeners) publish(ctx context.Context, ev SessionExpired) {
	for _, fn := range l.snapshot() {
		fn(ctx, ev)
	}
}
