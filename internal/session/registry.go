package session

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Factory builds the value for a session the first time it is needed.
type Factory[T any] func(ctx context.Context, sessionID string) (T, error)

// Registry lazily creates and caches one T per session id. At most size
// values are kept and a value unused for idle is dropped; the next Get for
// that id builds it again.
type Registry[T any] struct {
	factory Factory[T]

	mu      sync.Mutex
	entries *expirable.LRU[string, *entry[T]]
}

type entry[T any] struct {
	once  sync.Once
	value T
	err   error
}

// NewRegistry creates a registry backed by factory. size 0 means unbounded and
// idle 0 means entries never expire.
func NewRegistry[T any](factory Factory[T], size int, idle time.Duration) *Registry[T] {
	return &Registry[T]{
		factory: factory,
		entries: expirable.NewLRU[string, *entry[T]](size, nil, idle),
	}
}

// Get returns the value for sessionID, building it on first use. Concurrent
// callers for the same id share one factory call. A failed build is not cached.
func (r *Registry[T]) Get(ctx context.Context, sessionID string) (T, error) {
	r.mu.Lock()
	e, ok := r.entries.Get(sessionID)
	if !ok {
		e = &entry[T]{}
	}
	// re-adding renews the idle deadline
	r.entries.Add(sessionID, e)
	r.mu.Unlock()

	e.once.Do(func() {
		e.value, e.err = r.factory(ctx, sessionID)
	})
	if e.err != nil {
		r.mu.Lock()
		if cur, ok := r.entries.Peek(sessionID); ok && cur == e {
			r.entries.Remove(sessionID)
		}
		r.mu.Unlock()
	}
	return e.value, e.err
}

// Forget drops the cached value for sessionID.
func (r *Registry[T]) Forget(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries.Remove(sessionID)
}

// Len returns the number of live sessions.
func (r *Registry[T]) Len() int {
	return r.entries.Len()
}
