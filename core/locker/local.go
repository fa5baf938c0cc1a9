package locker

import (
	"context"
	"fmt"
	"sync"
)

// Local is an in-process keyed lock.
type Local struct {
	mu   sync.Mutex
	sems map[string]chan struct{}
}

// NewLocal creates an empty Local locker.
func NewLocal() *Local {
	return &Local{sems: make(map[string]chan struct{})}
}

func (l *Local) semFor(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	if sem, ok := l.sems[key]; ok {
		return sem
	}
	sem := make(chan struct{}, 1)
	l.sems[key] = sem
	return sem
}

// Lock blocks until key is free or ctx is done.
func (l *Local) Lock(ctx context.Context, key string) (func(), error) {
	sem := l.semFor(key)
	select {
	case sem <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %s: %v", ErrNotAcquired, key, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() { <-sem })
	}, nil
}
