package reconcile

import (
	"context"
	"sync"
)

// KeyLock is a registry of per-key exclusive sections. Callers for the same
// key are admitted in arrival order; different keys never wait on each other.
// Entries exist only while a key is held or awaited.
//
// The registry is process local. It gives no mutual exclusion across processes.
type KeyLock[K comparable] struct {
	mu      sync.Mutex
	entries map[K]*lockEntry
}

type lockEntry struct {
	// tail is closed when the most recent acquirer releases.
	tail chan struct{}
	refs int
}

// NewKeyLock creates an empty registry.
func NewKeyLock[K comparable]() *KeyLock[K] {
	return &KeyLock[K]{entries: make(map[K]*lockEntry)}
}

// Lock waits for the section of key and returns its release function.
// If ctx is done first, the place in the queue is given up without breaking
// the order of the callers behind it.
func (l *KeyLock[K]) Lock(ctx context.Context, key K) (func(), error) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &lockEntry{}
		l.entries[key] = e
	}
	prev := e.tail
	mine := make(chan struct{})
	e.tail = mine
	e.refs++
	l.mu.Unlock()

	var once sync.Once
	release := func() {
		once.Do(func() {
			close(mine)
			l.mu.Lock()
			e.refs--
			if e.refs == 0 && l.entries[key] == e {
				delete(l.entries, key)
			}
			l.mu.Unlock()
		})
	}

	if prev == nil {
		return release, nil
	}

	select {
	case <-prev:
		return release, nil
	case <-ctx.Done():
		// Hand the turn on once the predecessor is done.
		go func() {
			<-prev
			release()
		}()
		return nil, ctx.Err()
	}
}

// Do runs fn inside the section of key.
func (l *KeyLock[K]) Do(ctx context.Context, key K, fn func() error) error {
	release, err := l.Lock(ctx, key)
	if err != nil {
		return err
	}
	defer release()
	return fn()
}

// Len returns the number of keys currently held or awaited.
func (l *KeyLock[K]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
