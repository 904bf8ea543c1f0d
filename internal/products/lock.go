package product

import (
	"sync"

	"github.com/google/uuid"
)

// productLocks serializes mutations per product. Holding the product's lock
// across the whole read-modify-write keeps two writers from both observing
// the same open interval; the unique boundary index remains as the backstop
// for writers in other processes.
type productLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newProductLocks() *productLocks {
	return &productLocks{locks: map[uuid.UUID]*lockEntry{}}
}

// Lock acquires the mutex for the given product and returns its release func.
func (l *productLocks) Lock(id uuid.UUID) func() {
	l.mu.Lock()
	entry, ok := l.locks[id]
	if !ok {
		entry = &lockEntry{}
		l.locks[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
