package services

import "sync"

// idLocks serializes operations keyed by a record id. Operations on
// different ids proceed in parallel.
type idLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func newIDLocks() *idLocks {
	return &idLocks{locks: make(map[uint]*sync.Mutex)}
}

// lock acquires the mutex for id and returns its release func.
func (l *idLocks) lock(id uint) func() {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
