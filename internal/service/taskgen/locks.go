package taskgen

import (
	"sync"

	"github.com/google/uuid"
)

// templateLocks serializes generation per template so concurrent triggers
// (scheduler run overlapping a manual API call) cannot both read a stale
// generation cursor and duplicate instances.
type templateLocks struct {
	locks sync.Map // uuid.UUID -> *sync.Mutex
}

// lock acquires the mutex for the given template ID, creating it on first
// use, and returns the unlock function.
func (l *templateLocks) lock(id uuid.UUID) func() {
	mu, _ := l.locks.LoadOrStore(id, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}
