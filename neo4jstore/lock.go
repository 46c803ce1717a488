package neo4jstore

import (
	"sync"
)

// Saving a skeleton replaces all of its joints. We have observed reads running
// alongside such writes observe a mixture of old and new joints, so reads take
// the lock exclusively while any number of writers may hold it together.
//
// A graphWRMutex is a sync.RWMutex with the roles swapped: multiple concurrent
// writers are permissible, but readers are exclusive. The zero value for a
// graphWRMutex is an unlocked mutex.
type graphWRMutex sync.RWMutex

// WLock locks wr for writing. It should not be used for recursive write locking;
// a blocked Lock call excludes new writers from acquiring the lock.
func (wr *graphWRMutex) WLock() {
	(*sync.RWMutex)(wr).RLock()
}

// WUnlock undoes a single WLock call; it does not affect other simultaneous
// writers.
func (wr *graphWRMutex) WUnlock() {
	(*sync.RWMutex)(wr).RUnlock()
}

// Lock locks wr for reading. If the lock is already locked for writing or
// reading, Lock blocks until the lock is available.
func (wr *graphWRMutex) Lock() {
	(*sync.RWMutex)(wr).Lock()
}

// Unlock unlocks wr for reading.
func (wr *graphWRMutex) Unlock() {
	(*sync.RWMutex)(wr).Unlock()
}
