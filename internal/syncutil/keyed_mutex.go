package syncutil

import "sync"

// KeyedMutex serializes critical sections per key. Moderation transitions lock
// on the item ID and submission approvals lock on the guide ID, so unrelated
// entities never contend with each other.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[int64]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{
		locks: make(map[int64]*entry),
	}
}

func (km *KeyedMutex) Lock(key int64) {
	km.mu.Lock()
	e, exists := km.locks[key]
	if !exists {
		e = &entry{}
		km.locks[key] = e
	}
	e.refs++
	km.mu.Unlock()

	e.mu.Lock()
}

func (km *KeyedMutex) Unlock(key int64) {
	km.mu.Lock()
	e, exists := km.locks[key]
	if !exists {
		km.mu.Unlock()
		panic("syncutil: unlock of unlocked key")
	}
	e.refs--
	if e.refs == 0 {
		delete(km.locks, key)
	}
	km.mu.Unlock()

	e.mu.Unlock()
}
