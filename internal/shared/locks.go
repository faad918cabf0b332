package shared

import (
	"fmt"
	"sync"
)

// OrderLockKey builds the redis key serializing settlement per order.
func OrderLockKey(orderID string) string {
	return fmt.Sprintf("orders:%s:settle:lock", orderID)
}

// VehicleLockKey builds the redis key serializing stock mutation per vehicle.
func VehicleLockKey(vehicleID string) string {
	return fmt.Sprintf("inventory:%s:stock:lock", vehicleID)
}

// KeyedMutex serializes operations per key within a single process. The POS
// runs a small number of staff terminals against one server, so per-id
// serialization is the correctness requirement, not throughput.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedMutex constructs a KeyedMutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyedLock)}
}

// Lock acquires the mutex for key and returns the matching unlock func.
func (k *KeyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
