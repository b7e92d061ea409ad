package inmemorylivestore

import (
	"sort"
	"sync"

	"github.com/the-block/bridge/internal/core/ports"
)

type EscrowStore struct {
	lock     sync.RWMutex
	locks    map[uint64]ports.EscrowLock
	ready    map[uint64]struct{}
	released map[uint64]uint64
}

func NewEscrowStore() *EscrowStore {
	return &EscrowStore{
		locks:    make(map[uint64]ports.EscrowLock),
		ready:    make(map[uint64]struct{}),
		released: make(map[uint64]uint64),
	}
}

// AddLock registers an escrow lock produced by order matching. The lock is
// not visible to the router until SetReady is called for it.
func (m *EscrowStore) AddLock(escrowLock ports.EscrowLock) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.locks[escrowLock.Id] = escrowLock
}

// SetReady marks a lock's release condition as satisfied.
func (m *EscrowStore) SetReady(id uint64) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if _, ok := m.locks[id]; !ok {
		return
	}
	m.ready[id] = struct{}{}
}

func (m *EscrowStore) ReadyLocks() []ports.EscrowLock {
	m.lock.RLock()
	defer m.lock.RUnlock()

	ready := make([]ports.EscrowLock, 0, len(m.ready))
	for id := range m.ready {
		ready = append(ready, m.locks[id])
	}
	sort.Slice(ready, func(i, j int) bool {
		return ready[i].Id < ready[j].Id
	})
	return ready
}

func (m *EscrowStore) Release(id uint64, value uint64) bool {
	m.lock.Lock()
	defer m.lock.Unlock()

	if _, ok := m.ready[id]; !ok {
		return false
	}
	delete(m.ready, id)
	delete(m.locks, id)
	m.released[id] = value
	return true
}

// ReleasedValue returns the trade value a lock was released for, if any.
func (m *EscrowStore) ReleasedValue(id uint64) (uint64, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	value, ok := m.released[id]
	return value, ok
}
