// Package lockmgr implements a per-key shared/exclusive lock table with
// lock upgrade and a no-wait conflict policy: a conflicting acquire fails
// immediately rather than blocking, so the caller can abort and retry.
package lockmgr

import "sync"

// state tracks the holders of a single key's lock.
type state struct {
	exclusive int64 // txn id, 0 if none held
	shared    map[int64]struct{}
}

func (s *state) empty() bool {
	return s.exclusive == 0 && len(s.shared) == 0
}

// Manager is a table-wide lock table keyed by primary key (spec §9 prefers
// this over a per-rid table). A single mutex guards the whole table; none
// of the four operations call back into table/query code while it is held.
type Manager struct {
	mu    sync.Mutex
	locks map[int64]*state
}

// New returns an empty lock manager.
func New() *Manager {
	return &Manager{locks: make(map[int64]*state)}
}

// AcquireShared grants a shared lock on key to txn, unless another txn
// holds exclusive. If txn already holds exclusive, the request is granted
// (exclusive dominates shared).
func (m *Manager) AcquireShared(key, txn int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.locks[key]
	if !ok {
		m.locks[key] = &state{shared: map[int64]struct{}{txn: {}}}
		return true
	}
	if s.exclusive != 0 && s.exclusive != txn {
		return false
	}
	if s.exclusive == txn {
		return true
	}
	s.shared[txn] = struct{}{}
	return true
}

// AcquireExclusive grants an exclusive lock on key to txn when: no one
// holds it, txn already holds it (idempotent), or txn is the sole shared
// holder (an atomic upgrade). Any other holder causes it to fail.
func (m *Manager) AcquireExclusive(key, txn int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.locks[key]
	if !ok {
		m.locks[key] = &state{exclusive: txn, shared: make(map[int64]struct{})}
		return true
	}
	if s.exclusive == txn {
		return true
	}
	if s.exclusive != 0 {
		return false
	}
	// No exclusive holder: grant only if txn is the sole (or only) shared holder.
	for other := range s.shared {
		if other != txn {
			return false
		}
	}
	s.exclusive = txn
	delete(s.shared, txn)
	return true
}

// Release clears whichever of shared/exclusive txn holds on key,
// independently of the other (see spec §9 on the unreachable
// exclusive-and-shared-simultaneously check in one source variant: this
// implementation simply clears both, since they are mutually exclusive by
// construction: the upgrade above drops txn's shared entry in the same
// critical section that grants exclusive). Reports whether anything changed.
func (m *Manager) Release(key, txn int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.releaseLocked(key, txn)
}

func (m *Manager) releaseLocked(key, txn int64) bool {
	s, ok := m.locks[key]
	if !ok {
		return false
	}
	changed := false
	if s.exclusive == txn {
		s.exclusive = 0
		changed = true
	}
	if _, held := s.shared[txn]; held {
		delete(s.shared, txn)
		changed = true
	}
	if s.empty() {
		delete(m.locks, key)
	}
	return changed
}

// ReleaseAll clears every lock held by txn across the whole table.
func (m *Manager) ReleaseAll(txn int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, s := range m.locks {
		if s.exclusive == txn {
			s.exclusive = 0
		}
		delete(s.shared, txn)
		if s.empty() {
			delete(m.locks, key)
		}
	}
}
