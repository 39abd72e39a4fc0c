// Package txn implements the strict-2PL transaction runtime: a queued
// script of table operations that acquires locks no-wait, retries on lock
// conflict, and rolls back via an undo log on any other failure.
package txn

import (
	"sync"
	"sync/atomic"

	"github.com/hnakae/lstore/internal/query"
	"github.com/hnakae/lstore/internal/table"
)

var nextTxnID int64

// kind classifies a queued step for lock acquisition (spec §4.7): insert
// and update/delete take exclusive locks on the primary key, select and
// select_version take shared locks.
type kind int

const (
	kindInsert kind = iota
	kindUpdate
	kindDelete
	kindSelect
	kindSelectVersion
)

type step struct {
	kind kind
	t    *table.Table
	pk   int64
	run  func(tx *Transaction) bool
}

// Transaction queues a script of operations across one or more tables and
// executes them under strict two-phase locking with no-wait deadlock
// avoidance and undo-based rollback.
type Transaction struct {
	ID int64

	mu      sync.Mutex
	running bool

	steps   []step
	undoLog []undoEntry
}

type undoEntry struct {
	action  string
	payload map[string]any
}

// New allocates a transaction with a fresh, process-unique id.
func New() *Transaction {
	return &Transaction{ID: atomic.AddInt64(&nextTxnID, 1)}
}

// AddInsert queues q.Insert(cols) against t.
func (tx *Transaction) AddInsert(q *query.Query, t *table.Table, cols []int64) {
	pk := cols[t.KeyIndex]
	tx.steps = append(tx.steps, step{
		kind: kindInsert, t: t, pk: pk,
		run: func(tx *Transaction) bool { return q.Insert(tx, cols) },
	})
}

// AddUpdate queues q.Update(pk, cols) against t.
func (tx *Transaction) AddUpdate(q *query.Query, t *table.Table, pk int64, cols []*int64) {
	tx.steps = append(tx.steps, step{
		kind: kindUpdate, t: t, pk: pk,
		run: func(tx *Transaction) bool { return q.Update(tx, pk, cols) },
	})
}

// AddDelete queues q.Delete(pk) against t.
func (tx *Transaction) AddDelete(q *query.Query, t *table.Table, pk int64) {
	tx.steps = append(tx.steps, step{
		kind: kindDelete, t: t, pk: pk,
		run: func(tx *Transaction) bool { return q.Delete(tx, pk) },
	})
}

// AddSelect queues a select by primary key, collecting results into out.
func (tx *Transaction) AddSelect(q *query.Query, t *table.Table, pk int64, mask []int, out *[]*table.Record) {
	tx.steps = append(tx.steps, step{
		kind: kindSelect, t: t, pk: pk,
		run: func(tx *Transaction) bool {
			*out = q.Select(pk, t.KeyIndex, mask)
			return true
		},
	})
}

// AddSelectVersion queues a select_version by primary key.
func (tx *Transaction) AddSelectVersion(q *query.Query, t *table.Table, pk int64, mask []int, relativeVersion int, out *[]*table.Record) {
	tx.steps = append(tx.steps, step{
		kind: kindSelectVersion, t: t, pk: pk,
		run: func(tx *Transaction) bool {
			*out = q.SelectVersion(pk, t.KeyIndex, mask, relativeVersion)
			return true
		},
	})
}

// AddIncrement queues q.Increment(key, column) against t.
func (tx *Transaction) AddIncrement(q *query.Query, t *table.Table, key int64, column int) {
	tx.steps = append(tx.steps, step{
		kind: kindUpdate, t: t, pk: key,
		run: func(tx *Transaction) bool { return q.Increment(tx, key, column) },
	})
}

// Run executes the queued script. On a lock conflict it aborts and
// retries the whole script from scratch; on any other failure it aborts
// and returns false without retrying. A call made while another Run of the
// same transaction is in progress returns false at once.
func (tx *Transaction) Run() bool {
	tx.mu.Lock()
	if tx.running {
		tx.mu.Unlock()
		return false
	}
	tx.running = true
	tx.mu.Unlock()

	defer func() {
		tx.mu.Lock()
		tx.running = false
		tx.mu.Unlock()
	}()

	for {
		tx.undoLog = tx.undoLog[:0]
		ok, retryable := tx.executeOnce()
		if ok {
			return tx.commit()
		}
		tx.abort()
		if !retryable {
			return false
		}
	}
}

// executeOnce runs every step in order, acquiring the appropriate lock
// before each. A lock-acquisition failure (no-wait conflict) returns
// (false, true) so Run retries from scratch; a query returning false
// returns (false, false) so Run aborts without retrying.
func (tx *Transaction) executeOnce() (ok, retryable bool) {
	for _, s := range tx.steps {
		switch s.kind {
		case kindInsert, kindUpdate, kindDelete:
			if !s.t.Locks.AcquireExclusive(s.pk, tx.ID) {
				return false, true
			}
		case kindSelect, kindSelectVersion:
			if !s.t.Locks.AcquireShared(s.pk, tx.ID) {
				return false, true
			}
		}

		if !s.run(tx) {
			return false, false
		}
	}
	return true, false
}

// LogAction implements query.Undoer: query operations record enough
// payload here for abort to reconstruct prior state.
func (tx *Transaction) LogAction(action string, payload map[string]any) {
	tx.undoLog = append(tx.undoLog, undoEntry{action: action, payload: payload})
}

func (tx *Transaction) commit() bool {
	tx.undoLog = tx.undoLog[:0]
	tx.releaseAllLocks()
	return true
}

func (tx *Transaction) abort() bool {
	for i := len(tx.undoLog) - 1; i >= 0; i-- {
		applyUndo(tx.undoLog[i].action, tx.undoLog[i].payload)
	}
	tx.undoLog = tx.undoLog[:0]
	tx.releaseAllLocks()
	return false
}

func (tx *Transaction) releaseAllLocks() {
	seen := make(map[*table.Table]struct{})
	for _, s := range tx.steps {
		if _, ok := seen[s.t]; ok {
			continue
		}
		s.t.Locks.ReleaseAll(tx.ID)
		seen[s.t] = struct{}{}
	}
}
