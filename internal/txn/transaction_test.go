package txn

import (
	"testing"

	"github.com/hnakae/lstore/internal/bufferpool"
	"github.com/hnakae/lstore/internal/pagestore"
	"github.com/hnakae/lstore/internal/query"
	"github.com/hnakae/lstore/internal/table"
)

func newTestTable(t *testing.T, numColumns, keyIndex int) *table.Table {
	t.Helper()
	dir := t.TempDir()
	pool := bufferpool.New(pagestore.New(dir), 64)
	return table.New("grades", numColumns, keyIndex, pool)
}

func fullMask(k int) []int {
	m := make([]int, k)
	for i := range m {
		m[i] = 1
	}
	return m
}

func TestTransactionCommitsAndReleasesLocks(t *testing.T) {
	tbl := newTestTable(t, 2, 0)
	q := query.New(tbl)

	tx := New()
	tx.AddInsert(q, tbl, []int64{1, 10})
	if !tx.Run() {
		t.Fatal("expected transaction to commit")
	}

	if _, ok := tbl.Lookup(1); !ok {
		t.Fatal("expected row to be visible after commit")
	}
	// Locks must be released: a fresh transaction on the same key succeeds.
	tx2 := New()
	tx2.AddDelete(q, tbl, 1)
	if !tx2.Run() {
		t.Fatal("expected second transaction to acquire lock and commit")
	}
}

func TestTransactionAbortsAndUndoesInsert(t *testing.T) {
	tbl := newTestTable(t, 2, 0)
	q := query.New(tbl)

	tx := New()
	tx.AddInsert(q, tbl, []int64{1, 10})
	// A failing delete on a never-inserted key forces abort of the whole script.
	tx.AddDelete(q, tbl, 404)

	if tx.Run() {
		t.Fatal("expected transaction to abort")
	}
	if _, ok := tbl.Lookup(1); ok {
		t.Fatal("expected inserted row to be undone after abort")
	}
}

func TestTransactionAbortsAndUndoesUpdate(t *testing.T) {
	tbl := newTestTable(t, 2, 0)
	q := query.New(tbl)
	q.Insert(nil, []int64{1, 10})

	tx := New()
	v := int64(99)
	tx.AddUpdate(q, tbl, 1, []*int64{nil, &v})
	tx.AddDelete(q, tbl, 404) // forces abort after the update has applied

	if tx.Run() {
		t.Fatal("expected transaction to abort")
	}

	rec := q.Select(1, tbl.KeyIndex, fullMask(2))
	if len(rec) != 1 || *rec[0].Columns[1] != 10 {
		t.Fatalf("expected update to be undone, got %v", rec)
	}
}

func TestTransactionRetriesOnLockConflict(t *testing.T) {
	tbl := newTestTable(t, 2, 0)
	q := query.New(tbl)
	q.Insert(nil, []int64{1, 10})

	// Hold an exclusive lock on key 1 under a foreign txn id so the first
	// execution attempt is forced to retry.
	if !tbl.Locks.AcquireExclusive(1, 999) {
		t.Fatal("setup: expected foreign lock acquire to succeed")
	}

	tx := New()
	v := int64(20)
	tx.AddUpdate(q, tbl, 1, []*int64{nil, &v})

	done := make(chan bool, 1)
	go func() { done <- tx.Run() }()

	// Release the foreign lock shortly after so the retry can proceed.
	tbl.Locks.Release(1, 999)

	if !<-done {
		t.Fatal("expected transaction to eventually commit after retrying")
	}
}

func TestTransactionRunCommitsSingleInsert(t *testing.T) {
	tbl := newTestTable(t, 2, 0)
	q := query.New(tbl)

	tx := New()
	tx.AddInsert(q, tbl, []int64{1, 10})
	if !tx.Run() {
		t.Fatal("expected first run to commit")
	}
}
