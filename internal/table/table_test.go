package table

import (
	"testing"

	"github.com/hnakae/lstore/internal/bufferpool"
	"github.com/hnakae/lstore/internal/page"
	"github.com/hnakae/lstore/internal/pagestore"
)

func newTestTable(t *testing.T, numColumns, keyIndex int) *Table {
	t.Helper()
	return newTestTableInDir(t, t.TempDir(), numColumns, keyIndex)
}

func newTestTableInDir(t *testing.T, dir string, numColumns, keyIndex int) *Table {
	t.Helper()
	pool := bufferpool.New(pagestore.New(dir), 64)
	return New("grades", numColumns, keyIndex, pool)
}

func fullMask(k int) []int {
	m := make([]int, k)
	for i := range m {
		m[i] = 1
	}
	return m
}

func TestInsertNewBaseAndMaterialize(t *testing.T) {
	tbl := newTestTable(t, 3, 0)
	rid, err := tbl.InsertNewBase(42, []int64{42, 1, 2}, 1000)
	if err != nil {
		t.Fatalf("InsertNewBase: %v", err)
	}

	rec, err := tbl.Materialize(rid, fullMask(3), 0)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if rec.Key != 42 {
		t.Fatalf("expected key 42, got %d", rec.Key)
	}
	for i, want := range []int64{42, 1, 2} {
		if rec.Columns[i] == nil || *rec.Columns[i] != want {
			t.Errorf("column %d: got %v, want %d", i, rec.Columns[i], want)
		}
	}
}

func TestAppendTailAppliesOverBase(t *testing.T) {
	tbl := newTestTable(t, 3, 0)
	rid, err := tbl.InsertNewBase(1, []int64{1, 5, 6}, 1000)
	if err != nil {
		t.Fatalf("InsertNewBase: %v", err)
	}

	newVal := int64(99)
	cols := []*int64{nil, &newVal, nil}
	tailRID, priorIndirection, err := tbl.AppendTail(rid, cols, 1001)
	if err != nil {
		t.Fatalf("AppendTail: %v", err)
	}
	if priorIndirection != 0 {
		t.Fatalf("expected prior indirection 0, got %d", priorIndirection)
	}
	if tailRID == rid {
		t.Fatal("expected a distinct tail rid")
	}

	rec, err := tbl.Materialize(rid, fullMask(3), 0)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if *rec.Columns[1] != 99 {
		t.Errorf("expected column 1 updated to 99, got %d", *rec.Columns[1])
	}
	if *rec.Columns[2] != 6 {
		t.Errorf("expected column 2 unchanged at 6, got %d", *rec.Columns[2])
	}
}

func TestMaterializeSkipNewestTailsWalksHistory(t *testing.T) {
	tbl := newTestTable(t, 2, 0)
	rid, _ := tbl.InsertNewBase(1, []int64{1, 10}, 1000)

	v1 := int64(20)
	tbl.AppendTail(rid, []*int64{nil, &v1}, 1001)
	v2 := int64(30)
	tbl.AppendTail(rid, []*int64{nil, &v2}, 1002)

	current, err := tbl.Materialize(rid, fullMask(2), 0)
	if err != nil {
		t.Fatalf("Materialize current: %v", err)
	}
	if *current.Columns[1] != 30 {
		t.Fatalf("expected current value 30, got %d", *current.Columns[1])
	}

	oneBack, err := tbl.Materialize(rid, fullMask(2), 1)
	if err != nil {
		t.Fatalf("Materialize -1: %v", err)
	}
	if *oneBack.Columns[1] != 20 {
		t.Fatalf("expected version -1 value 20, got %d", *oneBack.Columns[1])
	}

	original, err := tbl.Materialize(rid, fullMask(2), 2)
	if err != nil {
		t.Fatalf("Materialize -2: %v", err)
	}
	if *original.Columns[1] != 10 {
		t.Fatalf("expected version -2 value 10, got %d", *original.Columns[1])
	}
}

func TestOverwriteBaseResetsBasePositions(t *testing.T) {
	tbl := newTestTable(t, 2, 0)
	rid, _ := tbl.InsertNewBase(1, []int64{1, 10}, 1000)
	tbl.OverwriteBase(rid, []int64{1, 99}, 1001)

	rec, err := tbl.Materialize(rid, fullMask(2), 0)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if *rec.Columns[1] != 99 {
		t.Fatalf("expected overwritten value 99, got %d", *rec.Columns[1])
	}
}

func TestTombstoneAndRestoreBase(t *testing.T) {
	tbl := newTestTable(t, 2, 0)
	rid, _ := tbl.InsertNewBase(1, []int64{1, 10}, 1000)
	tbl.DeleteKey(1)
	tbl.TombstoneBase(rid)

	if _, ok := tbl.Lookup(1); ok {
		t.Fatal("expected key to be gone after delete")
	}
	entry, ok := tbl.EntrySnapshot(rid)
	if !ok || !entry.Tombstoned() {
		t.Fatal("expected entry to be tombstoned")
	}

	tbl.RestoreBase(rid)
	tbl.SetKey(1, rid)
	entry, _ = tbl.EntrySnapshot(rid)
	if entry.Tombstoned() {
		t.Fatal("expected entry to be restored")
	}
	if _, ok := tbl.Lookup(1); !ok {
		t.Fatal("expected key to be restored")
	}
}

func TestAppendToColumnOverflowsAtPageBoundary(t *testing.T) {
	tbl := newTestTable(t, 1, 0)

	var lastPos *Position
	for i := 0; i < page.MaxRecords+1; i++ {
		pos, err := tbl.appendToColumn(true, 0, int64(i))
		if err != nil {
			t.Fatalf("appendToColumn %d: %v", i, err)
		}
		lastPos = pos
	}

	if lastPos.Page != 1 || lastPos.Slot != 0 {
		t.Fatalf("expected row %d to land on page 1 slot 0, got page %d slot %d",
			page.MaxRecords, lastPos.Page, lastPos.Slot)
	}
	if tbl.basePageCounts[0] != 2 {
		t.Fatalf("expected 2 base pages allocated, got %d", tbl.basePageCounts[0])
	}
}

func TestUndoUpdateRevertsIndirection(t *testing.T) {
	tbl := newTestTable(t, 2, 0)
	rid, _ := tbl.InsertNewBase(1, []int64{1, 10}, 1000)
	v := int64(20)
	tailRID, priorIndirection, _ := tbl.AppendTail(rid, []*int64{nil, &v}, 1001)

	tbl.UndoUpdate(rid, tailRID, priorIndirection)

	rec, err := tbl.Materialize(rid, fullMask(2), 0)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if *rec.Columns[1] != 10 {
		t.Fatalf("expected reverted value 10, got %d", *rec.Columns[1])
	}
}
