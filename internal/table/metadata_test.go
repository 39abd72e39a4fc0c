package table

import "testing"

func TestFlushMetadataLoadFromDiskRoundTrip(t *testing.T) {
	dir := t.TempDir()
	tbl := newTestTableInDir(t, dir, 3, 0)

	tbl.InsertNewBase(1, []int64{1, 10, 100}, 1000)
	tbl.InsertNewBase(2, []int64{2, 20, 200}, 1000)
	v := int64(999)
	tbl.AppendTail(2, []*int64{nil, &v, nil}, 1001)

	if err := tbl.FlushMetadata(dir); err != nil {
		t.Fatalf("FlushMetadata: %v", err)
	}

	reloaded, err := LoadFromDisk(dir, tbl.Name, tbl.Pool)
	if err != nil {
		t.Fatalf("LoadFromDisk: %v", err)
	}

	if reloaded.NumColumns != 3 || reloaded.KeyIndex != 0 {
		t.Fatalf("unexpected table shape: cols=%d key=%d", reloaded.NumColumns, reloaded.KeyIndex)
	}

	rid, ok := reloaded.Lookup(2)
	if !ok {
		t.Fatal("expected key 2 to survive reload")
	}
	rec, err := reloaded.Materialize(rid, fullMask(3), 0)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if *rec.Columns[1] != 999 {
		t.Fatalf("expected column 1 == 999 after reload, got %d", *rec.Columns[1])
	}
}
