package table

import "sync"

// Index holds the optional per-column inverted value->rid-set maps. It
// guards its own state independently of the table's metadata mutex,
// following the original design's note that the index has its own
// concurrency concerns distinct from page_directory/key_to_rid.
type Index struct {
	table *Table

	mu      sync.Mutex
	buckets []map[int64]map[int64]struct{} // per column: value -> set(base rid)
}

// NewIndex returns an index with no columns built yet.
func NewIndex(t *Table) *Index {
	return &Index{table: t, buckets: make([]map[int64]map[int64]struct{}, t.NumColumns)}
}

// inRange reports whether c is a valid column index. Callers hold ix.mu.
func (ix *Index) inRange(c int) bool {
	return c >= 0 && c < len(ix.buckets)
}

// Built reports whether column c has a built index.
func (ix *Index) Built(c int) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.inRange(c) && ix.buckets[c] != nil
}

// Create builds an index on column c by scanning every live key and
// resolving its current value, per spec §4.6/§9 and the original
// create_index/​_latest_value_for_rid_column behavior.
func (ix *Index) Create(c int) error {
	if c < 0 || c >= ix.table.NumColumns {
		return nil
	}
	live := ix.table.AllLive()
	fresh := make(map[int64]map[int64]struct{})
	mask := make([]int, ix.table.NumColumns)
	mask[c] = 1
	for _, rid := range live {
		rec, err := ix.table.Materialize(rid, mask, 0)
		if err != nil {
			continue
		}
		if rec.Columns[c] == nil {
			continue
		}
		v := *rec.Columns[c]
		if fresh[v] == nil {
			fresh[v] = make(map[int64]struct{})
		}
		fresh[v][rid] = struct{}{}
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.buckets[c] = fresh
	return nil
}

// Drop removes the built index on column c, if any.
func (ix *Index) Drop(c int) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if !ix.inRange(c) {
		return
	}
	ix.buckets[c] = nil
}

// Add records that (value, rid) now belongs to column c's index, if built.
func (ix *Index) Add(c int, value, rid int64) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if !ix.inRange(c) {
		return
	}
	bucket := ix.buckets[c]
	if bucket == nil {
		return
	}
	if bucket[value] == nil {
		bucket[value] = make(map[int64]struct{})
	}
	bucket[value][rid] = struct{}{}
}

// Remove clears (value, rid) from column c's index, if built, deleting the
// bucket if it becomes empty.
func (ix *Index) Remove(c int, value, rid int64) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if !ix.inRange(c) {
		return
	}
	bucket := ix.buckets[c]
	if bucket == nil {
		return
	}
	set, ok := bucket[value]
	if !ok {
		return
	}
	delete(set, rid)
	if len(set) == 0 {
		delete(bucket, value)
	}
}

// Locate returns every base rid whose column c value equals value, or
// (nil, false) if column c has no built index.
func (ix *Index) Locate(c int, value int64) ([]int64, bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if !ix.inRange(c) {
		return nil, false
	}
	bucket := ix.buckets[c]
	if bucket == nil {
		return nil, false
	}
	set, ok := bucket[value]
	if !ok {
		return nil, true
	}
	out := make([]int64, 0, len(set))
	for rid := range set {
		out = append(out, rid)
	}
	return out, true
}

// LocateRange returns every base rid whose column c value falls within
// [begin, end], via a linear bucket scan (spec §9: range lookup through
// the index is opt-in, not a replacement for the table scan sum/sum_version
// use). Returns (nil, false) if column c has no built index.
func (ix *Index) LocateRange(c int, begin, end int64) ([]int64, bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if !ix.inRange(c) {
		return nil, false
	}
	bucket := ix.buckets[c]
	if bucket == nil {
		return nil, false
	}
	var out []int64
	for v, set := range bucket {
		if v < begin || v > end {
			continue
		}
		for rid := range set {
			out = append(out, rid)
		}
	}
	return out, true
}
