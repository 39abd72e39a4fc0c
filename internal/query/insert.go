package query

// Insert adds a new base record, or — if the primary key already exists —
// overwrites the existing record in place (spec §4.6, §9: repeated insert
// with the same key is an overwrite, not a failure).
func (q *Query) Insert(u Undoer, cols []int64) bool {
	t := q.Table
	if len(cols) != t.NumColumns {
		return false
	}
	pk := cols[t.KeyIndex]

	// Locking is enforced by the transaction runtime (spec §4.7), which
	// acquires X on pk before calling Insert; ad-hoc calls outside a
	// transaction run unlocked, matching the original reference driver.

	if rid, ok := t.Lookup(pk); ok {
		old, err := t.Materialize(rid, fullMask(t.NumColumns), 0)
		if err != nil {
			return false
		}
		oldVals := columnsOf(old)
		t.OverwriteBase(rid, cols, now())
		for c := 0; c < t.NumColumns; c++ {
			if t.Index.Built(c) {
				t.Index.Remove(c, oldVals[c], rid)
				t.Index.Add(c, cols[c], rid)
			}
		}
		return true
	}

	rid, err := t.InsertNewBase(pk, cols, now())
	if err != nil {
		return false
	}
	for c, v := range cols {
		if t.Index.Built(c) {
			t.Index.Add(c, v, rid)
		}
	}

	if u != nil {
		u.LogAction("insert", map[string]any{
			"table":       t,
			"rid":         rid,
			"primary_key": pk,
			"values":      append([]int64(nil), cols...),
		})
	}
	return true
}
