package query

// Delete logically removes the record with the given primary key:
// tombstones its base entry, drops the key mapping, and removes it from
// every built index. Returns false if the key does not exist.
func (q *Query) Delete(u Undoer, pk int64) bool {
	t := q.Table

	rid, ok := t.Lookup(pk)
	if !ok {
		return false
	}

	full, err := t.Materialize(rid, fullMask(t.NumColumns), 0)
	if err != nil {
		return false
	}
	oldVals := columnsOf(full)

	for c := 0; c < t.NumColumns; c++ {
		if t.Index.Built(c) {
			t.Index.Remove(c, oldVals[c], rid)
		}
	}

	t.TombstoneBase(rid)
	t.DeleteKey(pk)

	if u != nil {
		u.LogAction("delete", map[string]any{
			"table":       t,
			"rid":         rid,
			"primary_key": pk,
			"values":      oldVals,
		})
	}
	return true
}
