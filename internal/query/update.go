package query

// Update applies a per-column change to the record identified by pk.
// cols has length NumColumns; a nil entry means "no change" for that
// column and leaves its schema bit clear. A no-op update (every column
// nil) returns true without writing a tail record.
func (q *Query) Update(u Undoer, pk int64, cols []*int64) bool {
	t := q.Table
	if len(cols) != t.NumColumns {
		return false
	}

	rid, ok := t.Lookup(pk)
	if !ok {
		return false
	}

	old, err := t.Materialize(rid, fullMask(t.NumColumns), 0)
	if err != nil {
		return false
	}
	oldVals := columnsOf(old)

	anySet := false
	for _, v := range cols {
		if v != nil {
			anySet = true
			break
		}
	}
	if !anySet {
		return true
	}

	tailRID, priorIndirection, err := t.AppendTail(rid, cols, now())
	if err != nil {
		return false
	}

	newVals := append([]int64(nil), oldVals...)
	for c, v := range cols {
		if v != nil {
			newVals[c] = *v
		}
	}

	for c, v := range cols {
		if v == nil {
			continue
		}
		if t.Index.Built(c) {
			t.Index.Remove(c, oldVals[c], rid)
			t.Index.Add(c, *v, rid)
		}
	}

	if u != nil {
		u.LogAction("update", map[string]any{
			"table":      t,
			"rid":        rid,
			"prev_tail":  priorIndirection,
			"new_tail":   tailRID,
			"old_values": oldVals,
			"new_values": newVals,
		})
	}
	return true
}
