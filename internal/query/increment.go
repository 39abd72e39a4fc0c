package query

// Increment adds one to the value of column in the record identified by
// key, implemented as a select-then-update over a single column, matching
// the original driver's increment helper. Returns false if the key does
// not exist.
func (q *Query) Increment(u Undoer, key int64, column int) bool {
	t := q.Table
	if column < 0 || column >= t.NumColumns {
		return false
	}
	recs := q.Select(key, t.KeyIndex, fullMask(t.NumColumns))
	if len(recs) == 0 || recs[0].Columns[column] == nil {
		return false
	}

	newVal := *recs[0].Columns[column] + 1
	cols := make([]*int64, t.NumColumns)
	cols[column] = &newVal
	return q.Update(u, key, cols)
}
