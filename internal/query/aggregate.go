package query

// Sum totals column aggCol over every live record whose primary key falls
// in [start, end], inclusive, scanning the table directly (spec §9: sum
// is a full scan over the key range, not an index lookup, since the
// range rarely matches a single indexed value). Returns (0, false) if no
// record in range is found.
func (q *Query) Sum(start, end, aggCol int64) (int64, bool) {
	return q.sumVersion(start, end, aggCol, 0)
}

// SumVersion is Sum with relativeVersion applied, per spec §4.6
// sum_version.
func (q *Query) SumVersion(start, end, aggCol int64, relativeVersion int) (int64, bool) {
	return q.sumVersion(start, end, aggCol, relativeVersion)
}

func (q *Query) sumVersion(start, end, aggCol int64, relativeVersion int) (int64, bool) {
	t := q.Table
	if aggCol < 0 || aggCol >= int64(t.NumColumns) {
		return 0, false
	}
	skip := relativeVersion
	if skip < 0 {
		skip = -skip
	}

	mask := make([]int, t.NumColumns)
	mask[aggCol] = 1

	var total int64
	found := false
	for pk, rid := range t.AllLive() {
		if pk < start || pk > end {
			continue
		}
		rec, err := t.Materialize(rid, mask, skip)
		if err != nil || rec.Columns[aggCol] == nil {
			continue
		}
		total += *rec.Columns[aggCol]
		found = true
	}
	if !found {
		return 0, false
	}
	return total, true
}
