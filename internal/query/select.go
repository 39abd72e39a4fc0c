package query

import "github.com/hnakae/lstore/internal/table"

// Select returns every live record whose searchColumn value equals
// searchKey, projected by mask. When searchColumn is the table's primary
// key it is an exact-match lookup via the key directory; when it is an
// indexed column it is resolved via the index; otherwise it falls back to
// a full table scan, matching the original query.py's three-tier dispatch.
func (q *Query) Select(searchKey int64, searchColumn int, mask []int) []*table.Record {
	return q.selectVersion(searchKey, searchColumn, mask, 0)
}

// SelectVersion is Select with relativeVersion applied (spec §4.6
// select_version): 0 is the current version, negative values walk
// backward through the indirection chain. Only primary-key lookups are
// supported for historical versions, matching the original driver; a
// search on any other column returns nil.
func (q *Query) SelectVersion(searchKey int64, searchColumn int, mask []int, relativeVersion int) []*table.Record {
	if searchColumn != q.Table.KeyIndex {
		return nil
	}
	return q.selectVersion(searchKey, searchColumn, mask, relativeVersion)
}

func (q *Query) selectVersion(searchKey int64, searchColumn int, mask []int, relativeVersion int) []*table.Record {
	t := q.Table
	if searchColumn < 0 || searchColumn >= t.NumColumns {
		return nil
	}
	skip := relativeVersion
	if skip < 0 {
		skip = -skip
	}

	if searchColumn == t.KeyIndex {
		rid, ok := t.Lookup(searchKey)
		if !ok {
			return nil
		}
		rec, err := t.Materialize(rid, mask, skip)
		if err != nil {
			return nil
		}
		return []*table.Record{rec}
	}

	if rids, built := t.Index.Locate(searchColumn, searchKey); built {
		out := make([]*table.Record, 0, len(rids))
		for _, rid := range rids {
			rec, err := t.Materialize(rid, mask, skip)
			if err != nil {
				continue
			}
			out = append(out, rec)
		}
		return out
	}

	var out []*table.Record
	for _, rid := range t.AllLive() {
		rec, err := t.Materialize(rid, fullMask(t.NumColumns), skip)
		if err != nil {
			continue
		}
		if rec.Columns[searchColumn] == nil || *rec.Columns[searchColumn] != searchKey {
			continue
		}
		out = append(out, project(rec, mask))
	}
	return out
}

func project(rec *table.Record, mask []int) *table.Record {
	projected := make([]*int64, len(mask))
	for i, include := range mask {
		if include != 0 {
			projected[i] = rec.Columns[i]
		}
	}
	return &table.Record{RID: rec.RID, Key: rec.Key, Columns: projected}
}
