package table

// Entry is a directory entry for one rid — base or tail. It mirrors the
// heterogeneous list the original assignment used
// ([indirection, rid, timestamp, schema, v0...vk-1]), replaced per spec §9
// with a tagged struct.
type Entry struct {
	Indirection int64   `json:"indirection"`
	RID         int64   `json:"rid"`
	Timestamp   int64   `json:"timestamp"`
	Schema      string  `json:"schema"` // length-k string of '0'/'1'
	Values      []int64 `json:"values"`
}

// Tombstoned reports whether this entry has been logically deleted (its rid
// field zeroed, per spec §3).
func (e *Entry) Tombstoned() bool { return e.RID == 0 }

// SchemaSet reports whether column c was updated by this (tail) entry.
func (e *Entry) SchemaSet(c int) bool {
	return c < len(e.Schema) && e.Schema[c] == '1'
}

// Position locates a single stored value within a column's page stream.
type Position struct {
	Page int `json:"page"`
	Slot int `json:"slot"`
}

// Record is a materialized, projected row returned to callers of Query.
// Columns not included by the projection mask are nil.
type Record struct {
	RID     int64
	Key     int64
	Columns []*int64
}

func ptr(v int64) *int64 { return &v }
