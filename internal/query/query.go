// Package query implements the per-table tuple operations — insert,
// update, delete, select, select_version, sum, sum_version, increment —
// against the table engine. Every operation catches internal failures and
// reports them as false/empty rather than propagating an error, per
// spec §4.6 and §7.
package query

import (
	"time"

	"github.com/hnakae/lstore/internal/table"
)

// Undoer receives undo-log entries from a running transaction. The txn
// package implements this; queries executed outside a transaction may pass
// nil, in which case no undo entry is recorded.
type Undoer interface {
	LogAction(action string, payload map[string]any)
}

// Query executes tuple operations against one table.
type Query struct {
	Table *table.Table
}

// New returns a Query bound to t.
func New(t *table.Table) *Query {
	return &Query{Table: t}
}

func now() int64 { return time.Now().Unix() }

func fullMask(k int) []int {
	m := make([]int, k)
	for i := range m {
		m[i] = 1
	}
	return m
}

func columnsOf(rec *table.Record) []int64 {
	out := make([]int64, len(rec.Columns))
	for i, c := range rec.Columns {
		if c != nil {
			out[i] = *c
		}
	}
	return out
}
