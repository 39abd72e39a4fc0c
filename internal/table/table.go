// Package table implements base/tail record layout, the indirection chain,
// page-position bookkeeping, and version materialization for one table —
// the core record-level engine beneath the query layer.
package table

import (
	"sync"

	"github.com/hnakae/lstore/internal/bufferpool"
	"github.com/hnakae/lstore/internal/lockmgr"
)

// Table holds one table's metadata and record directory, and appends/reads
// through a shared buffer pool. Per spec §9 ("replace the multiple
// per-table metadata mutexes with a single table-wide metadata mutex"),
// every piece of mutable metadata below is guarded by the single metaMu,
// not a mutex per field.
type Table struct {
	Name       string
	NumColumns int
	KeyIndex   int

	Pool *bufferpool.Pool
	Locks *lockmgr.Manager
	Index *Index

	metaMu sync.Mutex

	nextRID int64

	pageDirectory map[int64]*Entry
	keyToRID      map[int64]int64

	basePageCounts   []int
	tailPageCounts   []int
	basePageNextSlot []int
	tailPageNextSlot []int

	basePositions map[int64][]*Position
	tailPositions map[int64][]*Position
}

// New creates a table with the given identity. numColumns must be >= 1 and
// 0 <= keyIndex < numColumns.
func New(name string, numColumns, keyIndex int, pool *bufferpool.Pool) *Table {
	t := &Table{
		Name:             name,
		NumColumns:       numColumns,
		KeyIndex:         keyIndex,
		Pool:             pool,
		Locks:            lockmgr.New(),
		nextRID:          1,
		pageDirectory:    make(map[int64]*Entry),
		keyToRID:         make(map[int64]int64),
		basePageCounts:   make([]int, numColumns),
		tailPageCounts:   make([]int, numColumns),
		basePageNextSlot: make([]int, numColumns),
		tailPageNextSlot: make([]int, numColumns),
		basePositions:    make(map[int64][]*Position),
		tailPositions:    make(map[int64][]*Position),
	}
	t.Index = NewIndex(t)
	return t
}

// allocRID returns the next rid and advances the counter. Must be called
// under metaMu.
func (t *Table) allocRID() int64 {
	r := t.nextRID
	t.nextRID++
	return r
}
