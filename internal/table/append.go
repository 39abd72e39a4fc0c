package table

import "github.com/hnakae/lstore/internal/page"

// appendToColumn appends value to the given column's page stream,
// allocating a new page when the current one is full or doesn't exist yet.
// Must be called with metaMu held: this is the per-column serialization
// point spec §4.5 requires.
func (t *Table) appendToColumn(isBase bool, col int, value int64) (*Position, error) {
	counts := t.basePageCounts
	slots := t.basePageNextSlot
	if !isBase {
		counts = t.tailPageCounts
		slots = t.tailPageNextSlot
	}

	currentPageIndex := counts[col] - 1

	if currentPageIndex < 0 || slots[col] >= page.MaxRecords {
		currentPageIndex++
		counts[col] = currentPageIndex + 1
		slots[col] = 0

		frame, err := t.Pool.GetPage(t.Name, isBase, col, currentPageIndex, true)
		if err != nil {
			return nil, err
		}
		if frame != nil {
			frame.Page.SetNumRecords(0)
			t.Pool.MarkDirty(frame)
			t.Pool.Unpin(frame)
		}
	}

	slotIndex := slots[col]

	frame, err := t.Pool.GetPage(t.Name, isBase, col, currentPageIndex, true)
	if err != nil {
		return nil, err
	}
	if frame == nil {
		return nil, nil
	}

	frame.Page.SetNumRecords(slotIndex)
	if err := frame.Page.Write(value); err != nil {
		t.Pool.Unpin(frame)
		return nil, err
	}
	slots[col]++

	t.Pool.MarkDirty(frame)
	t.Pool.Unpin(frame)

	return &Position{Page: currentPageIndex, Slot: slotIndex}, nil
}

// appendBaseRecord appends every user column of a new base record. Must be
// called with metaMu held.
func (t *Table) appendBaseRecord(cols []int64) ([]*Position, error) {
	positions := make([]*Position, len(cols))
	for c, v := range cols {
		pos, err := t.appendToColumn(true, c, v)
		if err != nil {
			return nil, err
		}
		positions[c] = pos
	}
	return positions, nil
}

// appendTailUpdates appends the updated columns of a new tail record; cols
// entries that are nil are left unwritten (not updated). Must be called
// with metaMu held.
func (t *Table) appendTailUpdates(cols []*int64) ([]*Position, error) {
	positions := make([]*Position, t.NumColumns)
	for c, v := range cols {
		if v == nil {
			continue
		}
		pos, err := t.appendToColumn(false, c, *v)
		if err != nil {
			return nil, err
		}
		positions[c] = pos
	}
	return positions, nil
}

// readValueAt fetches the value written at a specific page position.
// Returns (nil, nil) if the page isn't resident/materialized — callers
// fall back to the directory's stored value, per spec §4.5.
func (t *Table) readValueAt(isBase bool, col, pageIdx, slot int) (*int64, error) {
	frame, err := t.Pool.GetPage(t.Name, isBase, col, pageIdx, false)
	if err != nil {
		return nil, err
	}
	if frame == nil {
		return nil, nil
	}
	defer t.Pool.Unpin(frame)

	v, err := frame.Page.Read(slot)
	if err != nil {
		return nil, nil
	}
	return &v, nil
}
