package table

import "errors"

var errNoSuchRID = errors.New("table: no such rid")

// Materialize reconstructs the projected, current (or historical, via
// skipNewestTails) value of the base record identified by baseRID.
//
// skipNewestTails implements spec §4.6's select_version: it is the number
// of newest tail records to discard before applying the rest, oldest
// first, over the base (relative_version's absolute value — see spec §9).
// Pass 0 for the current version.
func (t *Table) Materialize(baseRID int64, mask []int, skipNewestTails int) (*Record, error) {
	t.metaMu.Lock()
	defer t.metaMu.Unlock()
	return t.materializeLocked(baseRID, mask, skipNewestTails)
}

func (t *Table) materializeLocked(baseRID int64, mask []int, skipNewestTails int) (*Record, error) {
	base, ok := t.pageDirectory[baseRID]
	if !ok {
		return nil, errNoSuchRID
	}

	cols := make([]int64, t.NumColumns)
	if positions, ok := t.basePositions[baseRID]; ok {
		for c := 0; c < t.NumColumns; c++ {
			var pos *Position
			if c < len(positions) {
				pos = positions[c]
			}
			if pos != nil {
				v, err := t.readValueAt(true, c, pos.Page, pos.Slot)
				if err != nil {
					return nil, err
				}
				if v != nil {
					cols[c] = *v
					continue
				}
			}
			cols[c] = base.Values[c]
		}
	} else {
		copy(cols, base.Values)
	}

	// Walk the indirection chain, skipping the newest skipNewestTails tails.
	tailRID := base.Indirection
	skipped := 0
	for tailRID != 0 && skipped < skipNewestTails {
		tail, ok := t.pageDirectory[tailRID]
		if !ok {
			break
		}
		tailRID = tail.Indirection
		skipped++
	}

	var chain []*Entry
	for tailRID != 0 {
		tail, ok := t.pageDirectory[tailRID]
		if !ok {
			break
		}
		chain = append(chain, tail)
		tailRID = tail.Indirection
	}

	// Apply oldest first so newer updates win.
	for i := len(chain) - 1; i >= 0; i-- {
		tail := chain[i]
		positions := t.tailPositions[tail.RID]
		for c := 0; c < t.NumColumns; c++ {
			if !tail.SchemaSet(c) {
				continue
			}
			var pos *Position
			if c < len(positions) {
				pos = positions[c]
			}
			if pos != nil {
				v, err := t.readValueAt(false, c, pos.Page, pos.Slot)
				if err != nil {
					return nil, err
				}
				if v != nil {
					cols[c] = *v
					continue
				}
			}
			cols[c] = tail.Values[c]
		}
	}

	projected := make([]*int64, len(mask))
	for i, include := range mask {
		if include != 0 {
			projected[i] = ptr(cols[i])
		}
	}

	return &Record{RID: baseRID, Key: cols[t.KeyIndex], Columns: projected}, nil
}
