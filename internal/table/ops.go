package table

// Lookup returns the base rid for a primary key, if live.
func (t *Table) Lookup(pk int64) (int64, bool) {
	t.metaMu.Lock()
	defer t.metaMu.Unlock()
	rid, ok := t.keyToRID[pk]
	return rid, ok
}

// EntrySnapshot returns a copy of the directory entry for rid.
func (t *Table) EntrySnapshot(rid int64) (Entry, bool) {
	t.metaMu.Lock()
	defer t.metaMu.Unlock()
	e, ok := t.pageDirectory[rid]
	if !ok {
		return Entry{}, false
	}
	cp := *e
	cp.Values = append([]int64(nil), e.Values...)
	return cp, true
}

// InsertNewBase allocates a fresh rid, installs its directory entry and key
// mapping, and appends every user column to the base page streams.
func (t *Table) InsertNewBase(pk int64, cols []int64, now int64) (int64, error) {
	t.metaMu.Lock()
	defer t.metaMu.Unlock()

	rid := t.allocRID()
	entry := &Entry{
		Indirection: 0,
		RID:         rid,
		Timestamp:   now,
		Schema:      zeroSchema(t.NumColumns),
		Values:      append([]int64(nil), cols...),
	}
	t.pageDirectory[rid] = entry
	t.keyToRID[pk] = rid

	positions, err := t.appendBaseRecord(cols)
	if err != nil {
		return rid, err
	}
	t.basePositions[rid] = positions
	return rid, nil
}

// OverwriteBase rebuilds an existing rid's base entry in place (spec §4.6
// insert-overwrite semantics) and forces subsequent reads to fall back to
// the directory until the next append by clearing its base positions.
func (t *Table) OverwriteBase(rid int64, cols []int64, now int64) {
	t.metaMu.Lock()
	defer t.metaMu.Unlock()
	t.pageDirectory[rid] = &Entry{
		Indirection: 0,
		RID:         rid,
		Timestamp:   now,
		Schema:      zeroSchema(t.NumColumns),
		Values:      append([]int64(nil), cols...),
	}
	delete(t.basePositions, rid)
}

// TombstoneBase marks a base rid's directory entry deleted.
func (t *Table) TombstoneBase(rid int64) {
	t.metaMu.Lock()
	defer t.metaMu.Unlock()
	if e, ok := t.pageDirectory[rid]; ok {
		e.RID = 0
	}
}

// RestoreBase un-tombstones a base rid (undo of delete).
func (t *Table) RestoreBase(rid int64) {
	t.metaMu.Lock()
	defer t.metaMu.Unlock()
	if e, ok := t.pageDirectory[rid]; ok {
		e.RID = rid
	}
}

// DeleteKey removes a key->rid mapping.
func (t *Table) DeleteKey(pk int64) {
	t.metaMu.Lock()
	defer t.metaMu.Unlock()
	delete(t.keyToRID, pk)
}

// SetKey installs or restores a key->rid mapping.
func (t *Table) SetKey(pk, rid int64) {
	t.metaMu.Lock()
	defer t.metaMu.Unlock()
	t.keyToRID[pk] = rid
}

// AppendTail allocates a new tail rid for baseRID, splices it onto the
// indirection chain, and appends the updated columns to the tail page
// streams. cols has length NumColumns; nil entries are unchanged columns.
// Returns the new tail rid and the indirection value the base held prior
// to the splice (for undo).
func (t *Table) AppendTail(baseRID int64, cols []*int64, now int64) (tailRID, priorIndirection int64, err error) {
	t.metaMu.Lock()
	defer t.metaMu.Unlock()

	base, ok := t.pageDirectory[baseRID]
	if !ok {
		return 0, 0, errNoSuchRID
	}
	priorIndirection = base.Indirection

	tailRID = t.allocRID()
	values := make([]int64, t.NumColumns)
	schema := make([]byte, t.NumColumns)
	for c := range schema {
		schema[c] = '0'
	}
	for c, v := range cols {
		if v != nil {
			schema[c] = '1'
			values[c] = *v
		}
	}

	tailEntry := &Entry{
		Indirection: priorIndirection,
		RID:         tailRID,
		Timestamp:   now,
		Schema:      string(schema),
		Values:      values,
	}
	t.pageDirectory[tailRID] = tailEntry
	base.Indirection = tailRID

	positions, err := t.appendTailUpdates(cols)
	if err != nil {
		return tailRID, priorIndirection, err
	}
	t.tailPositions[tailRID] = positions
	return tailRID, priorIndirection, nil
}

// UndoUpdate reverts an AppendTail splice: restores the base's indirection
// and tombstones the newly appended tail entry.
func (t *Table) UndoUpdate(baseRID, tailRID, priorIndirection int64) {
	t.metaMu.Lock()
	defer t.metaMu.Unlock()
	if base, ok := t.pageDirectory[baseRID]; ok {
		base.Indirection = priorIndirection
	}
	if tail, ok := t.pageDirectory[tailRID]; ok {
		tail.RID = 0
	}
}

// AllLive returns a snapshot of every live primary-key -> rid pair.
func (t *Table) AllLive() map[int64]int64 {
	t.metaMu.Lock()
	defer t.metaMu.Unlock()
	out := make(map[int64]int64, len(t.keyToRID))
	for k, v := range t.keyToRID {
		out[k] = v
	}
	return out
}

func zeroSchema(k int) string {
	b := make([]byte, k)
	for i := range b {
		b[i] = '0'
	}
	return string(b)
}
