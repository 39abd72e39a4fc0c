package txn

import "github.com/hnakae/lstore/internal/table"

// applyUndo reverts one logged action, mirroring the original driver's
// _apply_undo: insert undoes by tombstoning the rid and dropping the key;
// delete undoes by restoring both; update undoes by rewinding the base's
// indirection and tombstoning the tail it had appended.
func applyUndo(action string, payload map[string]any) {
	t, _ := payload["table"].(*table.Table)
	if t == nil {
		return
	}

	switch action {
	case "insert":
		rid, _ := payload["rid"].(int64)
		pk, hasPK := payload["primary_key"].(int64)
		if hasPK {
			t.DeleteKey(pk)
		}
		t.TombstoneBase(rid)

		values, _ := payload["values"].([]int64)
		for c, v := range values {
			if t.Index.Built(c) {
				t.Index.Remove(c, v, rid)
			}
		}

	case "delete":
		rid, hasRID := payload["rid"].(int64)
		pk, hasPK := payload["primary_key"].(int64)
		if !hasRID || !hasPK {
			return
		}
		t.RestoreBase(rid)
		t.SetKey(pk, rid)

		values, _ := payload["values"].([]int64)
		for c, v := range values {
			if t.Index.Built(c) {
				t.Index.Add(c, v, rid)
			}
		}

	case "update":
		rid, hasRID := payload["rid"].(int64)
		if !hasRID {
			return
		}
		priorTail, _ := payload["prev_tail"].(int64)
		newTail, _ := payload["new_tail"].(int64)
		t.UndoUpdate(rid, newTail, priorTail)

		oldValues, _ := payload["old_values"].([]int64)
		newValues, _ := payload["new_values"].([]int64)
		for c := range oldValues {
			if !t.Index.Built(c) {
				continue
			}
			if c < len(newValues) {
				t.Index.Remove(c, newValues[c], rid)
			}
			t.Index.Add(c, oldValues[c], rid)
		}
	}
}
