package entry

// Patch is a partial update. A nil field keeps the prior value.
// ID and Owner are not patchable.
type Patch struct {
	Description *string
	Status      *Status
	Priority    *Priority
}

// Empty reports whether the patch overrides nothing.
func (p Patch) Empty() bool {
	return p.Description == nil && p.Status == nil && p.Priority == nil
}

// Apply returns a new entry with every supplied field overridden.
// The receiver entry is not modified.
func (p Patch) Apply(e *Entry) *Entry {
	updated := e.Clone()
	if p.Description != nil {
		updated.Description = *p.Description
	}
	if p.Status != nil {
		updated.Status = *p.Status
	}
	if p.Priority != nil {
		updated.Priority = *p.Priority
	}
	return updated
}

// FieldChange describes one field that differs between two versions of an entry.
type FieldChange struct {
	Field    string
	OldValue string
	NewValue string
}

// Diff lists the fields that changed from before to after, in a fixed order.
func Diff(before, after *Entry) []FieldChange {
	var changes []FieldChange
	if before.Description != after.Description {
		changes = append(changes, FieldChange{"description", before.Description, after.Description})
	}
	if before.Status != after.Status {
		changes = append(changes, FieldChange{"status", before.Status.String(), after.Status.String()})
	}
	if before.Priority != after.Priority {
		changes = append(changes, FieldChange{"priority", before.Priority.String(), after.Priority.String()})
	}
	return changes
}
