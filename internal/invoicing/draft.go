package invoicing

import (
	"fmt"

	"github.com/google/uuid"
)

// NewDraft starts an empty draft in create mode. nextNumber is the number
// suggested by the server and may be blank.
func NewDraft(kind Kind, nextNumber string) (Draft, error) {
	if !kind.Valid() {
		return Draft{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return Draft{LocalID: uuid.New(), Kind: kind, Number: nextNumber, Items: []LineItem{}}, nil
}

// LoadDraft prepares a server copy for edit mode. The draft starts read-only
// until BeginEdit is called.
func LoadDraft(server Draft) (Draft, error) {
	if !server.Kind.Valid() {
		return Draft{}, fmt.Errorf("%w: %q", ErrUnknownKind, server.Kind)
	}
	d := server.clone()
	if d.LocalID == uuid.Nil {
		d.LocalID = uuid.New()
	}
	d.Editing = false
	return d, nil
}

// BeginEdit marks the draft as being edited.
func (d Draft) BeginEdit() Draft {
	out := d.clone()
	out.Editing = true
	return out
}

// CancelEdit leaves edit mode, restoring the copy loaded from the server.
func (d Draft) CancelEdit(server Draft) Draft {
	out := server.clone()
	out.LocalID = d.LocalID
	out.Editing = false
	return out
}

// AdoptServerResponse replaces the local draft with the authoritative copy
// returned after a save, keeping the local session identity.
func (d Draft) AdoptServerResponse(resp Draft) Draft {
	out := resp.clone()
	out.LocalID = d.LocalID
	if out.Kind == "" {
		out.Kind = d.Kind
	}
	out.Editing = false
	return out
}

// AppendItem returns a draft with item added at the end.
func (d Draft) AppendItem(item LineItem) Draft {
	out := d.clone()
	out.Items = append(out.Items, item)
	return out
}

// ReplaceItem returns a draft with the item at index replaced.
func (d Draft) ReplaceItem(index int, item LineItem) (Draft, error) {
	if index < 0 || index >= len(d.Items) {
		return d, fmt.Errorf("%w: %d", ErrRowOutOfRange, index)
	}
	out := d.clone()
	out.Items[index] = item
	return out, nil
}

// RemoveItem returns a draft without the item at index; later items shift up.
func (d Draft) RemoveItem(index int) (Draft, error) {
	if index < 0 || index >= len(d.Items) {
		return d, fmt.Errorf("%w: %d", ErrRowOutOfRange, index)
	}
	out := d.clone()
	out.Items = append(out.Items[:index], out.Items[index+1:]...)
	return out, nil
}

// Recompute refreshes the derived amounts of every item.
func (d Draft) Recompute() Draft {
	out := d.clone()
	for i, item := range out.Items {
		out.Items[i] = item.Recompute()
	}
	return out
}

// Totals sums the derived amounts of the items as they currently stand.
func (d Draft) Totals() Totals {
	return SumTotals(d.Items)
}

func (d Draft) clone() Draft {
	out := d
	out.Items = make([]LineItem, len(d.Items))
	copy(out.Items, d.Items)
	return out
}
