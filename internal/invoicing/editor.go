package invoicing

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/invoicing/internal/inventory"
)

// RowState is the editing state of one grid row.
type RowState string

const (
	// RowViewing shows the last accepted values.
	RowViewing RowState = "viewing"
	// RowEditing accepts changes that have not been validated yet.
	RowEditing RowState = "editing"
	// RowValidating is held while a commit is checked.
	RowValidating RowState = "validating"
	// RowRemoved is terminal; the row disappears from the grid.
	RowRemoved RowState = "removed"
)

// Commit outcomes reported to the Recorder.
const (
	OutcomeAccepted      = "accepted"
	OutcomeRejected      = "rejected"
	OutcomeStockRejected = "stock_rejected"
)

// Recorder receives counters about editing activity. Implementations must be
// cheap; a nil Recorder disables recording.
type Recorder interface {
	ObserveLineCommit(kind, outcome string)
	ObserveSubmit(kind, outcome string)
}

type row struct {
	item     LineItem
	state    RowState
	accepted bool
	// reservation held against the ledger for this row, outgoing drafts only
	reservedFor string
	reserved    decimal.Decimal
}

// EditorConfig groups the collaborators of an Editor.
type EditorConfig struct {
	Validator *Validator
	Guard     *inventory.Guard
	Logger    *slog.Logger
	Recorder  Recorder
}

// Editor owns one draft while its item grid is edited. Rows move through
// viewing -> editing -> validating -> viewing (accepted) or back to editing
// (rejected). An Editor is not safe for concurrent use.
type Editor struct {
	header    Draft
	rows      []*row
	ledger    inventory.Ledger
	validator *Validator
	guard     *inventory.Guard
	logger    *slog.Logger
	recorder  Recorder
}

// NewEditor opens draft for editing. Items already on the draft are treated as
// accepted rows whose quantities are already reflected in ledger, matching a
// server copy loaded in edit mode.
func NewEditor(draft Draft, ledger inventory.Ledger, cfg EditorConfig) *Editor {
	validator := cfg.Validator
	if validator == nil {
		validator = NewValidator(DefaultRules())
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	e := &Editor{
		header:    draft.clone(),
		ledger:    ledger.Clone(),
		validator: validator,
		guard:     cfg.Guard,
		logger:    logger.With(slog.String("draft", draft.LocalID.String()), slog.String("kind", string(draft.Kind))),
		recorder:  cfg.Recorder,
	}
	if e.guard == nil {
		e.guard = inventory.NewGuard(inventory.GuardConfig{})
	}
	for _, item := range draft.Items {
		r := &row{item: item, state: RowViewing, accepted: true}
		if e.tracksStock() {
			r.reservedFor = item.ProductName
			r.reserved = item.Quantity
		}
		e.rows = append(e.rows, r)
	}
	e.header.Items = nil
	return e
}

// Len returns the number of rows in the grid.
func (e *Editor) Len() int { return len(e.rows) }

// State returns the state of the row at index.
func (e *Editor) State(index int) (RowState, error) {
	r, err := e.row(index)
	if err != nil {
		return "", err
	}
	return r.state, nil
}

// Row returns the last accepted value of the row, or the blank template for
// a row never accepted.
func (e *Editor) Row(index int) (LineItem, error) {
	r, err := e.row(index)
	if err != nil {
		return LineItem{}, err
	}
	return r.item, nil
}

// Ledger returns the session's view of available stock.
func (e *Editor) Ledger() inventory.Ledger { return e.ledger.Clone() }

// AddRow appends a blank row in editing state and returns its index.
func (e *Editor) AddRow() int {
	e.rows = append(e.rows, &row{item: NewLineItem(e.validator.Rules().DefaultVATRate), state: RowEditing})
	return len(e.rows) - 1
}

// Edit moves a viewing row into editing.
func (e *Editor) Edit(index int) error {
	r, err := e.row(index)
	if err != nil {
		return err
	}
	if r.state != RowViewing {
		return fmt.Errorf("%w: row %d is %s", ErrRowNotViewing, index, r.state)
	}
	r.state = RowEditing
	return nil
}

// Commit validates item for the editing row at index. On acceptance the row
// returns to viewing with recomputed totals and, for outgoing drafts, the
// accepted quantity is reserved in the session ledger. On rejection the row
// stays in editing and the returned error is a *ValidationError, an
// *inventory.InsufficientStockError or, when a fail-closed guard has no
// snapshot, inventory.ErrMalformedLedger.
func (e *Editor) Commit(index int, item LineItem) (LineItem, error) {
	r, err := e.row(index)
	if err != nil {
		return LineItem{}, err
	}
	if r.state != RowEditing {
		return LineItem{}, fmt.Errorf("%w: row %d is %s", ErrRowNotEditing, index, r.state)
	}
	r.state = RowValidating

	validated, violations := e.validator.ValidateLine(item)
	if !violations.Empty() {
		r.state = RowEditing
		e.observeCommit(OutcomeRejected)
		e.logger.Debug("line rejected", slog.Int("row", index), slog.Any("fields", violations.Fields()))
		return LineItem{}, violations.Err()
	}

	if e.tracksStock() {
		ledger := e.ledger
		if r.reservedFor != "" {
			ledger = ledger.Release(r.reservedFor, r.reserved)
		}
		if err := e.guard.Check(ledger, validated.ProductName, validated.Quantity); err != nil {
			r.state = RowEditing
			e.observeCommit(OutcomeStockRejected)
			e.logger.Info("line exceeds stock", slog.Int("row", index), slog.String("product", validated.ProductName), slog.Any("error", err))
			return LineItem{}, err
		}
		e.ledger = ledger.Reserve(validated.ProductName, validated.Quantity)
		r.reservedFor = validated.ProductName
		r.reserved = validated.Quantity
	}

	r.item = validated
	r.accepted = true
	r.state = RowViewing
	e.observeCommit(OutcomeAccepted)
	e.logger.Debug("line accepted", slog.Int("row", index), slog.String("total", validated.TotalPrice.StringFixed(CurrencyPlaces)))
	return validated, nil
}

// Cancel abandons the edit of a row. A row that was never accepted is dropped.
func (e *Editor) Cancel(index int) error {
	r, err := e.row(index)
	if err != nil {
		return err
	}
	if r.state != RowEditing {
		return fmt.Errorf("%w: row %d is %s", ErrRowNotEditing, index, r.state)
	}
	if !r.accepted {
		e.drop(index)
		return nil
	}
	r.state = RowViewing
	return nil
}

// Remove deletes a viewing row and gives its reserved stock back. Later rows
// shift up by one.
func (e *Editor) Remove(index int) error {
	r, err := e.row(index)
	if err != nil {
		return err
	}
	if r.state != RowViewing {
		return fmt.Errorf("%w: row %d is %s", ErrRowNotViewing, index, r.state)
	}
	if r.reservedFor != "" {
		e.ledger = e.ledger.Release(r.reservedFor, r.reserved)
	}
	e.drop(index)
	e.logger.Debug("line removed", slog.Int("row", index))
	return nil
}

// Draft returns the draft with every accepted row, in grid order. Rows being
// edited contribute their last accepted value.
func (e *Editor) Draft() Draft {
	d := e.header.clone()
	d.Items = make([]LineItem, 0, len(e.rows))
	for _, r := range e.rows {
		if r.accepted {
			d.Items = append(d.Items, r.item)
		}
	}
	return d
}

// SetHeader replaces the header fields; items are kept.
func (e *Editor) SetHeader(header Draft) {
	e.header = header.clone()
	e.header.Items = nil
}

// Submit validates the whole draft. On success it returns the draft with
// freshly recomputed totals, ready for the persistence collaborator.
func (e *Editor) Submit() (Draft, Violations) {
	d := e.Draft()
	violations := e.validator.ValidateHeader(d)
	for i, r := range e.rows {
		if r.state != RowViewing {
			violations.Add(fmt.Sprintf("items[%d]", i), ErrRowUnsaved)
		}
	}
	if !violations.Empty() {
		e.observeSubmit(OutcomeRejected)
		e.logger.Info("draft not submittable", slog.Any("fields", violations.Fields()))
		return Draft{}, violations
	}
	e.observeSubmit(OutcomeAccepted)
	return d.Recompute(), nil
}

func (e *Editor) tracksStock() bool {
	return e.header.Kind == KindOutgoing
}

func (e *Editor) row(index int) (*row, error) {
	if index < 0 || index >= len(e.rows) {
		return nil, fmt.Errorf("%w: %d", ErrRowOutOfRange, index)
	}
	return e.rows[index], nil
}

func (e *Editor) drop(index int) {
	e.rows[index].state = RowRemoved
	e.rows = append(e.rows[:index], e.rows[index+1:]...)
}

func (e *Editor) observeCommit(outcome string) {
	if e.recorder != nil {
		e.recorder.ObserveLineCommit(string(e.header.Kind), outcome)
	}
}

func (e *Editor) observeSubmit(outcome string) {
	if e.recorder != nil {
		e.recorder.ObserveSubmit(string(e.header.Kind), outcome)
	}
}

// IsStockError reports whether err is an advisory stock rejection.
func IsStockError(err error) bool {
	return errors.Is(err, inventory.ErrInsufficientStock)
}
