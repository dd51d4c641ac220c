package inventory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Ledger is a snapshot of available quantity per product name at one storage
// location. Values are never mutated in place; Reserve and Release return copies.
type Ledger map[string]decimal.Decimal

// ErrInsufficientStock triggered when a quantity exceeds the known available stock.
var ErrInsufficientStock = errors.New("inventory: insufficient stock")

// ErrMalformedLedger indicates the snapshot itself cannot be trusted.
var ErrMalformedLedger = errors.New("inventory: malformed stock ledger")

// InsufficientStockError reports the product and how much of it is missing.
type InsufficientStockError struct {
	Product   string
	Available decimal.Decimal
	Requested decimal.Decimal
	Missing   decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("inventory: insufficient stock for product %q: missing %s", e.Product, e.Missing.String())
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// NewLedger validates raw quantities and builds a ledger. Product names are
// trimmed; a blank name or a negative quantity makes the snapshot malformed.
func NewLedger(quantities map[string]decimal.Decimal) (Ledger, error) {
	ledger := make(Ledger, len(quantities))
	for name, qty := range quantities {
		product := strings.TrimSpace(name)
		if product == "" {
			return nil, fmt.Errorf("%w: blank product name", ErrMalformedLedger)
		}
		if qty.IsNegative() {
			return nil, fmt.Errorf("%w: negative quantity %s for %q", ErrMalformedLedger, qty.String(), product)
		}
		if _, dup := ledger[product]; dup {
			return nil, fmt.Errorf("%w: duplicate product %q", ErrMalformedLedger, product)
		}
		ledger[product] = qty
	}
	return ledger, nil
}

// Available returns the known quantity for a product and whether it is tracked.
func (l Ledger) Available(product string) (decimal.Decimal, bool) {
	qty, ok := l[strings.TrimSpace(product)]
	return qty, ok
}

// Clone copies the snapshot. A nil ledger stays nil so "no snapshot" survives
// reservations.
func (l Ledger) Clone() Ledger {
	if l == nil {
		return nil
	}
	out := make(Ledger, len(l))
	for product, qty := range l {
		out[product] = qty
	}
	return out
}

// Reserve returns a copy of the ledger with qty taken from product. Untracked
// products are left untouched.
func (l Ledger) Reserve(product string, qty decimal.Decimal) Ledger {
	return l.adjust(product, qty.Neg())
}

// Release returns a copy of the ledger with qty given back to product.
func (l Ledger) Release(product string, qty decimal.Decimal) Ledger {
	return l.adjust(product, qty)
}

func (l Ledger) adjust(product string, delta decimal.Decimal) Ledger {
	out := l.Clone()
	key := strings.TrimSpace(product)
	if current, ok := out[key]; ok {
		out[key] = current.Add(delta)
	}
	return out
}
