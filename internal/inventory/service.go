package inventory

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// GuardConfig groups optional settings.
type GuardConfig struct {
	// FailClosed rejects quantities for products missing from the ledger.
	// The zero value keeps the fail-open behaviour: unknown data never blocks.
	FailClosed bool
}

// Guard decides whether a proposed quantity fits the available stock. It is
// advisory only; the backend remains authoritative on submit.
type Guard struct {
	failClosed bool
}

// NewGuard builds Guard.
func NewGuard(cfg GuardConfig) *Guard {
	return &Guard{failClosed: cfg.FailClosed}
}

// Check accepts or rejects qty of product against the ledger snapshot. The
// ledger is never modified; callers reserve accepted quantities themselves.
func (g *Guard) Check(ledger Ledger, product string, qty decimal.Decimal) error {
	if ledger == nil {
		if g.failsClosed() {
			return fmt.Errorf("%w: no snapshot loaded", ErrMalformedLedger)
		}
		return nil
	}
	name := strings.TrimSpace(product)
	available, ok := ledger.Available(name)
	if !ok {
		if g.failsClosed() {
			return &InsufficientStockError{Product: name, Available: decimal.Zero, Requested: qty, Missing: qty}
		}
		return nil
	}
	if available.IsNegative() {
		return fmt.Errorf("%w: negative quantity for %q", ErrMalformedLedger, name)
	}
	if qty.GreaterThan(available) {
		return &InsufficientStockError{
			Product:   name,
			Available: available,
			Requested: qty,
			Missing:   qty.Sub(available),
		}
	}
	return nil
}

func (g *Guard) failsClosed() bool {
	return g != nil && g.failClosed
}
