package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/odyssey-erp/invoicing/internal/draftfile"
	"github.com/odyssey-erp/invoicing/internal/inventory"
	"github.com/odyssey-erp/invoicing/internal/invoicing"
)

// StockOptions defines available flags for the stock command.
type StockOptions struct {
	StockPath  string
	Product    string
	Quantity   string
	JSONOutput bool
	Stdout     io.Writer
	Stderr     io.Writer
}

// StockSummary describes the JSON response for stock.
type StockSummary struct {
	OK        bool   `json:"ok"`
	Product   string `json:"product"`
	Requested string `json:"requested"`
	Available string `json:"available,omitempty"`
	Missing   string `json:"missing,omitempty"`
	Message   string `json:"message,omitempty"`
}

// StockCommand asks the stock guard whether a quantity fits the snapshot.
func (c *InvoiceCLI) StockCommand(opts StockOptions) int {
	stdout, stderr := outputs(opts.Stdout, opts.Stderr)
	if opts.StockPath == "" {
		_, _ = fmt.Fprintln(stderr, "stock: --stock is required")
		return exitFailure
	}
	qty, err := invoicing.ParseQuantity(opts.Quantity)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "stock: invalid quantity %q\n", opts.Quantity)
		return exitFailure
	}
	ledger, err := draftfile.LoadLedger(opts.StockPath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "stock: load stock: %v\n", err)
		return exitFailure
	}

	summary := StockSummary{OK: true, Product: opts.Product, Requested: qty.String()}
	if available, tracked := ledger.Available(opts.Product); tracked {
		summary.Available = available.String()
	}
	err = c.guard.Check(ledger, opts.Product, qty)
	var stockErr *inventory.InsufficientStockError
	switch {
	case err == nil:
	case errors.As(err, &stockErr):
		summary.OK = false
		summary.Missing = stockErr.Missing.String()
		summary.Message = c.localizer.Message(err)
	default:
		_, _ = fmt.Fprintf(stderr, "stock: %s\n", c.localizer.Message(err))
		return exitFailure
	}

	if opts.JSONOutput {
		if err := json.NewEncoder(stdout).Encode(summary); err != nil {
			_, _ = fmt.Fprintf(stderr, "stock: encode json: %v\n", err)
			return exitFailure
		}
	} else if summary.OK {
		available := summary.Available
		if available == "" {
			available = "untracked"
		}
		_, _ = fmt.Fprintf(stdout, "%s: %s fits (available %s)\n", summary.Product, summary.Requested, available)
	} else {
		_, _ = fmt.Fprintln(stdout, summary.Message)
	}
	if !summary.OK {
		return exitViolations
	}
	return exitOK
}
