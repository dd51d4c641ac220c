package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/odyssey-erp/invoicing/internal/invoicing"
)

// LineOptions defines available flags for the line command.
type LineOptions struct {
	Product    string
	Quantity   string
	Price      string
	VAT        string
	Discount   string
	JSONOutput bool
	Stdout     io.Writer
	Stderr     io.Writer
}

// LineSummary describes the JSON response for line.
type LineSummary struct {
	OK         bool              `json:"ok"`
	TotalPrice string            `json:"total_price,omitempty"`
	VATAmount  string            `json:"vat_amount,omitempty"`
	NetAmount  string            `json:"net_amount,omitempty"`
	VATRate    int               `json:"vat_percentage"`
	Violations map[string]string `json:"violations,omitempty"`
}

// LineCommand validates a single line and prints its totals.
func (c *InvoiceCLI) LineCommand(opts LineOptions) int {
	stdout, stderr := outputs(opts.Stdout, opts.Stderr)

	rules := c.validator.Rules()
	item, violations := invoicing.ParseLine(invoicing.RawLineItem{
		ProductName:     opts.Product,
		Quantity:        opts.Quantity,
		UnitPrice:       opts.Price,
		VATRate:         opts.VAT,
		DiscountPercent: opts.Discount,
	}, rules.DefaultVATRate)
	if violations.Empty() {
		item, violations = c.validator.ValidateLine(item)
	}

	summary := LineSummary{OK: violations.Empty(), VATRate: int(item.VATRate)}
	if summary.OK {
		summary.TotalPrice = item.TotalPrice.StringFixed(invoicing.CurrencyPlaces)
		summary.VATAmount = item.VATAmount.StringFixed(invoicing.CurrencyPlaces)
		summary.NetAmount = item.TotalPrice.Sub(item.VATAmount).StringFixed(invoicing.CurrencyPlaces)
	} else {
		summary.Violations = c.localizer.Messages(violations)
	}

	if opts.JSONOutput {
		if err := json.NewEncoder(stdout).Encode(summary); err != nil {
			_, _ = fmt.Fprintf(stderr, "line: encode json: %v\n", err)
			return exitFailure
		}
	} else {
		renderLineHuman(stdout, summary, violations)
	}
	if !summary.OK {
		return exitViolations
	}
	return exitOK
}

func renderLineHuman(out io.Writer, summary LineSummary, violations invoicing.Violations) {
	if !summary.OK {
		_, _ = fmt.Fprintln(out, "Line rejected:")
		for _, field := range violations.Fields() {
			_, _ = fmt.Fprintf(out, " - %s: %s\n", field, summary.Violations[field])
		}
		return
	}
	_, _ = fmt.Fprintf(out, "Total:   %s\n", summary.TotalPrice)
	_, _ = fmt.Fprintf(out, "VAT %d%%: %s\n", summary.VATRate, summary.VATAmount)
	_, _ = fmt.Fprintf(out, "Net:     %s\n", summary.NetAmount)
}
