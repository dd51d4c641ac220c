package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/invoicing/internal/draftfile"
	"github.com/odyssey-erp/invoicing/internal/inventory"
	"github.com/odyssey-erp/invoicing/internal/invoicing"
)

// CheckOptions defines available flags for the check command.
type CheckOptions struct {
	Files      []string
	StockPath  string
	JSONOutput bool
	Metrics    bool
	Stdout     io.Writer
	Stderr     io.Writer
}

// CheckSummary describes the JSON response for check.
type CheckSummary struct {
	OK     bool          `json:"ok"`
	Drafts []DraftReport `json:"drafts"`
}

// DraftReport is the outcome for one draft file.
type DraftReport struct {
	File       string            `json:"file"`
	OK         bool              `json:"ok"`
	Kind       string            `json:"kind,omitempty"`
	Number     string            `json:"number,omitempty"`
	Totals     *TotalsView       `json:"totals,omitempty"`
	Violations map[string]string `json:"violations,omitempty"`
	Error      string            `json:"error,omitempty"`

	fields []string
	failed bool
}

// TotalsView renders invoice totals with two decimals.
type TotalsView struct {
	Gross string `json:"gross"`
	VAT   string `json:"vat"`
	Net   string `json:"net"`
}

// CheckCommand runs every draft file through the editor and submit checks.
func (c *InvoiceCLI) CheckCommand(ctx context.Context, opts CheckOptions) int {
	stdout, stderr := outputs(opts.Stdout, opts.Stderr)
	if len(opts.Files) == 0 {
		_, _ = fmt.Fprintln(stderr, "check: at least one draft file is required")
		return exitFailure
	}

	var ledger inventory.Ledger
	if opts.StockPath != "" {
		loaded, err := draftfile.LoadLedger(opts.StockPath)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "check: load stock: %v\n", err)
			return exitFailure
		}
		ledger = loaded
	}

	reports := make([]DraftReport, len(opts.Files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range opts.Files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tracker := c.metrics.Track()
			report, err := c.checkFile(path, ledger)
			if err != nil {
				c.logger.Warn("draft check failed", slog.String("file", path), slog.Any("error", err))
				report = DraftReport{File: path, Error: err.Error(), failed: true}
			}
			_ = tracker.End(report.status(), err)
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		_, _ = fmt.Fprintf(stderr, "check: %v\n", err)
		return exitFailure
	}

	summary := CheckSummary{OK: true, Drafts: reports}
	code := exitOK
	for _, report := range reports {
		switch {
		case report.failed:
			code = exitFailure
		case !report.OK && code == exitOK:
			code = exitViolations
		}
		summary.OK = summary.OK && report.OK
	}

	if opts.JSONOutput {
		if err := json.NewEncoder(stdout).Encode(summary); err != nil {
			_, _ = fmt.Fprintf(stderr, "check: encode json: %v\n", err)
			return exitFailure
		}
	} else {
		renderCheckHuman(stdout, summary)
	}
	if opts.Metrics {
		if err := c.metrics.WriteText(stderr); err != nil {
			_, _ = fmt.Fprintf(stderr, "check: write metrics: %v\n", err)
			return exitFailure
		}
	}
	return code
}

// checkFile replays a draft file the way the form would: header first, then
// one row per item committed through the editor, then submit. Only I/O and
// decoding problems are returned as errors.
func (c *InvoiceCLI) checkFile(path string, ledger inventory.Ledger) (DraftReport, error) {
	raw, err := draftfile.Load(path)
	if err != nil {
		return DraftReport{}, err
	}
	rules := c.validator.Rules()

	header, violations := invoicing.ParseHeader(raw.Header)
	editor := invoicing.NewEditor(header, ledger, invoicing.EditorConfig{
		Validator: c.validator,
		Guard:     c.guard,
		Logger:    c.logger.With(slog.String("file", path)),
		Recorder:  c.metrics,
	})

	lineFailures := 0
	for i, rawItem := range raw.Items {
		prefix := fmt.Sprintf("items[%d].", i)
		item, parsed := invoicing.ParseLine(rawItem, rules.DefaultVATRate)
		idx := editor.AddRow()
		if parsed.Empty() {
			_, err = editor.Commit(idx, item)
			parsed = commitViolations(err)
			if parsed == nil {
				return DraftReport{}, fmt.Errorf("%s: row %d: %w", path, i, err)
			}
		}
		if parsed.Empty() {
			continue
		}
		lineFailures++
		violations.Merge(prefix, parsed)
		if err := editor.Cancel(idx); err != nil {
			return DraftReport{}, err
		}
	}

	draft, submitted := editor.Submit()
	if lineFailures > 0 {
		// rejected rows were dropped, so an empty grid is not a separate problem
		delete(submitted, "items")
	}
	violations.Merge("", submitted)

	report := DraftReport{
		File:   path,
		OK:     violations.Empty(),
		Kind:   string(header.Kind),
		Number: header.Number,
	}
	if report.OK {
		totals := draft.Totals()
		report.Totals = &TotalsView{
			Gross: totals.Gross.StringFixed(invoicing.CurrencyPlaces),
			VAT:   totals.VAT.StringFixed(invoicing.CurrencyPlaces),
			Net:   totals.Net.StringFixed(invoicing.CurrencyPlaces),
		}
		return report, nil
	}
	report.Violations = c.localizer.Messages(violations)
	report.fields = violations.Fields()
	return report, nil
}

// commitViolations maps a Commit error to field violations. It returns nil
// for errors that are not about the line itself.
func commitViolations(err error) invoicing.Violations {
	if err == nil {
		return invoicing.Violations{}
	}
	var validationErr *invoicing.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Violations
	}
	if invoicing.IsStockError(err) || errors.Is(err, inventory.ErrMalformedLedger) {
		return invoicing.Violations{"quantity": err}
	}
	return nil
}

func (r DraftReport) status() string {
	if r.OK {
		return "ok"
	}
	return "invalid"
}

func renderCheckHuman(out io.Writer, summary CheckSummary) {
	for _, report := range summary.Drafts {
		switch {
		case report.failed:
			_, _ = fmt.Fprintf(out, "%s: ERROR %s\n", report.File, report.Error)
		case report.OK:
			_, _ = fmt.Fprintf(out, "%s: OK %s %s gross %s vat %s net %s\n",
				report.File, report.Kind, report.Number, report.Totals.Gross, report.Totals.VAT, report.Totals.Net)
		default:
			_, _ = fmt.Fprintf(out, "%s: %d problem(s)\n", report.File, len(report.fields))
			for _, field := range report.fields {
				_, _ = fmt.Fprintf(out, " - %s: %s\n", field, report.Violations[field])
			}
		}
	}
}
