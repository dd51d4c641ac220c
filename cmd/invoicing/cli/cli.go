package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/odyssey-erp/invoicing/internal/app"
	"github.com/odyssey-erp/invoicing/internal/inventory"
	"github.com/odyssey-erp/invoicing/internal/invoicing"
	"github.com/odyssey-erp/invoicing/internal/observability"
)

const (
	exitOK         = 0
	exitFailure    = 1
	exitViolations = 10
)

// InvoiceCLI bundles the engine pieces shared by the invoicing commands.
type InvoiceCLI struct {
	cfg       *app.Config
	logger    *slog.Logger
	validator *invoicing.Validator
	guard     *inventory.Guard
	localizer *invoicing.Localizer
	metrics   *observability.Metrics
}

// NewInvoiceCLI constructs the helper from configuration. A nil logger
// discards log output.
func NewInvoiceCLI(cfg *app.Config, logger *slog.Logger) *InvoiceCLI {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	locale := "en"
	if cfg != nil && cfg.Locale != "" {
		locale = cfg.Locale
	}
	return &InvoiceCLI{
		cfg:       cfg,
		logger:    logger,
		validator: invoicing.NewValidator(cfg.Rules()),
		guard:     inventory.NewGuard(cfg.GuardConfig()),
		localizer: invoicing.NewLocalizer(locale),
		metrics:   observability.NewMetrics(),
	}
}

// Metrics exposes the counters collected by previous commands.
func (c *InvoiceCLI) Metrics() *observability.Metrics {
	return c.metrics
}

func outputs(stdout, stderr io.Writer) (io.Writer, io.Writer) {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return stdout, stderr
}
