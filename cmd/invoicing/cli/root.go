package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/odyssey-erp/invoicing/internal/app"
)

const defaultEnvFile = ".env"

// Execute runs the invoicing command line with args and returns the process
// exit code: 0 when everything passed, 10 when validation found problems and
// 1 on hard failures.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	stdout, stderr = outputs(stdout, stderr)
	code := exitOK
	root := newRootCommand(stdout, stderr, &code)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintf(stderr, "invoicing: %v\n", err)
		return exitFailure
	}
	return code
}

func newRootCommand(stdout, stderr io.Writer, code *int) *cobra.Command {
	var (
		envFile string
		cli     *InvoiceCLI
	)
	root := &cobra.Command{
		Use:           "invoicing",
		Short:         "Validate invoice lines and drafts before submitting them",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadEnv(envFile, cmd.Flags().Changed("env-file")); err != nil {
				return err
			}
			cfg, err := app.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cli = NewInvoiceCLI(cfg, app.NewLoggerTo(stderr, cfg))
			return nil
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", defaultEnvFile, "dotenv file loaded before reading configuration")

	var line LineOptions
	lineCmd := &cobra.Command{
		Use:   "line",
		Short: "Compute and validate a single line item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			line.Stdout, line.Stderr = stdout, stderr
			*code = cli.LineCommand(line)
			return nil
		},
	}
	lineCmd.Flags().StringVar(&line.Product, "product", "line", "product name")
	lineCmd.Flags().StringVar(&line.Quantity, "quantity", "", "quantity")
	lineCmd.Flags().StringVar(&line.Price, "price", "", "unit price, VAT included")
	lineCmd.Flags().StringVar(&line.VAT, "vat", "", "VAT percentage, defaults to the configured rate")
	lineCmd.Flags().StringVar(&line.Discount, "discount", "0", "discount percentage")
	lineCmd.Flags().BoolVar(&line.JSONOutput, "json", false, "print JSON")

	var check CheckOptions
	checkCmd := &cobra.Command{
		Use:   "check FILE...",
		Short: "Check draft files as the submit step would",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			check.Files = args
			check.Stdout, check.Stderr = stdout, stderr
			*code = cli.CheckCommand(cmd.Context(), check)
			return nil
		},
	}
	checkCmd.Flags().StringVar(&check.StockPath, "stock", "", "stock snapshot file (JSON or YAML)")
	checkCmd.Flags().BoolVar(&check.JSONOutput, "json", false, "print JSON")
	checkCmd.Flags().BoolVar(&check.Metrics, "metrics", false, "dump Prometheus metrics to stderr")

	var stock StockOptions
	stockCmd := &cobra.Command{
		Use:   "stock",
		Short: "Check a quantity against a stock snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stock.Stdout, stock.Stderr = stdout, stderr
			*code = cli.StockCommand(stock)
			return nil
		},
	}
	stockCmd.Flags().StringVar(&stock.StockPath, "stock", "", "stock snapshot file (JSON or YAML)")
	stockCmd.Flags().StringVar(&stock.Product, "product", "", "product name")
	stockCmd.Flags().StringVar(&stock.Quantity, "quantity", "", "requested quantity")
	stockCmd.Flags().BoolVar(&stock.JSONOutput, "json", false, "print JSON")
	_ = stockCmd.MarkFlagRequired("stock")
	_ = stockCmd.MarkFlagRequired("product")

	root.AddCommand(lineCmd, checkCmd, stockCmd)
	return root
}

// loadEnv reads a dotenv file. The default file is optional and skipped in
// test mode; an explicit one must exist.
func loadEnv(path string, explicit bool) error {
	if !explicit && app.InTestMode() {
		return nil
	}
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}
