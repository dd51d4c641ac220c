package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/invoicing/internal/app"
	_ "github.com/odyssey-erp/invoicing/internal/testing/guard"
)

const validOutgoing = `{
  "kind": "outgoing",
  "number": "OUT-0001",
  "date": "2024-05-01",
  "customer_id": 7,
  "organization_id": 1,
  "storage_id": 2,
  "responsible_person_id": 3,
  "contract_id": 4,
  "items": [
    {"product_name": "Pen", "quantity": 3, "unit_price": 10, "vat_percentage": 20},
    {"product_name": "Ink", "quantity": 2, "unit_price": 50, "vat_percentage": 20, "discount": 10}
  ]
}`

const invalidIncoming = `
kind: incoming
date: 2024-05-01
counter_agent_id: 9
organization_id: 1
storage_id: 2
responsible_person_id: 3
contract_id: 4
items:
  - product_name: ""
    quantity: 5
    unit_price: 10
  - product_name: Ink
    quantity: 0
    unit_price: 4
`

func newTestCLI(t *testing.T) *InvoiceCLI {
	t.Helper()
	cfg, err := app.LoadConfig()
	require.NoError(t, err)
	return NewInvoiceCLI(cfg, nil)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLineCommandJSON(t *testing.T) {
	cli := newTestCLI(t)
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	exitCode := cli.LineCommand(LineOptions{
		Product:    "Pen",
		Quantity:   "2",
		Price:      "50",
		VAT:        "20",
		Discount:   "10",
		JSONOutput: true,
		Stdout:     stdout,
		Stderr:     stderr,
	})
	require.Zero(t, exitCode)
	require.Empty(t, stderr.String())

	var summary LineSummary
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &summary))
	require.True(t, summary.OK)
	require.Equal(t, "90.00", summary.TotalPrice)
	require.Equal(t, "15.00", summary.VATAmount)
	require.Equal(t, "75.00", summary.NetAmount)
}

func TestLineCommandRejects(t *testing.T) {
	cli := newTestCLI(t)
	stdout := new(bytes.Buffer)
	exitCode := cli.LineCommand(LineOptions{
		Product:  "Pen",
		Quantity: "0",
		Price:    "10",
		VAT:      "18",
		Stdout:   stdout,
		Stderr:   new(bytes.Buffer),
	})
	require.Equal(t, 10, exitCode)
	require.Contains(t, stdout.String(), "quantity: Quantity must be greater than zero")
	require.Contains(t, stdout.String(), "vatRate: VAT rate has an invalid value")
}

func TestCheckCommandJSON(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "out.json", validOutgoing)
	bad := writeFile(t, dir, "in.yaml", invalidIncoming)

	cli := newTestCLI(t)
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	exitCode := cli.CheckCommand(context.Background(), CheckOptions{
		Files:      []string{good, bad},
		JSONOutput: true,
		Stdout:     stdout,
		Stderr:     stderr,
	})
	require.Equal(t, 10, exitCode)
	require.Empty(t, stderr.String())

	var summary CheckSummary
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &summary))
	require.False(t, summary.OK)
	require.Len(t, summary.Drafts, 2)

	okReport := summary.Drafts[0]
	require.True(t, okReport.OK)
	require.Equal(t, "OUT-0001", okReport.Number)
	require.Equal(t, "120.00", okReport.Totals.Gross)
	require.Equal(t, "20.00", okReport.Totals.VAT)
	require.Equal(t, "100.00", okReport.Totals.Net)

	badReport := summary.Drafts[1]
	require.False(t, badReport.OK)
	require.Contains(t, badReport.Violations, "items[0].productName")
	require.Contains(t, badReport.Violations, "items[1].quantity")
	require.Contains(t, badReport.Violations, "operationId")
	require.NotContains(t, badReport.Violations, "items")
}

func TestCheckCommandStockShortfall(t *testing.T) {
	dir := t.TempDir()
	draft := writeFile(t, dir, "out.json", validOutgoing)
	stock := writeFile(t, dir, "stock.yaml", "Pen: 2\nInk: 10\n")

	cli := newTestCLI(t)
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	exitCode := cli.CheckCommand(context.Background(), CheckOptions{
		Files:     []string{draft},
		StockPath: stock,
		Metrics:   true,
		Stdout:    stdout,
		Stderr:    stderr,
	})
	require.Equal(t, 10, exitCode)
	require.Contains(t, stdout.String(), `items[0].quantity: Insufficient stock for product "Pen". Missing quantity: 1`)
	require.Contains(t, stderr.String(), `invoicing_line_commits_total{kind="outgoing",outcome="stock_rejected"} 1`)
	require.Contains(t, stderr.String(), `invoicing_draft_checks_total{status="invalid"} 1`)
}

func TestCheckCommandFailClosedWithoutStock(t *testing.T) {
	t.Setenv("INVOICE_STOCK_FAIL_OPEN", "false")
	draft := writeFile(t, t.TempDir(), "out.json", validOutgoing)

	cli := newTestCLI(t)
	stdout := new(bytes.Buffer)
	exitCode := cli.CheckCommand(context.Background(), CheckOptions{
		Files:  []string{draft},
		Stdout: stdout,
		Stderr: new(bytes.Buffer),
	})
	require.Equal(t, 10, exitCode)
	require.Contains(t, stdout.String(), "items[0].quantity: Stock levels could not be checked")
	require.NotContains(t, stdout.String(), "Insufficient stock")
}

func TestCheckCommandHardFailures(t *testing.T) {
	dir := t.TempDir()
	draft := writeFile(t, dir, "out.json", validOutgoing)
	broken := writeFile(t, dir, "broken.json", `{"kind": `)

	cli := newTestCLI(t)
	stdout := new(bytes.Buffer)
	exitCode := cli.CheckCommand(context.Background(), CheckOptions{
		Files:  []string{draft, broken},
		Stdout: stdout,
		Stderr: new(bytes.Buffer),
	})
	require.Equal(t, 1, exitCode)
	require.Contains(t, stdout.String(), "out.json: OK outgoing OUT-0001")
	require.Contains(t, stdout.String(), "broken.json: ERROR")

	stderr := new(bytes.Buffer)
	exitCode = cli.CheckCommand(context.Background(), CheckOptions{
		Files:     []string{draft},
		StockPath: writeFile(t, dir, "stock.yaml", "Pen: -1\n"),
		Stdout:    new(bytes.Buffer),
		Stderr:    stderr,
	})
	require.Equal(t, 1, exitCode)
	require.Contains(t, stderr.String(), "load stock")
}

func TestStockCommand(t *testing.T) {
	dir := t.TempDir()
	stock := writeFile(t, dir, "stock.json", `{"Pen": 5}`)
	cli := newTestCLI(t)

	stdout := new(bytes.Buffer)
	exitCode := cli.StockCommand(StockOptions{StockPath: stock, Product: "Pen", Quantity: "5", Stdout: stdout, Stderr: new(bytes.Buffer)})
	require.Zero(t, exitCode)
	require.Contains(t, stdout.String(), "Pen: 5 fits (available 5)")

	stdout.Reset()
	exitCode = cli.StockCommand(StockOptions{StockPath: stock, Product: "Pen", Quantity: "10", JSONOutput: true, Stdout: stdout, Stderr: new(bytes.Buffer)})
	require.Equal(t, 10, exitCode)
	var summary StockSummary
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &summary))
	require.False(t, summary.OK)
	require.Equal(t, "5", summary.Missing)

	stdout.Reset()
	exitCode = cli.StockCommand(StockOptions{StockPath: stock, Product: "Eraser", Quantity: "100", Stdout: stdout, Stderr: new(bytes.Buffer)})
	require.Zero(t, exitCode)
	require.Contains(t, stdout.String(), "untracked")

	stderr := new(bytes.Buffer)
	exitCode = cli.StockCommand(StockOptions{StockPath: stock, Product: "Pen", Quantity: "", Stdout: new(bytes.Buffer), Stderr: stderr})
	require.Equal(t, 1, exitCode)
	require.Contains(t, stderr.String(), "invalid quantity")
}

func TestExecuteWiresCommands(t *testing.T) {
	require.True(t, app.InTestMode())
	dir := t.TempDir()
	envFile := writeFile(t, dir, "test.env", "INVOICE_LOCALE=id\n")
	t.Cleanup(func() { _ = os.Unsetenv("INVOICE_LOCALE") })

	stdout := new(bytes.Buffer)
	exitCode := Execute(context.Background(), []string{"--env-file", envFile, "line", "--quantity", "0", "--price", "10"}, stdout, new(bytes.Buffer))
	require.Equal(t, 10, exitCode)
	require.Contains(t, stdout.String(), "Jumlah harus lebih besar dari nol")

	stdout.Reset()
	exitCode = Execute(context.Background(), []string{"line", "--quantity", "3", "--price", "10"}, stdout, new(bytes.Buffer))
	require.Zero(t, exitCode)
	require.Contains(t, stdout.String(), "Total:   30.00")

	stderr := new(bytes.Buffer)
	exitCode = Execute(context.Background(), []string{"check"}, new(bytes.Buffer), stderr)
	require.Equal(t, 1, exitCode)
	require.Contains(t, stderr.String(), "invoicing:")

	exitCode = Execute(context.Background(), []string{"--env-file", filepath.Join(dir, "missing.env"), "line"}, new(bytes.Buffer), new(bytes.Buffer))
	require.Equal(t, 1, exitCode)
}
