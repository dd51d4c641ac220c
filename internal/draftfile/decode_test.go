package draftfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/invoicing/internal/inventory"
)

const outgoingJSON = `{
  "kind": "outgoing",
  "number": "OUT-0001",
  "date": "2024-05-01",
  "customer_id": 7,
  "organization_id": "1",
  "storage_id": 2,
  "responsible_person_id": 3,
  "contract_id": 4,
  "payment_document": null,
  "items": [
    {"product_name": "Pen", "quantity": 3, "unit_price": "10.00", "vat_percentage": 20, "total_price": 999}
  ]
}`

const incomingYAML = `
kind: incoming
date: 2024-05-01
counter_agent_id: 9
organization_id: 1
storage_id: 2
responsible_person_id: 3
contract_id: 4
operation_id: 5
items:
  - product_name: Ink
    quantity: 2.5
    unit_price: 4
    discount: "10%"
`

func TestDecodeJSONDraft(t *testing.T) {
	draft, err := Decode(strings.NewReader(outgoingJSON), FormatJSON)
	require.NoError(t, err)
	require.Equal(t, "outgoing", draft.Header.Kind)
	require.Equal(t, "7", draft.Header.Counterparty)
	require.Equal(t, "1", draft.Header.Organization)
	require.Empty(t, draft.Header.PaymentDocument)
	require.Len(t, draft.Items, 1)
	require.Equal(t, "3", draft.Items[0].Quantity)
	require.Equal(t, "10.00", draft.Items[0].UnitPrice)
	require.Equal(t, "20", draft.Items[0].VATRate)
}

func TestDecodeYAMLDraft(t *testing.T) {
	draft, err := Decode(strings.NewReader(incomingYAML), FormatYAML)
	require.NoError(t, err)
	require.Equal(t, "incoming", draft.Header.Kind)
	require.Equal(t, "2024-05-01", draft.Header.Date)
	require.Equal(t, "9", draft.Header.Counterparty)
	require.Equal(t, "5", draft.Header.Operation)
	require.Equal(t, "2.5", draft.Items[0].Quantity)
	require.Equal(t, "10%", draft.Items[0].DiscountPercent)
	require.Empty(t, draft.Items[0].VATRate)
}

func TestDecodeRejectsUnknownKeysAndShapes(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"kind":"outgoing","surprise":1}`), FormatJSON)
	require.ErrorIs(t, err, ErrDecode)

	_, err = Decode(strings.NewReader(`{"kind":{"nested":true}}`), FormatJSON)
	require.ErrorIs(t, err, ErrDecode)

	_, err = Decode(strings.NewReader("kind: [a, b]\n"), FormatYAML)
	require.ErrorIs(t, err, ErrDecode)

	_, err = Decode(strings.NewReader("{}"), Format("toml"))
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFormatOf(t *testing.T) {
	format, err := FormatOf("drafts/a.JSON")
	require.NoError(t, err)
	require.Equal(t, FormatJSON, format)

	format, err = FormatOf("a.yml")
	require.NoError(t, err)
	require.Equal(t, FormatYAML, format)

	_, err = FormatOf("a.csv")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadFromDisk(t *testing.T) {
	dir := t.TempDir()
	draftPath := filepath.Join(dir, "in.yaml")
	require.NoError(t, os.WriteFile(draftPath, []byte(incomingYAML), 0o600))
	ledgerPath := filepath.Join(dir, "stock.json")
	require.NoError(t, os.WriteFile(ledgerPath, []byte(`{"Pen": 5, "Ink": "0.5"}`), 0o600))

	draft, err := Load(draftPath)
	require.NoError(t, err)
	require.Len(t, draft.Items, 1)

	ledger, err := LoadLedger(ledgerPath)
	require.NoError(t, err)
	require.True(t, decimal.RequireFromString("5").Equal(ledger["Pen"]))
	require.True(t, decimal.RequireFromString("0.5").Equal(ledger["Ink"]))

	_, err = Load(filepath.Join(dir, "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestDecodeLedgerRejectsMalformed(t *testing.T) {
	_, err := DecodeLedger(strings.NewReader("Pen: -3\n"), FormatYAML)
	require.ErrorIs(t, err, inventory.ErrMalformedLedger)

	_, err = DecodeLedger(strings.NewReader("Pen: lots\n"), FormatYAML)
	require.ErrorIs(t, err, inventory.ErrMalformedLedger)

	ledger, err := DecodeLedger(strings.NewReader(""), FormatYAML)
	require.NoError(t, err)
	require.Empty(t, ledger)
}
