package invoicing

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/invoicing/internal/inventory"
)

// RawLineItem carries line values exactly as typed into the form.
type RawLineItem struct {
	ProductName        string `json:"product_name" yaml:"product_name"`
	ProductDescription string `json:"product_description" yaml:"product_description"`
	Quantity           string `json:"quantity" yaml:"quantity"`
	UnitOfMeasure      string `json:"unit_of_measure" yaml:"unit_of_measure"`
	UnitPrice          string `json:"unit_price" yaml:"unit_price"`
	VATRate            string `json:"vat_percentage" yaml:"vat_percentage"`
	DiscountPercent    string `json:"discount" yaml:"discount"`
	AccountNumber      string `json:"account_number" yaml:"account_number"`
}

// RawHeader carries header values as typed into the form. Counterparty holds
// the supplier for incoming and the customer for outgoing invoices.
type RawHeader struct {
	Kind              string `json:"kind" yaml:"kind"`
	Number            string `json:"number" yaml:"number"`
	Date              string `json:"date" yaml:"date"`
	Counterparty      string `json:"counterparty_id" yaml:"counterparty_id"`
	Organization      string `json:"organization_id" yaml:"organization_id"`
	Storage           string `json:"storage_id" yaml:"storage_id"`
	ResponsiblePerson string `json:"responsible_person_id" yaml:"responsible_person_id"`
	Contract          string `json:"contract_id" yaml:"contract_id"`
	Operation         string `json:"operation_id" yaml:"operation_id"`
	PaymentDocument   string `json:"payment_document" yaml:"payment_document"`
	Comment           string `json:"comment" yaml:"comment"`
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseLine converts raw form values into a typed LineItem. Blank numbers
// become zero and are left for the validator; unparseable ones are reported
// here. A blank VAT rate falls back to defaultRate.
func ParseLine(raw RawLineItem, defaultRate VATRate) (LineItem, Violations) {
	violations := make(Violations)
	item := LineItem{
		ProductName:        strings.TrimSpace(raw.ProductName),
		ProductDescription: strings.TrimSpace(raw.ProductDescription),
		UnitOfMeasure:      strings.TrimSpace(raw.UnitOfMeasure),
		AccountNumber:      strings.TrimSpace(raw.AccountNumber),
		VATRate:            defaultRate,
	}

	var err error
	if item.Quantity, err = parseAmount(raw.Quantity); err != nil {
		violations.Add("quantity", InvalidValue("quantity"))
	}
	if item.UnitPrice, err = parseAmount(raw.UnitPrice); err != nil {
		violations.Add("unitPrice", InvalidValue("unitPrice"))
	}
	if item.DiscountPercent, err = parsePercent(raw.DiscountPercent); err != nil {
		violations.Add("discountPercent", InvalidValue("discountPercent"))
	}
	if strings.TrimSpace(raw.VATRate) != "" {
		if item.VATRate, err = ParseVATRate(raw.VATRate); err != nil {
			violations.Add("vatRate", InvalidValue("vatRate"))
		}
	}
	return item, violations
}

// ParseVATRate accepts "20", "20%" or "20.00". Fractional rates are rejected.
func ParseVATRate(raw string) (VATRate, error) {
	d, err := parsePercent(raw)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("%w: fractional vat rate %s", ErrInvalidValue, d.String())
	}
	return VATRate(d.IntPart()), nil
}

// ParseHeader converts raw header values into a Draft without items. Blank
// identifiers stay zero so the header validator reports them as missing.
func ParseHeader(raw RawHeader) (Draft, Violations) {
	violations := make(Violations)
	d := Draft{
		Kind:            Kind(strings.ToLower(strings.TrimSpace(raw.Kind))),
		Number:          strings.TrimSpace(raw.Number),
		PaymentDocument: strings.TrimSpace(raw.PaymentDocument),
		Comment:         strings.TrimSpace(raw.Comment),
	}
	if !d.Kind.Valid() {
		violations.Add("kind", InvalidValue("kind"))
	}
	if strings.TrimSpace(raw.Date) != "" {
		date, err := parseDate(raw.Date)
		if err != nil {
			violations.Add("date", InvalidValue("date"))
		}
		d.Date = date
	}

	ids := []struct {
		field string
		raw   string
		dst   *int64
	}{
		{"counterpartyId", raw.Counterparty, &d.CounterpartyID},
		{"organizationId", raw.Organization, &d.OrganizationID},
		{"storageId", raw.Storage, &d.StorageID},
		{"responsiblePersonId", raw.ResponsiblePerson, &d.ResponsiblePersonID},
		{"contractId", raw.Contract, &d.ContractID},
		{"operationId", raw.Operation, &d.OperationID},
	}
	for _, id := range ids {
		value, err := parseID(id.raw)
		if err != nil {
			violations.Add(id.field, InvalidValue(id.field))
			continue
		}
		*id.dst = value
	}
	return d, violations
}

// ParseQuantity parses a stock quantity; blank is rejected.
func ParseQuantity(raw string) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, ErrMissingField
	}
	return parseAmount(raw)
}

// ParseLedger converts a raw product to quantity snapshot into a ledger. Any
// unparseable quantity makes the whole snapshot malformed.
func ParseLedger(raw map[string]string) (inventory.Ledger, error) {
	quantities := make(map[string]decimal.Decimal, len(raw))
	for product, value := range raw {
		qty, err := ParseQuantity(value)
		if err != nil {
			return nil, fmt.Errorf("%w: product %q: %w", inventory.ErrMalformedLedger, product, err)
		}
		quantities[product] = qty
	}
	return inventory.NewLedger(quantities)
}

func parseAmount(raw string) (decimal.Decimal, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidValue, raw)
	}
	return d, nil
}

func parsePercent(raw string) (decimal.Decimal, error) {
	return parseAmount(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
}

func parseID(raw string) (int64, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id %q", ErrInvalidValue, raw)
	}
	return id, nil
}

func parseDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: date %q", ErrInvalidValue, raw)
}
