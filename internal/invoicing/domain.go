package invoicing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind distinguishes incoming (supplier) from outgoing (customer) invoices.
type Kind string

const (
	// KindIncoming is a purchase invoice received from a supplier.
	KindIncoming Kind = "incoming"
	// KindOutgoing is a sales invoice issued to a customer.
	KindOutgoing Kind = "outgoing"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindIncoming || k == KindOutgoing
}

// VATRate is a VAT percentage. Only the rates configured in Rules are accepted.
type VATRate int

const (
	// VATRateZero marks exempt lines.
	VATRateZero VATRate = 0
	// VATRateStandard is the standard rate, already included in gross totals.
	VATRateStandard VATRate = 20
)

// LineItem is one product row of an invoice. TotalPrice and VATAmount are
// derived and always recomputed from the other fields before use.
type LineItem struct {
	ProductName        string          `json:"productName" validate:"required"`
	ProductDescription string          `json:"productDescription,omitempty"`
	Quantity           decimal.Decimal `json:"quantity" validate:"dpositive"`
	UnitOfMeasure      string          `json:"unitOfMeasure,omitempty"`
	UnitPrice          decimal.Decimal `json:"unitPrice" validate:"dpositive"`
	VATRate            VATRate         `json:"vatRate" validate:"vatrate"`
	DiscountPercent    decimal.Decimal `json:"discountPercent" validate:"dpercent"`
	AccountNumber      string          `json:"accountNumber,omitempty"`
	TotalPrice         decimal.Decimal `json:"totalPrice"`
	VATAmount          decimal.Decimal `json:"vatAmount"`
}

// Recompute returns a copy of the item with TotalPrice and VATAmount refreshed.
func (i LineItem) Recompute() LineItem {
	totals := ComputeLine(i.Quantity, i.UnitPrice, i.VATRate, i.DiscountPercent)
	i.TotalPrice = totals.TotalPrice
	i.VATAmount = totals.VATAmount
	return i
}

// NewLineItem returns the blank row offered when the user adds an item.
func NewLineItem(rate VATRate) LineItem {
	return LineItem{VATRate: rate}
}

// Draft is the in-memory invoice being created or edited. It is a value owned
// by the caller; every operation returns a new Draft.
type Draft struct {
	LocalID             uuid.UUID  `json:"localId"`
	Kind                Kind       `json:"kind" validate:"oneof=incoming outgoing"`
	Number              string     `json:"number,omitempty"`
	Date                time.Time  `json:"date" validate:"required"`
	CounterpartyID      int64      `json:"counterpartyId" validate:"required"`
	OrganizationID      int64      `json:"organizationId" validate:"required"`
	StorageID           int64      `json:"storageId" validate:"required"`
	ResponsiblePersonID int64      `json:"responsiblePersonId" validate:"required"`
	ContractID          int64      `json:"contractId" validate:"required"`
	OperationID         int64      `json:"operationId,omitempty" validate:"required_if=Kind incoming"`
	PaymentDocument     string     `json:"paymentDocument,omitempty"`
	Comment             string     `json:"comment,omitempty"`
	Items               []LineItem `json:"items"`
	Editing             bool       `json:"-"`
}

// Totals summarises an invoice. Line totals are gross, so Net is Gross minus VAT.
type Totals struct {
	Gross decimal.Decimal `json:"gross"`
	VAT   decimal.Decimal `json:"vat"`
	Net   decimal.Decimal `json:"net"`
}
