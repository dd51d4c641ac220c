package draftfile

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/odyssey-erp/invoicing/internal/invoicing"
)

// Value is a scalar kept verbatim. Files may carry numbers or strings for
// the same key; both decode to their literal text.
type Value string

// UnmarshalJSON accepts strings, numbers, booleans and null.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Value(s)
	case len(data) > 0 && (data[0] == '{' || data[0] == '['):
		return fmt.Errorf("expected scalar, got %s", data)
	default:
		*v = Value(data)
	}
	return nil
}

// UnmarshalYAML accepts any scalar node.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected scalar", node.Line)
	}
	if node.Tag == "!!null" {
		*v = ""
		return nil
	}
	*v = Value(node.Value)
	return nil
}

type lineDoc struct {
	ProductName        Value `json:"product_name" yaml:"product_name"`
	ProductDescription Value `json:"product_description" yaml:"product_description"`
	Quantity           Value `json:"quantity" yaml:"quantity"`
	UnitOfMeasure      Value `json:"unit_of_measure" yaml:"unit_of_measure"`
	UnitPrice          Value `json:"unit_price" yaml:"unit_price"`
	VATRate            Value `json:"vat_percentage" yaml:"vat_percentage"`
	DiscountPercent    Value `json:"discount" yaml:"discount"`
	AccountNumber      Value `json:"account_number" yaml:"account_number"`
	TotalPrice         Value `json:"total_price" yaml:"total_price"`
	VATAmount          Value `json:"vat_amount" yaml:"vat_amount"`
}

// draftDoc mirrors both invoice payloads. Incoming invoices name the
// counterparty counter_agent_id or supplier_id, outgoing ones customer_id.
type draftDoc struct {
	Kind                Value     `json:"kind" yaml:"kind"`
	Number              Value     `json:"number" yaml:"number"`
	Date                Value     `json:"date" yaml:"date"`
	CounterpartyID      Value     `json:"counterparty_id" yaml:"counterparty_id"`
	CounterAgentID      Value     `json:"counter_agent_id" yaml:"counter_agent_id"`
	SupplierID          Value     `json:"supplier_id" yaml:"supplier_id"`
	CustomerID          Value     `json:"customer_id" yaml:"customer_id"`
	OrganizationID      Value     `json:"organization_id" yaml:"organization_id"`
	StorageID           Value     `json:"storage_id" yaml:"storage_id"`
	ResponsiblePersonID Value     `json:"responsible_person_id" yaml:"responsible_person_id"`
	ContractID          Value     `json:"contract_id" yaml:"contract_id"`
	OperationID         Value     `json:"operation_id" yaml:"operation_id"`
	PaymentDocument     Value     `json:"payment_document" yaml:"payment_document"`
	Comment             Value     `json:"comment" yaml:"comment"`
	Items               []lineDoc `json:"items" yaml:"items"`
}

func (d draftDoc) raw() Draft {
	header := invoicing.RawHeader{
		Kind:              string(d.Kind),
		Number:            string(d.Number),
		Date:              string(d.Date),
		Counterparty:      string(firstNonEmpty(d.CounterpartyID, d.CounterAgentID, d.SupplierID, d.CustomerID)),
		Organization:      string(d.OrganizationID),
		Storage:           string(d.StorageID),
		ResponsiblePerson: string(d.ResponsiblePersonID),
		Contract:          string(d.ContractID),
		Operation:         string(d.OperationID),
		PaymentDocument:   string(d.PaymentDocument),
		Comment:           string(d.Comment),
	}
	items := make([]invoicing.RawLineItem, 0, len(d.Items))
	for _, item := range d.Items {
		// total_price and vat_amount are derived and always recomputed.
		items = append(items, invoicing.RawLineItem{
			ProductName:        string(item.ProductName),
			ProductDescription: string(item.ProductDescription),
			Quantity:           string(item.Quantity),
			UnitOfMeasure:      string(item.UnitOfMeasure),
			UnitPrice:          string(item.UnitPrice),
			VATRate:            string(item.VATRate),
			DiscountPercent:    string(item.DiscountPercent),
			AccountNumber:      string(item.AccountNumber),
		})
	}
	return Draft{Header: header, Items: items}
}

func firstNonEmpty(values ...Value) Value {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
