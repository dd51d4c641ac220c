package invoicing

import (
	"errors"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/odyssey-erp/invoicing/internal/inventory"
)

const (
	msgRequired      = "%s is required"
	msgPositive      = "%s must be greater than zero"
	msgPercentRange  = "%s must be between 0 and 100"
	msgInvalid       = "%s has an invalid value"
	msgEmptyInvoice  = "The invoice must contain at least one item"
	msgUnsavedRow    = "Save or cancel the row before submitting"
	msgInsufficient  = "Insufficient stock for product %q. Missing quantity: %s"
	msgLedgerUnknown = "Stock levels could not be checked"
)

var fieldLabels = map[string]string{
	"productName":         "Product name",
	"productDescription":  "Description",
	"quantity":            "Quantity",
	"unitOfMeasure":       "Unit of measure",
	"unitPrice":           "Unit price",
	"vatRate":             "VAT rate",
	"discountPercent":     "Discount",
	"accountNumber":       "Account",
	"kind":                "Invoice type",
	"date":                "Date",
	"counterpartyId":      "Counterparty",
	"organizationId":      "Organization",
	"storageId":           "Storage",
	"responsiblePersonId": "Responsible person",
	"contractId":          "Contract",
	"operationId":         "Operation",
}

func init() {
	id := language.Indonesian
	for key, msg := range map[string]string{
		msgRequired:          "%s wajib diisi",
		msgPositive:          "%s harus lebih besar dari nol",
		msgPercentRange:      "%s harus di antara 0 dan 100",
		msgInvalid:           "%s memiliki nilai tidak valid",
		msgEmptyInvoice:      "Faktur harus memiliki minimal satu item",
		msgUnsavedRow:        "Simpan atau batalkan baris sebelum mengirim",
		msgInsufficient:      "Stok tidak cukup untuk produk %q. Kekurangan jumlah: %s",
		msgLedgerUnknown:     "Stok tidak dapat diperiksa",
		"Product name":       "Nama produk",
		"Description":        "Deskripsi",
		"Quantity":           "Jumlah",
		"Unit of measure":    "Satuan",
		"Unit price":         "Harga satuan",
		"VAT rate":           "Tarif PPN",
		"Discount":           "Diskon",
		"Account":            "Akun",
		"Invoice type":       "Jenis faktur",
		"Date":               "Tanggal",
		"Counterparty":       "Mitra",
		"Organization":       "Organisasi",
		"Storage":            "Gudang",
		"Responsible person": "Penanggung jawab",
		"Contract":           "Kontrak",
		"Operation":          "Operasi",
	} {
		_ = message.SetString(id, key, msg)
	}
}

// Localizer renders engine errors as messages shown next to form fields.
type Localizer struct {
	printer *message.Printer
}

// NewLocalizer builds a Localizer for a BCP 47 locale such as "en" or "id".
// Unknown locales fall back to English.
func NewLocalizer(locale string) *Localizer {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		tag = language.English
	}
	return &Localizer{printer: message.NewPrinter(tag)}
}

// Message returns the human-readable text for err.
func (l *Localizer) Message(err error) string {
	var stockErr *inventory.InsufficientStockError
	if errors.As(err, &stockErr) {
		return l.printer.Sprintf(msgInsufficient, stockErr.Product, stockErr.Missing.String())
	}
	if errors.Is(err, inventory.ErrMalformedLedger) {
		return l.printer.Sprintf(msgLedgerUnknown)
	}
	if errors.Is(err, ErrEmptyInvoice) {
		return l.printer.Sprintf(msgEmptyInvoice)
	}
	if errors.Is(err, ErrRowUnsaved) {
		return l.printer.Sprintf(msgUnsavedRow)
	}
	var fieldErr *FieldError
	if !errors.As(err, &fieldErr) {
		return err.Error()
	}
	label := l.label(fieldErr.Field)
	if errors.Is(fieldErr, ErrMissingField) {
		return l.printer.Sprintf(msgRequired, label)
	}
	switch fieldErr.Field {
	case "quantity", "unitPrice":
		return l.printer.Sprintf(msgPositive, label)
	case "discountPercent":
		return l.printer.Sprintf(msgPercentRange, label)
	default:
		return l.printer.Sprintf(msgInvalid, label)
	}
}

// Messages renders every violation, keyed like the violations themselves.
func (l *Localizer) Messages(v Violations) map[string]string {
	out := make(map[string]string, len(v))
	for field, err := range v {
		out[field] = l.Message(err)
	}
	return out
}

func (l *Localizer) label(field string) string {
	label, ok := fieldLabels[field]
	if !ok {
		return field
	}
	return l.printer.Sprintf(label)
}
