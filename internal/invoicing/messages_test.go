package invoicing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/invoicing/internal/inventory"
)

func TestLocalizerEnglish(t *testing.T) {
	l := NewLocalizer("en")
	require.Equal(t, "Product name is required", l.Message(MissingField("productName")))
	require.Equal(t, "Quantity must be greater than zero", l.Message(InvalidValue("quantity")))
	require.Equal(t, "Discount must be between 0 and 100", l.Message(InvalidValue("discountPercent")))
	require.Equal(t, "VAT rate has an invalid value", l.Message(InvalidValue("vatRate")))
	require.Equal(t, "The invoice must contain at least one item", l.Message(ErrEmptyInvoice))

	stockErr := &inventory.InsufficientStockError{Product: "Pen", Missing: dec("5")}
	require.Equal(t, `Insufficient stock for product "Pen". Missing quantity: 5`, l.Message(stockErr))
}

func TestLocalizerIndonesian(t *testing.T) {
	l := NewLocalizer("id")
	require.Equal(t, "Nama produk wajib diisi", l.Message(MissingField("productName")))
	require.Equal(t, "Faktur harus memiliki minimal satu item", l.Message(ErrEmptyInvoice))
}

func TestLocalizerFallbacks(t *testing.T) {
	l := NewLocalizer("not a locale")
	require.Equal(t, "Quantity must be greater than zero", l.Message(InvalidValue("quantity")))
	require.Equal(t, "customField is required", l.Message(MissingField("customField")))
	require.Equal(t, "boom", l.Message(errors.New("boom")))
}

func TestLocalizerMessagesKeepsKeys(t *testing.T) {
	l := NewLocalizer("en")
	v := Violations{
		"items":             ErrEmptyInvoice,
		"items[0].quantity": InvalidValue("quantity"),
	}
	msgs := l.Messages(v)
	require.Len(t, msgs, 2)
	require.Equal(t, "Quantity must be greater than zero", msgs["items[0].quantity"])
}
