package invoicing

import "github.com/shopspring/decimal"

// CurrencyPlaces is the precision of persisted amounts.
const CurrencyPlaces = 2

var hundred = decimal.NewFromInt(100)

// LineTotals holds the derived amounts of one line.
type LineTotals struct {
	TotalPrice decimal.Decimal
	VATAmount  decimal.Decimal
}

// ComputeLine returns the gross total and the VAT contained in it.
// A positive discount reduces quantity*unitPrice by that percentage.
func ComputeLine(quantity, unitPrice decimal.Decimal, rate VATRate, discountPercent decimal.Decimal) LineTotals {
	total := quantity.Mul(unitPrice)
	if discountPercent.IsPositive() {
		total = total.Mul(hundred.Sub(discountPercent)).Div(hundred)
	}
	total = total.Round(CurrencyPlaces)
	return LineTotals{TotalPrice: total, VATAmount: ExtractVAT(total, rate)}
}

// ExtractVAT returns the VAT already included in gross: gross*rate/(100+rate).
// For the standard 20% rate this is gross/6.
func ExtractVAT(gross decimal.Decimal, rate VATRate) decimal.Decimal {
	if rate <= 0 {
		return decimal.Zero
	}
	r := decimal.NewFromInt(int64(rate))
	return gross.Mul(r).Div(hundred.Add(r)).Round(CurrencyPlaces)
}

// SumTotals adds up already computed lines.
func SumTotals(items []LineItem) Totals {
	gross := decimal.Zero
	vat := decimal.Zero
	for _, item := range items {
		gross = gross.Add(item.TotalPrice)
		vat = vat.Add(item.VATAmount)
	}
	return Totals{Gross: gross, VAT: vat, Net: gross.Sub(vat)}
}
