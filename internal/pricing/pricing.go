// Package pricing applies the storefront-wide markdown and formats amounts.
//
// Amounts are whole shillings. Discounts floor per line, so a cart's
// discounted total is the sum of independently floored line amounts and can
// differ from flooring the grand total once.
package pricing

import (
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// DiscountRate is the fraction of the original price a customer pays.
var DiscountRate = decimal.RequireFromString("0.5")

// CurrencyLabel prefixes formatted amounts.
const CurrencyLabel = "KSh"

// DiscountedPrice returns floor(original * DiscountRate).
func DiscountedPrice(original int64) int64 {
	return decimal.NewFromInt(original).Mul(DiscountRate).Floor().IntPart()
}

func Savings(original int64) int64 {
	return original - DiscountedPrice(original)
}

type LineAmounts struct {
	Original   int64 `json:"original"`
	Discounted int64 `json:"discounted"`
	Savings    int64 `json:"savings"`
}

// Line prices one cart line: the floor applies to price*quantity, not to the unit price.
func Line(price int64, quantity int) LineAmounts {
	original := price * int64(quantity)
	discounted := DiscountedPrice(original)
	return LineAmounts{
		Original:   original,
		Discounted: discounted,
		Savings:    original - discounted,
	}
}

type LineInput struct {
	Price    int64
	Quantity int
}

type Totals struct {
	TotalItems      int   `json:"totalItems"`
	TotalAmount     int64 `json:"totalAmount"`
	DiscountedTotal int64 `json:"discountedTotal"`
	Savings         int64 `json:"savings"`
}

// Sum aggregates lines. TotalAmount is at full price.
func Sum(lines []LineInput) Totals {
	var t Totals
	for _, l := range lines {
		amounts := Line(l.Price, l.Quantity)
		t.TotalItems += l.Quantity
		t.TotalAmount += amounts.Original
		t.DiscountedTotal += amounts.Discounted
	}
	t.Savings = t.TotalAmount - t.DiscountedTotal
	return t
}

// Format renders an amount as "KSh 1,250".
func Format(amount int64) string {
	return CurrencyLabel + " " + humanize.Comma(amount)
}

// ToMinorUnits converts whole shillings to the cent amounts payment gateways expect.
func ToMinorUnits(amount int64) int64 {
	return decimal.NewFromInt(amount).Mul(decimal.NewFromInt(100)).IntPart()
}

// FromMinorUnits converts a gateway cent amount back to whole shillings, dropping any cents.
func FromMinorUnits(minor int64) int64 {
	return decimal.NewFromInt(minor).Div(decimal.NewFromInt(100)).Floor().IntPart()
}
