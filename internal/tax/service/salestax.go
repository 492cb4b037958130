package service

import "github.com/shopspring/decimal"

// ComputeSalesTaxExclusive calculates tax added on top of subtotal.
// Rounding happens only here to keep stored values two-decimal safe.
func ComputeSalesTaxExclusive(subtotal decimal.Decimal, rate *decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() || rate == nil || !rate.IsPositive() {
		return decimal.Zero
	}
	return subtotal.Mul(*rate).Round(2)
}

// ComputeSalesTaxInclusive calculates the tax portion already included in a
// price-inclusive subtotal.
func ComputeSalesTaxInclusive(subtotal decimal.Decimal, rate *decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() || rate == nil || !rate.IsPositive() {
		return decimal.Zero
	}
	one := decimal.NewFromInt(1)
	return subtotal.Mul(rate.DivRound(one.Add(*rate), 10)).Round(2)
}
