package service

import (
	"github.com/dukandar/khata/internal/apperr"
	taxdomain "github.com/dukandar/khata/internal/tax/domain"
	"github.com/shopspring/decimal"
)

// NetAssets sums the asset breakdown, excluding exempt categories line by
// line.
func NetAssets(assets []taxdomain.AssetLine, exemptCategories []string) decimal.Decimal {
	exempt := make(map[string]struct{}, len(exemptCategories))
	for _, category := range exemptCategories {
		exempt[category] = struct{}{}
	}
	net := decimal.Zero
	for _, line := range assets {
		if _, skip := exempt[line.Category]; skip {
			continue
		}
		net = net.Add(line.Amount)
	}
	return net
}

// ComputeZakat levies rate on the net of the asset breakdown, excluding any
// line whose category is exempt. Exemption applies per line, not per
// category total. A non-positive net owes nothing.
func ComputeZakat(assets []taxdomain.AssetLine, rate decimal.Decimal, exemptCategories []string) (decimal.Decimal, error) {
	if err := validateZakatRate(rate); err != nil {
		return decimal.Zero, err
	}

	net := NetAssets(assets, exemptCategories)
	if !net.IsPositive() {
		return decimal.Zero, nil
	}
	return net.Mul(rate).Round(2), nil
}

// ValidateManualZakat checks a caller-supplied zakat amount against plausible
// bounds. Manual entries are authoritative; this only rejects the impossible.
func ValidateManualZakat(amount, netAssets decimal.Decimal) error {
	if amount.IsNegative() {
		return apperr.Wrap(taxdomain.ErrManualZakatAmount, "amount %s is negative", amount)
	}
	if amount.GreaterThan(netAssets) {
		return apperr.Wrap(taxdomain.ErrManualZakatAmount, "amount %s exceeds net assets %s", amount, netAssets)
	}
	return nil
}

func validateZakatRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return apperr.Wrap(taxdomain.ErrInvalidZakatRate, "rate %s", rate)
	}
	return nil
}
