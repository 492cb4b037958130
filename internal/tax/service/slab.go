package service

import (
	"github.com/dukandar/khata/internal/apperr"
	taxdomain "github.com/dukandar/khata/internal/tax/domain"
	"github.com/shopspring/decimal"
)

// ValidateSlabs checks a progressive schedule for contiguity before any
// computation. A broken schedule blocks computation entirely; nothing here
// approximates.
func ValidateSlabs(slabs []taxdomain.Slab) error {
	if len(slabs) == 0 {
		return taxdomain.ErrNoSlabs
	}

	openEnded := 0
	for i, slab := range slabs {
		if slab.Rate.IsNegative() || slab.Rate.GreaterThan(decimal.NewFromInt(1)) {
			return apperr.Wrap(taxdomain.ErrInvalidSlabRate, "slab %d rate %s", i, slab.Rate)
		}
		if slab.MinIncome.IsNegative() || slab.FixedAmount.IsNegative() {
			return apperr.Wrap(taxdomain.ErrInvalidSlabBounds, "slab %d", i)
		}
		if slab.MaxIncome == nil {
			openEnded++
			if i != len(slabs)-1 {
				return apperr.Wrap(taxdomain.ErrInvalidSlabBounds, "slab %d is open-ended but not last", i)
			}
			continue
		}
		if !slab.MaxIncome.GreaterThan(slab.MinIncome) {
			return apperr.Wrap(taxdomain.ErrInvalidSlabBounds, "slab %d max %s <= min %s", i, slab.MaxIncome, slab.MinIncome)
		}
	}
	if openEnded > 1 {
		return taxdomain.ErrMultipleOpenSlabs
	}

	for i := 1; i < len(slabs); i++ {
		prev, cur := slabs[i-1], slabs[i]
		if cur.MinIncome.LessThan(prev.MinIncome) {
			return apperr.Wrap(taxdomain.ErrSlabUnsorted, "slabs %d and %d", i-1, i)
		}
		if prev.MaxIncome == nil {
			return apperr.Wrap(taxdomain.ErrInvalidSlabBounds, "slab %d follows open-ended slab %d", i, i-1)
		}
		switch {
		case cur.MinIncome.LessThan(*prev.MaxIncome):
			return apperr.Wrap(taxdomain.ErrSlabOverlap, "slabs %d and %d", i-1, i)
		case cur.MinIncome.GreaterThan(*prev.MaxIncome):
			return apperr.Wrap(taxdomain.ErrSlabGap, "slabs %d and %d", i-1, i)
		}
	}
	return nil
}

// ComputeIncomeTax derives annual income tax from a progressive schedule.
// The matching slab is the last one whose MinIncome does not exceed the
// income; income below the exempt floor owes nothing.
func ComputeIncomeTax(annualIncome decimal.Decimal, slabs []taxdomain.Slab) (taxdomain.Assessment, error) {
	if annualIncome.IsNegative() {
		return taxdomain.Assessment{}, taxdomain.ErrNegativeIncome
	}
	if err := ValidateSlabs(slabs); err != nil {
		return taxdomain.Assessment{}, err
	}

	match := -1
	for i, slab := range slabs {
		if slab.MinIncome.LessThanOrEqual(annualIncome) {
			match = i
		}
	}
	if match < 0 {
		return taxdomain.Assessment{
			TaxAmount:     decimal.Zero,
			EffectiveRate: decimal.Zero,
			SlabIndex:     -1,
		}, nil
	}

	slab := slabs[match]
	taxAmount := slab.FixedAmount.Add(annualIncome.Sub(slab.MinIncome).Mul(slab.Rate))

	effectiveRate := decimal.Zero
	if annualIncome.IsPositive() {
		effectiveRate = taxAmount.DivRound(annualIncome, 6)
	}

	return taxdomain.Assessment{
		TaxAmount:     taxAmount.Round(2),
		EffectiveRate: effectiveRate,
		SlabIndex:     match,
	}, nil
}
