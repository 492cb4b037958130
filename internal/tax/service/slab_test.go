package service

import (
	"testing"

	"github.com/dukandar/khata/internal/apperr"
	taxdomain "github.com/dukandar/khata/internal/tax/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slab(min int64, max *int64, fixed int64, rate float64) taxdomain.Slab {
	s := taxdomain.Slab{
		MinIncome:   decimal.NewFromInt(min),
		FixedAmount: decimal.NewFromInt(fixed),
		Rate:        decimal.NewFromFloat(rate),
	}
	if max != nil {
		m := decimal.NewFromInt(*max)
		s.MaxIncome = &m
	}
	return s
}

func ptr(v int64) *int64 { return &v }

func TestComputeIncomeTax_TwoSlabSchedule(t *testing.T) {
	slabs := []taxdomain.Slab{
		slab(0, ptr(50_000), 0, 0),
		slab(50_000, nil, 0, 0.1),
	}

	got, err := ComputeIncomeTax(decimal.NewFromInt(80_000), slabs)
	require.NoError(t, err)
	assert.True(t, got.TaxAmount.Equal(decimal.NewFromInt(3000)), "got %s", got.TaxAmount)
	assert.Equal(t, 1, got.SlabIndex)
	assert.True(t, got.EffectiveRate.Equal(decimal.NewFromFloat(0.0375)), "got %s", got.EffectiveRate)
}

func TestComputeIncomeTax_BelowExemptFloor(t *testing.T) {
	slabs := []taxdomain.Slab{
		slab(10_000, ptr(50_000), 0, 0.05),
		slab(50_000, nil, 2000, 0.1),
	}

	got, err := ComputeIncomeTax(decimal.NewFromInt(5000), slabs)
	require.NoError(t, err)
	assert.True(t, got.TaxAmount.IsZero())
	assert.Equal(t, -1, got.SlabIndex)
}

func TestComputeIncomeTax_ZeroIncome(t *testing.T) {
	got, err := ComputeIncomeTax(decimal.Zero, taxdomain.DefaultSlabs())
	require.NoError(t, err)
	assert.True(t, got.TaxAmount.IsZero())
	assert.True(t, got.EffectiveRate.IsZero())
}

func TestComputeIncomeTax_NegativeIncomeRejected(t *testing.T) {
	_, err := ComputeIncomeTax(decimal.NewFromInt(-1), taxdomain.DefaultSlabs())
	require.ErrorIs(t, err, taxdomain.ErrNegativeIncome)
	require.ErrorIs(t, err, apperr.KindValidation)
}

func TestComputeIncomeTax_DefaultSchedule(t *testing.T) {
	cases := []struct {
		income int64
		want   int64
	}{
		{600_000, 0},
		{1_000_000, 20_000},
		{1_200_000, 30_000},
		{2_000_000, 150_000},
		{5_000_000, 1_015_000},
	}
	for _, tc := range cases {
		got, err := ComputeIncomeTax(decimal.NewFromInt(tc.income), taxdomain.DefaultSlabs())
		require.NoError(t, err)
		assert.True(t, got.TaxAmount.Equal(decimal.NewFromInt(tc.want)),
			"income %d: want %d, got %s", tc.income, tc.want, got.TaxAmount)
	}
}

// Tax owed never decreases as income grows.
func TestComputeIncomeTax_Monotonic(t *testing.T) {
	slabs := taxdomain.DefaultSlabs()
	prev := decimal.Zero
	for income := int64(0); income <= 6_000_000; income += 100_000 {
		got, err := ComputeIncomeTax(decimal.NewFromInt(income), slabs)
		require.NoError(t, err)
		assert.True(t, got.TaxAmount.GreaterThanOrEqual(prev),
			"income %d: tax %s dropped below %s", income, got.TaxAmount, prev)
		prev = got.TaxAmount
	}
}

func TestValidateSlabs_ConfigurationErrors(t *testing.T) {
	income := decimal.NewFromInt(100_000)

	_, err := ComputeIncomeTax(income, nil)
	require.ErrorIs(t, err, taxdomain.ErrNoSlabs)
	require.ErrorIs(t, err, apperr.KindConfiguration)

	overlapping := []taxdomain.Slab{
		slab(0, ptr(60_000), 0, 0),
		slab(50_000, nil, 0, 0.1),
	}
	_, err = ComputeIncomeTax(income, overlapping)
	require.ErrorIs(t, err, taxdomain.ErrSlabOverlap)
	assert.Contains(t, err.Error(), "slabs 0 and 1")

	gapped := []taxdomain.Slab{
		slab(0, ptr(40_000), 0, 0),
		slab(50_000, nil, 0, 0.1),
	}
	_, err = ComputeIncomeTax(income, gapped)
	require.ErrorIs(t, err, taxdomain.ErrSlabGap)

	unsorted := []taxdomain.Slab{
		slab(50_000, nil, 0, 0.1),
		slab(0, ptr(50_000), 0, 0),
	}
	_, err = ComputeIncomeTax(income, unsorted)
	require.Error(t, err)
	require.ErrorIs(t, err, apperr.KindConfiguration)

	twoOpen := []taxdomain.Slab{
		slab(0, nil, 0, 0),
		slab(50_000, nil, 0, 0.1),
	}
	_, err = ComputeIncomeTax(income, twoOpen)
	require.ErrorIs(t, err, apperr.KindConfiguration)

	badRate := []taxdomain.Slab{
		slab(0, nil, 0, 1.5),
	}
	_, err = ComputeIncomeTax(income, badRate)
	require.ErrorIs(t, err, taxdomain.ErrInvalidSlabRate)
}

func TestValidateSlabs_DefaultScheduleIsValid(t *testing.T) {
	require.NoError(t, ValidateSlabs(taxdomain.DefaultSlabs()))
}
