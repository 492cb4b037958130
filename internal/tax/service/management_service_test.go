package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/dukandar/khata/internal/apperr"
	"github.com/dukandar/khata/internal/clock"
	taxdomain "github.com/dukandar/khata/internal/tax/domain"
	taxrepo "github.com/dukandar/khata/internal/tax/repository"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTaxTest(t *testing.T) taxdomain.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&taxdomain.Settings{}, &taxdomain.Slab{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(Params{
		Repo:  taxrepo.NewRepository(db),
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)),
	})
}

func boolPtr(v bool) *bool { return &v }

func TestSettingsLifecycle(t *testing.T) {
	svc := setupTaxTest(t)
	ctx := context.Background()
	orgID := snowflake.ID(701)

	_, err := svc.Settings(ctx, orgID)
	require.ErrorIs(t, err, taxdomain.ErrSettingsNotFound)

	businessType := "retail"
	created, err := svc.UpdateSettings(ctx, taxdomain.UpdateSettingsRequest{
		OrgID:            orgID,
		BusinessType:     &businessType,
		IncomeTaxEnabled: boolPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, "retail", created.BusinessType)
	assert.True(t, created.IncomeTaxEnabled)
	assert.True(t, created.ZakatRate.Equal(taxdomain.DefaultZakatRate))
	assert.Equal(t, taxdomain.ZakatAutomatic, created.ZakatMode)

	// Partial update leaves untouched fields alone.
	rate := decimal.NewFromFloat(0.18)
	updated, err := svc.UpdateSettings(ctx, taxdomain.UpdateSettingsRequest{
		OrgID:           orgID,
		SalesTaxEnabled: boolPtr(true),
		SalesTaxRate:    &rate,
	})
	require.NoError(t, err)
	assert.Equal(t, "retail", updated.BusinessType)
	assert.True(t, updated.SalesTaxEnabled)
	require.NotNil(t, updated.SalesTaxRate)
	assert.True(t, updated.SalesTaxRate.Equal(rate))

	fetched, err := svc.Settings(ctx, orgID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)
	assert.True(t, fetched.SalesTaxEnabled)
}

func TestUpdateSettings_Validation(t *testing.T) {
	svc := setupTaxTest(t)
	ctx := context.Background()

	_, err := svc.UpdateSettings(ctx, taxdomain.UpdateSettingsRequest{})
	require.ErrorIs(t, err, taxdomain.ErrInvalidOrganization)

	bad := taxdomain.FilingFrequency("fortnightly")
	_, err = svc.UpdateSettings(ctx, taxdomain.UpdateSettingsRequest{
		OrgID:           snowflake.ID(702),
		IncomeTaxFiling: &bad,
	})
	require.ErrorIs(t, err, taxdomain.ErrInvalidFiling)
	require.ErrorIs(t, err, apperr.KindValidation)

	badRate := decimal.NewFromInt(3)
	_, err = svc.UpdateSettings(ctx, taxdomain.UpdateSettingsRequest{
		OrgID:     snowflake.ID(702),
		ZakatRate: &badRate,
	})
	require.ErrorIs(t, err, taxdomain.ErrInvalidZakatRate)
}

func TestActiveSlabs_DefaultsUntilCustomConfigured(t *testing.T) {
	svc := setupTaxTest(t)
	ctx := context.Background()
	orgID := snowflake.ID(703)

	_, err := svc.UpdateSettings(ctx, taxdomain.UpdateSettingsRequest{OrgID: orgID})
	require.NoError(t, err)

	slabs, err := svc.ActiveSlabs(ctx, orgID)
	require.NoError(t, err)
	assert.Len(t, slabs, len(taxdomain.DefaultSlabs()))

	// Flag on but no schedule stored yet.
	_, err = svc.UpdateSettings(ctx, taxdomain.UpdateSettingsRequest{
		OrgID:          orgID,
		UseCustomSlabs: boolPtr(true),
	})
	require.NoError(t, err)
	_, err = svc.ActiveSlabs(ctx, orgID)
	require.ErrorIs(t, err, taxdomain.ErrNoSlabs)

	custom := []taxdomain.Slab{
		slab(0, ptr(50_000), 0, 0),
		slab(50_000, nil, 0, 0.1),
	}
	require.NoError(t, svc.ReplaceSlabs(ctx, orgID, custom))

	slabs, err = svc.ActiveSlabs(ctx, orgID)
	require.NoError(t, err)
	require.Len(t, slabs, 2)
	assert.Equal(t, 0, slabs[0].Position)
	assert.Equal(t, 1, slabs[1].Position)
	assert.True(t, slabs[1].Rate.Equal(decimal.NewFromFloat(0.1)))

	// Replacement swaps the whole schedule.
	require.NoError(t, svc.ReplaceSlabs(ctx, orgID, taxdomain.DefaultSlabs()))
	slabs, err = svc.ActiveSlabs(ctx, orgID)
	require.NoError(t, err)
	assert.Len(t, slabs, len(taxdomain.DefaultSlabs()))
}

func TestReplaceSlabs_RejectsBrokenSchedule(t *testing.T) {
	svc := setupTaxTest(t)
	ctx := context.Background()
	orgID := snowflake.ID(704)

	_, err := svc.UpdateSettings(ctx, taxdomain.UpdateSettingsRequest{
		OrgID:          orgID,
		UseCustomSlabs: boolPtr(true),
	})
	require.NoError(t, err)

	gapped := []taxdomain.Slab{
		slab(0, ptr(40_000), 0, 0),
		slab(50_000, nil, 0, 0.1),
	}
	err = svc.ReplaceSlabs(ctx, orgID, gapped)
	require.ErrorIs(t, err, taxdomain.ErrSlabGap)
	require.ErrorIs(t, err, apperr.KindConfiguration)
}

func TestExemptCategoriesRoundTrip(t *testing.T) {
	svc := setupTaxTest(t)
	ctx := context.Background()
	orgID := snowflake.ID(705)

	settings, err := svc.UpdateSettings(ctx, taxdomain.UpdateSettingsRequest{
		OrgID:                 orgID,
		ZakatEnabled:          boolPtr(true),
		ZakatExemptCategories: []string{"fixed_assets", "personal"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"fixed_assets", "personal"}, ExemptCategories(settings))

	fetched, err := svc.Settings(ctx, orgID)
	require.NoError(t, err)
	assert.Equal(t, []string{"fixed_assets", "personal"}, ExemptCategories(fetched))

	assert.Nil(t, ExemptCategories(nil))
}
