package service

import (
	"context"
	"encoding/json"

	"github.com/bwmarrin/snowflake"
	"github.com/dukandar/khata/internal/clock"
	taxdomain "github.com/dukandar/khata/internal/tax/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type Params struct {
	fx.In

	Repo  taxdomain.Repository
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

type Service struct {
	repo  taxdomain.Repository
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
}

func NewService(p Params) taxdomain.Service {
	return &Service{
		repo:  p.Repo,
		log:   p.Log.Named("tax.service"),
		genID: p.GenID,
		clock: p.Clock,
	}
}

func (s *Service) Settings(ctx context.Context, orgID snowflake.ID) (*taxdomain.Settings, error) {
	if orgID == 0 {
		return nil, taxdomain.ErrInvalidOrganization
	}
	settings, err := s.repo.GetSettings(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return nil, taxdomain.ErrSettingsNotFound
	}
	return settings, nil
}

func (s *Service) UpdateSettings(ctx context.Context, req taxdomain.UpdateSettingsRequest) (*taxdomain.Settings, error) {
	if req.OrgID == 0 {
		return nil, taxdomain.ErrInvalidOrganization
	}
	for _, freq := range []*taxdomain.FilingFrequency{req.IncomeTaxFiling, req.SalesTaxFiling, req.ZakatFiling} {
		if freq != nil && !freq.Valid() {
			return nil, taxdomain.ErrInvalidFiling
		}
	}
	if req.ZakatRate != nil {
		if err := validateZakatRate(*req.ZakatRate); err != nil {
			return nil, err
		}
	}

	settings, err := s.repo.GetSettings(ctx, req.OrgID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	created := false
	if settings == nil {
		created = true
		settings = &taxdomain.Settings{
			ID:        s.genID.Generate(),
			OrgID:     req.OrgID,
			ZakatMode: taxdomain.ZakatAutomatic,
			ZakatRate: taxdomain.DefaultZakatRate,
			CreatedAt: now,
		}
	}

	applyUpdate(settings, req)
	settings.UpdatedAt = now

	if created {
		if err := s.repo.CreateSettings(ctx, settings); err != nil {
			return nil, err
		}
	} else if err := s.repo.UpdateSettings(ctx, settings); err != nil {
		return nil, err
	}

	s.log.Info("tax settings updated", zap.String("org_id", req.OrgID.String()))
	return settings, nil
}

func (s *Service) ActiveSlabs(ctx context.Context, orgID snowflake.ID) ([]taxdomain.Slab, error) {
	settings, err := s.Settings(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if !settings.UseCustomSlabs {
		return taxdomain.DefaultSlabs(), nil
	}
	slabs, err := s.repo.ListSlabs(ctx, settings.ID)
	if err != nil {
		return nil, err
	}
	if len(slabs) == 0 {
		return nil, taxdomain.ErrNoSlabs
	}
	return slabs, nil
}

// ReplaceSlabs swaps the custom schedule atomically. The schedule is
// validated before any write so a broken configuration never lands.
func (s *Service) ReplaceSlabs(ctx context.Context, orgID snowflake.ID, slabs []taxdomain.Slab) error {
	settings, err := s.Settings(ctx, orgID)
	if err != nil {
		return err
	}
	if err := ValidateSlabs(slabs); err != nil {
		return err
	}
	for i := range slabs {
		slabs[i].ID = s.genID.Generate()
		slabs[i].SettingsID = settings.ID
		slabs[i].Position = i
	}
	return s.repo.ReplaceSlabs(ctx, settings.ID, slabs)
}

func applyUpdate(settings *taxdomain.Settings, req taxdomain.UpdateSettingsRequest) {
	if req.BusinessType != nil {
		settings.BusinessType = *req.BusinessType
	}
	if req.NationalTaxNumber != nil {
		settings.NationalTaxNumber = *req.NationalTaxNumber
	}
	if req.SalesTaxRegistration != nil {
		settings.SalesTaxRegistration = *req.SalesTaxRegistration
	}
	if req.SalesTaxEnabled != nil {
		settings.SalesTaxEnabled = *req.SalesTaxEnabled
	}
	if req.SalesTaxRate != nil {
		settings.SalesTaxRate = req.SalesTaxRate
	}
	if req.SalesTaxInclusive != nil {
		settings.SalesTaxInclusive = *req.SalesTaxInclusive
	}
	if req.IncomeTaxEnabled != nil {
		settings.IncomeTaxEnabled = *req.IncomeTaxEnabled
	}
	if req.UseCustomSlabs != nil {
		settings.UseCustomSlabs = *req.UseCustomSlabs
	}
	if req.ZakatEnabled != nil {
		settings.ZakatEnabled = *req.ZakatEnabled
	}
	if req.ZakatMode != nil {
		settings.ZakatMode = *req.ZakatMode
	}
	if req.ZakatRate != nil {
		settings.ZakatRate = *req.ZakatRate
	}
	if req.ZakatExemptCategories != nil {
		if raw, err := json.Marshal(req.ZakatExemptCategories); err == nil {
			settings.ZakatExemptCategories = datatypes.JSON(raw)
		}
	}
	if req.IncomeTaxFiling != nil {
		settings.IncomeTaxFiling = *req.IncomeTaxFiling
	}
	if req.SalesTaxFiling != nil {
		settings.SalesTaxFiling = *req.SalesTaxFiling
	}
	if req.ZakatFiling != nil {
		settings.ZakatFiling = *req.ZakatFiling
	}
	if req.RemindersEnabled != nil {
		settings.RemindersEnabled = *req.RemindersEnabled
	}
	if req.ReminderLeadDays != nil {
		settings.ReminderLeadDays = *req.ReminderLeadDays
	}
}

// ExemptCategories decodes the stored JSON category list.
func ExemptCategories(settings *taxdomain.Settings) []string {
	if settings == nil || len(settings.ZakatExemptCategories) == 0 {
		return nil
	}
	var categories []string
	if err := json.Unmarshal(settings.ZakatExemptCategories, &categories); err != nil {
		return nil
	}
	return categories
}
