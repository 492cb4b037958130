package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Service manages tax settings and the slab schedule for an organization.
type Service interface {
	Settings(ctx context.Context, orgID snowflake.ID) (*Settings, error)
	UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (*Settings, error)
	// ActiveSlabs returns the custom schedule when configured, the default
	// schedule otherwise.
	ActiveSlabs(ctx context.Context, orgID snowflake.ID) ([]Slab, error)
	ReplaceSlabs(ctx context.Context, orgID snowflake.ID, slabs []Slab) error
}

// UpdateSettingsRequest carries a partial settings mutation. Nil pointers
// leave the current value untouched.
type UpdateSettingsRequest struct {
	OrgID snowflake.ID

	BusinessType         *string `json:"business_type,omitempty"`
	NationalTaxNumber    *string `json:"national_tax_number,omitempty"`
	SalesTaxRegistration *string `json:"sales_tax_registration,omitempty"`

	SalesTaxEnabled   *bool            `json:"sales_tax_enabled,omitempty"`
	SalesTaxRate      *decimal.Decimal `json:"sales_tax_rate,omitempty"`
	SalesTaxInclusive *bool            `json:"sales_tax_inclusive,omitempty"`

	IncomeTaxEnabled *bool `json:"income_tax_enabled,omitempty"`
	UseCustomSlabs   *bool `json:"use_custom_slabs,omitempty"`

	ZakatEnabled          *bool            `json:"zakat_enabled,omitempty"`
	ZakatMode             *ZakatMode       `json:"zakat_mode,omitempty"`
	ZakatRate             *decimal.Decimal `json:"zakat_rate,omitempty"`
	ZakatExemptCategories []string         `json:"zakat_exempt_categories,omitempty"`

	IncomeTaxFiling *FilingFrequency `json:"income_tax_filing,omitempty"`
	SalesTaxFiling  *FilingFrequency `json:"sales_tax_filing,omitempty"`
	ZakatFiling     *FilingFrequency `json:"zakat_filing,omitempty"`

	RemindersEnabled *bool `json:"reminders_enabled,omitempty"`
	ReminderLeadDays *int  `json:"reminder_lead_days,omitempty"`
}
