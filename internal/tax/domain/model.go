package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// FilingFrequency is the cadence a tax type is filed at.
type FilingFrequency string

const (
	FilingMonthly   FilingFrequency = "monthly"
	FilingQuarterly FilingFrequency = "quarterly"
	FilingAnnually  FilingFrequency = "annually"
)

func (f FilingFrequency) Valid() bool {
	switch f {
	case FilingMonthly, FilingQuarterly, FilingAnnually:
		return true
	}
	return false
}

// ZakatMode selects automatic computation or caller-supplied amounts.
type ZakatMode string

const (
	ZakatAutomatic ZakatMode = "automatic"
	ZakatManual    ZakatMode = "manual"
)

// Settings is the single active tax configuration for an organization.
type Settings struct {
	ID    snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID snowflake.ID `gorm:"not null;uniqueIndex" json:"org_id"`

	BusinessType         string `gorm:"type:text" json:"business_type"`
	NationalTaxNumber    string `gorm:"type:text" json:"national_tax_number"`
	SalesTaxRegistration string `gorm:"type:text" json:"sales_tax_registration"`

	SalesTaxEnabled   bool             `gorm:"not null;default:false" json:"sales_tax_enabled"`
	SalesTaxRate      *decimal.Decimal `gorm:"type:decimal(6,4)" json:"sales_tax_rate,omitempty"`
	SalesTaxInclusive bool             `gorm:"not null;default:false" json:"sales_tax_inclusive"`

	IncomeTaxEnabled bool `gorm:"not null;default:false" json:"income_tax_enabled"`
	UseCustomSlabs   bool `gorm:"not null;default:false" json:"use_custom_slabs"`

	ZakatEnabled          bool            `gorm:"not null;default:false" json:"zakat_enabled"`
	ZakatMode             ZakatMode       `gorm:"type:text;not null;default:'automatic'" json:"zakat_mode"`
	ZakatRate             decimal.Decimal `gorm:"type:decimal(6,4);not null;default:0.025" json:"zakat_rate"`
	ZakatExemptCategories datatypes.JSON  `gorm:"type:json" json:"zakat_exempt_categories,omitempty"`

	IncomeTaxFiling FilingFrequency `gorm:"type:text;not null;default:'annually'" json:"income_tax_filing"`
	SalesTaxFiling  FilingFrequency `gorm:"type:text;not null;default:'monthly'" json:"sales_tax_filing"`
	ZakatFiling     FilingFrequency `gorm:"type:text;not null;default:'annually'" json:"zakat_filing"`

	RemindersEnabled bool `gorm:"not null;default:true" json:"reminders_enabled"`
	ReminderLeadDays int  `gorm:"not null;default:7" json:"reminder_lead_days"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Settings) TableName() string { return "tax_settings" }

// Slab is one bracket of a progressive income tax schedule. FixedAmount is
// the accumulated tax of all lower brackets; Rate is the marginal rate
// applied to income above MinIncome.
type Slab struct {
	ID          snowflake.ID     `gorm:"primaryKey" json:"id"`
	SettingsID  snowflake.ID     `gorm:"not null;index" json:"settings_id"`
	Position    int              `gorm:"not null" json:"position"`
	MinIncome   decimal.Decimal  `gorm:"type:decimal(16,2);not null" json:"min_income"`
	MaxIncome   *decimal.Decimal `gorm:"type:decimal(16,2)" json:"max_income,omitempty"`
	FixedAmount decimal.Decimal  `gorm:"type:decimal(16,2);not null" json:"fixed_amount"`
	Rate        decimal.Decimal  `gorm:"type:decimal(6,4);not null" json:"rate"`
	Description string           `gorm:"type:text" json:"description,omitempty"`
}

// TableName sets the database table name.
func (Slab) TableName() string { return "tax_slabs" }

// Assessment is the outcome of a progressive income tax computation.
type Assessment struct {
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	EffectiveRate decimal.Decimal `json:"effective_rate"`
	SlabIndex     int             `json:"slab_index"`
}

// AssetLine is one line of a zakat asset breakdown. Liabilities are
// expressed as negative amounts.
type AssetLine struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// DefaultSlabs returns the built-in individual income tax schedule used when
// an organization has not configured custom slabs.
func DefaultSlabs() []Slab {
	d := decimal.NewFromInt
	max := func(v int64) *decimal.Decimal {
		m := d(v)
		return &m
	}
	rate := func(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

	return []Slab{
		{Position: 0, MinIncome: d(0), MaxIncome: max(600_000), FixedAmount: d(0), Rate: rate(0), Description: "Exempt"},
		{Position: 1, MinIncome: d(600_000), MaxIncome: max(1_200_000), FixedAmount: d(0), Rate: rate(0.05), Description: "5% of amount above 600,000"},
		{Position: 2, MinIncome: d(1_200_000), MaxIncome: max(2_200_000), FixedAmount: d(30_000), Rate: rate(0.15), Description: "30,000 + 15% of amount above 1,200,000"},
		{Position: 3, MinIncome: d(2_200_000), MaxIncome: max(3_200_000), FixedAmount: d(180_000), Rate: rate(0.25), Description: "180,000 + 25% of amount above 2,200,000"},
		{Position: 4, MinIncome: d(3_200_000), MaxIncome: max(4_100_000), FixedAmount: d(430_000), Rate: rate(0.30), Description: "430,000 + 30% of amount above 3,200,000"},
		{Position: 5, MinIncome: d(4_100_000), MaxIncome: nil, FixedAmount: d(700_000), Rate: rate(0.35), Description: "700,000 + 35% of amount above 4,100,000"},
	}
}

// DefaultZakatRate is the conventional 2.5% levy on qualifying net assets.
var DefaultZakatRate = decimal.NewFromFloat(0.025)
