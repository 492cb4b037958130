package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Type classifies an assessed tax obligation.
type Type string

const (
	TypeIncomeTax Type = "Income Tax"
	TypeSalesTax  Type = "Sales Tax"
	TypeZakat     Type = "Zakat"
	TypeCustomTax Type = "Custom Tax"
	TypeAdvance   Type = "Advance Tax"
)

func (t Type) Valid() bool {
	switch t {
	case TypeIncomeTax, TypeSalesTax, TypeZakat, TypeCustomTax, TypeAdvance:
		return true
	}
	return false
}

// PaymentStatus is derived from paid versus assessed amounts, never set
// independently.
type PaymentStatus string

const (
	StatusPaid          PaymentStatus = "Paid"
	StatusPending       PaymentStatus = "Pending"
	StatusPartiallyPaid PaymentStatus = "Partially Paid"
	StatusExempt        PaymentStatus = "Exempt"
)

// DeriveStatus applies the payment-status rule after every mutation. Exempt
// overrides the amount comparison.
func DeriveStatus(paid, assessed decimal.Decimal, exempt bool) PaymentStatus {
	if exempt {
		return StatusExempt
	}
	switch {
	case paid.IsZero():
		return StatusPending
	case paid.LessThan(assessed):
		return StatusPartiallyPaid
	default:
		return StatusPaid
	}
}

// Record is an assessed tax obligation tracked against payments.
type Record struct {
	ID    snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID snowflake.ID `gorm:"not null;index" json:"org_id"`

	Type          Type            `gorm:"type:text;not null;index" json:"type"`
	TaxableAmount decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"taxable_amount"`
	TaxRate       decimal.Decimal `gorm:"type:decimal(6,4);not null" json:"tax_rate"`
	TaxAmount     decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"tax_amount"`
	PaidAmount    decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"paid_amount"`
	PaymentStatus PaymentStatus   `gorm:"type:text;not null;index" json:"payment_status"`

	PaymentDate   *time.Time `json:"payment_date,omitempty"`
	PaymentMethod string     `gorm:"type:text" json:"payment_method,omitempty"`

	PeriodStart time.Time `gorm:"not null;index" json:"period_start"`
	PeriodEnd   time.Time `gorm:"not null;index" json:"period_end"`

	Reference   string         `gorm:"type:text" json:"reference,omitempty"`
	Attachments datatypes.JSON `gorm:"type:json" json:"attachments,omitempty"`

	IsManualEntry     bool `gorm:"not null;default:false" json:"is_manual_entry"`
	IsFinalAssessment bool `gorm:"not null;default:false" json:"is_final_assessment"`
	IsExempt          bool `gorm:"not null;default:false" json:"is_exempt"`

	// AmendsRecordID links a correction to the frozen assessment it replaces.
	AmendsRecordID *snowflake.ID `gorm:"index" json:"amends_record_id,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Record) TableName() string { return "tax_records" }

// Payment is one applied payment against a record. PaymentKey is the
// caller-supplied idempotency key; retries with the same key are no-ops.
type Payment struct {
	ID         snowflake.ID    `gorm:"primaryKey" json:"id"`
	OrgID      snowflake.ID    `gorm:"not null;index" json:"org_id"`
	RecordID   snowflake.ID    `gorm:"not null;index" json:"record_id"`
	PaymentKey string          `gorm:"type:text;not null;uniqueIndex" json:"payment_key"`
	Amount     decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"amount"`
	Method     string          `gorm:"type:text" json:"method,omitempty"`
	PaidAt     time.Time       `gorm:"not null" json:"paid_at"`
	CreatedAt  time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "tax_payments" }

// ListFilter bounds a record listing.
type ListFilter struct {
	Type   Type
	Status PaymentStatus
	From   time.Time
	To     time.Time
}
