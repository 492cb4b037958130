package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// AssessRequest creates a tax record, either from a manual entry or an
// automatic period-end computation.
type AssessRequest struct {
	OrgID         snowflake.ID
	Type          Type
	TaxableAmount decimal.Decimal
	TaxRate       decimal.Decimal
	TaxAmount     decimal.Decimal
	PeriodStart   time.Time
	PeriodEnd     time.Time
	Reference     string
	Attachments   []string
	IsManualEntry bool
	IsFinal       bool
	IsExempt      bool
}

// PaymentRequest applies one payment against a record. PaymentKey makes the
// call idempotent under retries.
type PaymentRequest struct {
	OrgID      snowflake.ID
	RecordID   snowflake.ID
	PaymentKey string
	Amount     decimal.Decimal
	Method     string
	PaidAt     time.Time
}

// AmendRequest corrects an assessment. A frozen (final) assessment is never
// mutated; the correction lands as a new linked record.
type AmendRequest struct {
	OrgID         snowflake.ID
	RecordID      snowflake.ID
	TaxableAmount *decimal.Decimal
	TaxRate       *decimal.Decimal
	TaxAmount     *decimal.Decimal
	Reference     string
	MakeFinal     bool
}

// Service reconciles assessed tax obligations against payments.
type Service interface {
	Assess(ctx context.Context, req AssessRequest) (*Record, error)
	Get(ctx context.Context, orgID, id snowflake.ID) (*Record, error)
	List(ctx context.Context, orgID snowflake.ID, filter ListFilter) ([]Record, error)
	RecordPayment(ctx context.Context, req PaymentRequest) (*Record, error)
	Amend(ctx context.Context, req AmendRequest) (*Record, error)
}
