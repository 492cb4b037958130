package domain

import (
	"time"

	recorddomain "github.com/dukandar/khata/internal/taxrecord/domain"
	"github.com/shopspring/decimal"
)

// Summary is a read-only rollup of tax records and drawer activity over a
// date range. Repeated calls over unchanged data return identical results;
// nothing is truncated.
type Summary struct {
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`

	TotalTaxAmount  decimal.Decimal `json:"total_tax_amount"`
	TotalPaidAmount decimal.Decimal `json:"total_paid_amount"`
	PendingAmount   decimal.Decimal `json:"pending_amount"`

	CountByType   map[recorddomain.Type]int          `json:"count_by_type"`
	CountByStatus map[recorddomain.PaymentStatus]int `json:"count_by_status"`

	// LedgerNet is the signed-delta sum over drawer transactions in range,
	// a convenience total distinct from the authoritative running balance.
	LedgerNet        decimal.Decimal `json:"ledger_net"`
	TransactionCount int             `json:"transaction_count"`
	RecordCount      int             `json:"record_count"`
}
