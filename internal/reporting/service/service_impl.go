package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	drawerdomain "github.com/dukandar/khata/internal/drawer/domain"
	reportingdomain "github.com/dukandar/khata/internal/reporting/domain"
	recorddomain "github.com/dukandar/khata/internal/taxrecord/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(p Params) reportingdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("reporting.service"),
	}
}

func (s *Service) Summarize(ctx context.Context, orgID snowflake.ID, from, to time.Time) (*reportingdomain.Summary, error) {
	if orgID == 0 {
		return nil, reportingdomain.ErrInvalidOrganization
	}
	if from.IsZero() || to.IsZero() || !to.After(from) {
		return nil, reportingdomain.ErrInvalidRange
	}
	from, to = from.UTC(), to.UTC()

	var records []recorddomain.Record
	err := s.db.WithContext(ctx).
		Where("org_id = ? AND period_end >= ? AND period_start < ?", orgID, from, to).
		Order("created_at ASC, id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	var txns []drawerdomain.Transaction
	err = s.db.WithContext(ctx).
		Where("org_id = ? AND created_at >= ? AND created_at < ?", orgID, from, to).
		Order("created_at ASC, id ASC").
		Find(&txns).Error
	if err != nil {
		return nil, err
	}

	summary := &reportingdomain.Summary{
		PeriodStart:      from,
		PeriodEnd:        to,
		TotalTaxAmount:   decimal.Zero,
		TotalPaidAmount:  decimal.Zero,
		PendingAmount:    decimal.Zero,
		CountByType:      make(map[recorddomain.Type]int),
		CountByStatus:    make(map[recorddomain.PaymentStatus]int),
		LedgerNet:        decimal.Zero,
		TransactionCount: len(txns),
		RecordCount:      len(records),
	}

	for _, record := range records {
		summary.CountByType[record.Type]++
		summary.CountByStatus[record.PaymentStatus]++
		if record.PaymentStatus == recorddomain.StatusExempt {
			continue
		}
		summary.TotalTaxAmount = summary.TotalTaxAmount.Add(record.TaxAmount)
		summary.TotalPaidAmount = summary.TotalPaidAmount.Add(record.PaidAmount)
		outstanding := record.TaxAmount.Sub(record.PaidAmount)
		if outstanding.IsPositive() {
			summary.PendingAmount = summary.PendingAmount.Add(outstanding)
		}
	}

	for _, txn := range txns {
		summary.LedgerNet = summary.LedgerNet.Add(transactionDelta(txn))
	}

	return summary, nil
}

// transactionDelta is the signed contribution of one transaction. A count
// contributes its discrepancy against the prior balance rather than its
// face amount.
func transactionDelta(txn drawerdomain.Transaction) decimal.Decimal {
	if txn.Operation == drawerdomain.OperationCount {
		return txn.Balance.Sub(txn.PreviousBalance)
	}
	return drawerdomain.SignedDelta(txn.Operation, txn.Amount)
}
