package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	drawerdomain "github.com/dukandar/khata/internal/drawer/domain"
	reportingdomain "github.com/dukandar/khata/internal/reporting/domain"
	recorddomain "github.com/dukandar/khata/internal/taxrecord/domain"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupReportingTest(t *testing.T) (reportingdomain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&recorddomain.Record{}, &drawerdomain.Transaction{}))

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	return NewService(Params{DB: db, Log: zap.NewNop()}), db, node
}

func seedRecord(t *testing.T, db *gorm.DB, node *snowflake.Node, orgID snowflake.ID, typ recorddomain.Type, assessed, paid int64, exempt bool) {
	t.Helper()
	assessedDec := decimal.NewFromInt(assessed)
	paidDec := decimal.NewFromInt(paid)
	record := recorddomain.Record{
		ID:            node.Generate(),
		OrgID:         orgID,
		Type:          typ,
		TaxableAmount: assessedDec.Mul(decimal.NewFromInt(10)),
		TaxRate:       decimal.NewFromFloat(0.1),
		TaxAmount:     assessedDec,
		PaidAmount:    paidDec,
		PaymentStatus: recorddomain.DeriveStatus(paidDec, assessedDec, exempt),
		PeriodStart:   time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:     time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
		IsExempt:      exempt,
		CreatedAt:     time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC),
		UpdatedAt:     time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(&record).Error)
}

func seedTransaction(t *testing.T, db *gorm.DB, node *snowflake.Node, orgID snowflake.ID, op drawerdomain.Operation, prev, amount, balance int64, at time.Time) {
	t.Helper()
	txn := drawerdomain.Transaction{
		ID:              node.Generate(),
		OrgID:           orgID,
		DrawerID:        "main",
		ActorID:         "tester",
		Operation:       op,
		PreviousBalance: decimal.NewFromInt(prev),
		Amount:          decimal.NewFromInt(amount),
		Balance:         decimal.NewFromInt(balance),
		CreatedAt:       at,
	}
	require.NoError(t, db.Create(&txn).Error)
}

func TestSummarize(t *testing.T) {
	svc, db, node := setupReportingTest(t)
	ctx := context.Background()
	orgID := snowflake.ID(901)

	seedRecord(t, db, node, orgID, recorddomain.TypeIncomeTax, 1000, 1000, false)
	seedRecord(t, db, node, orgID, recorddomain.TypeSalesTax, 850, 400, false)
	seedRecord(t, db, node, orgID, recorddomain.TypeZakat, 0, 0, true)

	day := time.Date(2025, time.January, 5, 9, 0, 0, 0, time.UTC)
	seedTransaction(t, db, node, orgID, drawerdomain.OperationInitialization, 0, 1000, 1000, day)
	seedTransaction(t, db, node, orgID, drawerdomain.OperationSale, 1000, 500, 1500, day.Add(time.Hour))
	seedTransaction(t, db, node, orgID, drawerdomain.OperationExpense, 1500, 200, 1300, day.Add(2*time.Hour))
	seedTransaction(t, db, node, orgID, drawerdomain.OperationCount, 1300, 1250, 1250, day.Add(3*time.Hour))

	summary, err := svc.Summarize(ctx, orgID,
		time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.RecordCount)
	assert.Equal(t, 4, summary.TransactionCount)

	// Exempt records count toward record totals but not amount totals.
	assert.True(t, summary.TotalTaxAmount.Equal(decimal.NewFromInt(1850)), "got %s", summary.TotalTaxAmount)
	assert.True(t, summary.TotalPaidAmount.Equal(decimal.NewFromInt(1400)), "got %s", summary.TotalPaidAmount)
	assert.True(t, summary.PendingAmount.Equal(decimal.NewFromInt(450)), "got %s", summary.PendingAmount)

	assert.Equal(t, 1, summary.CountByType[recorddomain.TypeIncomeTax])
	assert.Equal(t, 1, summary.CountByType[recorddomain.TypeSalesTax])
	assert.Equal(t, 1, summary.CountByType[recorddomain.TypeZakat])
	assert.Equal(t, 1, summary.CountByStatus[recorddomain.StatusPaid])
	assert.Equal(t, 1, summary.CountByStatus[recorddomain.StatusPartiallyPaid])
	assert.Equal(t, 1, summary.CountByStatus[recorddomain.StatusExempt])

	// +1000 init +500 sale -200 expense -50 count discrepancy.
	assert.True(t, summary.LedgerNet.Equal(decimal.NewFromInt(1250)), "got %s", summary.LedgerNet)
}

func TestSummarize_OverpaymentDoesNotReducePending(t *testing.T) {
	svc, db, node := setupReportingTest(t)
	ctx := context.Background()
	orgID := snowflake.ID(902)

	seedRecord(t, db, node, orgID, recorddomain.TypeIncomeTax, 1000, 1200, false)
	seedRecord(t, db, node, orgID, recorddomain.TypeSalesTax, 500, 0, false)

	summary, err := svc.Summarize(ctx, orgID,
		time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	assert.True(t, summary.PendingAmount.Equal(decimal.NewFromInt(500)), "got %s", summary.PendingAmount)
}

func TestSummarize_EmptyRange(t *testing.T) {
	svc, _, _ := setupReportingTest(t)
	ctx := context.Background()

	summary, err := svc.Summarize(ctx, snowflake.ID(903),
		time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.RecordCount)
	assert.Equal(t, 0, summary.TransactionCount)
	assert.True(t, summary.TotalTaxAmount.IsZero())
	assert.True(t, summary.LedgerNet.IsZero())
	assert.Empty(t, summary.CountByType)
}

func TestSummarize_Validation(t *testing.T) {
	svc, _, _ := setupReportingTest(t)
	ctx := context.Background()
	from := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.Summarize(ctx, 0, from, to)
	require.ErrorIs(t, err, reportingdomain.ErrInvalidOrganization)

	_, err = svc.Summarize(ctx, snowflake.ID(904), to, from)
	require.ErrorIs(t, err, reportingdomain.ErrInvalidRange)

	_, err = svc.Summarize(ctx, snowflake.ID(904), time.Time{}, to)
	require.ErrorIs(t, err, reportingdomain.ErrInvalidRange)
}
