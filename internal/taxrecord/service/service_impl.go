package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/dukandar/khata/internal/clock"
	obsmetrics "github.com/dukandar/khata/internal/observability/metrics"
	recorddomain "github.com/dukandar/khata/internal/taxrecord/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type Params struct {
	fx.In

	Repo    recorddomain.Repository
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	repo    recorddomain.Repository
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	metrics *obsmetrics.Metrics

	// locks serializes payment mutations per record.
	locks sync.Map
}

func NewService(p Params) recorddomain.Service {
	return &Service{
		repo:    p.Repo,
		log:     p.Log.Named("taxrecord.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		metrics: p.Metrics,
	}
}

func (s *Service) Assess(ctx context.Context, req recorddomain.AssessRequest) (*recorddomain.Record, error) {
	if req.OrgID == 0 {
		return nil, recorddomain.ErrInvalidOrganization
	}
	if !req.Type.Valid() {
		return nil, recorddomain.ErrInvalidType
	}
	if req.TaxableAmount.IsNegative() || req.TaxRate.IsNegative() || req.TaxAmount.IsNegative() {
		return nil, recorddomain.ErrNegativeAmount
	}
	if req.PeriodStart.IsZero() || req.PeriodEnd.IsZero() || !req.PeriodEnd.After(req.PeriodStart) {
		return nil, recorddomain.ErrInvalidPeriod
	}

	now := s.clock.Now().UTC()
	record := &recorddomain.Record{
		ID:                s.genID.Generate(),
		OrgID:             req.OrgID,
		Type:              req.Type,
		TaxableAmount:     req.TaxableAmount,
		TaxRate:           req.TaxRate,
		TaxAmount:         req.TaxAmount,
		PaidAmount:        decimal.Zero,
		PaymentStatus:     recorddomain.DeriveStatus(decimal.Zero, req.TaxAmount, req.IsExempt),
		PeriodStart:       req.PeriodStart.UTC(),
		PeriodEnd:         req.PeriodEnd.UTC(),
		Reference:         req.Reference,
		IsManualEntry:     req.IsManualEntry,
		IsFinalAssessment: req.IsFinal,
		IsExempt:          req.IsExempt,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if len(req.Attachments) > 0 {
		if raw, err := json.Marshal(req.Attachments); err == nil {
			record.Attachments = datatypes.JSON(raw)
		}
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordTaxAssessment(string(req.Type))
	}
	s.log.Info("tax record assessed",
		zap.String("record_id", record.ID.String()),
		zap.String("type", string(record.Type)),
		zap.String("tax_amount", record.TaxAmount.String()),
	)
	return record, nil
}

func (s *Service) Get(ctx context.Context, orgID, id snowflake.ID) (*recorddomain.Record, error) {
	if orgID == 0 {
		return nil, recorddomain.ErrInvalidOrganization
	}
	record, err := s.repo.FindByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, recorddomain.ErrRecordNotFound
	}
	return record, nil
}

func (s *Service) List(ctx context.Context, orgID snowflake.ID, filter recorddomain.ListFilter) ([]recorddomain.Record, error) {
	if orgID == 0 {
		return nil, recorddomain.ErrInvalidOrganization
	}
	return s.repo.List(ctx, orgID, filter)
}

// RecordPayment applies a payment and re-derives the payment status. The
// payment key makes retries exact-once: a duplicate key leaves the paid
// total unchanged and returns the current record.
func (s *Service) RecordPayment(ctx context.Context, req recorddomain.PaymentRequest) (*recorddomain.Record, error) {
	if req.OrgID == 0 {
		return nil, recorddomain.ErrInvalidOrganization
	}
	if strings.TrimSpace(req.PaymentKey) == "" {
		return nil, recorddomain.ErrInvalidPaymentKey
	}
	if req.Amount.IsNegative() || req.Amount.IsZero() {
		return nil, recorddomain.ErrNegativeAmount
	}

	unlock := s.lockRecord(req.RecordID)
	defer unlock()

	record, err := s.Get(ctx, req.OrgID, req.RecordID)
	if err != nil {
		return nil, err
	}
	switch record.PaymentStatus {
	case recorddomain.StatusExempt:
		return nil, recorddomain.ErrRecordExempt
	case recorddomain.StatusPaid:
		return nil, recorddomain.ErrRecordSettled
	}

	paidAt := req.PaidAt
	if paidAt.IsZero() {
		paidAt = s.clock.Now()
	}
	payment := &recorddomain.Payment{
		ID:         s.genID.Generate(),
		OrgID:      req.OrgID,
		RecordID:   req.RecordID,
		PaymentKey: req.PaymentKey,
		Amount:     req.Amount,
		Method:     req.Method,
		PaidAt:     paidAt.UTC(),
		CreatedAt:  s.clock.Now().UTC(),
	}

	applied, total, err := s.repo.ApplyPayment(ctx, payment)
	if err != nil {
		return nil, err
	}
	if !applied {
		s.log.Info("duplicate payment key ignored",
			zap.String("record_id", record.ID.String()),
			zap.String("payment_key", req.PaymentKey),
		)
		return record, nil
	}

	record.PaidAmount = total
	record.PaymentStatus = recorddomain.DeriveStatus(total, record.TaxAmount, record.IsExempt)
	record.PaymentDate = &payment.PaidAt
	record.PaymentMethod = req.Method
	record.UpdatedAt = s.clock.Now().UTC()

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordTaxPayment()
	}
	s.log.Info("tax payment recorded",
		zap.String("record_id", record.ID.String()),
		zap.String("amount", req.Amount.String()),
		zap.String("status", string(record.PaymentStatus)),
	)
	return record, nil
}

// Amend corrects an assessment. A final assessment stays frozen; the
// correction is appended as a new record linked to the original.
func (s *Service) Amend(ctx context.Context, req recorddomain.AmendRequest) (*recorddomain.Record, error) {
	unlock := s.lockRecord(req.RecordID)
	defer unlock()

	record, err := s.Get(ctx, req.OrgID, req.RecordID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	if record.IsFinalAssessment {
		correction := &recorddomain.Record{
			ID:                s.genID.Generate(),
			OrgID:             record.OrgID,
			Type:              record.Type,
			TaxableAmount:     valueOr(req.TaxableAmount, record.TaxableAmount),
			TaxRate:           valueOr(req.TaxRate, record.TaxRate),
			TaxAmount:         valueOr(req.TaxAmount, record.TaxAmount),
			PaidAmount:        decimal.Zero,
			PeriodStart:       record.PeriodStart,
			PeriodEnd:         record.PeriodEnd,
			Reference:         req.Reference,
			IsManualEntry:     record.IsManualEntry,
			IsFinalAssessment: req.MakeFinal,
			IsExempt:          record.IsExempt,
			AmendsRecordID:    &record.ID,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		correction.PaymentStatus = recorddomain.DeriveStatus(decimal.Zero, correction.TaxAmount, correction.IsExempt)
		if err := s.repo.Create(ctx, correction); err != nil {
			return nil, err
		}
		s.log.Info("final assessment amended via linked record",
			zap.String("record_id", record.ID.String()),
			zap.String("correction_id", correction.ID.String()),
		)
		return correction, nil
	}

	record.TaxableAmount = valueOr(req.TaxableAmount, record.TaxableAmount)
	record.TaxRate = valueOr(req.TaxRate, record.TaxRate)
	record.TaxAmount = valueOr(req.TaxAmount, record.TaxAmount)
	if req.Reference != "" {
		record.Reference = req.Reference
	}
	record.IsFinalAssessment = req.MakeFinal
	record.PaymentStatus = recorddomain.DeriveStatus(record.PaidAmount, record.TaxAmount, record.IsExempt)
	record.UpdatedAt = now

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *Service) lockRecord(id snowflake.ID) func() {
	value, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func valueOr(v *decimal.Decimal, fallback decimal.Decimal) decimal.Decimal {
	if v != nil {
		return *v
	}
	return fallback
}
