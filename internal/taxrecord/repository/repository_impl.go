package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	recorddomain "github.com/dukandar/khata/internal/taxrecord/domain"
	"github.com/dukandar/khata/pkg/db"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(conn *gorm.DB) recorddomain.Repository {
	return &repository{db: conn}
}

func (r *repository) Create(ctx context.Context, record *recorddomain.Record) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) FindByID(ctx context.Context, orgID, id snowflake.ID) (*recorddomain.Record, error) {
	var record recorddomain.Record
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		Limit(1).
		Find(&record).Error
	if err != nil {
		return nil, err
	}
	if record.ID == 0 {
		return nil, nil
	}
	return &record, nil
}

func (r *repository) List(ctx context.Context, orgID snowflake.ID, filter recorddomain.ListFilter) ([]recorddomain.Record, error) {
	stmt := r.db.WithContext(ctx).Where("org_id = ?", orgID)

	if filter.Type != "" {
		stmt = stmt.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		stmt = stmt.Where("payment_status = ?", filter.Status)
	}
	// Period overlap: a record is in range when its period intersects it.
	if !filter.From.IsZero() {
		stmt = stmt.Where("period_end >= ?", filter.From.UTC())
	}
	if !filter.To.IsZero() {
		stmt = stmt.Where("period_start < ?", filter.To.UTC())
	}

	var records []recorddomain.Record
	if err := stmt.Order("created_at ASC, id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) Update(ctx context.Context, record *recorddomain.Record) error {
	return r.db.WithContext(ctx).
		Model(&recorddomain.Record{}).
		Where("org_id = ? AND id = ?", record.OrgID, record.ID).
		Select("*").
		Omit("id", "org_id", "created_at").
		Updates(record).Error
}

func (r *repository) ApplyPayment(ctx context.Context, payment *recorddomain.Payment) (bool, decimal.Decimal, error) {
	applied := false
	total := decimal.Zero
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// DO NOTHING on a payment_key collision keeps retries exact-once
		// without aborting the surrounding transaction.
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "payment_key"}},
			DoNothing: true,
		}).Create(payment)
		if res.Error != nil {
			if !db.IsDuplicateKeyErr(res.Error) {
				return res.Error
			}
		} else {
			applied = res.RowsAffected > 0
		}

		var row struct {
			Total decimal.Decimal `gorm:"column:total"`
		}
		if err := tx.Raw(
			`SELECT COALESCE(SUM(amount), 0) AS total
			 FROM tax_payments
			 WHERE org_id = ? AND record_id = ?`,
			payment.OrgID,
			payment.RecordID,
		).Scan(&row).Error; err != nil {
			return err
		}
		total = row.Total
		return nil
	})
	if err != nil {
		return false, decimal.Zero, err
	}
	return applied, total, nil
}

func (r *repository) ListPayments(ctx context.Context, orgID, recordID snowflake.ID) ([]recorddomain.Payment, error) {
	var payments []recorddomain.Payment
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND record_id = ?", orgID, recordID).
		Order("paid_at ASC, id ASC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}
