package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	drawerdomain "github.com/dukandar/khata/internal/drawer/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) drawerdomain.Repository {
	return &repository{db: db}
}

func (r *repository) Latest(ctx context.Context, orgID snowflake.ID, drawerID string) (*drawerdomain.Transaction, error) {
	return latest(r.db.WithContext(ctx), orgID, drawerID)
}

func latest(db *gorm.DB, orgID snowflake.ID, drawerID string) (*drawerdomain.Transaction, error) {
	var txn drawerdomain.Transaction
	err := db.
		Where("org_id = ? AND drawer_id = ?", orgID, drawerID).
		Order("created_at DESC, id DESC").
		Limit(1).
		Find(&txn).Error
	if err != nil {
		return nil, err
	}
	if txn.ID == 0 {
		return nil, nil
	}
	return &txn, nil
}

// Append re-reads the drawer head inside the insert transaction so a lost
// race surfaces as ErrStaleBalance instead of a silently forked balance.
func (r *repository) Append(ctx context.Context, txn *drawerdomain.Transaction, prevID snowflake.ID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		head, err := latest(tx, txn.OrgID, txn.DrawerID)
		if err != nil {
			return err
		}
		var headID snowflake.ID
		if head != nil {
			headID = head.ID
		}
		if headID != prevID {
			return drawerdomain.ErrStaleBalance
		}
		return tx.Create(txn).Error
	})
}

func (r *repository) History(ctx context.Context, orgID snowflake.ID, drawerID string, filter drawerdomain.HistoryFilter) ([]drawerdomain.Transaction, error) {
	stmt := r.db.WithContext(ctx).
		Where("org_id = ? AND drawer_id = ?", orgID, drawerID)

	if !filter.From.IsZero() {
		stmt = stmt.Where("created_at >= ?", filter.From.UTC())
	}
	if !filter.To.IsZero() {
		stmt = stmt.Where("created_at < ?", filter.To.UTC())
	}

	var items []drawerdomain.Transaction
	if err := stmt.Order("created_at ASC, id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
