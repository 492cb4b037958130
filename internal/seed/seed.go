package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	taxdomain "github.com/dukandar/khata/internal/tax/domain"
	"gorm.io/gorm"
)

// EnsureDefaultSettings seeds tax settings for the default organization so a
// fresh install can assess taxes immediately.
func EnsureDefaultSettings(db *gorm.DB, orgID int64) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing taxdomain.Settings
		if err := tx.Where("org_id = ?", orgID).Limit(1).Find(&existing).Error; err != nil {
			return err
		}
		if existing.ID != 0 {
			return nil
		}

		now := time.Now().UTC()
		settings := taxdomain.Settings{
			ID:               node.Generate(),
			OrgID:            snowflake.ID(orgID),
			BusinessType:     "retail",
			IncomeTaxEnabled: true,
			ZakatMode:        taxdomain.ZakatAutomatic,
			ZakatRate:        taxdomain.DefaultZakatRate,
			IncomeTaxFiling:  taxdomain.FilingAnnually,
			SalesTaxFiling:   taxdomain.FilingMonthly,
			ZakatFiling:      taxdomain.FilingAnnually,
			RemindersEnabled: true,
			ReminderLeadDays: 7,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		return tx.Create(&settings).Error
	})
}
