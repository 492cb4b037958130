package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	taxdomain "github.com/dukandar/khata/internal/tax/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) taxdomain.Repository {
	return &repository{db: db}
}

func (r *repository) GetSettings(ctx context.Context, orgID snowflake.ID) (*taxdomain.Settings, error) {
	var settings taxdomain.Settings
	err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Limit(1).
		Find(&settings).Error
	if err != nil {
		return nil, err
	}
	if settings.ID == 0 {
		return nil, nil
	}
	return &settings, nil
}

func (r *repository) CreateSettings(ctx context.Context, settings *taxdomain.Settings) error {
	return r.db.WithContext(ctx).Create(settings).Error
}

func (r *repository) UpdateSettings(ctx context.Context, settings *taxdomain.Settings) error {
	return r.db.WithContext(ctx).
		Model(&taxdomain.Settings{}).
		Where("org_id = ? AND id = ?", settings.OrgID, settings.ID).
		Select("*").
		Omit("id", "org_id", "created_at").
		Updates(settings).Error
}

func (r *repository) ListSlabs(ctx context.Context, settingsID snowflake.ID) ([]taxdomain.Slab, error) {
	var slabs []taxdomain.Slab
	err := r.db.WithContext(ctx).
		Where("settings_id = ?", settingsID).
		Order("position ASC").
		Find(&slabs).Error
	if err != nil {
		return nil, err
	}
	return slabs, nil
}

func (r *repository) ReplaceSlabs(ctx context.Context, settingsID snowflake.ID, slabs []taxdomain.Slab) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("settings_id = ?", settingsID).Delete(&taxdomain.Slab{}).Error; err != nil {
			return err
		}
		if len(slabs) == 0 {
			return nil
		}
		return tx.Create(&slabs).Error
	})
}
