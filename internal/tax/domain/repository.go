package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	GetSettings(ctx context.Context, orgID snowflake.ID) (*Settings, error)
	CreateSettings(ctx context.Context, settings *Settings) error
	UpdateSettings(ctx context.Context, settings *Settings) error
	ListSlabs(ctx context.Context, settingsID snowflake.ID) ([]Slab, error)
	ReplaceSlabs(ctx context.Context, settingsID snowflake.ID, slabs []Slab) error
}
