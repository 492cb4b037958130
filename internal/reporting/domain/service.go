package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/dukandar/khata/internal/apperr"
)

var (
	ErrInvalidOrganization = apperr.Validation("invalid_organization")
	ErrInvalidRange        = apperr.Validation("invalid_range")
)

// Service produces period rollups for reporting screens.
type Service interface {
	Summarize(ctx context.Context, orgID snowflake.ID, from, to time.Time) (*Summary, error)
}
