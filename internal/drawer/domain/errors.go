package domain

import "github.com/dukandar/khata/internal/apperr"

var (
	ErrInvalidOrganization  = apperr.Validation("invalid_organization")
	ErrInvalidDrawer        = apperr.Validation("invalid_drawer")
	ErrInvalidActor         = apperr.Validation("invalid_actor")
	ErrInvalidOperation     = apperr.Validation("invalid_operation")
	ErrNegativeAmount       = apperr.Validation("negative_amount")
	ErrDrawerNotInitialized = apperr.Conflict("drawer_not_initialized")
	ErrDrawerClosed         = apperr.Conflict("drawer_closed")
	ErrDrawerAlreadyOpen    = apperr.Conflict("drawer_already_open")
	ErrStaleBalance         = apperr.Persistence("stale_balance")
)
