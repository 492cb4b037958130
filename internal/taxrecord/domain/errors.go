package domain

import "github.com/dukandar/khata/internal/apperr"

var (
	ErrInvalidOrganization = apperr.Validation("invalid_organization")
	ErrInvalidType         = apperr.Validation("invalid_tax_type")
	ErrNegativeAmount      = apperr.Validation("negative_amount")
	ErrInvalidPeriod       = apperr.Validation("invalid_tax_period")
	ErrInvalidPaymentKey   = apperr.Validation("invalid_payment_key")
	ErrRecordNotFound      = apperr.NotFound("tax_record_not_found")

	ErrRecordSettled = apperr.Conflict("tax_record_settled")
	ErrRecordExempt  = apperr.Conflict("tax_record_exempt")
)
