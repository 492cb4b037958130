package domain

import "github.com/dukandar/khata/internal/apperr"

var (
	ErrInvalidOrganization = apperr.Validation("invalid_organization")
	ErrNegativeIncome      = apperr.Validation("negative_income")
	ErrInvalidFiling       = apperr.Validation("invalid_filing_frequency")
	ErrSettingsNotFound    = apperr.NotFound("tax_settings_not_found")

	ErrNoSlabs           = apperr.Configuration("no_tax_slabs")
	ErrSlabUnsorted      = apperr.Configuration("tax_slabs_unsorted")
	ErrSlabOverlap       = apperr.Configuration("tax_slabs_overlap")
	ErrSlabGap           = apperr.Configuration("tax_slabs_gap")
	ErrMultipleOpenSlabs = apperr.Configuration("multiple_open_slabs")
	ErrInvalidSlabRate   = apperr.Configuration("invalid_slab_rate")
	ErrInvalidSlabBounds = apperr.Configuration("invalid_slab_bounds")

	ErrInvalidZakatRate  = apperr.Configuration("invalid_zakat_rate")
	ErrManualZakatAmount = apperr.Validation("manual_zakat_out_of_range")
)
