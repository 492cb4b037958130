package service

import (
	"time"

	taxdomain "github.com/dukandar/khata/internal/tax/domain"
)

// NextFilingDue returns the end of the filing period containing ref, in the
// supplied business timezone.
func NextFilingDue(freq taxdomain.FilingFrequency, ref time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	ref = ref.In(loc)

	switch freq {
	case taxdomain.FilingMonthly:
		return time.Date(ref.Year(), ref.Month()+1, 1, 0, 0, 0, 0, loc)
	case taxdomain.FilingQuarterly:
		quarterStart := time.Month(((int(ref.Month())-1)/3)*3 + 1)
		return time.Date(ref.Year(), quarterStart+3, 1, 0, 0, 0, 0, loc)
	default:
		return time.Date(ref.Year()+1, time.January, 1, 0, 0, 0, 0, loc)
	}
}

// ReminderAt returns when a filing reminder should fire for a due date.
func ReminderAt(due time.Time, leadDays int) time.Time {
	if leadDays < 0 {
		leadDays = 0
	}
	return due.AddDate(0, 0, -leadDays)
}
