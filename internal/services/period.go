package services

import (
	"time"

	apperrors "hubledger/internal/errors"
)

// Period is a calendar month.
type Period struct {
	Month int
	Year  int
}

// NewPeriod validates month and year.
func NewPeriod(month, year int) (Period, error) {
	if month < 1 || month > 12 || year < 1 {
		return Period{}, apperrors.ErrInvalidPeriod
	}
	return Period{Month: month, Year: year}, nil
}

// PeriodOf returns the UTC calendar month containing t.
func PeriodOf(t time.Time) Period {
	u := t.UTC()
	return Period{Month: int(u.Month()), Year: u.Year()}
}

// Previous returns the month before p. January rolls back to December.
func (p Period) Previous() Period {
	if p.Month == 1 {
		return Period{Month: 12, Year: p.Year - 1}
	}
	return Period{Month: p.Month - 1, Year: p.Year}
}

// Index orders periods: a.Index() < b.Index() iff a is earlier than b.
func (p Period) Index() int {
	return p.Year*12 + p.Month - 1
}

// Bounds returns the half-open UTC window [start, end) covered by p.
func (p Period) Bounds() (time.Time, time.Time) {
	start := time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// CarryOver returns the amount a budget carries into the next month. The
// result is negative when the previous month was overspent.
func CarryOver(prevAllocated, prevCarriedOver, prevManualSpent, prevCalculatedSpent int64) int64 {
	return prevAllocated + prevCarriedOver - (prevManualSpent + prevCalculatedSpent)
}
