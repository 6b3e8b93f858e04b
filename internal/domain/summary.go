package domain

import (
	"context"
	"fmt"
	"time"
)

// resolveWindow derives the inclusive [start, end] window for a period.
// The week window is a literal seven-day offset from the end date, which
// with both ends inclusive spans eight calendar days.
func resolveWindow(period Period, end time.Time) (time.Time, error) {
	switch period {
	case PeriodWeek:
		return end.AddDate(0, 0, -7), nil
	case PeriodMonth:
		return time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC), nil
	case PeriodYear:
		return time.Date(end.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q, must be week, month, or year", ErrInvalidPeriod, string(period))
	}
}

// GetUserSummary aggregates the user's records per activity type over the
// window derived from period and endDate. An empty endDate means today.
func (s *Service) GetUserSummary(ctx context.Context, userID, period, endDate string) (Summary, error) {
	end := truncateToDate(s.now())
	if endDate != "" {
		parsed, err := parseDate(endDate)
		if err != nil {
			return Summary{}, err
		}
		end = parsed
	}

	start, err := resolveWindow(Period(period), end)
	if err != nil {
		return Summary{}, err
	}

	records, err := s.store.Query(ctx, userID, QueryFilter{Start: &start, End: &end})
	if err != nil {
		return Summary{}, err
	}

	// Accumulate in fetch order so the floating-point totals are repeatable.
	// The unit is taken from the first record seen per type; mixed units
	// within a type are not reconciled.
	entries := make(map[ActivityType]SummaryEntry)
	for _, rec := range records {
		entry, ok := entries[rec.Type]
		if !ok {
			entry = SummaryEntry{Unit: rec.Unit}
		}
		entry.TotalValue += rec.Value
		entry.Count++
		entries[rec.Type] = entry
	}

	return Summary{
		UserID:    userID,
		Period:    Period(period),
		StartDate: start.Format(DateOnly),
		EndDate:   end.Format(DateOnly),
		Entries:   entries,
	}, nil
}
