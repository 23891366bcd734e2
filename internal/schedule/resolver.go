package schedule

import (
	"time"

	"github.com/sanctuary-platform/console/backend/internal/domain"
)

// ResolveOccurrence maps a (week anchor, day-of-week) pair to the concrete
// calendar date the shift falls on. weekStart must be the Monday the guide's
// weekly rhythm is anchored to; dayOfWeek uses 0 = Sunday .. 6 = Saturday, so
// Sunday resolves to the last day of the anchored week, not the day before it.
// This is the single source of truth for shift date derivation.
func ResolveOccurrence(weekStart time.Time, dayOfWeek int32) (time.Time, error) {
	if dayOfWeek < 0 || dayOfWeek > 6 {
		return time.Time{}, domain.NewValidationError("day of week %d is out of range 0-6", dayOfWeek)
	}
	if weekStart.Weekday() != time.Monday {
		return time.Time{}, domain.NewValidationError("week start date %s is not a Monday", weekStart.Format("2006-01-02"))
	}

	offset := int(dayOfWeek) - 1
	if dayOfWeek == 0 {
		offset = 6
	}

	return weekStart.AddDate(0, 0, offset), nil
}

// IsToday reports whether the shift's occurrence falls on the same calendar
// day as now. The occurrence is a plain calendar date, so only now is shifted
// into the configured timezone before comparing.
func IsToday(weekStart time.Time, dayOfWeek int32, now time.Time, loc *time.Location) (bool, error) {
	occurrence, err := ResolveOccurrence(weekStart, dayOfWeek)
	if err != nil {
		return false, err
	}

	oy, om, od := occurrence.Date()
	ny, nm, nd := now.In(loc).Date()

	return oy == ny && om == nm && od == nd, nil
}
