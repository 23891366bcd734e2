package schedule

import (
	"time"

	"github.com/sanctuary-platform/console/backend/internal/domain"
)

const timeOfDayLayout = "15:04:05"

// ValidateShifts checks a submitted shift set: every time parses, every range
// runs forward, and no day of week appears twice.
func ValidateShifts(shifts []domain.ShiftDefinition) error {
	if len(shifts) == 0 {
		return domain.NewValidationError("a submission needs at least one shift")
	}

	seenDays := make(map[int32]bool, len(shifts))
	for _, shift := range shifts {
		if shift.DayOfWeek < 0 || shift.DayOfWeek > 6 {
			return domain.NewValidationError("day of week %d is out of range 0-6", shift.DayOfWeek)
		}
		if seenDays[shift.DayOfWeek] {
			return domain.NewValidationError("duplicate shift for day of week %d", shift.DayOfWeek)
		}
		seenDays[shift.DayOfWeek] = true

		start, err := time.Parse(timeOfDayLayout, shift.StartTime)
		if err != nil {
			return domain.NewValidationError("start time %q for day %d is not a valid time of day", shift.StartTime, shift.DayOfWeek)
		}
		end, err := time.Parse(timeOfDayLayout, shift.EndTime)
		if err != nil {
			return domain.NewValidationError("end time %q for day %d is not a valid time of day", shift.EndTime, shift.DayOfWeek)
		}
		if !start.Before(end) {
			return domain.NewValidationError("shift for day %d must start before it ends", shift.DayOfWeek)
		}
	}

	return nil
}

// ValidateWeekStart checks that the anchor the day-of-week offsets resolve
// from is a Monday.
func ValidateWeekStart(weekStart time.Time) error {
	if weekStart.IsZero() {
		return domain.NewValidationError("week start date is required")
	}
	if weekStart.Weekday() != time.Monday {
		return domain.NewValidationError("week start date %s is not a Monday", weekStart.Format("2006-01-02"))
	}
	return nil
}
