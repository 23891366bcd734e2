package workflow

import (
	"time"

	"github.com/sanctuary-platform/console/backend/internal/domain"
	"github.com/sanctuary-platform/console/backend/internal/schedule"
)

// TodayShift is one concrete occurrence of a recurring shift on the current
// calendar day.
type TodayShift struct {
	GuideID      int64                  `json:"guideID"`
	SubmissionID int64                  `json:"submissionID"`
	Date         string                 `json:"date"` // 2006-01-02
	Shift        domain.ShiftDefinition `json:"shift"`
}

// TodayShifts resolves the site's current approved schedules to the shifts
// occurring today. Recurring rules are re-anchored to the Monday of now's week
// so the resolver stays the single source of date derivation; submissions
// whose first effective week has not started yet are skipped.
func (w *Workflow) TodayShifts(siteID int64, now time.Time) ([]TodayShift, error) {
	subs, err := w.store.GetCurrentApprovedSubmissionsBySite(siteID)
	if err != nil {
		return nil, err
	}

	anchor := WeekAnchor(now, w.loc)

	shifts := []TodayShift{}
	for _, sub := range subs {
		if sub.WeekStartDate.After(anchor) {
			continue
		}
		for _, shift := range sub.Shifts {
			today, err := schedule.IsToday(anchor, shift.DayOfWeek, now, w.loc)
			if err != nil {
				return nil, err
			}
			if !today {
				continue
			}
			occurrence, err := schedule.ResolveOccurrence(anchor, shift.DayOfWeek)
			if err != nil {
				return nil, err
			}
			shifts = append(shifts, TodayShift{
				GuideID:      sub.GuideID,
				SubmissionID: sub.ID,
				Date:         occurrence.Format("2006-01-02"),
				Shift:        shift,
			})
		}
	}

	return shifts, nil
}

// WeekAnchor returns the Monday of the week now falls in, as a plain date.
// Sunday belongs to the week anchored six days earlier, matching the 0=Sunday
// day-of-week mapping.
func WeekAnchor(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	offset := (int(local.Weekday()) + 6) % 7
	y, m, d := local.AddDate(0, 0, -offset).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
