package schedule

import (
	"sort"

	"github.com/sanctuary-platform/console/backend/internal/domain"
)

// Diff computes how proposed differs from current. Both sets hold at most one
// shift per day of week; a shift present in both with identical times produces
// no entry. The result is ordered by day of week so the frozen snapshot on a
// submission is deterministic.
func Diff(current, proposed []domain.ShiftDefinition) domain.ChangeSet {
	currentByDay := indexByDay(current)
	proposedByDay := indexByDay(proposed)

	cs := domain.ChangeSet{
		Added:    []domain.ShiftDefinition{},
		Removed:  []domain.ShiftDefinition{},
		Modified: []domain.ShiftChange{},
	}

	for day := int32(0); day <= 6; day++ {
		old, inCurrent := currentByDay[day]
		next, inProposed := proposedByDay[day]

		switch {
		case inProposed && !inCurrent:
			cs.Added = append(cs.Added, next)
		case inCurrent && !inProposed:
			cs.Removed = append(cs.Removed, old)
		case inCurrent && inProposed:
			if old.StartTime != next.StartTime || old.EndTime != next.EndTime {
				cs.Modified = append(cs.Modified, domain.ShiftChange{Old: old, New: next})
			}
		}
	}

	return cs
}

func indexByDay(shifts []domain.ShiftDefinition) map[int32]domain.ShiftDefinition {
	byDay := make(map[int32]domain.ShiftDefinition, len(shifts))
	for _, shift := range shifts {
		byDay[shift.DayOfWeek] = shift
	}
	return byDay
}

// SortShifts orders a shift set by day of week in place.
func SortShifts(shifts []domain.ShiftDefinition) {
	sort.Slice(shifts, func(i, j int) bool {
		return shifts[i].DayOfWeek < shifts[j].DayOfWeek
	})
}
