package workflow

import (
	"testing"
	"time"

	"github.com/sanctuary-platform/console/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekAnchor(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "monday anchors to itself",
			now:  time.Date(2024, time.June, 3, 9, 0, 0, 0, time.UTC),
			want: monday(),
		},
		{
			name: "thursday anchors back to monday",
			now:  time.Date(2024, time.June, 6, 23, 0, 0, 0, time.UTC),
			want: monday(),
		},
		{
			name: "sunday belongs to the week started six days earlier",
			now:  time.Date(2024, time.June, 9, 1, 0, 0, 0, time.UTC),
			want: monday(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WeekAnchor(tt.now, time.UTC))
		})
	}
}

func TestWorkflow_TodayShifts(t *testing.T) {
	w, _ := newWorkflow()

	// Guide 5 works Thursdays, guide 6 works Sundays. Both schedules were
	// approved with an anchor in an earlier week.
	first := createPending(t, w, 5, shift(4, "08:00:00", "12:00:00"))
	_, err := w.Approve(first.ID, 20)
	require.NoError(t, err)

	second, err := w.Create(CreateRequest{
		GuideID:        6,
		SiteID:         1,
		SubmissionType: domain.SubmissionTypeNew,
		WeekStartDate:  monday(),
		Shifts:         []domain.ShiftDefinition{shift(0, "10:00:00", "14:00:00")},
	})
	require.NoError(t, err)
	_, err = w.Approve(second.ID, 20)
	require.NoError(t, err)

	t.Run("thursday two weeks later", func(t *testing.T) {
		now := time.Date(2024, time.June, 20, 9, 0, 0, 0, time.UTC)
		shifts, err := w.TodayShifts(1, now)
		require.NoError(t, err)

		require.Len(t, shifts, 1)
		assert.Equal(t, int64(5), shifts[0].GuideID)
		assert.Equal(t, "2024-06-20", shifts[0].Date)
	})

	t.Run("sunday", func(t *testing.T) {
		now := time.Date(2024, time.June, 16, 9, 0, 0, 0, time.UTC)
		shifts, err := w.TodayShifts(1, now)
		require.NoError(t, err)

		require.Len(t, shifts, 1)
		assert.Equal(t, int64(6), shifts[0].GuideID)
		assert.Equal(t, "2024-06-16", shifts[0].Date)
	})

	t.Run("no shifts on an uncovered day", func(t *testing.T) {
		now := time.Date(2024, time.June, 18, 9, 0, 0, 0, time.UTC)
		shifts, err := w.TodayShifts(1, now)
		require.NoError(t, err)
		assert.Empty(t, shifts)
	})

	t.Run("future anchored schedule is not effective yet", func(t *testing.T) {
		future, err := w.Create(CreateRequest{
			GuideID:        7,
			SiteID:         1,
			SubmissionType: domain.SubmissionTypeNew,
			WeekStartDate:  monday().AddDate(0, 0, 28),
			Shifts:         []domain.ShiftDefinition{shift(4, "08:00:00", "12:00:00")},
		})
		require.NoError(t, err)
		_, err = w.Approve(future.ID, 20)
		require.NoError(t, err)

		now := time.Date(2024, time.June, 20, 9, 0, 0, 0, time.UTC)
		shifts, err := w.TodayShifts(1, now)
		require.NoError(t, err)

		require.Len(t, shifts, 1, "only the already effective schedule appears")
		assert.Equal(t, int64(5), shifts[0].GuideID)
	})
}
