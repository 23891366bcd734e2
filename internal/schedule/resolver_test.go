package schedule

import (
	"testing"
	"time"

	"github.com/sanctuary-platform/console/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolveOccurrence(t *testing.T) {
	monday := date(2024, time.June, 3)

	tests := []struct {
		name      string
		dayOfWeek int32
		want      time.Time
	}{
		{name: "monday is the anchor itself", dayOfWeek: 1, want: date(2024, time.June, 3)},
		{name: "tuesday", dayOfWeek: 2, want: date(2024, time.June, 4)},
		{name: "saturday", dayOfWeek: 6, want: date(2024, time.June, 8)},
		{name: "sunday closes the week", dayOfWeek: 0, want: date(2024, time.June, 9)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveOccurrence(monday, tt.dayOfWeek)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveOccurrence_NonMondayAnchor(t *testing.T) {
	_, err := ResolveOccurrence(date(2024, time.June, 4), 1)

	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestResolveOccurrence_DayOutOfRange(t *testing.T) {
	for _, day := range []int32{-1, 7, 12} {
		_, err := ResolveOccurrence(date(2024, time.June, 3), day)

		var validationErr *domain.ValidationError
		require.ErrorAs(t, err, &validationErr)
	}
}

func TestIsToday(t *testing.T) {
	monday := date(2024, time.June, 3)

	t.Run("matches the resolved occurrence", func(t *testing.T) {
		now := time.Date(2024, time.June, 9, 14, 30, 0, 0, time.UTC)
		got, err := IsToday(monday, 0, now, time.UTC)
		require.NoError(t, err)
		assert.True(t, got)
	})

	t.Run("other days of the week do not match", func(t *testing.T) {
		now := time.Date(2024, time.June, 9, 14, 30, 0, 0, time.UTC)
		got, err := IsToday(monday, 3, now, time.UTC)
		require.NoError(t, err)
		assert.False(t, got)
	})

	t.Run("now is compared in the configured timezone", func(t *testing.T) {
		// 01:00 UTC on June 10 is still June 9 in UTC-3.
		loc := time.FixedZone("UTC-3", -3*60*60)
		now := time.Date(2024, time.June, 10, 1, 0, 0, 0, time.UTC)

		got, err := IsToday(monday, 0, now, loc)
		require.NoError(t, err)
		assert.True(t, got)
	})

	t.Run("invalid anchor propagates", func(t *testing.T) {
		_, err := IsToday(date(2024, time.June, 5), 0, time.Now(), time.UTC)

		var validationErr *domain.ValidationError
		require.ErrorAs(t, err, &validationErr)
	})
}

func TestValidateWeekStart(t *testing.T) {
	assert.NoError(t, ValidateWeekStart(date(2024, time.June, 3)))

	var validationErr *domain.ValidationError
	assert.ErrorAs(t, ValidateWeekStart(date(2024, time.June, 7)), &validationErr)
	assert.ErrorAs(t, ValidateWeekStart(time.Time{}), &validationErr)
}
