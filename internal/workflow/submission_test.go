package workflow

import (
	"sync"
	"testing"
	"time"

	"github.com/sanctuary-platform/console/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func monday() time.Time {
	return time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC)
}

func shift(day int32, start, end string) domain.ShiftDefinition {
	return domain.ShiftDefinition{DayOfWeek: day, StartTime: start, EndTime: end}
}

func newWorkflow() (*Workflow, *fakeStore) {
	store := newFakeStore()
	return New(store, time.UTC), store
}

func createPending(t *testing.T, w *Workflow, guideID int64, shifts ...domain.ShiftDefinition) *domain.ShiftSubmission {
	t.Helper()
	sub, err := w.Create(CreateRequest{
		GuideID:        guideID,
		SiteID:         1,
		SubmissionType: domain.SubmissionTypeNew,
		WeekStartDate:  monday(),
		Shifts:         shifts,
	})
	require.NoError(t, err)
	return sub
}

func TestWorkflow_Create_New(t *testing.T) {
	w, store := newWorkflow()

	sub := createPending(t, w, 5, shift(1, "08:00:00", "12:00:00"))

	assert.Equal(t, domain.StatusPending, sub.Status)
	assert.Nil(t, sub.Changes)
	assert.NotZero(t, sub.ID)
	assert.Equal(t, 1, len(store.audits))
}

func TestWorkflow_Create_Validation(t *testing.T) {
	w, _ := newWorkflow()

	var validationErr *domain.ValidationError

	t.Run("non monday anchor", func(t *testing.T) {
		_, err := w.Create(CreateRequest{
			GuideID:        5,
			SiteID:         1,
			SubmissionType: domain.SubmissionTypeNew,
			WeekStartDate:  monday().AddDate(0, 0, 2),
			Shifts:         []domain.ShiftDefinition{shift(1, "08:00:00", "12:00:00")},
		})
		require.ErrorAs(t, err, &validationErr)
	})

	t.Run("duplicate day", func(t *testing.T) {
		_, err := w.Create(CreateRequest{
			GuideID:        5,
			SiteID:         1,
			SubmissionType: domain.SubmissionTypeNew,
			WeekStartDate:  monday(),
			Shifts: []domain.ShiftDefinition{
				shift(1, "08:00:00", "12:00:00"),
				shift(1, "13:00:00", "15:00:00"),
			},
		})
		require.ErrorAs(t, err, &validationErr)
	})

	t.Run("unknown submission type", func(t *testing.T) {
		_, err := w.Create(CreateRequest{
			GuideID:        5,
			SiteID:         1,
			SubmissionType: "replace",
			WeekStartDate:  monday(),
			Shifts:         []domain.ShiftDefinition{shift(1, "08:00:00", "12:00:00")},
		})
		require.ErrorAs(t, err, &validationErr)
	})
}

func TestWorkflow_Create_ChangeNeedsBaseline(t *testing.T) {
	w, _ := newWorkflow()

	_, err := w.Create(CreateRequest{
		GuideID:        5,
		SiteID:         1,
		SubmissionType: domain.SubmissionTypeChange,
		WeekStartDate:  monday(),
		Shifts:         []domain.ShiftDefinition{shift(1, "08:00:00", "12:00:00")},
	})

	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestWorkflow_Create_NewConflictsWithApproved(t *testing.T) {
	w, _ := newWorkflow()

	first := createPending(t, w, 5, shift(1, "08:00:00", "12:00:00"))
	_, err := w.Approve(first.ID, 20)
	require.NoError(t, err)

	_, err = w.Create(CreateRequest{
		GuideID:        5,
		SiteID:         1,
		SubmissionType: domain.SubmissionTypeNew,
		WeekStartDate:  monday(),
		Shifts:         []domain.ShiftDefinition{shift(2, "08:00:00", "12:00:00")},
	})

	var conflictErr *domain.ConflictError
	require.ErrorAs(t, err, &conflictErr)
}

func TestWorkflow_Create_ChangeFreezesDiff(t *testing.T) {
	w, _ := newWorkflow()

	first := createPending(t, w, 5, shift(1, "08:00:00", "12:00:00"))
	_, err := w.Approve(first.ID, 20)
	require.NoError(t, err)

	change, err := w.Create(CreateRequest{
		GuideID:        5,
		SiteID:         1,
		SubmissionType: domain.SubmissionTypeChange,
		WeekStartDate:  monday().AddDate(0, 0, 7),
		Shifts: []domain.ShiftDefinition{
			shift(1, "09:00:00", "13:00:00"),
			shift(2, "14:00:00", "16:00:00"),
		},
	})
	require.NoError(t, err)

	require.NotNil(t, change.Changes)
	assert.Equal(t, []domain.ShiftDefinition{shift(2, "14:00:00", "16:00:00")}, change.Changes.Added)
	assert.Empty(t, change.Changes.Removed)
	require.Len(t, change.Changes.Modified, 1)
	assert.Equal(t, shift(1, "08:00:00", "12:00:00"), change.Changes.Modified[0].Old)
	assert.Equal(t, shift(1, "09:00:00", "13:00:00"), change.Changes.Modified[0].New)
}

func TestWorkflow_Approve_Supersession(t *testing.T) {
	w, store := newWorkflow()

	first := createPending(t, w, 5, shift(1, "08:00:00", "12:00:00"))
	_, err := w.Approve(first.ID, 20)
	require.NoError(t, err)

	change, err := w.Create(CreateRequest{
		GuideID:        5,
		SiteID:         1,
		SubmissionType: domain.SubmissionTypeChange,
		WeekStartDate:  monday().AddDate(0, 0, 7),
		Shifts:         []domain.ShiftDefinition{shift(3, "10:00:00", "14:00:00")},
	})
	require.NoError(t, err)

	approved, err := w.Approve(change.ID, 21)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, approved.Status)

	// Exactly one approved and unsuperseded submission remains, and it is the
	// new one.
	current := 0
	for _, sub := range store.submissionsForGuide(5) {
		if sub.Status == domain.StatusApproved && sub.SupersededAt == nil {
			current++
			assert.Equal(t, change.ID, sub.ID)
		}
		if sub.ID == first.ID {
			assert.NotNil(t, sub.SupersededAt, "old schedule must be retired")
			assert.Equal(t, domain.StatusApproved, sub.Status, "retirement keeps the approval history")
		}
	}
	assert.Equal(t, 1, current)
}

func TestWorkflow_Approve_OnlyPending(t *testing.T) {
	w, _ := newWorkflow()

	sub := createPending(t, w, 5, shift(1, "08:00:00", "12:00:00"))
	_, err := w.Reject(sub.ID, 20, "not enough coverage")
	require.NoError(t, err)

	var invalidStateErr *domain.InvalidStateError
	_, err = w.Approve(sub.ID, 20)
	require.ErrorAs(t, err, &invalidStateErr)
}

func TestWorkflow_Reject(t *testing.T) {
	w, _ := newWorkflow()

	sub := createPending(t, w, 5, shift(1, "08:00:00", "12:00:00"))

	var validationErr *domain.ValidationError
	_, err := w.Reject(sub.ID, 20, "  ")
	require.ErrorAs(t, err, &validationErr)

	rejected, err := w.Reject(sub.ID, 20, "week is fully staffed")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, rejected.Status)
	assert.Equal(t, "week is fully staffed", rejected.RejectionReason)
	require.NotNil(t, rejected.ReviewedAt)

	var invalidStateErr *domain.InvalidStateError
	_, err = w.Reject(sub.ID, 20, "twice")
	require.ErrorAs(t, err, &invalidStateErr)
}

func TestWorkflow_NotFound(t *testing.T) {
	w, _ := newWorkflow()

	var notFoundErr *domain.NotFoundError
	_, err := w.Approve(404, 20)
	require.ErrorAs(t, err, &notFoundErr)
	_, err = w.Reject(404, 20, "missing")
	require.ErrorAs(t, err, &notFoundErr)
}

func TestWorkflow_ConcurrentApprove(t *testing.T) {
	w, store := newWorkflow()

	sub := createPending(t, w, 5, shift(1, "08:00:00", "12:00:00"))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = w.Approve(sub.ID, int64(20+i))
		}(i)
	}
	wg.Wait()

	var invalidStateErr *domain.InvalidStateError
	switch {
	case errs[0] == nil:
		require.ErrorAs(t, errs[1], &invalidStateErr)
	case errs[1] == nil:
		require.ErrorAs(t, errs[0], &invalidStateErr)
	default:
		t.Fatalf("expected exactly one winner, got %v and %v", errs[0], errs[1])
	}

	approvedCount := 0
	for _, stored := range store.submissionsForGuide(5) {
		if stored.Status == domain.StatusApproved {
			approvedCount++
		}
	}
	assert.Equal(t, 1, approvedCount)
}
