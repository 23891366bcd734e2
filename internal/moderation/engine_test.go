package moderation

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/sanctuary-platform/console/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPayload(kind domain.ContentKind) json.RawMessage {
	switch kind {
	case domain.KindMedia:
		return json.RawMessage(`{"title":"Basilica facade","mediaType":"image","url":"https://cdn.example.org/facade.jpg"}`)
	case domain.KindMassSchedule:
		return json.RawMessage(`{"daysOfWeek":[0,6],"time":"11:00:00","location":"Main altar"}`)
	case domain.KindEvent:
		return json.RawMessage(`{"title":"Candlelight procession","startDate":"2024-08-14","endDate":"2024-08-15","startTime":"20:00:00","endTime":"22:00:00"}`)
	case domain.KindNearbyPlace:
		return json.RawMessage(`{"name":"Pilgrim hostel","category":"lodging","address":"Calle Mayor 3","latitude":42.61,"longitude":-5.57,"distanceMeters":400}`)
	}
	return nil
}

func allKinds() []domain.ContentKind {
	return []domain.ContentKind{
		domain.KindMedia,
		domain.KindMassSchedule,
		domain.KindEvent,
		domain.KindNearbyPlace,
	}
}

func submit(t *testing.T, e *Engine, kind domain.ContentKind) *domain.ContentItem {
	t.Helper()
	item, err := e.Submit(SubmitRequest{SiteID: 1, Kind: kind, Payload: validPayload(kind), AuthorID: 10})
	require.NoError(t, err)
	return item
}

func TestEngine_Submit(t *testing.T) {
	for _, kind := range allKinds() {
		t.Run(string(kind), func(t *testing.T) {
			store := newFakeStore()
			e := NewEngine(store)

			item := submit(t, e, kind)

			assert.Equal(t, domain.StatusPending, item.Status)
			assert.True(t, item.IsActive)
			assert.Equal(t, int64(10), item.CreatedBy)
			assert.NotZero(t, item.ID)

			audit := store.lastAudit()
			assert.Equal(t, domain.EntityKindContentItem, audit.EntityKind)
			assert.Equal(t, string(domain.StatusPending), audit.ToStatus)
		})
	}
}

func TestEngine_Submit_InvalidPayload(t *testing.T) {
	e := NewEngine(newFakeStore())

	_, err := e.Submit(SubmitRequest{SiteID: 1, Kind: domain.KindMedia, Payload: json.RawMessage(`{"title":""}`), AuthorID: 10})

	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestEngine_Submit_UnknownKind(t *testing.T) {
	e := NewEngine(newFakeStore())

	_, err := e.Submit(SubmitRequest{SiteID: 1, Kind: "podcast", Payload: json.RawMessage(`{}`), AuthorID: 10})

	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

// Approve and reject succeed iff the item is pending, identically for all four
// kinds.
func TestEngine_StateMachineTotality(t *testing.T) {
	for _, kind := range allKinds() {
		t.Run(string(kind), func(t *testing.T) {
			e := NewEngine(newFakeStore())

			pending := submit(t, e, kind)
			approved, err := e.Approve(pending.ID, 20)
			require.NoError(t, err)
			assert.Equal(t, domain.StatusApproved, approved.Status)
			require.NotNil(t, approved.ReviewedAt)
			require.NotNil(t, approved.ReviewedBy)
			assert.Equal(t, int64(20), *approved.ReviewedBy)

			var invalidStateErr *domain.InvalidStateError

			// Approved is terminal.
			_, err = e.Approve(approved.ID, 20)
			require.ErrorAs(t, err, &invalidStateErr)
			_, err = e.Reject(approved.ID, 20, "late review")
			require.ErrorAs(t, err, &invalidStateErr)

			rejected := submit(t, e, kind)
			_, err = e.Reject(rejected.ID, 20, "blurry photo")
			require.NoError(t, err)

			// Rejected is terminal too.
			_, err = e.Approve(rejected.ID, 20)
			require.ErrorAs(t, err, &invalidStateErr)
			_, err = e.Reject(rejected.ID, 20, "again")
			require.ErrorAs(t, err, &invalidStateErr)
		})
	}
}

func TestEngine_Reject_ReasonInvariant(t *testing.T) {
	e := NewEngine(newFakeStore())

	item := submit(t, e, domain.KindMedia)

	var validationErr *domain.ValidationError
	_, err := e.Reject(item.ID, 20, "   ")
	require.ErrorAs(t, err, &validationErr)

	// The failed reject must not have consumed the pending state.
	rejected, err := e.Reject(item.ID, 20, "duplicate of existing asset")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, rejected.Status)
	assert.Equal(t, "duplicate of existing asset", rejected.RejectionReason)

	approvedItem := submit(t, e, domain.KindMedia)
	approved, err := e.Approve(approvedItem.ID, 20)
	require.NoError(t, err)
	assert.Empty(t, approved.RejectionReason)
}

func TestEngine_SetActive_Idempotent(t *testing.T) {
	store := newFakeStore()
	e := NewEngine(store)

	item := submit(t, e, domain.KindMedia)

	first, err := e.SetActive(item.ID, false, 20)
	require.NoError(t, err)
	assert.False(t, first.IsActive)
	auditsAfterFirst := store.auditCount()

	second, err := e.SetActive(item.ID, false, 20)
	require.NoError(t, err)
	assert.False(t, second.IsActive)
	assert.Equal(t, auditsAfterFirst, store.auditCount(), "no-op toggle must not append an audit record")
}

func TestEngine_SetActive_DoesNotTouchStatus(t *testing.T) {
	e := NewEngine(newFakeStore())

	item := submit(t, e, domain.KindMassSchedule)
	_, err := e.Approve(item.ID, 20)
	require.NoError(t, err)

	hidden, err := e.SetActive(item.ID, false, 20)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, hidden.Status)
	assert.False(t, hidden.IsActive)

	restored, err := e.SetActive(item.ID, true, 20)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, restored.Status)
	assert.True(t, restored.IsActive)
}

func TestEngine_SetActive_PendingEvent(t *testing.T) {
	e := NewEngine(newFakeStore())

	event := submit(t, e, domain.KindEvent)

	var invalidStateErr *domain.InvalidStateError
	_, err := e.SetActive(event.ID, false, 20)
	require.ErrorAs(t, err, &invalidStateErr, "a pending event cannot be deactivated")

	// Other kinds allow it.
	media := submit(t, e, domain.KindMedia)
	_, err = e.SetActive(media.ID, false, 20)
	require.NoError(t, err)

	// And an approved event can be hidden normally.
	_, err = e.Approve(event.ID, 20)
	require.NoError(t, err)
	_, err = e.SetActive(event.ID, false, 20)
	require.NoError(t, err)
}

func TestEngine_ConcurrentApprove(t *testing.T) {
	e := NewEngine(newFakeStore())

	event := submit(t, e, domain.KindEvent)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.Approve(event.ID, int64(20+i))
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
}

func TestEngine_NotFound(t *testing.T) {
	e := NewEngine(newFakeStore())

	var notFoundErr *domain.NotFoundError
	_, err := e.Approve(999, 20)
	require.ErrorAs(t, err, &notFoundErr)
	_, err = e.Reject(999, 20, "whatever")
	require.ErrorAs(t, err, &notFoundErr)
	_, err = e.SetActive(999, false, 20)
	require.ErrorAs(t, err, &notFoundErr)
}

func TestEngine_StaleWriteBecomesInvalidState(t *testing.T) {
	store := newFakeStore()
	e := NewEngine(store)

	item := submit(t, e, domain.KindMedia)

	// Another process bumps the version between our read and write.
	store.mu.Lock()
	bumped := store.items[item.ID]
	bumped.Version++
	store.items[item.ID] = bumped
	store.mu.Unlock()

	// The engine re-reads under its lock, so fetch a stale copy manually and
	// drive the store directly to simulate the cross-process race.
	stale := *item
	err := store.UpdateContentItem(&stale, &domain.AuditRecord{})
	require.ErrorIs(t, err, domain.ErrVersionConflict)

	mapped := e.mapWriteError("approve content item", err)
	var invalidStateErr *domain.InvalidStateError
	require.ErrorAs(t, mapped, &invalidStateErr)
}

func TestEngine_AuditTrail(t *testing.T) {
	store := newFakeStore()
	e := NewEngine(store)

	item := submit(t, e, domain.KindNearbyPlace)
	_, err := e.Approve(item.ID, 20)
	require.NoError(t, err)

	audit := store.lastAudit()
	assert.Equal(t, item.ID, audit.EntityID)
	assert.Equal(t, int64(20), audit.ActorID)
	assert.Equal(t, string(domain.StatusPending), audit.FromStatus)
	assert.Equal(t, string(domain.StatusApproved), audit.ToStatus)

	_, err = e.SetActive(item.ID, false, 21)
	require.NoError(t, err)

	audit = store.lastAudit()
	assert.Equal(t, "active", audit.FromStatus)
	assert.Equal(t, "inactive", audit.ToStatus)
	assert.Equal(t, int64(21), audit.ActorID)
}
