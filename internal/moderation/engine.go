package moderation

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/sanctuary-platform/console/backend/internal/domain"
	"github.com/sanctuary-platform/console/backend/internal/syncutil"
)

// Store is the persistence the engine runs on. Implementations must write the
// item and its audit record in one transaction, and must fail guarded updates
// with domain.ErrVersionConflict when the row's version moved.
type Store interface {
	InsertContentItem(item *domain.ContentItem, audit *domain.AuditRecord) error
	GetContentItemByID(id int64) (*domain.ContentItem, error)
	UpdateContentItem(item *domain.ContentItem, audit *domain.AuditRecord) error
}

// Engine is the moderation state machine, shared by all four content kinds.
// Transitions on the same item serialize on a per-item mutex; the store's
// version guard backs that up across processes.
type Engine struct {
	store Store
	locks *syncutil.KeyedMutex
	now   func() time.Time
}

func NewEngine(store Store) *Engine {
	return &Engine{
		store: store,
		locks: syncutil.NewKeyedMutex(),
		now:   time.Now,
	}
}

type SubmitRequest struct {
	SiteID   int64
	Kind     domain.ContentKind
	Payload  json.RawMessage
	AuthorID int64
}

// Submit validates the kind-specific payload and creates the item pending and
// active.
func (e *Engine) Submit(req SubmitRequest) (*domain.ContentItem, error) {
	if err := ValidatePayload(req.Kind, req.Payload); err != nil {
		return nil, err
	}

	item := &domain.ContentItem{
		SiteID:    req.SiteID,
		Kind:      req.Kind,
		Status:    domain.StatusPending,
		IsActive:  true,
		CreatedBy: req.AuthorID,
		Payload:   req.Payload,
	}

	audit := &domain.AuditRecord{
		EntityKind: domain.EntityKindContentItem,
		ActorID:    req.AuthorID,
		ToStatus:   string(domain.StatusPending),
	}

	if err := e.store.InsertContentItem(item, audit); err != nil {
		return nil, err
	}

	return item, nil
}

// Approve moves a pending item to approved. Any other status is an
// InvalidStateError, including the loser of a racing double-approve.
func (e *Engine) Approve(itemID int64, reviewerID int64) (*domain.ContentItem, error) {
	e.locks.Lock(itemID)
	defer e.locks.Unlock(itemID)

	item, err := e.store.GetContentItemByID(itemID)
	if err != nil {
		return nil, err
	}

	if item.Status != domain.StatusPending {
		return nil, domain.NewInvalidStateError("approve content item", string(item.Status))
	}

	now := e.now()
	from := item.Status
	item.Status = domain.StatusApproved
	item.ReviewedAt = &now
	item.ReviewedBy = &reviewerID

	audit := &domain.AuditRecord{
		EntityKind: domain.EntityKindContentItem,
		EntityID:   item.ID,
		ActorID:    reviewerID,
		FromStatus: string(from),
		ToStatus:   string(item.Status),
	}

	if err := e.store.UpdateContentItem(item, audit); err != nil {
		return nil, e.mapWriteError("approve content item", err)
	}

	return item, nil
}

// Reject moves a pending item to rejected with a non-blank reason.
func (e *Engine) Reject(itemID int64, reviewerID int64, reason string) (*domain.ContentItem, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, domain.NewValidationError("rejection reason is required")
	}

	e.locks.Lock(itemID)
	defer e.locks.Unlock(itemID)

	item, err := e.store.GetContentItemByID(itemID)
	if err != nil {
		return nil, err
	}

	if item.Status != domain.StatusPending {
		return nil, domain.NewInvalidStateError("reject content item", string(item.Status))
	}

	now := e.now()
	from := item.Status
	item.Status = domain.StatusRejected
	item.RejectionReason = reason
	item.ReviewedAt = &now
	item.ReviewedBy = &reviewerID

	audit := &domain.AuditRecord{
		EntityKind: domain.EntityKindContentItem,
		EntityID:   item.ID,
		ActorID:    reviewerID,
		FromStatus: string(from),
		ToStatus:   string(item.Status),
		Note:       reason,
	}

	if err := e.store.UpdateContentItem(item, audit); err != nil {
		return nil, e.mapWriteError("reject content item", err)
	}

	return item, nil
}

// SetActive toggles the soft-delete flag. Legal in any status and idempotent:
// setting the current value is a successful no-op and appends no audit record.
func (e *Engine) SetActive(itemID int64, active bool, actorID int64) (*domain.ContentItem, error) {
	e.locks.Lock(itemID)
	defer e.locks.Unlock(itemID)

	item, err := e.store.GetContentItemByID(itemID)
	if err != nil {
		return nil, err
	}

	if item.IsActive == active {
		return item, nil
	}

	desc, err := descriptorFor(item.Kind)
	if err != nil {
		return nil, err
	}
	if !active && item.Status == domain.StatusPending && !desc.deactivatePending {
		return nil, domain.NewInvalidStateError("deactivate content item", string(item.Status))
	}

	item.IsActive = active

	audit := &domain.AuditRecord{
		EntityKind: domain.EntityKindContentItem,
		EntityID:   item.ID,
		ActorID:    actorID,
		FromStatus: activeLabel(!active),
		ToStatus:   activeLabel(active),
	}

	if err := e.store.UpdateContentItem(item, audit); err != nil {
		return nil, e.mapWriteError("set content item active flag", err)
	}

	return item, nil
}

func (e *Engine) mapWriteError(op string, err error) error {
	if errors.Is(err, domain.ErrVersionConflict) {
		return domain.NewInvalidStateError(op, "concurrently modified")
	}
	return err
}

func activeLabel(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}
