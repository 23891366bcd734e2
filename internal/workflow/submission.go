package workflow

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sanctuary-platform/console/backend/internal/domain"
	"github.com/sanctuary-platform/console/backend/internal/schedule"
	"github.com/sanctuary-platform/console/backend/internal/syncutil"
)

// Store is the persistence the workflow runs on. GetCurrentApprovedSubmission
// returns (nil, nil) when the guide has no approved and unsuperseded
// submission. ApproveShiftSubmission must write approved and previous (when
// non-nil) plus the audit records in one transaction, and must fail with
// domain.ErrVersionConflict when either row's version moved.
type Store interface {
	InsertShiftSubmission(sub *domain.ShiftSubmission, audit *domain.AuditRecord) error
	GetShiftSubmissionByID(id int64) (*domain.ShiftSubmission, error)
	GetCurrentApprovedSubmission(guideID int64) (*domain.ShiftSubmission, error)
	GetCurrentApprovedSubmissionsBySite(siteID int64) ([]*domain.ShiftSubmission, error)
	UpdateShiftSubmission(sub *domain.ShiftSubmission, audit *domain.AuditRecord) error
	ApproveShiftSubmission(approved *domain.ShiftSubmission, previous *domain.ShiftSubmission, audits []*domain.AuditRecord) error
}

// Workflow owns the shift submission lifecycle and the "at most one approved
// schedule per guide" invariant. Reviews serialize on a per-guide mutex since
// approval touches two records of the same guide.
type Workflow struct {
	store      Store
	guideLocks *syncutil.KeyedMutex
	loc        *time.Location
	now        func() time.Time
}

func New(store Store, loc *time.Location) *Workflow {
	return &Workflow{
		store:      store,
		guideLocks: syncutil.NewKeyedMutex(),
		loc:        loc,
		now:        time.Now,
	}
}

type CreateRequest struct {
	GuideID        int64
	SiteID         int64
	SubmissionType domain.SubmissionType
	WeekStartDate  time.Time
	Shifts         []domain.ShiftDefinition
}

// Create validates and stores a pending submission. For change submissions the
// diff against the guide's currently approved schedule is computed here, once,
// and frozen onto the record.
func (w *Workflow) Create(req CreateRequest) (*domain.ShiftSubmission, error) {
	if err := schedule.ValidateWeekStart(req.WeekStartDate); err != nil {
		return nil, err
	}
	if err := schedule.ValidateShifts(req.Shifts); err != nil {
		return nil, err
	}

	sub := &domain.ShiftSubmission{
		GuideID:        req.GuideID,
		SiteID:         req.SiteID,
		SubmissionType: req.SubmissionType,
		WeekStartDate:  req.WeekStartDate,
		Shifts:         req.Shifts,
		Status:         domain.StatusPending,
	}
	schedule.SortShifts(sub.Shifts)

	current, err := w.store.GetCurrentApprovedSubmission(req.GuideID)
	if err != nil {
		return nil, err
	}

	switch req.SubmissionType {
	case domain.SubmissionTypeChange:
		if current == nil {
			return nil, domain.NewValidationError("no existing schedule to change against")
		}
		cs := schedule.Diff(current.Shifts, sub.Shifts)
		sub.Changes = &cs
	case domain.SubmissionTypeNew:
		if current != nil {
			return nil, domain.NewConflictError("guide %d already has an approved schedule, submit a change instead", req.GuideID)
		}
	default:
		return nil, domain.NewValidationError("submission type %q must be new or change", req.SubmissionType)
	}

	audit := &domain.AuditRecord{
		EntityKind: domain.EntityKindShiftSubmission,
		ActorID:    req.GuideID,
		ToStatus:   string(domain.StatusPending),
	}

	if err := w.store.InsertShiftSubmission(sub, audit); err != nil {
		return nil, err
	}

	return sub, nil
}

// Approve moves a pending submission to approved and, in the same store
// transaction, retires the guide's previously approved one so date resolution
// never sees two current schedules for a guide.
func (w *Workflow) Approve(submissionID int64, reviewerID int64) (*domain.ShiftSubmission, error) {
	// Read once to learn the guide, then re-read under that guide's lock.
	probe, err := w.store.GetShiftSubmissionByID(submissionID)
	if err != nil {
		return nil, err
	}

	w.guideLocks.Lock(probe.GuideID)
	defer w.guideLocks.Unlock(probe.GuideID)

	sub, err := w.store.GetShiftSubmissionByID(submissionID)
	if err != nil {
		return nil, err
	}
	if sub.Status != domain.StatusPending {
		return nil, domain.NewInvalidStateError("approve shift submission", string(sub.Status))
	}

	previous, err := w.store.GetCurrentApprovedSubmission(sub.GuideID)
	if err != nil {
		return nil, err
	}

	now := w.now()
	sub.Status = domain.StatusApproved
	sub.ReviewedAt = &now
	sub.ReviewedBy = &reviewerID

	audits := []*domain.AuditRecord{
		{
			EntityKind: domain.EntityKindShiftSubmission,
			EntityID:   sub.ID,
			ActorID:    reviewerID,
			FromStatus: string(domain.StatusPending),
			ToStatus:   string(domain.StatusApproved),
		},
	}

	if previous != nil {
		previous.SupersededAt = &now
		audits = append(audits, &domain.AuditRecord{
			EntityKind: domain.EntityKindShiftSubmission,
			EntityID:   previous.ID,
			ActorID:    reviewerID,
			FromStatus: string(domain.StatusApproved),
			ToStatus:   "superseded",
			Note:       fmt.Sprintf("superseded by submission %d", sub.ID),
		})
	}

	if err := w.store.ApproveShiftSubmission(sub, previous, audits); err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			return nil, domain.NewInvalidStateError("approve shift submission", "concurrently modified")
		}
		return nil, err
	}

	return sub, nil
}

// Reject moves a pending submission to rejected with a non-blank reason.
func (w *Workflow) Reject(submissionID int64, reviewerID int64, reason string) (*domain.ShiftSubmission, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, domain.NewValidationError("rejection reason is required")
	}

	probe, err := w.store.GetShiftSubmissionByID(submissionID)
	if err != nil {
		return nil, err
	}

	w.guideLocks.Lock(probe.GuideID)
	defer w.guideLocks.Unlock(probe.GuideID)

	sub, err := w.store.GetShiftSubmissionByID(submissionID)
	if err != nil {
		return nil, err
	}
	if sub.Status != domain.StatusPending {
		return nil, domain.NewInvalidStateError("reject shift submission", string(sub.Status))
	}

	now := w.now()
	sub.Status = domain.StatusRejected
	sub.RejectionReason = reason
	sub.ReviewedAt = &now
	sub.ReviewedBy = &reviewerID

	audit := &domain.AuditRecord{
		EntityKind: domain.EntityKindShiftSubmission,
		EntityID:   sub.ID,
		ActorID:    reviewerID,
		FromStatus: string(domain.StatusPending),
		ToStatus:   string(domain.StatusRejected),
		Note:       reason,
	}

	if err := w.store.UpdateShiftSubmission(sub, audit); err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			return nil, domain.NewInvalidStateError("reject shift submission", "concurrently modified")
		}
		return nil, err
	}

	return sub, nil
}
