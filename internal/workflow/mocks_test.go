package workflow

import (
	"sync"

	"github.com/sanctuary-platform/console/backend/internal/domain"
)

// fakeStore mirrors the Postgres repository's guarantees: copies in and out,
// version-guarded writes, the approve+supersede pair applied atomically.
type fakeStore struct {
	mu     sync.Mutex
	nextID int64
	subs   map[int64]domain.ShiftSubmission
	audits []domain.AuditRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{subs: make(map[int64]domain.ShiftSubmission)}
}

func (s *fakeStore) InsertShiftSubmission(sub *domain.ShiftSubmission, audit *domain.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	sub.ID = s.nextID
	sub.Version = 1
	s.subs[sub.ID] = *sub

	audit.EntityID = sub.ID
	s.audits = append(s.audits, *audit)
	return nil
}

func (s *fakeStore) GetShiftSubmissionByID(id int64) (*domain.ShiftSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, exists := s.subs[id]
	if !exists {
		return nil, domain.NewNotFoundError("shift submission", id)
	}
	return &sub, nil
}

func (s *fakeStore) GetCurrentApprovedSubmission(guideID int64) (*domain.ShiftSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sub := range s.subs {
		if sub.GuideID == guideID && sub.Status == domain.StatusApproved && sub.SupersededAt == nil {
			found := sub
			return &found, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) GetCurrentApprovedSubmissionsBySite(siteID int64) ([]*domain.ShiftSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs := []*domain.ShiftSubmission{}
	for _, sub := range s.subs {
		if sub.SiteID == siteID && sub.Status == domain.StatusApproved && sub.SupersededAt == nil {
			found := sub
			subs = append(subs, &found)
		}
	}
	return subs, nil
}

func (s *fakeStore) UpdateShiftSubmission(sub *domain.ShiftSubmission, audit *domain.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeLocked(sub); err != nil {
		return err
	}
	s.audits = append(s.audits, *audit)
	return nil
}

func (s *fakeStore) ApproveShiftSubmission(approved *domain.ShiftSubmission, previous *domain.ShiftSubmission, audits []*domain.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Guard both rows before touching either, so a conflict leaves no partial
	// state behind.
	if stored, exists := s.subs[approved.ID]; !exists || stored.Version != approved.Version {
		return domain.ErrVersionConflict
	}
	if previous != nil {
		if stored, exists := s.subs[previous.ID]; !exists || stored.Version != previous.Version {
			return domain.ErrVersionConflict
		}
	}

	_ = s.writeLocked(approved)
	if previous != nil {
		_ = s.writeLocked(previous)
	}
	for _, audit := range audits {
		s.audits = append(s.audits, *audit)
	}
	return nil
}

func (s *fakeStore) writeLocked(sub *domain.ShiftSubmission) error {
	stored, exists := s.subs[sub.ID]
	if !exists {
		return domain.NewNotFoundError("shift submission", sub.ID)
	}
	if stored.Version != sub.Version {
		return domain.ErrVersionConflict
	}
	sub.Version++
	s.subs[sub.ID] = *sub
	return nil
}

func (s *fakeStore) submissionsForGuide(guideID int64) []domain.ShiftSubmission {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs := []domain.ShiftSubmission{}
	for _, sub := range s.subs {
		if sub.GuideID == guideID {
			subs = append(subs, sub)
		}
	}
	return subs
}
