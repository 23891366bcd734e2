package moderation

import (
	"sync"

	"github.com/sanctuary-platform/console/backend/internal/domain"
)

// fakeStore is an in-memory Store with the same guarantees the Postgres
// repository gives the engine: copies in and out, version-guarded updates,
// audit appended together with the write.
type fakeStore struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]domain.ContentItem
	audits []domain.AuditRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{items: make(map[int64]domain.ContentItem)}
}

func (s *fakeStore) InsertContentItem(item *domain.ContentItem, audit *domain.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	item.ID = s.nextID
	item.Version = 1
	s.items[item.ID] = *item

	audit.EntityID = item.ID
	s.audits = append(s.audits, *audit)
	return nil
}

func (s *fakeStore) GetContentItemByID(id int64) (*domain.ContentItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.items[id]
	if !exists {
		return nil, domain.NewNotFoundError("content item", id)
	}
	return &item, nil
}

func (s *fakeStore) UpdateContentItem(item *domain.ContentItem, audit *domain.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.items[item.ID]
	if !exists {
		return domain.NewNotFoundError("content item", item.ID)
	}
	if stored.Version != item.Version {
		return domain.ErrVersionConflict
	}

	item.Version++
	s.items[item.ID] = *item
	s.audits = append(s.audits, *audit)
	return nil
}

func (s *fakeStore) auditCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.audits)
}

func (s *fakeStore) lastAudit() domain.AuditRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.audits[len(s.audits)-1]
}
