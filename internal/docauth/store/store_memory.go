package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"docauth/internal/docauth/models"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory record store for tests and local runs.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]models.AuthenticationRecord
}

var _ Store = (*MemoryStore)(nil)

// NewMemory creates an empty in-memory record store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		records: make(map[uuid.UUID]models.AuthenticationRecord),
	}
}

func (s *MemoryStore) Create(_ context.Context, record *models.AuthenticationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = *record
	return nil
}

func (s *MemoryStore) Update(_ context.Context, record *models.AuthenticationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.records[record.ID]
	if !ok {
		return ErrNotFound
	}
	stored.Status = record.Status
	stored.AuthSuccess = record.AuthSuccess
	stored.StatusCode = record.StatusCode
	stored.ErrorMessage = record.ErrorMessage
	stored.ResponseData = record.ResponseData
	stored.UpdatedAt = record.UpdatedAt
	s.records[record.ID] = stored
	return nil
}

func (s *MemoryStore) Find(_ context.Context, id uuid.UUID) (*models.AuthenticationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &record, nil
}

func (s *MemoryStore) ListByCitizen(_ context.Context, idCitizen int64) ([]*models.AuthenticationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var records []*models.AuthenticationRecord
	for _, record := range s.records {
		if record.IDCitizen == idCitizen {
			copied := record
			records = append(records, &copied)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

func (s *MemoryStore) ListUnpublished(_ context.Context, limit int) ([]*models.AuthenticationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var records []*models.AuthenticationRecord
	for _, record := range s.records {
		if record.Status.Terminal() && !record.EventPublished {
			copied := record
			records = append(records, &copied)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (s *MemoryStore) MarkEventPublished(_ context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.records[id]
	if !ok {
		return ErrNotFound
	}
	if stored.EventPublished {
		return nil
	}
	stored.EventPublished = true
	stored.UpdatedAt = at
	s.records[id] = stored
	return nil
}
