package repository

import (
	"context"
	"sync"

	"resume-builder/internal/domain"
)

// MemoryRepo keeps records in process. It backs the service when no
// database is configured, and the tests.
type MemoryRepo struct {
	mu      sync.RWMutex
	records map[string]domain.ResumeRecord
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{records: map[string]domain.ResumeRecord{}}
}

func (m *MemoryRepo) Save(_ context.Context, rec *domain.ResumeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.records[rec.ID]; ok {
		rec.CreatedAt = prev.CreatedAt
	}
	m.records[rec.ID] = *rec
	return nil
}

func (m *MemoryRepo) Get(_ context.Context, id string) (*domain.ResumeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (m *MemoryRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return ErrNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *MemoryRepo) Ping(context.Context) error {
	return nil
}

func (m *MemoryRepo) Encrypted() bool {
	return false
}

func (m *MemoryRepo) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
