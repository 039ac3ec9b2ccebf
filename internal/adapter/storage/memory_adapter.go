package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/rl1809/inventory-records/internal/core/domain"
	"github.com/rl1809/inventory-records/internal/port"
)

// MemoryAdapter is an in-process record table. Ids come from a high-water mark
// so a deleted id is never handed out again.
type MemoryAdapter struct {
	mu      sync.RWMutex
	records map[int64]domain.Record
	lastID  int64
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{records: make(map[int64]domain.Record)}
}

func (m *MemoryAdapter) ListRecords(ctx context.Context) ([]domain.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]domain.Record, 0, len(m.records))
	for _, r := range m.records {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Name != records[j].Name {
			return records[i].Name < records[j].Name
		}
		return records[i].ID < records[j].ID
	})
	return records, nil
}

func (m *MemoryAdapter) GetRecord(ctx context.Context, id int64) (*domain.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.records[id]
	if !ok {
		return nil, port.ErrRecordNotFound
	}
	return &r, nil
}

func (m *MemoryAdapter) CreateRecord(ctx context.Context, record domain.Record) (*domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastID++
	record.ID = m.lastID
	m.records[record.ID] = record
	return &record, nil
}

func (m *MemoryAdapter) UpdateRecord(ctx context.Context, record domain.Record) (*domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.records[record.ID]
	if !ok {
		return nil, port.ErrRecordNotFound
	}
	current.Name = record.Name
	current.Stock = record.Stock
	current.Price = record.Price
	current.UpdatedAt = record.UpdatedAt
	m.records[record.ID] = current
	return &current, nil
}

func (m *MemoryAdapter) DeleteRecord(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[id]; !ok {
		return port.ErrRecordNotFound
	}
	delete(m.records, id)
	return nil
}

// MemoryDraftAdapter keeps drafts for the lifetime of the process.
type MemoryDraftAdapter struct {
	mu     sync.Mutex
	drafts map[string]domain.Draft
}

func NewMemoryDraftAdapter() *MemoryDraftAdapter {
	return &MemoryDraftAdapter{drafts: make(map[string]domain.Draft)}
}

func (m *MemoryDraftAdapter) LoadDraft(ctx context.Context, sessionID string) (*domain.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.drafts[sessionID]
	if !ok {
		return nil, port.ErrDraftNotFound
	}
	return &d, nil
}

func (m *MemoryDraftAdapter) SaveDraft(ctx context.Context, sessionID string, draft domain.Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.drafts[sessionID] = draft
	return nil
}

func (m *MemoryDraftAdapter) DeleteDraft(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.drafts, sessionID)
	return nil
}
