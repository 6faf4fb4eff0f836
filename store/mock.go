package store

import (
	"context"
	"sync"

	"github.com/getpup/modular"
)

// MockHistoryStore is a configurable mock implementation of HistoryStore
// for use in tests. It allows setting up expected return values, tracking method
// calls, and injecting errors for testing error paths.
type MockHistoryStore struct {
	mu sync.RWMutex

	// EnsureSchemaFunc is called by EnsureSchema if set.
	EnsureSchemaFunc func(ctx context.Context) error

	// AllAppliedFunc is called by AllApplied if set.
	AllAppliedFunc func(ctx context.Context) ([]modular.HistoryEntry, error)

	// LastBatchFunc is called by LastBatch if set.
	LastBatchFunc func(ctx context.Context) ([]modular.HistoryEntry, error)

	// NextBatchNumberFunc is called by NextBatchNumber if set.
	NextBatchNumberFunc func(ctx context.Context) (int, error)

	// RecordAppliedFunc is called by RecordApplied if set.
	RecordAppliedFunc func(ctx context.Context, ids []modular.Identifier, batch int) error

	// RemoveAppliedFunc is called by RemoveApplied if set.
	RemoveAppliedFunc func(ctx context.Context, ids []modular.Identifier) error

	// Call tracking
	EnsureSchemaCalls    int
	AllAppliedCalls      int
	LastBatchCalls       int
	NextBatchNumberCalls int
	RecordAppliedCalls   []RecordAppliedCall
	RemoveAppliedCalls   []RemoveAppliedCall
}

// RecordAppliedCall records the parameters of a single RecordApplied call.
type RecordAppliedCall struct {
	IDs   []modular.Identifier
	Batch int
}

// RemoveAppliedCall records the parameters of a single RemoveApplied call.
type RemoveAppliedCall struct {
	IDs []modular.Identifier
}

// NewMockHistoryStore creates a new mock history store.
func NewMockHistoryStore() *MockHistoryStore {
	return &MockHistoryStore{}
}

// EnsureSchema implements HistoryStore.
func (m *MockHistoryStore) EnsureSchema(ctx context.Context) error {
	m.mu.Lock()
	m.EnsureSchemaCalls++
	m.mu.Unlock()

	if m.EnsureSchemaFunc != nil {
		return m.EnsureSchemaFunc(ctx)
	}

	return nil
}

// AllApplied implements HistoryStore.
func (m *MockHistoryStore) AllApplied(ctx context.Context) ([]modular.HistoryEntry, error) {
	m.mu.Lock()
	m.AllAppliedCalls++
	m.mu.Unlock()

	if m.AllAppliedFunc != nil {
		return m.AllAppliedFunc(ctx)
	}

	return []modular.HistoryEntry{}, nil
}

// LastBatch implements HistoryStore.
func (m *MockHistoryStore) LastBatch(ctx context.Context) ([]modular.HistoryEntry, error) {
	m.mu.Lock()
	m.LastBatchCalls++
	m.mu.Unlock()

	if m.LastBatchFunc != nil {
		return m.LastBatchFunc(ctx)
	}

	return []modular.HistoryEntry{}, nil
}

// NextBatchNumber implements HistoryStore.
func (m *MockHistoryStore) NextBatchNumber(ctx context.Context) (int, error) {
	m.mu.Lock()
	m.NextBatchNumberCalls++
	m.mu.Unlock()

	if m.NextBatchNumberFunc != nil {
		return m.NextBatchNumberFunc(ctx)
	}

	return 1, nil
}

// RecordApplied implements HistoryStore.
func (m *MockHistoryStore) RecordApplied(ctx context.Context, ids []modular.Identifier, batch int) error {
	m.mu.Lock()
	m.RecordAppliedCalls = append(m.RecordAppliedCalls, RecordAppliedCall{
		IDs:   append([]modular.Identifier(nil), ids...),
		Batch: batch,
	})
	m.mu.Unlock()

	if m.RecordAppliedFunc != nil {
		return m.RecordAppliedFunc(ctx, ids, batch)
	}

	return nil
}

// RemoveApplied implements HistoryStore.
func (m *MockHistoryStore) RemoveApplied(ctx context.Context, ids []modular.Identifier) error {
	m.mu.Lock()
	m.RemoveAppliedCalls = append(m.RemoveAppliedCalls, RemoveAppliedCall{
		IDs: append([]modular.Identifier(nil), ids...),
	})
	m.mu.Unlock()

	if m.RemoveAppliedFunc != nil {
		return m.RemoveAppliedFunc(ctx, ids)
	}

	return nil
}

// Reset clears all recorded calls.
func (m *MockHistoryStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.EnsureSchemaCalls = 0
	m.AllAppliedCalls = 0
	m.LastBatchCalls = 0
	m.NextBatchNumberCalls = 0
	m.RecordAppliedCalls = nil
	m.RemoveAppliedCalls = nil
}
