package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/getpup/modular"
	"github.com/getpup/modular/store"
)

// Store is an in-memory implementation of HistoryStore for testing and
// dry runs. It provides thread-safe access to the history using a sync.RWMutex.
type Store struct {
	mu      sync.RWMutex
	batches map[modular.Identifier]int // identifier -> batch
}

// New creates a new empty in-memory store.
func New() *Store {
	return &Store{
		batches: make(map[modular.Identifier]int),
	}
}

// EnsureSchema is a no-op for the in-memory store.
func (s *Store) EnsureSchema(ctx context.Context) error {
	return nil
}

// AllApplied returns every entry ordered by batch, then identifier.
func (s *Store) AllApplied(ctx context.Context) ([]modular.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]modular.HistoryEntry, 0, len(s.batches))
	for id, batch := range s.batches {
		entries = append(entries, modular.HistoryEntry{Identifier: id, Batch: batch})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Batch != entries[j].Batch {
			return entries[i].Batch < entries[j].Batch
		}
		return entries[i].Identifier < entries[j].Identifier
	})

	return entries, nil
}

// LastBatch returns the entries of the highest batch, newest identifier first.
func (s *Store) LastBatch(ctx context.Context) ([]modular.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	last := s.maxBatch()
	entries := make([]modular.HistoryEntry, 0)
	if last == 0 {
		return entries, nil
	}

	for id, batch := range s.batches {
		if batch == last {
			entries = append(entries, modular.HistoryEntry{Identifier: id, Batch: batch})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Identifier > entries[j].Identifier
	})

	return entries, nil
}

// NextBatchNumber returns the highest batch plus one.
func (s *Store) NextBatchNumber(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.maxBatch() + 1, nil
}

// RecordApplied records all identifiers under batch, or none of them.
// Returns store.ErrAlreadyApplied if any identifier is already recorded.
func (s *Store) RecordApplied(ctx context.Context, ids []modular.Identifier, batch int) error {
	if batch < 1 {
		return store.ErrInvalidBatch
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[modular.Identifier]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := s.batches[id]; ok {
			return fmt.Errorf("%w: %s", store.ErrAlreadyApplied, id)
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: %s", store.ErrAlreadyApplied, id)
		}
		seen[id] = struct{}{}
	}

	for _, id := range ids {
		s.batches[id] = batch
	}

	return nil
}

// RemoveApplied removes all identifiers, or none of them.
// Returns store.ErrNotApplied if any identifier is not recorded.
func (s *Store) RemoveApplied(ctx context.Context, ids []modular.Identifier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if _, ok := s.batches[id]; !ok {
			return fmt.Errorf("%w: %s", store.ErrNotApplied, id)
		}
	}

	for _, id := range ids {
		delete(s.batches, id)
	}

	return nil
}

// maxBatch must be called with the lock held.
func (s *Store) maxBatch() int {
	highest := 0
	for _, batch := range s.batches {
		if batch > highest {
			highest = batch
		}
	}
	return highest
}
