// Package memory is a concurrency-safe in-memory item store. It backs tests
// and the "memory" store backend.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/maxviazov/marketplace-items-service/internal/model"
	"github.com/maxviazov/marketplace-items-service/internal/repository"
)

// ItemStore keeps items sorted newest first so reads never sort.
type ItemStore struct {
	mu    sync.RWMutex
	items []model.Item        // newest first; ties broken by id descending
	byID  map[string]struct{} // ids present in items
}

// NewItemStore creates an empty store.
func NewItemStore() *ItemStore {
	return &ItemStore{byID: make(map[string]struct{})}
}

// newer reports whether a sorts before b in the newest-first sequence.
func newer(a, b model.Item) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

func (s *ItemStore) Create(_ context.Context, it model.Item) (model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[it.ID]; ok {
		return model.Item{}, fmt.Errorf("create item %s: %w", it.ID, repository.ErrAlreadyExists)
	}
	it = cloneItem(it)
	idx, _ := slices.BinarySearchFunc(s.items, it, func(cur, target model.Item) int {
		if newer(cur, target) {
			return -1
		}
		return 1
	})
	s.items = slices.Insert(s.items, idx, it)
	s.byID[it.ID] = struct{}{}
	return cloneItem(it), nil
}

func (s *ItemStore) GetByID(_ context.Context, id string) (model.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.byID[id]; !ok {
		return model.Item{}, repository.ErrNotFound
	}
	for _, it := range s.items {
		if it.ID == id {
			return cloneItem(it), nil
		}
	}
	return model.Item{}, repository.ErrNotFound
}

func (s *ItemStore) List(_ context.Context, p repository.Page) (repository.PageResult[model.Item], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start, end := p.Window(len(s.items))
	return repository.PageResult[model.Item]{
		Items: cloneItems(s.items[start:end]),
		Total: len(s.items),
	}, nil
}

func (s *ItemStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items), nil
}

func (s *ItemStore) ListNewest(_ context.Context, limit int) ([]model.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.newest(limit), nil
}

// CountAndListNewest reads both values under one read lock.
func (s *ItemStore) CountAndListNewest(_ context.Context, limit int) (int, []model.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items), s.newest(limit), nil
}

// Ping always succeeds; the store lives in process.
func (s *ItemStore) Ping(_ context.Context) error { return nil }

func (s *ItemStore) newest(limit int) []model.Item {
	if limit <= 0 {
		return []model.Item{}
	}
	return cloneItems(s.items[:min(limit, len(s.items))])
}

func cloneItems(in []model.Item) []model.Item {
	out := make([]model.Item, len(in))
	for i, it := range in {
		out[i] = cloneItem(it)
	}
	return out
}

// cloneItem detaches slice fields so callers cannot mutate stored items.
func cloneItem(it model.Item) model.Item {
	it.Categories = slices.Clone(it.Categories)
	it.ImageURLs = slices.Clone(it.ImageURLs)
	return it
}

var (
	_ repository.ItemRepository = (*ItemStore)(nil)
	_ repository.SnapshotReader = (*ItemStore)(nil)
	_ repository.Pinger         = (*ItemStore)(nil)
)
