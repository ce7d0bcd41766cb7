package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/sandeepkv93/iaa/internal/model"
)

type MemoryTaskStore struct {
	mu      sync.Mutex
	items   []model.TaskItem
	version int64
	saves   int
}

func NewMemoryTaskStore(seed ...model.TaskItem) *MemoryTaskStore {
	return &MemoryTaskStore{items: append([]model.TaskItem(nil), seed...)}
}

func (s *MemoryTaskStore) LoadAll(ctx context.Context) ([]model.TaskItem, error) {
	items, _, err := s.LoadVersioned(ctx)
	return items, err
}

func (s *MemoryTaskStore) LoadVersioned(context.Context) ([]model.TaskItem, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.TaskItem{}, s.items...), s.version, nil
}

func (s *MemoryTaskStore) SaveAll(_ context.Context, items []model.TaskItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store(items)
	return nil
}

func (s *MemoryTaskStore) SaveIfVersion(_ context.Context, items []model.TaskItem, version int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if version != s.version {
		return 0, fmt.Errorf("%w: have %d, expected %d", ErrVersionConflict, s.version, version)
	}
	s.store(items)
	return s.version, nil
}

// Saves reports how many writes the store has accepted.
func (s *MemoryTaskStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func (s *MemoryTaskStore) store(items []model.TaskItem) {
	s.items = append([]model.TaskItem{}, items...)
	s.version++
	s.saves++
}

type MemoryKV struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: map[string]string{}}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}
