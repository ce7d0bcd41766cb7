package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sandeepkv93/iaa/internal/model"
)

// FileStore is a KV persisted as one JSON object in a file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.read()
	if err != nil {
		return "", err
	}
	v, ok := values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *FileStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.read()
	if err != nil {
		return err
	}
	values[key] = value
	return s.write(values)
}

func (s *FileStore) read() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	values := map[string]string{}
	if len(raw) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return values, nil
}

func (s *FileStore) write(values map[string]string) error {
	dir := filepath.Dir(s.path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	payload, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(payload, '\n'), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// BlobTaskStore keeps the whole task list as a JSON array under one KV key.
type BlobTaskStore struct {
	kv  KV
	key string
}

func NewBlobTaskStore(kv KV, key string) *BlobTaskStore {
	if key == "" {
		key = TasksKey
	}
	return &BlobTaskStore{kv: kv, key: key}
}

func (s *BlobTaskStore) LoadAll(ctx context.Context) ([]model.TaskItem, error) {
	raw, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []model.TaskItem{}, nil
		}
		return nil, err
	}
	items := make([]model.TaskItem, 0)
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.key, err)
	}
	return items, nil
}

func (s *BlobTaskStore) SaveAll(ctx context.Context, items []model.TaskItem) error {
	if items == nil {
		items = []model.TaskItem{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, s.key, string(payload))
}
