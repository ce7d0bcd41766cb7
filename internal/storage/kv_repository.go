package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/sandeepkv93/iaa/internal/model"
)

const (
	goalsKey       = "goals"
	reflectionsKey = "reflections"
)

// KVRepository implements Repository on top of a KV by storing each collection as a JSON blob.
type KVRepository struct {
	kv KV
	mu sync.Mutex
}

func NewKVRepository(kv KV) *KVRepository {
	return &KVRepository{kv: kv}
}

func (r *KVRepository) CreateGoal(ctx context.Context, in model.Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	goals, err := loadBlob[model.Goal](ctx, r.kv, goalsKey)
	if err != nil {
		return err
	}
	for _, g := range goals {
		if g.ID == in.ID {
			return fmt.Errorf("storage: goal %q already exists", in.ID)
		}
	}
	return saveBlob(ctx, r.kv, goalsKey, append(goals, in))
}

func (r *KVRepository) GetGoal(ctx context.Context, id string) (model.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	goals, err := loadBlob[model.Goal](ctx, r.kv, goalsKey)
	if err != nil {
		return model.Goal{}, err
	}
	for _, g := range goals {
		if g.ID == id {
			return g, nil
		}
	}
	return model.Goal{}, ErrNotFound
}

func (r *KVRepository) UpdateGoal(ctx context.Context, in model.Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	goals, err := loadBlob[model.Goal](ctx, r.kv, goalsKey)
	if err != nil {
		return err
	}
	for i, g := range goals {
		if g.ID == in.ID {
			in.UserID = g.UserID
			in.CreatedAt = g.CreatedAt
			goals[i] = in
			return saveBlob(ctx, r.kv, goalsKey, goals)
		}
	}
	return ErrNotFound
}

func (r *KVRepository) DeleteGoal(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	goals, err := loadBlob[model.Goal](ctx, r.kv, goalsKey)
	if err != nil {
		return err
	}
	for i, g := range goals {
		if g.ID == id {
			return saveBlob(ctx, r.kv, goalsKey, append(goals[:i], goals[i+1:]...))
		}
	}
	return ErrNotFound
}

func (r *KVRepository) ListGoals(ctx context.Context, filter GoalListFilter) ([]model.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	goals, err := loadBlob[model.Goal](ctx, r.kv, goalsKey)
	if err != nil {
		return nil, err
	}
	out := make([]model.Goal, 0, len(goals))
	for _, g := range goals {
		if filter.UserID != "" && g.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && g.Status != filter.Status {
			continue
		}
		out = append(out, g)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, filter.Limit, filter.Offset), nil
}

func (r *KVRepository) UpsertReflection(ctx context.Context, in model.Reflection) (model.Reflection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items, err := loadBlob[model.Reflection](ctx, r.kv, reflectionsKey)
	if err != nil {
		return model.Reflection{}, err
	}
	for i, item := range items {
		if item.UserID == in.UserID && item.Date == in.Date {
			item.Memo = in.Memo
			item.Todos = in.Todos
			item.UpdatedAt = in.UpdatedAt
			items[i] = item
			return item, saveBlob(ctx, r.kv, reflectionsKey, items)
		}
	}
	return in, saveBlob(ctx, r.kv, reflectionsKey, append(items, in))
}

func (r *KVRepository) GetReflectionByDate(ctx context.Context, userID, date string) (model.Reflection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items, err := loadBlob[model.Reflection](ctx, r.kv, reflectionsKey)
	if err != nil {
		return model.Reflection{}, err
	}
	for _, item := range items {
		if item.UserID == userID && item.Date == date {
			return item, nil
		}
	}
	return model.Reflection{}, ErrNotFound
}

func (r *KVRepository) ListReflections(ctx context.Context, filter ReflectionListFilter) ([]model.Reflection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items, err := loadBlob[model.Reflection](ctx, r.kv, reflectionsKey)
	if err != nil {
		return nil, err
	}
	out := make([]model.Reflection, 0, len(items))
	for _, item := range items {
		if filter.UserID != "" && item.UserID != filter.UserID {
			continue
		}
		if filter.From != "" && item.Date < filter.From {
			continue
		}
		if filter.To != "" && item.Date > filter.To {
			continue
		}
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return paginate(out, filter.Limit, filter.Offset), nil
}

func (r *KVRepository) GetSetting(ctx context.Context, userID, key string) (string, error) {
	return r.kv.Get(ctx, scopedKey(userID, key))
}

func (r *KVRepository) SetSetting(ctx context.Context, userID, key, value string) error {
	return r.kv.Set(ctx, scopedKey(userID, key), value)
}

func (r *KVRepository) TaskStore(userID string) TaskStore {
	return NewBlobTaskStore(r.kv, scopedKey(userID, TasksKey))
}

// scopedKey leaves the local single-user keys unprefixed.
func scopedKey(userID, key string) string {
	if userID == "" {
		return key
	}
	return userID + ":" + key
}

func loadBlob[T any](ctx context.Context, kv KV, key string) ([]T, error) {
	raw, err := kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []T{}, nil
		}
		return nil, err
	}
	out := make([]T, 0)
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return out, nil
}

func saveBlob[T any](ctx context.Context, kv KV, key string, items []T) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return kv.Set(ctx, key, string(payload))
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return items[:0]
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
