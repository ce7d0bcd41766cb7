package storage

import (
	"context"
	"errors"

	"github.com/sandeepkv93/iaa/internal/model"
)

var (
	ErrNotFound        = errors.New("storage: not found")
	ErrVersionConflict = errors.New("storage: version conflict")
)

// Well-known keys of the local key-value cache.
const (
	TasksKey  = "calendarTodos"
	APIKeyKey = "openai_api_key"
)

// TaskStore reads and writes a user's whole task list at once.
type TaskStore interface {
	LoadAll(ctx context.Context) ([]model.TaskItem, error)
	SaveAll(ctx context.Context, items []model.TaskItem) error
}

// VersionedTaskStore rejects writes based on a stale read with ErrVersionConflict.
type VersionedTaskStore interface {
	TaskStore
	LoadVersioned(ctx context.Context) ([]model.TaskItem, int64, error)
	SaveIfVersion(ctx context.Context, items []model.TaskItem, version int64) (int64, error)
}

// KV is a string key-value store. Get reports ErrNotFound for missing keys.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

type Repository interface {
	CreateGoal(ctx context.Context, in model.Goal) error
	GetGoal(ctx context.Context, id string) (model.Goal, error)
	UpdateGoal(ctx context.Context, in model.Goal) error
	DeleteGoal(ctx context.Context, id string) error
	ListGoals(ctx context.Context, filter GoalListFilter) ([]model.Goal, error)

	UpsertReflection(ctx context.Context, in model.Reflection) (model.Reflection, error)
	GetReflectionByDate(ctx context.Context, userID, date string) (model.Reflection, error)
	ListReflections(ctx context.Context, filter ReflectionListFilter) ([]model.Reflection, error)

	GetSetting(ctx context.Context, userID, key string) (string, error)
	SetSetting(ctx context.Context, userID, key, value string) error

	TaskStore(userID string) TaskStore
}

// Settings adapts a repository's per-user settings to KV.
func Settings(repo Repository, userID string) KV {
	return settingsKV{repo: repo, userID: userID}
}

type settingsKV struct {
	repo   Repository
	userID string
}

func (s settingsKV) Get(ctx context.Context, key string) (string, error) {
	return s.repo.GetSetting(ctx, s.userID, key)
}

func (s settingsKV) Set(ctx context.Context, key, value string) error {
	return s.repo.SetSetting(ctx, s.userID, key, value)
}
