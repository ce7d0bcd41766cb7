package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sandeepkv93/iaa/internal/model"
)

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "iaa.json")
	ctx := context.Background()

	first := NewFileStore(path)
	if _, err := first.Get(ctx, APIKeyKey); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on missing file, got %v", err)
	}
	if err := first.Set(ctx, APIKeyKey, "sk-abc"); err != nil {
		t.Fatalf("set: %v", err)
	}

	second := NewFileStore(path)
	got, err := second.Get(ctx, APIKeyKey)
	if err != nil || got != "sk-abc" {
		t.Fatalf("unexpected value %q, %v", got, err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file should be renamed away, stat err=%v", err)
	}
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "iaa.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewFileStore(path).Get(context.Background(), TasksKey); err == nil || !strings.Contains(err.Error(), "decode") {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestBlobTaskStoreUsesCalendarKey(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	store := NewBlobTaskStore(kv, "")

	items, err := store.LoadAll(ctx)
	if err != nil || len(items) != 0 {
		t.Fatalf("expected empty list, got %#v, %v", items, err)
	}
	want := []model.TaskItem{{ID: "t1", Text: "Run", Date: "2026-02-09", Completed: true}}
	if err := store.SaveAll(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	raw, err := kv.Get(ctx, TasksKey)
	if err != nil {
		t.Fatalf("get raw: %v", err)
	}
	if raw != `[{"id":"t1","text":"Run","completed":true,"date":"2026-02-09"}]` {
		t.Fatalf("unexpected blob: %s", raw)
	}
}

func TestKVRepositoryGoalsAndReflections(t *testing.T) {
	ctx := context.Background()
	repo := NewKVRepository(NewFileStore(filepath.Join(t.TempDir(), "iaa.json")))
	created := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)

	if err := repo.CreateGoal(ctx, testGoal("g1", "", created)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.CreateGoal(ctx, testGoal("g1", "", created)); err == nil {
		t.Fatal("expected duplicate id error")
	}
	if err := repo.CreateGoal(ctx, testGoal("g2", "", created.Add(time.Minute))); err != nil {
		t.Fatalf("create g2: %v", err)
	}
	goals, err := repo.ListGoals(ctx, GoalListFilter{Limit: 1})
	if err != nil || len(goals) != 1 || goals[0].ID != "g2" {
		t.Fatalf("unexpected list: %#v, %v", goals, err)
	}
	if err := repo.DeleteGoal(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := repo.UpsertReflection(ctx, model.Reflection{ID: "r1", Date: "2026-02-09", Memo: "a"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	updated, err := repo.UpsertReflection(ctx, model.Reflection{ID: "r2", Date: "2026-02-09", Memo: "b"})
	if err != nil {
		t.Fatalf("upsert again: %v", err)
	}
	if updated.ID != "r1" || updated.Memo != "b" {
		t.Fatalf("unexpected upsert: %#v", updated)
	}

	if err := repo.TaskStore("").SaveAll(ctx, []model.TaskItem{{ID: "t1", Text: "x", Date: "2026-02-09"}}); err != nil {
		t.Fatalf("save tasks: %v", err)
	}
	scoped, err := repo.TaskStore("user-9").LoadAll(ctx)
	if err != nil || len(scoped) != 0 {
		t.Fatalf("expected scoped empty list, got %#v, %v", scoped, err)
	}
}

func TestMemoryTaskStoreVersioning(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryTaskStore()
	_, v, _ := store.LoadVersioned(ctx)
	if _, err := store.SaveIfVersion(ctx, nil, v); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := store.SaveIfVersion(ctx, nil, v); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}
