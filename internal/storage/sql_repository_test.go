package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/sandeepkv93/iaa/internal/model"
)

func setupRepo(t *testing.T) *SQLRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "iaa-test.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := MigrateUp(db, DialectSQLite); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	repo, err := NewSQLRepository(db, DialectSQLite)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}
	return repo
}

func testGoal(id, userID string, created time.Time) model.Goal {
	return model.Goal{
		ID:        id,
		UserID:    userID,
		Title:     "Ship side project",
		Duration:  model.Duration3Months,
		StartDate: "2026-02-01",
		EndDate:   "2026-05-01",
		Status:    model.GoalStatusActive,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestGoalCRUDAndList(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	created := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)

	goal := testGoal("goal-1", "user-1", created)
	if err := repo.CreateGoal(ctx, goal); err != nil {
		t.Fatalf("create goal: %v", err)
	}
	if err := repo.CreateGoal(ctx, testGoal("goal-2", "user-2", created.Add(time.Hour))); err != nil {
		t.Fatalf("create goal 2: %v", err)
	}

	got, err := repo.GetGoal(ctx, goal.ID)
	if err != nil {
		t.Fatalf("get goal: %v", err)
	}
	if got.Title != goal.Title || got.Duration != model.Duration3Months || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected goal get result: %#v", got)
	}

	goal.Title = "Ship side project v2"
	goal.Status = model.GoalStatusPaused
	if err := repo.UpdateGoal(ctx, goal); err != nil {
		t.Fatalf("update goal: %v", err)
	}

	paused, err := repo.ListGoals(ctx, GoalListFilter{UserID: "user-1", Status: model.GoalStatusPaused})
	if err != nil {
		t.Fatalf("list goals: %v", err)
	}
	if len(paused) != 1 || paused[0].ID != goal.ID || paused[0].Title != "Ship side project v2" {
		t.Fatalf("unexpected paused list: %#v", paused)
	}

	all, err := repo.ListGoals(ctx, GoalListFilter{})
	if err != nil {
		t.Fatalf("list all goals: %v", err)
	}
	if len(all) != 2 || all[0].ID != "goal-2" {
		t.Fatalf("expected newest first, got %#v", all)
	}

	if err := repo.DeleteGoal(ctx, goal.ID); err != nil {
		t.Fatalf("delete goal: %v", err)
	}
	if _, err := repo.GetGoal(ctx, goal.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.UpdateGoal(ctx, goal); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
}

func TestUpsertReflectionKeepsOneRowPerDay(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	now := time.Date(2026, 2, 9, 21, 0, 0, 0, time.UTC)

	first, err := repo.UpsertReflection(ctx, model.Reflection{
		ID: "r-1", UserID: "user-1", Date: "2026-02-09", Memo: "good day", Todos: []string{"Run"},
		CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	second, err := repo.UpsertReflection(ctx, model.Reflection{
		ID: "r-2", UserID: "user-1", Date: "2026-02-09", Memo: "better day", Todos: nil,
		CreatedAt: now.Add(time.Hour), UpdatedAt: now.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.ID != first.ID || second.Memo != "better day" || len(second.Todos) != 0 {
		t.Fatalf("unexpected upsert result: %#v", second)
	}
	if !second.CreatedAt.Equal(now) {
		t.Fatalf("created_at should be preserved, got %v", second.CreatedAt)
	}

	list, err := repo.ListReflections(ctx, ReflectionListFilter{UserID: "user-1"})
	if err != nil {
		t.Fatalf("list reflections: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected one reflection, got %#v", list)
	}
	if _, err := repo.GetReflectionByDate(ctx, "user-1", "2026-02-10"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSettings(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	kv := Settings(repo, "user-1")

	if _, err := kv.Get(ctx, APIKeyKey); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := kv.Set(ctx, APIKeyKey, "sk-one"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := kv.Set(ctx, APIKeyKey, "sk-two"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := kv.Get(ctx, APIKeyKey)
	if err != nil || got != "sk-two" {
		t.Fatalf("unexpected setting: %q, %v", got, err)
	}
	if _, err := repo.GetSetting(ctx, "user-2", APIKeyKey); !errors.Is(err, ErrNotFound) {
		t.Fatalf("settings should be per user, got %v", err)
	}
}

func TestSQLTaskStoreRoundTripAndVersion(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	store := repo.TaskStore("user-1").(*SQLTaskStore)

	empty, err := store.LoadAll(ctx)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty list, got %#v, %v", empty, err)
	}

	items := []model.TaskItem{
		{ID: "t1", Text: "Run", Date: "2026-02-09", Completed: true, GoalID: "g1"},
		{ID: "t2", Text: "Read", Date: "2026-02-09"},
	}
	if err := store.SaveAll(ctx, items); err != nil {
		t.Fatalf("save all: %v", err)
	}
	got, version, err := store.LoadVersioned(ctx)
	if err != nil {
		t.Fatalf("load versioned: %v", err)
	}
	if len(got) != 2 || got[0] != items[0] || got[1] != items[1] {
		t.Fatalf("unexpected items: %#v", got)
	}
	if version != 1 {
		t.Fatalf("expected version 1, got %d", version)
	}

	next, err := store.SaveIfVersion(ctx, items[:1], version)
	if err != nil {
		t.Fatalf("save if version: %v", err)
	}
	if next != 2 {
		t.Fatalf("expected version 2, got %d", next)
	}
	if _, err := store.SaveIfVersion(ctx, items, version); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}

	other, err := repo.TaskStore("user-2").LoadAll(ctx)
	if err != nil || len(other) != 0 {
		t.Fatalf("task lists should be per user, got %#v, %v", other, err)
	}
}

func TestRebind(t *testing.T) {
	q := "SELECT a FROM t WHERE x = ? AND y = ?"
	if got := rebind(DialectSQLite, q); got != q {
		t.Fatalf("sqlite query should be unchanged: %q", got)
	}
	if got := rebind(DialectPostgres, q); got != "SELECT a FROM t WHERE x = $1 AND y = $2" {
		t.Fatalf("unexpected postgres query: %q", got)
	}
}
