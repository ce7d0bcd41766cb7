package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/sandeepkv93/iaa/internal/model"
)

const sqlTimeLayout = time.RFC3339Nano

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "postgres"
)

func (d Dialect) IsValid() bool {
	return d == DialectSQLite || d == DialectPostgres
}

type SQLRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQLRepository(db *sql.DB, dialect Dialect) (*SQLRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if !dialect.IsValid() {
		return nil, fmt.Errorf("storage: unsupported dialect %q", dialect)
	}
	if dialect == DialectSQLite {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	}
	return &SQLRepository{db: db, dialect: dialect}, nil
}

// OpenSQL opens and migrates a database. For sqlite3 the parent directory is created.
func OpenSQL(driver Dialect, dsn string) (*SQLRepository, error) {
	if driver == DialectSQLite && dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open(string(driver), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	repo, err := NewSQLRepository(db, driver)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := MigrateUp(db, driver); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLRepository) Close() error {
	return r.db.Close()
}

// Rebind rewrites ? placeholders to $n for postgres.
func (r *SQLRepository) Rebind(query string) string {
	return rebind(r.dialect, query)
}

func rebind(d Dialect, query string) string {
	if d != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

func (r *SQLRepository) CreateGoal(ctx context.Context, in model.Goal) error {
	_, err := r.db.ExecContext(ctx, r.Rebind(`
		INSERT INTO goals (id, user_id, title, duration, start_date, end_date, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		in.ID, in.UserID, in.Title, string(in.Duration), in.StartDate, in.EndDate, string(in.Status),
		mustTime(in.CreatedAt), mustTime(in.UpdatedAt),
	)
	return err
}

func (r *SQLRepository) GetGoal(ctx context.Context, id string) (model.Goal, error) {
	row := r.db.QueryRowContext(ctx, r.Rebind(`
		SELECT id, user_id, title, duration, start_date, end_date, status, created_at, updated_at
		FROM goals WHERE id = ?`), id)
	goal, err := scanGoal(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Goal{}, ErrNotFound
		}
		return model.Goal{}, err
	}
	return goal, nil
}

func (r *SQLRepository) UpdateGoal(ctx context.Context, in model.Goal) error {
	res, err := r.db.ExecContext(ctx, r.Rebind(`
		UPDATE goals
		SET title = ?, duration = ?, start_date = ?, end_date = ?, status = ?, updated_at = ?
		WHERE id = ?`),
		in.Title, string(in.Duration), in.StartDate, in.EndDate, string(in.Status), mustTime(in.UpdatedAt), in.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLRepository) DeleteGoal(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.Rebind(`DELETE FROM goals WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLRepository) ListGoals(ctx context.Context, filter GoalListFilter) ([]model.Goal, error) {
	query := `SELECT id, user_id, title, duration, start_date, end_date, status, created_at, updated_at FROM goals`
	clauses := make([]string, 0, 2)
	args := make([]any, 0, 4)
	if filter.UserID != "" {
		clauses = append(clauses, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, string(filter.Status))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY created_at DESC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, r.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Goal, 0)
	for rows.Next() {
		goal, scanErr := scanGoal(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, goal)
	}
	return out, rows.Err()
}

func (r *SQLRepository) UpsertReflection(ctx context.Context, in model.Reflection) (model.Reflection, error) {
	todos, err := json.Marshal(nonNilStrings(in.Todos))
	if err != nil {
		return model.Reflection{}, fmt.Errorf("encode todos: %w", err)
	}
	_, err = r.db.ExecContext(ctx, r.Rebind(`
		INSERT INTO reflections (id, user_id, date, memo, todos, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, date) DO UPDATE
		SET memo = excluded.memo, todos = excluded.todos, updated_at = excluded.updated_at`),
		in.ID, in.UserID, in.Date, in.Memo, string(todos), mustTime(in.CreatedAt), mustTime(in.UpdatedAt),
	)
	if err != nil {
		return model.Reflection{}, err
	}
	return r.GetReflectionByDate(ctx, in.UserID, in.Date)
}

func (r *SQLRepository) GetReflectionByDate(ctx context.Context, userID, date string) (model.Reflection, error) {
	row := r.db.QueryRowContext(ctx, r.Rebind(`
		SELECT id, user_id, date, memo, todos, created_at, updated_at
		FROM reflections WHERE user_id = ? AND date = ?`), userID, date)
	item, err := scanReflection(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Reflection{}, ErrNotFound
		}
		return model.Reflection{}, err
	}
	return item, nil
}

func (r *SQLRepository) ListReflections(ctx context.Context, filter ReflectionListFilter) ([]model.Reflection, error) {
	query := `SELECT id, user_id, date, memo, todos, created_at, updated_at FROM reflections`
	clauses := make([]string, 0, 3)
	args := make([]any, 0, 5)
	if filter.UserID != "" {
		clauses = append(clauses, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.From != "" {
		clauses = append(clauses, "date >= ?")
		args = append(args, filter.From)
	}
	if filter.To != "" {
		clauses = append(clauses, "date <= ?")
		args = append(args, filter.To)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY date DESC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, r.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Reflection, 0)
	for rows.Next() {
		item, scanErr := scanReflection(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLRepository) GetSetting(ctx context.Context, userID, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, r.Rebind(`SELECT value FROM settings WHERE user_id = ? AND key = ?`), userID, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

func (r *SQLRepository) SetSetting(ctx context.Context, userID, key, value string) error {
	_, err := r.db.ExecContext(ctx, r.Rebind(`
		INSERT INTO settings (user_id, key, value) VALUES (?, ?, ?)
		ON CONFLICT (user_id, key) DO UPDATE SET value = excluded.value`),
		userID, key, value,
	)
	return err
}

func (r *SQLRepository) TaskStore(userID string) TaskStore {
	return &SQLTaskStore{repo: r, userID: userID}
}

// SQLTaskStore keeps a user's list in task_items, rewritten wholesale per save.
type SQLTaskStore struct {
	repo   *SQLRepository
	userID string
}

func (s *SQLTaskStore) LoadAll(ctx context.Context) ([]model.TaskItem, error) {
	items, _, err := s.LoadVersioned(ctx)
	return items, err
}

func (s *SQLTaskStore) LoadVersioned(ctx context.Context) ([]model.TaskItem, int64, error) {
	tx, err := s.repo.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = tx.Rollback() }()

	version, err := s.version(ctx, tx)
	if err != nil {
		return nil, 0, err
	}
	rows, err := tx.QueryContext(ctx, s.repo.Rebind(`
		SELECT id, text, completed, date, goal_id
		FROM task_items WHERE user_id = ? ORDER BY position ASC`), s.userID)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.TaskItem, 0)
	for rows.Next() {
		item, scanErr := scanTaskItem(rows)
		if scanErr != nil {
			return nil, 0, scanErr
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, version, nil
}

func (s *SQLTaskStore) SaveAll(ctx context.Context, items []model.TaskItem) error {
	_, err := s.save(ctx, items, nil)
	return err
}

func (s *SQLTaskStore) SaveIfVersion(ctx context.Context, items []model.TaskItem, version int64) (int64, error) {
	return s.save(ctx, items, &version)
}

func (s *SQLTaskStore) save(ctx context.Context, items []model.TaskItem, expected *int64) (int64, error) {
	tx, err := s.repo.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	current, err := s.version(ctx, tx)
	if err != nil {
		return 0, err
	}
	if expected != nil && *expected != current {
		return 0, fmt.Errorf("%w: have %d, expected %d", ErrVersionConflict, current, *expected)
	}

	if _, err := tx.ExecContext(ctx, s.repo.Rebind(`DELETE FROM task_items WHERE user_id = ?`), s.userID); err != nil {
		return 0, fmt.Errorf("clear task items: %w", err)
	}
	insert := s.repo.Rebind(`
		INSERT INTO task_items (user_id, position, id, text, completed, date, goal_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	for i, item := range items {
		if _, err := tx.ExecContext(ctx, insert, s.userID, i, item.ID, item.Text, boolInt(item.Completed), item.Date, item.GoalID); err != nil {
			return 0, fmt.Errorf("insert task item %s: %w", item.ID, err)
		}
	}
	if _, err := tx.ExecContext(ctx, s.repo.Rebind(`
		INSERT INTO tasks_version (user_id, version) VALUES (?, 1)
		ON CONFLICT (user_id) DO UPDATE SET version = tasks_version.version + 1`), s.userID); err != nil {
		return 0, fmt.Errorf("bump tasks version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return current + 1, nil
}

func (s *SQLTaskStore) version(ctx context.Context, tx *sql.Tx) (int64, error) {
	var version int64
	err := tx.QueryRowContext(ctx, s.repo.Rebind(`SELECT version FROM tasks_version WHERE user_id = ?`), s.userID).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return version, err
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqlTimeLayout)
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqlTimeLayout, v)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	}
	if offset > 0 {
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGoal(s scanner) (model.Goal, error) {
	var out model.Goal
	var duration, status, created, updated string
	if err := s.Scan(&out.ID, &out.UserID, &out.Title, &duration, &out.StartDate, &out.EndDate, &status, &created, &updated); err != nil {
		return model.Goal{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return model.Goal{}, err
	}
	updatedAt, err := parseRequiredTime(updated)
	if err != nil {
		return model.Goal{}, err
	}
	out.Duration = model.GoalDuration(duration)
	out.Status = model.GoalStatus(status)
	out.CreatedAt = createdAt
	out.UpdatedAt = updatedAt
	return out, nil
}

func scanReflection(s scanner) (model.Reflection, error) {
	var out model.Reflection
	var todos, created, updated string
	if err := s.Scan(&out.ID, &out.UserID, &out.Date, &out.Memo, &todos, &created, &updated); err != nil {
		return model.Reflection{}, err
	}
	if err := json.Unmarshal([]byte(todos), &out.Todos); err != nil {
		return model.Reflection{}, fmt.Errorf("decode todos: %w", err)
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return model.Reflection{}, err
	}
	updatedAt, err := parseRequiredTime(updated)
	if err != nil {
		return model.Reflection{}, err
	}
	out.CreatedAt = createdAt
	out.UpdatedAt = updatedAt
	return out, nil
}

func scanTaskItem(s scanner) (model.TaskItem, error) {
	var out model.TaskItem
	var completed int
	if err := s.Scan(&out.ID, &out.Text, &completed, &out.Date, &out.GoalID); err != nil {
		return model.TaskItem{}, err
	}
	out.Completed = completed == 1
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
