package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
    version TEXT PRIMARY KEY
)`

type migration struct {
	version string
	up      string
	down    string
}

// loadMigrations pairs NNNN_name.up.sql with NNNN_name.down.sql, ordered by version.
func loadMigrations() ([]migration, error) {
	ups, err := fs.Glob(migrationFiles, "migrations/*.up.sql")
	if err != nil {
		return nil, fmt.Errorf("glob migrations: %w", err)
	}
	slices.Sort(ups)
	out := make([]migration, 0, len(ups))
	for _, up := range ups {
		version := strings.TrimSuffix(path.Base(up), ".up.sql")
		upSQL, err := migrationFiles.ReadFile(up)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", up, err)
		}
		downSQL, err := migrationFiles.ReadFile(path.Join("migrations", version+".down.sql"))
		if err != nil {
			return nil, fmt.Errorf("migration %s has no down file: %w", version, err)
		}
		out = append(out, migration{version: version, up: string(upSQL), down: string(downSQL)})
	}
	return out, nil
}

// MigrateUp applies every migration not yet recorded in schema_migrations.
func MigrateUp(db *sql.DB, dialect Dialect) error {
	ms, err := loadMigrations()
	if err != nil {
		return err
	}
	applied, err := AppliedMigrations(db)
	if err != nil {
		return err
	}
	for _, m := range ms {
		if slices.Contains(applied, m.version) {
			continue
		}
		if err := runMigration(db, dialect, m.version, m.up, "INSERT INTO schema_migrations (version) VALUES (?)"); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.version, err)
		}
	}
	return nil
}

// MigrateDown reverts applied migrations newest first.
func MigrateDown(db *sql.DB, dialect Dialect) error {
	ms, err := loadMigrations()
	if err != nil {
		return err
	}
	applied, err := AppliedMigrations(db)
	if err != nil {
		return err
	}
	slices.Reverse(ms)
	for _, m := range ms {
		if !slices.Contains(applied, m.version) {
			continue
		}
		if err := runMigration(db, dialect, m.version, m.down, "DELETE FROM schema_migrations WHERE version = ?"); err != nil {
			return fmt.Errorf("revert migration %s: %w", m.version, err)
		}
	}
	return nil
}

// AppliedMigrations lists recorded migration versions in order.
func AppliedMigrations(db *sql.DB) ([]string, error) {
	if _, err := db.Exec(migrationsTable); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}
	rows, err := db.Query("SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func runMigration(db *sql.DB, dialect Dialect, version, script, record string) error {
	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec(rebind(dialect, record), version); err != nil {
		return err
	}
	return tx.Commit()
}
