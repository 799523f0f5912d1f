package postgres

import (
	"context"
	"embed"
	"io/fs"
	"strings"

	"github.com/pkg/errors"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const createMigrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
    version    TEXT PRIMARY KEY,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Migration is one embedded schema change.
type Migration struct {
	Version string
	SQL     string
}

// Migrations returns the embedded migrations in apply order.
func Migrations() ([]Migration, error) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	if err != nil {
		return nil, errors.Wrap(err, "read migrations")
	}
	out := make([]Migration, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		body, err := migrationFiles.ReadFile("migrations/" + e.Name())
		if err != nil {
			return nil, errors.Wrapf(err, "read migration %s", e.Name())
		}
		out = append(out, Migration{
			Version: strings.TrimSuffix(e.Name(), ".sql"),
			SQL:     string(body),
		})
	}
	return out, nil
}

// Migrate applies every migration not yet recorded in schema_migrations and
// returns the versions it applied. Each migration runs in its own transaction.
func Migrate(ctx context.Context, db Pool) ([]string, error) {
	migrations, err := Migrations()
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(ctx, createMigrationsTable); err != nil {
		return nil, errors.Wrap(err, "create schema_migrations")
	}

	var applied []string
	for _, m := range migrations {
		var done bool
		err := db.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, m.Version).Scan(&done)
		if err != nil {
			return applied, errors.Wrapf(err, "check migration %s", m.Version)
		}
		if done {
			continue
		}
		if err := apply(ctx, db, m); err != nil {
			return applied, err
		}
		applied = append(applied, m.Version)
	}
	return applied, nil
}

func apply(ctx context.Context, db Pool, m Migration) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return errors.Wrapf(err, "begin migration %s", m.Version)
	}
	if _, err := tx.Exec(ctx, m.SQL); err != nil {
		_ = tx.Rollback(ctx)
		return errors.Wrapf(err, "apply migration %s", m.Version)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, m.Version); err != nil {
		_ = tx.Rollback(ctx)
		return errors.Wrapf(err, "record migration %s", m.Version)
	}
	return errors.Wrapf(tx.Commit(ctx), "commit migration %s", m.Version)
}
