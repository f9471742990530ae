package migration

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v4/pgxpool"
)

// RunMigrations executes all necessary database migrations on startup
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("Starting database migrations")

	for _, m := range Migrations() {
		if err := m.Up(ctx, pool); err != nil {
			slog.Error("Migration failed", "name", m.Name, "error", err)
			return err
		}
		slog.Info("Migration completed", "name", m.Name)
	}

	slog.Info("All migrations completed successfully")
	return nil
}

// Migration represents a database migration
type Migration struct {
	Name string
	Up   func(ctx context.Context, pool *pgxpool.Pool) error
}

// Migrations lists the schema steps in the order they run. Every step is
// safe to run again.
func Migrations() []Migration {
	return []Migration{
		{Name: "create_resumes_table", Up: execStep(createResumesTable)},
		{Name: "add_ats_to_resumes", Up: execStep(addATSToResumes)},
		{Name: "create_resumes_updated_at_index", Up: execStep(createUpdatedAtIndex)},
	}
}

const createResumesTable = `
	CREATE TABLE IF NOT EXISTS resumes (
		id TEXT PRIMARY KEY,
		locale TEXT NOT NULL DEFAULT '',
		document JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
`

// ats holds the last score so GET can return it without recomputing.
const addATSToResumes = `
	ALTER TABLE resumes
	ADD COLUMN IF NOT EXISTS ats JSONB;
`

const createUpdatedAtIndex = `
	CREATE INDEX IF NOT EXISTS resumes_updated_at_idx ON resumes (updated_at DESC);
`

func execStep(query string) func(ctx context.Context, pool *pgxpool.Pool) error {
	return func(ctx context.Context, pool *pgxpool.Pool) error {
		_, err := pool.Exec(ctx, query)
		return err
	}
}
