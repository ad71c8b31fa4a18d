// Package migration applies the catalogue schema at startup.
package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"pdfviewer/internal/logging"
)

type step struct {
	name string
	sql  string
}

// steps run in order; each one is recorded in schema_migrations once applied.
// Never edit a shipped step, append a new one.
var steps = []step{
	{"create_extension_uuid_ossp", `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`},
	{"create_table_documents", `CREATE TABLE IF NOT EXISTS documents (
  id           UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  title        TEXT        NOT NULL,
  page_count   INTEGER     NOT NULL CHECK (page_count > 0),
  storage_path TEXT        NOT NULL UNIQUE,
  size         BIGINT      NOT NULL CHECK (size >= 0),
  content_type TEXT        NOT NULL,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`},
	{"create_index_documents_title", `CREATE INDEX IF NOT EXISTS idx_documents_title ON documents (title);`},
	{"create_index_documents_created_at", `CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents (created_at);`},
}

const (
	ledgerDDL = `CREATE TABLE IF NOT EXISTS schema_migrations (
  name       TEXT        PRIMARY KEY,
  applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`
	appliedQuery = `SELECT name FROM schema_migrations`
	recordStmt   = `INSERT INTO schema_migrations (name) VALUES ($1)`
)

// EnsureMigrated applies every step missing from schema_migrations, each in
// its own transaction. It is safe to call on every start.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *logging.Logger, dbHost string) error {
	start := time.Now()
	fail := func(err error, f logging.Fields) error {
		f["db_host"] = dbHost
		f["duration_ms"] = time.Since(start).Milliseconds()
		log.Error("db_migration_failed", err, f)
		return err
	}

	if _, err := db.ExecContext(ctx, ledgerDDL); err != nil {
		return fail(fmt.Errorf("create migration ledger: %w", err), logging.Fields{})
	}
	applied, err := appliedSteps(ctx, db)
	if err != nil {
		return fail(err, logging.Fields{})
	}

	ran := 0
	for _, s := range steps {
		if applied[s.name] {
			continue
		}
		stepStart := time.Now()
		if err := apply(ctx, db, s); err != nil {
			return fail(fmt.Errorf("migration step %s failed: %w", s.name, err), logging.Fields{"migration_step": s.name})
		}
		ran++
		log.Info("db_migration_step", logging.Fields{
			"migration_step":   s.name,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	log.Info("db_migration_done", logging.Fields{
		"db_host":       dbHost,
		"steps_applied": ran,
		"steps_total":   len(steps),
		"duration_ms":   time.Since(start).Milliseconds(),
	})
	return nil
}

func appliedSteps(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, appliedQuery)
	if err != nil {
		return nil, fmt.Errorf("read migration ledger: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("read migration ledger: %w", err)
		}
		applied[name] = true
	}
	return applied, rows.Err()
}

func apply(ctx context.Context, db *sql.DB, s step) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, s.sql); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, recordStmt, s.name); err != nil {
		return err
	}
	return tx.Commit()
}
