package migration

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfviewer/internal/logging"
)

func expectLedger(m sqlmock.Sqlmock, applied ...string) {
	m.ExpectExec(regexp.QuoteMeta(ledgerDDL)).WillReturnResult(sqlmock.NewResult(0, 0))
	rows := sqlmock.NewRows([]string{"name"})
	for _, name := range applied {
		rows.AddRow(name)
	}
	m.ExpectQuery(regexp.QuoteMeta(appliedQuery)).WillReturnRows(rows)
}

func expectStep(m sqlmock.Sqlmock, s step) {
	m.ExpectBegin()
	m.ExpectExec(regexp.QuoteMeta(s.sql)).WillReturnResult(sqlmock.NewResult(0, 0))
	m.ExpectExec(regexp.QuoteMeta(recordStmt)).WithArgs(s.name).WillReturnResult(sqlmock.NewResult(0, 1))
	m.ExpectCommit()
}

func TestEnsureMigrated(t *testing.T) {
	ctx := context.Background()

	t.Run("fresh database runs every step", func(t *testing.T) {
		db, m, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		expectLedger(m)
		for _, s := range steps {
			expectStep(m, s)
		}

		var buf bytes.Buffer
		require.NoError(t, EnsureMigrated(ctx, db, logging.New(&buf, time.UTC, "migration"), "db"))
		assert.Contains(t, buf.String(), `"steps_applied":4`)
		assert.NoError(t, m.ExpectationsWereMet())
	})

	t.Run("only missing steps run", func(t *testing.T) {
		db, m, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		expectLedger(m, steps[0].name, steps[1].name)
		for _, s := range steps[2:] {
			expectStep(m, s)
		}

		require.NoError(t, EnsureMigrated(ctx, db, logging.Discard(), "db"))
		assert.NoError(t, m.ExpectationsWereMet())
	})

	t.Run("up to date", func(t *testing.T) {
		db, m, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		names := make([]string, 0, len(steps))
		for _, s := range steps {
			names = append(names, s.name)
		}
		expectLedger(m, names...)

		require.NoError(t, EnsureMigrated(ctx, db, logging.Discard(), "db"))
		assert.NoError(t, m.ExpectationsWereMet())
	})

	t.Run("step failure rolls back", func(t *testing.T) {
		db, m, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		expectLedger(m)
		m.ExpectBegin()
		m.ExpectExec(regexp.QuoteMeta(steps[0].sql)).WillReturnError(errors.New("permission denied"))
		m.ExpectRollback()

		var buf bytes.Buffer
		err = EnsureMigrated(ctx, db, logging.New(&buf, time.UTC, "migration"), "db")
		assert.ErrorContains(t, err, "migration step create_extension_uuid_ossp failed")
		assert.Contains(t, buf.String(), "db_migration_failed")
		assert.NoError(t, m.ExpectationsWereMet())
	})

	t.Run("ledger failure", func(t *testing.T) {
		db, m, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		m.ExpectExec(regexp.QuoteMeta(ledgerDDL)).WillReturnError(errors.New("conn reset"))

		err = EnsureMigrated(ctx, db, logging.Discard(), "db")
		assert.ErrorContains(t, err, "create migration ledger")
	})
}
