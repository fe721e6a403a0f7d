package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a DB and ensures schema exists. The sqlite default is the
// local per-device vault file; postgres is available for anyone pointing
// the tool at a shared database.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:quizvault.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/quizvault?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := ensureSchema(ctx, db, driver); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Secondary indexes mirror the lookup paths the browse UI needs: grouping
// by notebook, title lookup and sourceHash dedup hinting.
const schemaSQLite = `
CREATE TABLE IF NOT EXISTS quizzes (
  id TEXT PRIMARY KEY,
  notebook TEXT NOT NULL DEFAULT '',
  section TEXT NOT NULL DEFAULT '',
  part TEXT NOT NULL DEFAULT '',
  title TEXT NOT NULL DEFAULT '',
  is_code_quiz INTEGER NOT NULL DEFAULT 0,
  source_hash TEXT NOT NULL DEFAULT '',
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL,
  questions_json TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_quizzes_notebook ON quizzes(notebook);
CREATE INDEX IF NOT EXISTS idx_quizzes_title ON quizzes(title);
CREATE INDEX IF NOT EXISTS idx_quizzes_source_hash ON quizzes(source_hash);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS quizzes (
  id TEXT PRIMARY KEY,
  notebook TEXT NOT NULL DEFAULT '',
  section TEXT NOT NULL DEFAULT '',
  part TEXT NOT NULL DEFAULT '',
  title TEXT NOT NULL DEFAULT '',
  is_code_quiz BOOLEAN NOT NULL DEFAULT FALSE,
  source_hash TEXT NOT NULL DEFAULT '',
  created_at BIGINT NOT NULL,
  updated_at BIGINT NOT NULL,
  questions_json TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_quizzes_notebook ON quizzes(notebook);
CREATE INDEX IF NOT EXISTS idx_quizzes_title ON quizzes(title);
CREATE INDEX IF NOT EXISTS idx_quizzes_source_hash ON quizzes(source_hash);
`
