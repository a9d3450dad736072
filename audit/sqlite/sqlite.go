/*
Package sqlite provides a SQLite-backed audit journal.

PURPOSE:
  Durable implementation of audit.Log. Entries survive restarts even
  though ledger balances do not; the journal is the only part of the
  system with history worth keeping.

APPEND-ONLY ENFORCEMENT:
  No UPDATE or DELETE statements exist against audit_entries. The table
  only ever grows.

WAL MODE:
  The database is opened with WAL so journal reads (the admin audit view)
  never block the background writer.

USAGE:
  journal, err := sqlite.New("./data/audit.db")
  if err != nil {
      log.Fatal(err)
  }
  defer journal.Close()
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/leave-ledger/audit"
)

// Log implements audit.Log on SQLite.
type Log struct {
	db *sql.DB
}

// New opens (or creates) the journal database at path. Use ":memory:"
// for an in-memory database.
func New(path string) (*Log, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	l := &Log{db: db}
	if err := l.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return l, nil
}

// Close closes the database connection.
func (l *Log) Close() error {
	return l.db.Close()
}

// migrate creates the journal schema.
func (l *Log) migrate() error {
	schema := `
	-- Operation journal (append-only)
	CREATE TABLE IF NOT EXISTS audit_entries (
		id TEXT PRIMARY KEY,
		at TEXT NOT NULL,
		actor TEXT NOT NULL DEFAULT '',
		operation TEXT NOT NULL,
		employee_id TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		detail TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_audit_employee
		ON audit_entries(employee_id);
	CREATE INDEX IF NOT EXISTS idx_audit_operation
		ON audit_entries(operation);
	`

	_, err := l.db.Exec(schema)
	return err
}

// Append journals one entry.
func (l *Log) Append(ctx context.Context, e audit.Entry) error {
	query := `
		INSERT INTO audit_entries
		(id, at, actor, operation, employee_id, status, detail, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := l.db.ExecContext(ctx, query,
		e.ID,
		e.At.UTC().Format(time.RFC3339Nano),
		e.Actor,
		e.Operation,
		e.EmployeeID,
		e.Status,
		e.Detail,
		e.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// Query returns matching entries, newest first. Insertion order decides
// recency; the journal is written by a single background goroutine.
func (l *Log) Query(ctx context.Context, f audit.Filter) ([]audit.Entry, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = audit.DefaultQueryLimit
	}

	query := `
		SELECT id, at, actor, operation, employee_id, status, detail, error
		FROM audit_entries
	`
	var (
		conds []string
		args  []any
	)
	if f.EmployeeID != "" {
		conds = append(conds, "employee_id = ?")
		args = append(args, f.EmployeeID)
	}
	if f.Operation != "" {
		conds = append(conds, "operation = ?")
		args = append(args, f.Operation)
	}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, f.Status)
	}
	for i, c := range conds {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY rowid DESC LIMIT ?"
	args = append(args, limit)

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanEntry(rows *sql.Rows) (audit.Entry, error) {
	var (
		e  audit.Entry
		at string
	)
	if err := rows.Scan(&e.ID, &at, &e.Actor, &e.Operation, &e.EmployeeID,
		&e.Status, &e.Detail, &e.Error); err != nil {
		return e, fmt.Errorf("failed to scan audit entry: %w", err)
	}
	e.At, _ = time.Parse(time.RFC3339Nano, at)
	return e, nil
}
