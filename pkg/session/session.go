// Package session provides the connection facade consumed by the store layer:
// DDL/DML execution, parameterized queries with per-row callbacks, multi-row
// inserts, and transaction scoping over a database/sql pool.
package session

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver
)

// Row is the wire shape of a single result or insert row: column name to
// scalar or binary value.
type Row map[string]any

// String reads a column as text, tolerating drivers that surface TEXT
// columns as []byte.
func (r Row) String(col string) (string, bool) {
	switch v := r[col].(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	default:
		return "", false
	}
}

// Bytes reads a column as raw bytes.
func (r Row) Bytes(col string) ([]byte, bool) {
	switch v := r[col].(type) {
	case []byte:
		return v, true
	case string:
		return []byte(v), true
	default:
		return nil, false
	}
}

// QueryError wraps a failure reported by the backend for a specific
// statement. It is propagated as-is; the facade never retries.
type QueryError struct {
	Stmt string
	Err  error
}

func (e *QueryError) Error() string { return fmt.Sprintf("query %q: %v", e.Stmt, e.Err) }
func (e *QueryError) Unwrap() error { return e.Err }

// Executor is the statement-level contract shared by a session and by a
// transaction scope within it.
type Executor interface {
	Backend() Backend
	ExecDDL(ctx context.Context, stmt string) error
	ExecDML(ctx context.Context, stmt string, params ...any) (int64, error)
	// Query runs stmt and hands each scanned row to fn in order. The
	// underlying cursor is released on every return path, including when fn
	// fails; fn's error aborts iteration and is returned unchanged.
	Query(ctx context.Context, stmt string, params []any, fn func(Row) error) error
	InsertMulti(ctx context.Context, table string, columns []string, rows []Row) (int64, error)
}

// Session owns a database/sql pool against one backend.
type Session struct {
	db        *sql.DB
	backend   Backend
	collector prometheus.Collector
}

var _ Executor = (*Session)(nil)

// Open validates cfg, opens the pool, and pings postgres-like backends.
func Open(ctx context.Context, cfg Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	backend, err := cfg.Backend()
	if err != nil {
		return nil, err
	}
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}
	driver := "sqlite"
	if backend == BackendPostgres {
		driver = "pgx"
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", backend, err)
	}
	if backend == BackendPostgres {
		if err := db.PingContext(ctx); err != nil {
			return nil, fmt.Errorf("ping %s: %w", backend, err)
		}
	}
	s := &Session{db: db, backend: backend}
	if cfg.Metrics {
		s.collector = collectors.NewDBStatsCollector(db, cfg.DBName)
		if err := prometheus.Register(s.collector); err != nil {
			return nil, fmt.Errorf("register db metrics: %w", err)
		}
	}
	return s, nil
}

// OpenFromEnv opens a session configured from SEQSTORE_DB_* environment
// variables (documented on Config).
func OpenFromEnv(ctx context.Context) (*Session, error) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return Open(ctx, cfg)
}

// Wrap builds a session over an already-open pool. Intended for tests and
// for callers that manage the pool themselves.
func Wrap(db *sql.DB, backend Backend) *Session {
	return &Session{db: db, backend: backend}
}

// Backend reports which backend the session talks to.
func (s *Session) Backend() Backend { return s.backend }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Session) DB() *sql.DB { return s.db }

// Close releases the pool and unregisters the stats collector if one was
// registered.
func (s *Session) Close() error {
	if s.collector != nil {
		prometheus.Unregister(s.collector)
	}
	return s.db.Close()
}

// ExecDDL runs a schema statement.
func (s *Session) ExecDDL(ctx context.Context, stmt string) error {
	return execDDL(ctx, s.db, stmt)
}

// ExecDML runs a mutation statement and reports the affected row count.
func (s *Session) ExecDML(ctx context.Context, stmt string, params ...any) (int64, error) {
	return execDML(ctx, s.db, stmt, params...)
}

// Query implements Executor over the pool.
func (s *Session) Query(ctx context.Context, stmt string, params []any, fn func(Row) error) error {
	return query(ctx, s.db, stmt, params, fn)
}

// InsertMulti inserts rows into table with one multi-row statement.
func (s *Session) InsertMulti(ctx context.Context, table string, columns []string, rows []Row) (int64, error) {
	return insertMulti(ctx, s.db, s.backend, table, columns, rows)
}

// WithTx runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back otherwise; fn's error is returned unchanged.
func (s *Session) WithTx(ctx context.Context, fn func(Executor) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&Tx{tx: tx, backend: s.backend}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// Tx is the executor bound to one open transaction.
type Tx struct {
	tx      *sql.Tx
	backend Backend
}

var _ Executor = (*Tx)(nil)

// Backend reports the backend of the session that opened the transaction.
func (t *Tx) Backend() Backend { return t.backend }

// ExecDDL runs a schema statement inside the transaction.
func (t *Tx) ExecDDL(ctx context.Context, stmt string) error {
	return execDDL(ctx, t.tx, stmt)
}

// ExecDML runs a mutation inside the transaction.
func (t *Tx) ExecDML(ctx context.Context, stmt string, params ...any) (int64, error) {
	return execDML(ctx, t.tx, stmt, params...)
}

// Query implements Executor within the transaction scope.
func (t *Tx) Query(ctx context.Context, stmt string, params []any, fn func(Row) error) error {
	return query(ctx, t.tx, stmt, params, fn)
}

// InsertMulti inserts rows inside the transaction.
func (t *Tx) InsertMulti(ctx context.Context, table string, columns []string, rows []Row) (int64, error) {
	return insertMulti(ctx, t.tx, t.backend, table, columns, rows)
}

// runner is the subset of sql.DB/sql.Tx the facade needs.
type runner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func execDDL(ctx context.Context, r runner, stmt string) error {
	if _, err := r.ExecContext(ctx, stmt); err != nil {
		return &QueryError{Stmt: stmt, Err: err}
	}
	return nil
}

func execDML(ctx context.Context, r runner, stmt string, params ...any) (int64, error) {
	res, err := r.ExecContext(ctx, stmt, params...)
	if err != nil {
		return 0, &QueryError{Stmt: stmt, Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, &QueryError{Stmt: stmt, Err: err}
	}
	return affected, nil
}

func query(ctx context.Context, r runner, stmt string, params []any, fn func(Row) error) error {
	rows, err := r.QueryContext(ctx, stmt, params...)
	if err != nil {
		return &QueryError{Stmt: stmt, Err: err}
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return &QueryError{Stmt: stmt, Err: err}
	}
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return &QueryError{Stmt: stmt, Err: err}
		}
		row := make(Row, len(cols))
		for i, col := range cols {
			row[col] = values[i]
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return &QueryError{Stmt: stmt, Err: err}
	}
	return nil
}

func insertMulti(ctx context.Context, r runner, backend Backend, table string, columns []string, rows []Row) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	stmt, params := buildInsertMulti(backend, table, columns, rows)
	return execDML(ctx, r, stmt, params...)
}

func buildInsertMulti(backend Backend, table string, columns []string, rows []Row) (string, []any) {
	var (
		sb     []byte
		params = make([]any, 0, len(rows)*len(columns))
	)
	sb = append(sb, "INSERT INTO "...)
	sb = append(sb, table...)
	sb = append(sb, " ("...)
	for i, col := range columns {
		if i > 0 {
			sb = append(sb, ',')
		}
		sb = append(sb, col...)
	}
	sb = append(sb, ") VALUES "...)
	pos := 1
	for i, row := range rows {
		if i > 0 {
			sb = append(sb, ',')
		}
		sb = append(sb, '(')
		sb = append(sb, backend.Placeholders(pos, len(columns))...)
		sb = append(sb, ')')
		pos += len(columns)
		for _, col := range columns {
			params = append(params, row[col])
		}
	}
	return string(sb), params
}
