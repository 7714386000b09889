package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"testing"
)

func openTestSession(t *testing.T) *Session {
	t.Helper()
	cfg := Config{DBType: "sqlite", DBName: filepath.Join(t.TempDir(), "session.db")}
	s, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSessionExecAndQuery(t *testing.T) {
	ctx := context.Background()
	s := openTestSession(t)
	if s.Backend() != BackendSQLite {
		t.Fatalf("backend: %s", s.Backend())
	}

	if err := s.ExecDDL(ctx, "CREATE TABLE items (accession TEXT PRIMARY KEY, src TEXT NOT NULL)"); err != nil {
		t.Fatalf("ddl: %v", err)
	}
	affected, err := s.InsertMulti(ctx, "items", []string{"accession", "src"}, []Row{
		{"accession": "A1", "src": "one"},
		{"accession": "A2", "src": "two"},
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if affected != 2 {
		t.Fatalf("affected: %d", affected)
	}

	var got []string
	err = s.Query(ctx, "SELECT accession, src FROM items WHERE src = ? ORDER BY accession", []any{"two"}, func(row Row) error {
		accession, ok := row.String("accession")
		if !ok {
			return fmt.Errorf("accession column missing")
		}
		got = append(got, accession)
		return nil
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"A2"}) {
		t.Fatalf("rows: %v", got)
	}

	affected, err = s.ExecDML(ctx, "DELETE FROM items WHERE accession = ?", "A1")
	if err != nil {
		t.Fatalf("dml: %v", err)
	}
	if affected != 1 {
		t.Fatalf("delete affected: %d", affected)
	}
}

func TestSessionQueryCallbackErrorAborts(t *testing.T) {
	ctx := context.Background()
	s := openTestSession(t)
	if err := s.ExecDDL(ctx, "CREATE TABLE items (n INTEGER)"); err != nil {
		t.Fatalf("ddl: %v", err)
	}
	if _, err := s.InsertMulti(ctx, "items", []string{"n"}, []Row{{"n": 1}, {"n": 2}, {"n": 3}}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	sentinel := errors.New("stop")
	seen := 0
	err := s.Query(ctx, "SELECT n FROM items ORDER BY n", nil, func(Row) error {
		seen++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected callback error unchanged, got %v", err)
	}
	if seen != 1 {
		t.Fatalf("iteration did not abort, saw %d rows", seen)
	}
}

func TestSessionQueryErrorWrapsStatement(t *testing.T) {
	s := openTestSession(t)
	err := s.Query(context.Background(), "SELECT * FROM no_such_table", nil, func(Row) error { return nil })
	var qerr *QueryError
	if !errors.As(err, &qerr) {
		t.Fatalf("expected QueryError, got %v", err)
	}
	if qerr.Stmt != "SELECT * FROM no_such_table" {
		t.Fatalf("stmt: %s", qerr.Stmt)
	}
}

func TestSessionWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := openTestSession(t)
	if err := s.ExecDDL(ctx, "CREATE TABLE items (accession TEXT PRIMARY KEY)"); err != nil {
		t.Fatalf("ddl: %v", err)
	}
	sentinel := errors.New("abort")
	err := s.WithTx(ctx, func(ex Executor) error {
		if _, err := ex.InsertMulti(ctx, "items", []string{"accession"}, []Row{{"accession": "A1"}}); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel, got %v", err)
	}
	count := -1
	err = s.Query(ctx, "SELECT COUNT(*) AS n FROM items", nil, func(row Row) error {
		n, _ := row["n"].(int64)
		count = int(n)
		return nil
	})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("rollback left %d rows", count)
	}
}

func TestSessionWithTxCommits(t *testing.T) {
	ctx := context.Background()
	s := openTestSession(t)
	if err := s.ExecDDL(ctx, "CREATE TABLE items (accession TEXT PRIMARY KEY)"); err != nil {
		t.Fatalf("ddl: %v", err)
	}
	err := s.WithTx(ctx, func(ex Executor) error {
		_, err := ex.InsertMulti(ctx, "items", []string{"accession"}, []Row{{"accession": "A1"}, {"accession": "A2"}})
		return err
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}
	count := 0
	_ = s.Query(ctx, "SELECT COUNT(*) AS n FROM items", nil, func(row Row) error {
		n, _ := row["n"].(int64)
		count = int(n)
		return nil
	})
	if count != 2 {
		t.Fatalf("committed %d rows", count)
	}
}

func TestBuildInsertMulti(t *testing.T) {
	rows := []Row{
		{"accession": "A1", "src": "one"},
		{"accession": "A2", "src": "two"},
	}
	stmt, params := buildInsertMulti(BackendPostgres, "items", []string{"accession", "src"}, rows)
	wantStmt := "INSERT INTO items (accession,src) VALUES ($1,$2),($3,$4)"
	if stmt != wantStmt {
		t.Fatalf("postgres stmt: got %q want %q", stmt, wantStmt)
	}
	if !reflect.DeepEqual(params, []any{"A1", "one", "A2", "two"}) {
		t.Fatalf("params: %v", params)
	}

	stmt, _ = buildInsertMulti(BackendSQLite, "items", []string{"accession", "src"}, rows)
	wantStmt = "INSERT INTO items (accession,src) VALUES (?,?),(?,?)"
	if stmt != wantStmt {
		t.Fatalf("sqlite stmt: got %q want %q", stmt, wantStmt)
	}
}

func TestRowHelpers(t *testing.T) {
	row := Row{"text": "abc", "raw": []byte("xyz"), "num": int64(7)}
	if v, ok := row.String("raw"); !ok || v != "xyz" {
		t.Fatalf("String over bytes: %q %v", v, ok)
	}
	if _, ok := row.String("num"); ok {
		t.Fatalf("String over int must fail")
	}
	if v, ok := row.Bytes("text"); !ok || string(v) != "abc" {
		t.Fatalf("Bytes over string: %q %v", v, ok)
	}
}
