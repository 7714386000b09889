// Package store persists collections of biological sequence records in a
// relational backend: one table per collection, shaped by the codec
// registered for the collection's record-type tag. Retrieval plans
// accession lookups as either a direct IN query or a staged temp-table join
// depending on input size.
package store

import (
	"context"
	"strings"

	"seqstore/pkg/codec"
	"seqstore/pkg/seq"
	"seqstore/pkg/session"
)

// Conn is the session surface the store consumes: statement execution plus
// transaction scoping. *session.Session satisfies it.
type Conn interface {
	session.Executor
	WithTx(ctx context.Context, fn func(session.Executor) error) error
}

var _ Conn = (*session.Session)(nil)

// Store is the persistence entry point for sequence collections over one
// session.
type Store struct {
	conn Conn
}

// New builds a store over an open session.
func New(conn Conn) *Store {
	return &Store{conn: conn}
}

// CreateCollection materializes the tag's schema into the backend and
// creates the collection table if it does not exist.
func (s *Store) CreateCollection(ctx context.Context, table, tag string) error {
	c, err := codec.Lookup(tag)
	if err != nil {
		return err
	}
	frags := codec.Materialize(c.Schema(), s.conn.Backend())
	ddl := "CREATE TABLE IF NOT EXISTS " + table + " (" + strings.Join(frags, ", ") + ")"
	return s.conn.ExecDDL(ctx, ddl)
}

// InsertAll encodes records through the tag's codec and inserts them with a
// single multi-row statement inside one transaction. The batch commits or
// rolls back as a whole; partial inserts are never observable.
func (s *Store) InsertAll(ctx context.Context, table, tag string, records []seq.Record) (int64, error) {
	_, count, err := s.insertAll(ctx, table, tag, records)
	return count, err
}

// InsertAllReturning is InsertAll for callers that want the inserted rows
// back in decoded form rather than a plain count.
func (s *Store) InsertAllReturning(ctx context.Context, table, tag string, records []seq.Record) ([]seq.Record, error) {
	rows, _, err := s.insertAll(ctx, table, tag, records)
	if err != nil {
		return nil, err
	}
	c, err := codec.Lookup(tag)
	if err != nil {
		return nil, err
	}
	out := make([]seq.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := c.Decode(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *Store) insertAll(ctx context.Context, table, tag string, records []seq.Record) ([]session.Row, int64, error) {
	c, err := codec.Lookup(tag)
	if err != nil {
		return nil, 0, err
	}
	rows, err := c.Encode(records)
	if err != nil {
		return nil, 0, err
	}
	columns := c.Schema().Columns()
	var count int64
	err = s.conn.WithTx(ctx, func(tx session.Executor) error {
		var err error
		count, err = tx.InsertMulti(ctx, table, columns, rows)
		return err
	})
	if err != nil {
		return nil, 0, &WriteError{Table: table, Tag: tag, Err: err}
	}
	return rows, count, nil
}
