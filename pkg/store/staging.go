package store

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"seqstore/pkg/codec"
	"seqstore/pkg/seq"
	"seqstore/pkg/session"
)

// sqlite bind variables are capped per statement, so staged inserts go in
// chunks well under the limit.
const stagingInsertChunk = 500

// stagingName generates a staging table identifier. The ULID suffix is
// monotonic within the process and high-entropy across processes, so two
// concurrent large lookups cannot collide.
func stagingName() string {
	return "seqstore_stage_" + strings.ToLower(ulid.Make().String())
}

// lookupStaged runs the large-set path: stage the deduplicated accessions
// into an ephemeral table and join against it, all inside one transaction.
// Create/populate failures roll the transaction back as StagingError; the
// staging table never survives the call either way.
func (s *Store) lookupStaged(ctx context.Context, c codec.Codec, table string, accessions []string, opts Options) ([]seq.Record, error) {
	staging := stagingName()
	deduped := dedupe(accessions)

	var out []seq.Record
	err := s.conn.WithTx(ctx, func(tx session.Executor) error {
		if err := createStaging(ctx, tx, staging); err != nil {
			return &StagingError{Table: table, Staging: staging, Err: err}
		}
		start := time.Now()
		if err := populateStaging(ctx, tx, staging, deduped); err != nil {
			return &StagingError{Table: table, Staging: staging, Err: err}
		}
		stagingSeconds.Observe(time.Since(start).Seconds())

		stmt, params := buildStagedLookup(tx.Backend(), table, staging, opts)
		var err error
		out, err = collect(ctx, tx, c, stmt, params, opts)
		if err != nil {
			return err
		}
		if tx.Backend() == session.BackendSQLite {
			// no ON COMMIT DROP on sqlite; drop before the commit
			return tx.ExecDDL(ctx, "DROP TABLE "+staging)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func createStaging(ctx context.Context, tx session.Executor, staging string) error {
	ddl := "CREATE TEMP TABLE " + staging + " (accession TEXT PRIMARY KEY)"
	if tx.Backend() == session.BackendPostgres {
		ddl += " ON COMMIT DROP"
	}
	return tx.ExecDDL(ctx, ddl)
}

// populateStaging loads the deduplicated accession set using the fastest
// path the backend offers: a server-side bulk file copy on postgres, chunked
// multi-row inserts elsewhere.
func populateStaging(ctx context.Context, tx session.Executor, staging string, accessions []string) error {
	if tx.Backend() == session.BackendPostgres {
		return copyFromFile(ctx, tx, staging, accessions)
	}
	for start := 0; start < len(accessions); start += stagingInsertChunk {
		end := start + stagingInsertChunk
		if end > len(accessions) {
			end = len(accessions)
		}
		rows := make([]session.Row, 0, end-start)
		for _, a := range accessions[start:end] {
			rows = append(rows, session.Row{seq.FieldAccession: a})
		}
		if _, err := tx.InsertMulti(ctx, staging, []string{seq.FieldAccession}, rows); err != nil {
			return err
		}
	}
	return nil
}

// copyFromFile writes the accessions to a temp file, one per line, and
// issues a native COPY FROM against it.
func copyFromFile(ctx context.Context, tx session.Executor, staging string, accessions []string) error {
	f, err := os.CreateTemp("", "seqstore-stage-*.txt")
	if err != nil {
		return fmt.Errorf("create staging file: %w", err)
	}
	path := f.Name()
	defer func() { _ = os.Remove(path) }()

	for _, a := range accessions {
		if _, err := f.WriteString(a + "\n"); err != nil {
			_ = f.Close()
			return fmt.Errorf("write staging file: %w", err)
		}
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close staging file: %w", err)
	}
	stmt := fmt.Sprintf("COPY %s (accession) FROM '%s' (FORMAT text)", staging, path)
	return tx.ExecDDL(ctx, stmt)
}

// dedupe collapses duplicate accessions, keeping first-seen order so staging
// files are deterministic for a given input.
func dedupe(accessions []string) []string {
	seen := make(map[string]struct{}, len(accessions))
	out := make([]string, 0, len(accessions))
	for _, a := range accessions {
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
