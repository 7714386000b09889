package store

import (
	"context"
	"strconv"
	"strings"

	"seqstore/pkg/codec"
	"seqstore/pkg/seq"
	"seqstore/pkg/session"
)

// directLookupMax is the planner threshold: accession sets up to this size
// run as a direct parameterized IN query, larger sets go through a staged
// temp-table join.
const directLookupMax = 100

// LookupByAccession retrieves the records of table matching the given
// accessions, decoded through the tag's codec.
//
// Up to directLookupMax accessions the lookup runs directly against the
// table, binding every input accession in order (duplicates included).
// Beyond the threshold the accessions are deduplicated, staged into an
// ephemeral temp table inside one transaction, and joined against the
// collection; the staging table never outlives the transaction.
//
// Parameters always bind in the fixed order: accession list (direct path
// only), then Where parameters, then offset, then limit.
//
// Without Options.Apply the matching records are materialized and returned;
// with it they stream through the callback and the returned slice is nil.
func (s *Store) LookupByAccession(ctx context.Context, table, tag string, accessions []string, opts Options) ([]seq.Record, error) {
	c, err := codec.Lookup(tag)
	if err != nil {
		return nil, err
	}
	if len(accessions) == 0 {
		return nil, nil
	}
	if len(accessions) <= directLookupMax {
		lookupsTotal.WithLabelValues("direct").Inc()
		stmt, params := buildDirectLookup(s.conn.Backend(), table, accessions, opts)
		return collect(ctx, s.conn, c, stmt, params, opts)
	}
	lookupsTotal.WithLabelValues("staged").Inc()
	return s.lookupStaged(ctx, c, table, accessions, opts)
}

// RunQuery executes a caller-supplied parameterized statement verbatim and
// decodes the result rows through the tag's codec. Consumption modes match
// LookupByAccession: materialize without Options.Apply, stream with it. No
// SQL is synthesized around stmt; the structural modifiers are ignored here.
func (s *Store) RunQuery(ctx context.Context, stmt string, params []any, tag string, opts Options) ([]seq.Record, error) {
	c, err := codec.Lookup(tag)
	if err != nil {
		return nil, err
	}
	return collect(ctx, s.conn, c, stmt, params, opts)
}

// collect runs stmt and shapes every row through the codec, either folding
// via opts.Apply or materializing in cursor order. The cursor is released on
// every path by the session facade.
func collect(ctx context.Context, ex session.Executor, c codec.Codec, stmt string, params []any, opts Options) ([]seq.Record, error) {
	var out []seq.Record
	err := ex.Query(ctx, stmt, params, func(row session.Row) error {
		rec, err := c.Decode(row)
		if err != nil {
			return err
		}
		rowsDecoded.Inc()
		if opts.Apply != nil {
			return opts.Apply(rec)
		}
		out = append(out, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if opts.Apply != nil {
		return nil, nil
	}
	return out, nil
}

// buildDirectLookup assembles the small-set query:
//
//	SELECT <proj> FROM <table> [join]
//	WHERE <table>.accession IN (?,...) [AND (where)]
//	[ORDER BY ...] [OFFSET ?] [LIMIT ?]
//
// The input accessions are not deduplicated; each occupies its own
// placeholder. The unique key on accession keeps result rows unique anyway.
func buildDirectLookup(b session.Backend, table string, accessions []string, opts Options) (string, []any) {
	var sb strings.Builder
	pos := 1
	sb.WriteString("SELECT ")
	sb.WriteString(projection(opts.Select, ""))
	sb.WriteString(" FROM ")
	sb.WriteString(table)
	if opts.Join != "" {
		sb.WriteByte(' ')
		sb.WriteString(opts.Join)
	}
	sb.WriteString(" WHERE ")
	sb.WriteString(table)
	sb.WriteString(".accession IN (")
	sb.WriteString(b.Placeholders(pos, len(accessions)))
	pos += len(accessions)
	sb.WriteByte(')')
	if opts.Where != "" {
		sb.WriteString(" AND (")
		sb.WriteString(rebind(b, opts.Where, &pos))
		sb.WriteByte(')')
	}
	writeOrderAndRange(&sb, b, &pos, opts)

	params := make([]any, 0, len(accessions)+len(opts.WhereParams)+2)
	for _, a := range accessions {
		params = append(params, a)
	}
	params = appendRangeParams(append(params, opts.WhereParams...), opts)
	return sb.String(), params
}

// buildStagedLookup assembles the join against a populated staging table.
// The projection defaults to <table>.* so the staged accession column does
// not leak into the result rows.
func buildStagedLookup(b session.Backend, table, staging string, opts Options) (string, []any) {
	var sb strings.Builder
	pos := 1
	sb.WriteString("SELECT ")
	sb.WriteString(projection(opts.Select, table))
	sb.WriteString(" FROM ")
	sb.WriteString(table)
	if opts.Join != "" {
		sb.WriteByte(' ')
		sb.WriteString(opts.Join)
	}
	sb.WriteString(" INNER JOIN ")
	sb.WriteString(staging)
	sb.WriteString(" ON ")
	sb.WriteString(table)
	sb.WriteString(".accession = ")
	sb.WriteString(staging)
	sb.WriteString(".accession")
	if opts.Where != "" {
		sb.WriteString(" WHERE (")
		sb.WriteString(rebind(b, opts.Where, &pos))
		sb.WriteByte(')')
	}
	writeOrderAndRange(&sb, b, &pos, opts)

	params := appendRangeParams(append([]any(nil), opts.WhereParams...), opts)
	return sb.String(), params
}

func projection(selected []string, table string) string {
	if len(selected) > 0 {
		return strings.Join(selected, ", ")
	}
	if table != "" {
		return table + ".*"
	}
	return "*"
}

// writeOrderAndRange appends ORDER BY plus the offset/limit clauses. The
// bound parameter order is offset before limit on both backends; sqlite
// needs explicit ?N markers because its grammar puts LIMIT before OFFSET.
func writeOrderAndRange(sb *strings.Builder, b session.Backend, pos *int, opts Options) {
	if opts.Order != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(opts.Order)
	}
	hasOffset, hasLimit := opts.Offset > 0, opts.Limit > 0
	switch {
	case hasOffset && hasLimit:
		if b == session.BackendPostgres {
			sb.WriteString(" OFFSET ")
			sb.WriteString(b.Placeholder(*pos))
			sb.WriteString(" LIMIT ")
			sb.WriteString(b.Placeholder(*pos + 1))
		} else {
			sb.WriteString(" LIMIT ?")
			sb.WriteString(strconv.Itoa(*pos + 1))
			sb.WriteString(" OFFSET ?")
			sb.WriteString(strconv.Itoa(*pos))
		}
		*pos += 2
	case hasOffset:
		if b == session.BackendPostgres {
			sb.WriteString(" OFFSET ")
			sb.WriteString(b.Placeholder(*pos))
		} else {
			// sqlite cannot express OFFSET without LIMIT
			sb.WriteString(" LIMIT -1 OFFSET ?")
		}
		*pos++
	case hasLimit:
		sb.WriteString(" LIMIT ")
		sb.WriteString(b.Placeholder(*pos))
		*pos++
	}
}

func appendRangeParams(params []any, opts Options) []any {
	if opts.Offset > 0 {
		params = append(params, opts.Offset)
	}
	if opts.Limit > 0 {
		params = append(params, opts.Limit)
	}
	return params
}

// rebind renumbers the ? markers of a raw predicate fragment for backends
// with positional placeholders, skipping single-quoted literals. pos tracks
// the next parameter position across the whole statement.
func rebind(b session.Backend, fragment string, pos *int) string {
	if !strings.Contains(fragment, "?") {
		return fragment
	}
	var sb strings.Builder
	sb.Grow(len(fragment) + 8)
	inLiteral := false
	for i := 0; i < len(fragment); i++ {
		ch := fragment[i]
		switch {
		case ch == '\'':
			inLiteral = !inLiteral
			sb.WriteByte(ch)
		case ch == '?' && !inLiteral:
			if b == session.BackendPostgres {
				sb.WriteString(b.Placeholder(*pos))
			} else {
				sb.WriteByte('?')
			}
			*pos++
		default:
			sb.WriteByte(ch)
		}
	}
	return sb.String()
}
