package store

import "seqstore/pkg/seq"

// Options is the optional query-modifier bundle. Every field defaults to "no
// effect". Join and Where are raw SQL fragments spliced into the generated
// statement; they are an explicit escape hatch and are not sanitized against
// injection — callers own their correctness.
type Options struct {
	// Select restricts the projected columns. Empty means all columns.
	Select []string
	// Where is an extra predicate ANDed after the built-in accession
	// condition. WhereParams are its positional parameters.
	Where       string
	WhereParams []any
	// Join is raw join clause text spliced in before the generated
	// conditions, e.g. "INNER JOIN taxa ON taxa.id = proteins.taxon".
	Join string
	// Order is the ORDER BY expression, without the keyword.
	Order string
	// Offset and Limit append their clauses when positive, bound as
	// parameters after the Where parameters, offset first.
	Offset int
	Limit  int
	// Apply switches the call into streaming mode: every decoded record is
	// handed to Apply in cursor order and the result set is never
	// materialized. Returning an error from Apply stops the scan and
	// releases the cursor.
	Apply func(seq.Record) error
}
