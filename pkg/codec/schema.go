package codec

import (
	"fmt"
	"strings"

	"seqstore/pkg/seq"
	"seqstore/pkg/session"
)

// TypeBinary is the abstract binary column type. The materializer substitutes
// the backend's native type for it; every other type string passes through
// unchanged.
const TypeBinary = "binary"

// Column is one column spec of a schema descriptor.
type Column struct {
	Name        string
	Type        string
	Constraints string
}

// Schema is the ordered column list describing a collection table.
type Schema []Column

// Validate checks the structural invariant: exactly one accession column,
// and it must be the primary key.
func (s Schema) Validate() error {
	found := 0
	for _, col := range s {
		if col.Name != seq.FieldAccession {
			continue
		}
		found++
		if !strings.Contains(strings.ToUpper(col.Constraints), "PRIMARY KEY") {
			return fmt.Errorf("accession column must be the primary key")
		}
	}
	if found != 1 {
		return fmt.Errorf("schema needs exactly one accession column, has %d", found)
	}
	return nil
}

// Columns returns the column names in schema order.
func (s Schema) Columns() []string {
	out := make([]string, len(s))
	for i, col := range s {
		out[i] = col.Name
	}
	return out
}

// Materialize renders the schema into backend-specific column DDL fragments.
// Pure and deterministic: identical inputs yield identical output.
func Materialize(s Schema, backend session.Backend) []string {
	out := make([]string, len(s))
	for i, col := range s {
		typ := col.Type
		if typ == TypeBinary {
			typ = backend.BinaryType()
		}
		frag := col.Name + " " + typ
		if col.Constraints != "" {
			frag += " " + col.Constraints
		}
		out[i] = frag
	}
	return out
}
