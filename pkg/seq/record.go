// Package seq defines the domain shape shared by every sequence collection:
// an open field map keyed by column-like names, of which only "accession" is
// required by the persistence layer.
package seq

import (
	"errors"
	"fmt"
)

// FieldAccession is the single field every record must carry. It doubles as
// the primary-key column name in every collection schema.
const FieldAccession = "accession"

// ErrNoAccession reports a record that cannot be persisted or staged because
// it has no usable accession value.
var ErrNoAccession = errors.New("record has no accession field")

// Record is an opaque mapping of field name to value. The persistence layer
// never inspects it beyond the accession field; codecs own the rest.
type Record map[string]any

// Accession returns the record's accession as a string, or ErrNoAccession
// when the field is absent, empty, or not a string.
func (r Record) Accession() (string, error) {
	v, ok := r[FieldAccession]
	if !ok {
		return "", ErrNoAccession
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("accession has type %T: %w", v, ErrNoAccession)
	}
	if s == "" {
		return "", ErrNoAccession
	}
	return s, nil
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	cp := make(Record, len(r))
	for k, v := range r {
		cp[k] = v
	}
	return cp
}
