// Package codec maps domain records to table rows and back, one codec per
// record-type tag. The registry is populated during application
// initialization and treated as immutable afterwards; registering codecs
// while queries are running is unsupported.
package codec

import (
	"fmt"
	"sync"

	"seqstore/pkg/seq"
	"seqstore/pkg/session"
)

// Codec bundles the per-tag behavior: the table schema, the record-to-row
// encoder, and the row-to-record decoder. Encode need not preserve input
// order; batch insert order is irrelevant.
type Codec struct {
	Schema func() Schema
	Encode func(records []seq.Record) ([]session.Row, error)
	Decode func(row session.Row) (seq.Record, error)
}

// UnknownTypeError reports a lookup for a tag with no registered codec. This
// is a caller bug; lookups never fall back to the default codec silently.
type UnknownTypeError struct {
	Tag string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("no codec registered for tag %q", e.Tag)
}

// EncodeError reports a record the tag's encoder could not shape into a row.
type EncodeError struct {
	Tag string
	Err error
}

func (e *EncodeError) Error() string { return fmt.Sprintf("encode %s record: %v", e.Tag, e.Err) }
func (e *EncodeError) Unwrap() error { return e.Err }

// DecodeError reports a row the tag's decoder could not shape into a record:
// required fields absent or malformed.
type DecodeError struct {
	Tag string
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("decode %s row: %v", e.Tag, e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }

var (
	mu       sync.Mutex
	registry = map[string]Codec{}
)

// Register adds a codec under tag. Registering the same tag twice is an
// error; built-in tags (default, fasta, uniprot) are claimed at init time.
func Register(tag string, c Codec) error {
	if tag == "" {
		return fmt.Errorf("codec tag must not be empty")
	}
	if c.Schema == nil || c.Encode == nil || c.Decode == nil {
		return fmt.Errorf("codec for %q is missing a schema, encoder, or decoder", tag)
	}
	if err := c.Schema().Validate(); err != nil {
		return fmt.Errorf("codec for %q: %w", tag, err)
	}
	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[tag]; exists {
		return fmt.Errorf("codec tag %q already registered", tag)
	}
	registry[tag] = c
	return nil
}

// MustRegister is Register for init-time wiring; it panics on error.
func MustRegister(tag string, c Codec) {
	if err := Register(tag, c); err != nil {
		panic(err)
	}
}

// Lookup resolves the codec for tag, failing with UnknownTypeError when none
// is registered.
func Lookup(tag string) (Codec, error) {
	mu.Lock()
	c, ok := registry[tag]
	mu.Unlock()
	if !ok {
		return Codec{}, &UnknownTypeError{Tag: tag}
	}
	return c, nil
}

// Tags returns the registered tags, for diagnostics.
func Tags() []string {
	mu.Lock()
	defer mu.Unlock()
	out := make([]string, 0, len(registry))
	for tag := range registry {
		out = append(out, tag)
	}
	return out
}
