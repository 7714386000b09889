package codec

import (
	"encoding/json"
	"fmt"

	"seqstore/pkg/seq"
	"seqstore/pkg/session"
)

// Built-in tags registered at init time.
const (
	TagDefault = "default"
	TagFASTA   = "fasta"
	TagUniProt = "uniprot"
)

func init() {
	MustRegister(TagDefault, DefaultCodec())
	MustRegister(TagFASTA, fastaCodec())
	MustRegister(TagUniProt, uniprotCodec())
}

// DefaultCodec is the fallback codec: the whole record is serialized as JSON
// into a single src column next to the accession key. It accepts any record
// shape and is the safe choice for collections without a dedicated schema.
func DefaultCodec() Codec {
	return Codec{
		Schema: func() Schema {
			return Schema{
				{Name: seq.FieldAccession, Type: "TEXT", Constraints: "PRIMARY KEY"},
				{Name: "src", Type: "TEXT", Constraints: "NOT NULL"},
			}
		},
		Encode: func(records []seq.Record) ([]session.Row, error) {
			rows := make([]session.Row, 0, len(records))
			for _, rec := range records {
				accession, err := rec.Accession()
				if err != nil {
					return nil, &EncodeError{Tag: TagDefault, Err: err}
				}
				src, err := json.Marshal(rec)
				if err != nil {
					return nil, &EncodeError{Tag: TagDefault, Err: err}
				}
				rows = append(rows, session.Row{seq.FieldAccession: accession, "src": string(src)})
			}
			return rows, nil
		},
		Decode: func(row session.Row) (seq.Record, error) {
			src, ok := row.String("src")
			if !ok {
				return nil, &DecodeError{Tag: TagDefault, Err: fmt.Errorf("src column missing")}
			}
			var rec seq.Record
			if err := json.Unmarshal([]byte(src), &rec); err != nil {
				return nil, &DecodeError{Tag: TagDefault, Err: err}
			}
			if _, err := rec.Accession(); err != nil {
				return nil, &DecodeError{Tag: TagDefault, Err: err}
			}
			return rec, nil
		},
	}
}

func fastaCodec() Codec {
	return Codec{
		Schema: func() Schema {
			return Schema{
				{Name: seq.FieldAccession, Type: "TEXT", Constraints: "PRIMARY KEY"},
				{Name: seq.FieldDescription, Type: "TEXT", Constraints: ""},
				{Name: seq.FieldSequence, Type: "TEXT", Constraints: "NOT NULL"},
				{Name: seq.FieldLength, Type: "BIGINT", Constraints: "NOT NULL"},
			}
		},
		Encode: func(records []seq.Record) ([]session.Row, error) {
			rows := make([]session.Row, 0, len(records))
			for _, rec := range records {
				accession, err := rec.Accession()
				if err != nil {
					return nil, &EncodeError{Tag: TagFASTA, Err: err}
				}
				sequence, _ := rec[seq.FieldSequence].(string)
				if sequence == "" {
					return nil, &EncodeError{Tag: TagFASTA, Err: fmt.Errorf("record %s has no sequence", accession)}
				}
				description, _ := rec[seq.FieldDescription].(string)
				rows = append(rows, session.Row{
					seq.FieldAccession:   accession,
					seq.FieldDescription: description,
					seq.FieldSequence:    sequence,
					seq.FieldLength:      int64(len(sequence)),
				})
			}
			return rows, nil
		},
		Decode: func(row session.Row) (seq.Record, error) {
			rec, err := decodeTextColumns(TagFASTA, row,
				[]string{seq.FieldAccession, seq.FieldSequence},
				[]string{seq.FieldDescription})
			if err != nil {
				return nil, err
			}
			if length, ok := asInt64(row[seq.FieldLength]); ok {
				rec[seq.FieldLength] = length
			}
			return rec, nil
		},
	}
}

func uniprotCodec() Codec {
	return Codec{
		Schema: func() Schema {
			return Schema{
				{Name: seq.FieldAccession, Type: "TEXT", Constraints: "PRIMARY KEY"},
				{Name: "id", Type: "TEXT", Constraints: ""},
				{Name: seq.FieldDescription, Type: "TEXT", Constraints: ""},
				{Name: "taxon", Type: "TEXT", Constraints: ""},
				{Name: seq.FieldSequence, Type: "TEXT", Constraints: "NOT NULL"},
				{Name: seq.FieldLength, Type: "BIGINT", Constraints: "NOT NULL"},
				{Name: "features", Type: TypeBinary, Constraints: ""},
			}
		},
		Encode: func(records []seq.Record) ([]session.Row, error) {
			rows := make([]session.Row, 0, len(records))
			for _, rec := range records {
				accession, err := rec.Accession()
				if err != nil {
					return nil, &EncodeError{Tag: TagUniProt, Err: err}
				}
				sequence, _ := rec[seq.FieldSequence].(string)
				if sequence == "" {
					return nil, &EncodeError{Tag: TagUniProt, Err: fmt.Errorf("record %s has no sequence", accession)}
				}
				id, _ := rec["id"].(string)
				description, _ := rec[seq.FieldDescription].(string)
				taxon, _ := rec["taxon"].(string)
				var features []byte
				if raw, ok := rec["features"]; ok && raw != nil {
					features, err = json.Marshal(raw)
					if err != nil {
						return nil, &EncodeError{Tag: TagUniProt, Err: err}
					}
				}
				rows = append(rows, session.Row{
					seq.FieldAccession:   accession,
					"id":                 id,
					seq.FieldDescription: description,
					"taxon":              taxon,
					seq.FieldSequence:    sequence,
					seq.FieldLength:      int64(len(sequence)),
					"features":           features,
				})
			}
			return rows, nil
		},
		Decode: func(row session.Row) (seq.Record, error) {
			rec, err := decodeTextColumns(TagUniProt, row,
				[]string{seq.FieldAccession, seq.FieldSequence},
				[]string{"id", seq.FieldDescription, "taxon"})
			if err != nil {
				return nil, err
			}
			if length, ok := asInt64(row[seq.FieldLength]); ok {
				rec[seq.FieldLength] = length
			}
			if raw, ok := row.Bytes("features"); ok && len(raw) > 0 {
				var features any
				if err := json.Unmarshal(raw, &features); err != nil {
					return nil, &DecodeError{Tag: TagUniProt, Err: fmt.Errorf("features column: %w", err)}
				}
				rec["features"] = features
			}
			return rec, nil
		},
	}
}

// decodeTextColumns copies text columns from a row, failing when a required
// column is absent. Optional columns are copied only when present and
// non-empty. Columns missing from the row entirely (projection) only fail
// when required.
func decodeTextColumns(tag string, row session.Row, required, optional []string) (seq.Record, error) {
	rec := make(seq.Record, len(required)+len(optional))
	for _, col := range required {
		v, ok := row.String(col)
		if !ok || v == "" {
			return nil, &DecodeError{Tag: tag, Err: fmt.Errorf("%s column missing", col)}
		}
		rec[col] = v
	}
	for _, col := range optional {
		if v, ok := row.String(col); ok && v != "" {
			rec[col] = v
		}
	}
	return rec, nil
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
