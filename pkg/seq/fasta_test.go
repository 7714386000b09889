package seq

import (
	"strings"
	"testing"
)

func TestParseFASTA(t *testing.T) {
	input := ">A1 heat shock protein\nACGTAC GT\nACGT\n\n>A2\nTTTT\n"
	records, err := ParseFASTA(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	first := records[0]
	if first[FieldAccession] != "A1" {
		t.Fatalf("accession: %v", first[FieldAccession])
	}
	if first[FieldDescription] != "heat shock protein" {
		t.Fatalf("description: %v", first[FieldDescription])
	}
	if first[FieldSequence] != "ACGTACGTACGT" {
		t.Fatalf("sequence: %v", first[FieldSequence])
	}
	if first[FieldLength] != int64(12) {
		t.Fatalf("length: %v", first[FieldLength])
	}
	if records[1][FieldDescription] != "" {
		t.Fatalf("expected empty description, got %v", records[1][FieldDescription])
	}
}

func TestParseFASTAErrors(t *testing.T) {
	cases := map[string]string{
		"data before header": "ACGT\n>A1\n",
		"empty header":       ">\nACGT\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseFASTA(strings.NewReader(input)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestWriteFASTAWrapsLines(t *testing.T) {
	rec := Record{
		FieldAccession:   "A1",
		FieldDescription: "test",
		FieldSequence:    strings.Repeat("A", 61),
	}
	var buf strings.Builder
	if err := WriteFASTA(&buf, rec); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := ">A1 test\n" + strings.Repeat("A", 60) + "\nA\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}

func TestFASTARoundTrip(t *testing.T) {
	rec := Record{
		FieldAccession:   "P99999",
		FieldDescription: "cytochrome c",
		FieldSequence:    strings.Repeat("MGDVEK", 30),
		FieldLength:      int64(180),
	}
	var buf strings.Builder
	if err := WriteFASTA(&buf, rec); err != nil {
		t.Fatalf("write: %v", err)
	}
	records, err := ParseFASTA(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	for _, field := range []string{FieldAccession, FieldDescription, FieldSequence, FieldLength} {
		if records[0][field] != rec[field] {
			t.Fatalf("%s: got %v want %v", field, records[0][field], rec[field])
		}
	}
}
