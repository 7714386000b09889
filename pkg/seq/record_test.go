package seq

import (
	"errors"
	"testing"
)

func TestRecordAccession(t *testing.T) {
	rec := Record{FieldAccession: "P12345"}
	got, err := rec.Accession()
	if err != nil {
		t.Fatalf("accession: %v", err)
	}
	if got != "P12345" {
		t.Fatalf("expected P12345, got %s", got)
	}
}

func TestRecordAccessionMissing(t *testing.T) {
	cases := map[string]Record{
		"absent":     {"sequence": "ACGT"},
		"empty":      {FieldAccession: ""},
		"non-string": {FieldAccession: 42},
	}
	for name, rec := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := rec.Accession(); !errors.Is(err, ErrNoAccession) {
				t.Fatalf("expected ErrNoAccession, got %v", err)
			}
		})
	}
}

func TestRecordClone(t *testing.T) {
	rec := Record{FieldAccession: "A1", "taxon": "9606"}
	cp := rec.Clone()
	cp["taxon"] = "10090"
	if rec["taxon"] != "9606" {
		t.Fatalf("clone mutated the original")
	}
}
