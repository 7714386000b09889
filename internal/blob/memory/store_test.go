package memory

import (
	"context"
	"io"
	"strings"
	"testing"

	"seqstore/internal/blob/core"
)

func TestPutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New()
	if s.Driver() != core.DriverMemory {
		t.Fatalf("driver: %s", s.Driver())
	}
	info, err := s.Put(ctx, "exports/a.fasta", strings.NewReader("ACGT"), core.PutOptions{
		ContentType: "text/x-fasta",
		Metadata:    map[string]string{"table": "proteins"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != 4 || info.ContentType != "text/x-fasta" {
		t.Fatalf("info: %+v", info)
	}

	got, rc, err := s.Get(ctx, "exports/a.fasta")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "ACGT" {
		t.Fatalf("data: %q", data)
	}
	if got.Metadata["table"] != "proteins" {
		t.Fatalf("metadata: %v", got.Metadata)
	}
}

func TestPutRejectsExistingKey(t *testing.T) {
	ctx := context.Background()
	s := New()
	if _, err := s.Put(ctx, "k", strings.NewReader("a"), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := s.Put(ctx, "k", strings.NewReader("b"), core.PutOptions{}); err == nil {
		t.Fatalf("expected create-only conflict")
	}
}

func TestGetCopiesData(t *testing.T) {
	ctx := context.Background()
	s := New()
	if _, err := s.Put(ctx, "k", strings.NewReader("abc"), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	_, rc, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	buf, _ := io.ReadAll(rc)
	_ = rc.Close()
	buf[0] = 'z'

	_, rc2, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get again: %v", err)
	}
	defer func() { _ = rc2.Close() }()
	again, _ := io.ReadAll(rc2)
	if string(again) != "abc" {
		t.Fatalf("stored data mutated: %q", again)
	}
}

func TestDeleteAndList(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, k := range []string{"exports/b", "exports/a", "other/c"} {
		if _, err := s.Put(ctx, k, strings.NewReader("x"), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", k, err)
		}
	}
	infos, err := s.List(ctx, "exports/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "exports/a" || infos[1].Key != "exports/b" {
		t.Fatalf("list: %+v", infos)
	}

	ok, err := s.Delete(ctx, "exports/a")
	if err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	ok, err = s.Delete(ctx, "exports/a")
	if err != nil || ok {
		t.Fatalf("second delete: %v %v", ok, err)
	}
	if _, _, err := s.Get(ctx, "exports/a"); err == nil {
		t.Fatalf("expected not-found after delete")
	}
}
