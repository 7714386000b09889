package fs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"seqstore/internal/blob/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	info, err := s.Put(ctx, "exports/a.fasta", strings.NewReader("ACGT"), core.PutOptions{
		ContentType: "text/x-fasta",
		Metadata:    map[string]string{"table": "proteins"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != 4 || info.ETag == "" {
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
	if got.ContentType != "text/x-fasta" || got.Metadata["table"] != "proteins" {
		t.Fatalf("sidecar metadata lost: %+v", got)
	}
	if got.ETag != info.ETag {
		t.Fatalf("etag mismatch: %s vs %s", got.ETag, info.ETag)
	}
}

func TestPutRejectsExistingKey(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	if _, err := s.Put(ctx, "k", strings.NewReader("a"), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := s.Put(ctx, "k", strings.NewReader("b"), core.PutOptions{}); err == nil {
		t.Fatalf("expected create-only conflict")
	}
}

func TestSanitizeKey(t *testing.T) {
	s := newTestStore(t)
	for _, key := range []string{"", "  ", "/abs", "../escape", "a/../../b"} {
		if _, err := s.Put(context.Background(), key, strings.NewReader("x"), core.PutOptions{}); err == nil {
			t.Fatalf("key %q must be rejected", key)
		}
	}
}

func TestDeleteRemovesSidecar(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := New(root)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := s.Put(ctx, "a", strings.NewReader("x"), core.PutOptions{ContentType: "text/plain"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	ok, err := s.Delete(ctx, "a")
	if err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if _, err := os.Stat(filepath.Join(root, "a.meta")); !os.IsNotExist(err) {
		t.Fatalf("sidecar survived delete")
	}
	ok, err = s.Delete(ctx, "a")
	if err != nil || ok {
		t.Fatalf("second delete: %v %v", ok, err)
	}
}

func TestListSkipsSidecars(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	for _, k := range []string{"exports/b", "exports/a", "other/c"} {
		if _, err := s.Put(ctx, k, strings.NewReader("x"), core.PutOptions{ContentType: "text/plain"}); err != nil {
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
	for _, info := range infos {
		if strings.HasSuffix(info.Key, ".meta") {
			t.Fatalf("sidecar listed: %s", info.Key)
		}
		if info.ContentType != "text/plain" {
			t.Fatalf("sidecar not joined: %+v", info)
		}
	}
}
