package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func TestOpenFileBackend(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "defs")
	s, closeFn, err := Open(context.Background(), Options{Backend: BackendFile, Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	defer closeFn()

	fs, ok := s.(*FileStore)
	if !ok || fs.Dir() != dir {
		t.Fatalf("unexpected store %T", s)
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, _, err := Open(context.Background(), Options{Backend: "s3", Dir: t.TempDir()}); err == nil {
		t.Fatal("expected an error")
	}
}
