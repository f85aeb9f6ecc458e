package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "commands"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return s
}

func TestCreateTwiceKeepsOriginal(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.Create(ctx, "rules", []byte("be nice")); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if err := s.Create(ctx, "rules", []byte("be mean")); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("second create: got %v, want ErrAlreadyExists", err)
	}

	got, err := s.Read(ctx, "rules")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "be nice" {
		t.Fatalf("definition changed to %q", got)
	}
}

func TestReadPreservesBytes(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	content := []byte("line one\r\n\ttabbed ✨\n\x00tail")

	if err := s.Create(ctx, "bytes", content); err != nil {
		t.Fatal(err)
	}
	got, err := s.Read(ctx, "bytes")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("round trip mismatch: %q", got)
	}
}

func TestDeleteMissing(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	if err := s.Create(ctx, "keep", []byte("x")); err != nil {
		t.Fatal(err)
	}

	if err := s.Delete(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete(ghost) = %v, want ErrNotFound", err)
	}

	names, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "keep" {
		t.Fatalf("store altered: %v", names)
	}
}

func TestDeleteThenRead(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	if err := s.Create(ctx, "temp", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "temp"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Read(ctx, "temp"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Read after delete = %v", err)
	}
	if ok, _ := s.Exists(ctx, "temp"); ok {
		t.Fatal("Exists after delete")
	}
}

func TestListFiltersEntries(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for name, body := range map[string]string{
		"readme.txt": "docs",
		"notes.md":   "other suffix",
		"Upper.txt":  "not a valid name",
		".x.abc.tmp": "temp file",
		"beta.txt":   "b",
		"alpha.txt":  "a",
	} {
		if err := os.WriteFile(filepath.Join(s.Dir(), name), []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(s.Dir(), "sub.txt"), 0755); err != nil {
		t.Fatal(err)
	}

	names, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "alpha" || names[1] != "beta" {
		t.Fatalf("List() = %v, want [alpha beta]", names)
	}
}

func TestInvalidNames(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, name := range []string{"", "../escape", "a/b", "readme", "UPPER", "has space", "this-name-is-way-too-long-for-discord-1"} {
		if err := s.Create(ctx, name, []byte("x")); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Create(%q) = %v, want ErrInvalidName", name, err)
		}
	}
	if _, err := s.Read(ctx, "../etc/passwd"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Read traversal = %v, want ErrNotFound", err)
	}
}

func TestConcurrentCreateSingleWinner(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	var wg sync.WaitGroup
	results := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results <- s.Create(ctx, "race", []byte{byte('a' + i)})
		}(i)
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrAlreadyExists):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("%d creates succeeded, want 1", wins)
	}

	got, err := s.Read(ctx, "race")
	if err != nil || len(got) != 1 {
		t.Fatalf("Read = %q, %v", got, err)
	}
}

func TestNormalizeName(t *testing.T) {
	if got := NormalizeName("  Ping "); got != "ping" {
		t.Fatalf("NormalizeName = %q", got)
	}
}
