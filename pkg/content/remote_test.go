package content

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/toniebox-reverse-engineering/teddy-cloud/pkg/storage"
)

func TestLibraryMirrorNilIsNoOp(t *testing.T) {
	var m *LibraryMirror
	if err := m.Push(context.Background(), "/nonexistent"); err != nil {
		t.Fatalf("Push on nil mirror: %v", err)
	}
}

func TestLibraryMirrorPushEntry(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	tafPath := filepath.Join(root, "01234567", "89ABCDEF")
	if err := os.MkdirAll(filepath.Dir(tafPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(tafPath, []byte("taf-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(SidecarPath(tafPath), []byte(`{"source":"x"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	backend, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	mirror := NewLibraryMirror(backend, root)

	if err := mirror.PushEntry(ctx, tafPath); err != nil {
		t.Fatalf("PushEntry: %v", err)
	}

	r, err := backend.Read(ctx, "01234567/89ABCDEF")
	if err != nil {
		t.Fatalf("Read mirrored taf: %v", err)
	}
	got, _ := io.ReadAll(r)
	r.Close()
	if string(got) != "taf-bytes" {
		t.Fatalf("got %q", got)
	}

	r2, err := backend.Read(ctx, "01234567/89ABCDEF.json")
	if err != nil {
		t.Fatalf("Read mirrored sidecar: %v", err)
	}
	got2, _ := io.ReadAll(r2)
	r2.Close()
	if string(got2) != `{"source":"x"}` {
		t.Fatalf("got %q", got2)
	}
}

func TestLibraryMirrorPushEntrySkipsMissingSidecar(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	tafPath := filepath.Join(root, "01234567", "89ABCDEF")
	if err := os.MkdirAll(filepath.Dir(tafPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(tafPath, []byte("taf-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	backend, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	mirror := NewLibraryMirror(backend, root)

	if err := mirror.PushEntry(ctx, tafPath); err != nil {
		t.Fatalf("PushEntry: %v", err)
	}
}

func TestLibraryMirrorRejectsPathOutsideRoot(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	outside := filepath.Join(t.TempDir(), "other")
	if err := os.WriteFile(outside, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	backend, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	mirror := NewLibraryMirror(backend, root)

	if err := mirror.Push(ctx, outside); err == nil {
		t.Fatal("expected error for path outside mirror root")
	}
}
