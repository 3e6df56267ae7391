package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sessions.json")
	fs, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	ctx := context.Background()
	data, err := fs.Load(ctx)
	if err != nil {
		t.Fatalf("load before first save: %v", err)
	}
	if data != nil {
		t.Fatalf("expected nil for a missing snapshot, got %q", data)
	}

	want := []byte(`{"1":{"id":1}}`)
	if err := fs.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := fs.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(got) != string(want) {
		t.Fatalf("load = %q, want %q", got, want)
	}

	// Saves replace, not append.
	want = []byte(`{}`)
	if err := fs.Save(ctx, want); err != nil {
		t.Fatalf("second save: %v", err)
	}
	got, _ = fs.Load(ctx)
	if string(got) != string(want) {
		t.Fatalf("load after overwrite = %q, want %q", got, want)
	}

	// No temp file left behind.
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatal("temp file should be renamed away")
	}
}

func TestFileStoreRejectsEmptyPath(t *testing.T) {
	if _, err := NewFileStore(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
