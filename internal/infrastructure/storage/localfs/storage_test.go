package localfs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestOpenReadsStoredBlob(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "cases", "case-1")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "statement.txt"), []byte("witness statement"), 0o644); err != nil {
		t.Fatalf("write blob: %v", err)
	}

	storage, err := New(base)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	reader, err := storage.Open(context.Background(), "cases/case-1/statement.txt")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read blob: %v", err)
	}
	if string(data) != "witness statement" {
		t.Fatalf("unexpected blob content: %q", data)
	}
}

func TestOpenRejectsKeysOutsideStorageRoot(t *testing.T) {
	base := t.TempDir()
	secret := filepath.Join(base, "secret.txt")
	if err := os.WriteFile(secret, []byte("outside"), 0o644); err != nil {
		t.Fatalf("write outside file: %v", err)
	}

	storage, err := New(filepath.Join(base, "storage"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for _, key := range []string{
		"../secret.txt",
		"cases/../../secret.txt",
		"..",
		secret,
	} {
		if _, err := storage.Open(context.Background(), key); err == nil {
			t.Fatalf("key %q must be rejected", key)
		}
	}
}
