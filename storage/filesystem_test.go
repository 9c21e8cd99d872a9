package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFilesystemStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "visuals")
	store := newFilesystemStore(FilesystemConfig{Directory: dir})

	content := []byte("<svg>diagram</svg>")
	result, err := store.Store(context.Background(), content, "visual-abc.svg", "image/svg+xml", nil)
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	if result.Backend != KindFilesystem {
		t.Errorf("Backend = %q", result.Backend)
	}
	if !filepath.IsAbs(result.Location) {
		t.Errorf("Location = %q, want absolute path", result.Location)
	}

	got, err := os.ReadFile(result.Location)
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("stored bytes = %q, want %q", got, content)
	}
}

func TestFilesystemStoreExistingDirectory(t *testing.T) {
	dir := t.TempDir()
	store := newFilesystemStore(FilesystemConfig{Directory: dir})

	// Two stores into the same directory: the second creation is a no-op
	// and the second write overwrites the first.
	for _, content := range []string{"first", "second"} {
		if _, err := store.Store(context.Background(), []byte(content), "a.svg", "image/svg+xml", nil); err != nil {
			t.Fatalf("Store(%q) error = %v", content, err)
		}
	}

	got, err := os.ReadFile(filepath.Join(dir, "a.svg"))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(got) != "second" {
		t.Errorf("stored bytes = %q, want the second write", got)
	}
}
