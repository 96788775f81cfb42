package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileStoreSave(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	path, err := store.Save("participant-1", "Bukti Transfer.JPG", strings.NewReader("image-bytes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("stored outside the upload dir: %s", path)
	}
	if !strings.HasSuffix(path, ".jpg") {
		t.Errorf("extension not lowercased: %s", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(content) != "image-bytes" {
		t.Errorf("content = %q", content)
	}
}

func TestFileStoreRejectsUnsupportedTypes(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	for _, name := range []string{"bukti.pdf", "bukti.gif", "bukti", "bukti.exe", "bukti.jpg.svg"} {
		if _, err := store.Save("participant-1", name, strings.NewReader("x")); !errors.Is(err, ErrUnsupportedType) {
			t.Errorf("Save(%q) = %v, want ErrUnsupportedType", name, err)
		}
	}

	for _, name := range []string{"bukti.jpg", "bukti.jpeg", "bukti.png", "bukti.webp"} {
		if _, err := store.Save("participant-1", name, strings.NewReader("x")); err != nil {
			t.Errorf("Save(%q): %v", name, err)
		}
	}
}

func TestFileStoreRemove(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	path, err := store.Save("participant-1", "bukti.png", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	store.Remove(path)
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file still present after Remove: %v", err)
	}

	// Removing twice is a no-op.
	store.Remove(path)
}
