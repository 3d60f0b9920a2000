package output

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nao1215/pageocr/internal/apperr"
)

// TestWriterPath tests artifact naming.
func TestWriterPath(t *testing.T) {
	t.Parallel()

	w := NewWriter("out", false)
	if got, want := w.Path(12, ExtJSON), filepath.Join("out", "12.json"); got != want {
		t.Errorf("Path() = %s, want %s", got, want)
	}
}

// TestWriterCreatesDirectory tests lazy directory creation.
func TestWriterCreatesDirectory(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "out")
	w := NewWriter(dir, false)

	path, err := w.Write(1, ExtText, []byte("hello"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != filepath.Join(dir, "1.txt") {
		t.Errorf("unexpected path %s", path)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello" {
		t.Errorf("file contains %q", got)
	}
}

// TestWriterExistingDirectory tests that an existing directory is reused.
func TestWriterExistingDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if _, err := NewWriter(dir, false).Write(3, ExtPNG, []byte{1}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// TestWriterDirectoryFailure tests that a directory that cannot be created
// is a filesystem error.
func TestWriterDirectoryFailure(t *testing.T) {
	t.Parallel()

	parent := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(parent, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := NewWriter(filepath.Join(parent, "out"), false).Write(1, ExtText, []byte("x"))
	if !errors.Is(err, apperr.ErrFileSystem) {
		t.Errorf("expected filesystem error, got %v", err)
	}
}

// TestWriterOverwritePolicy tests both overwrite settings on an existing file.
func TestWriterOverwritePolicy(t *testing.T) {
	t.Parallel()

	original := []byte("original bytes")
	replacement := []byte("new")

	t.Run("disabled overwrite fails and keeps prior bytes", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "1.json")
		if err := os.WriteFile(path, original, 0600); err != nil {
			t.Fatal(err)
		}

		_, err := NewWriter(dir, false).Write(1, ExtJSON, replacement)
		if !errors.Is(err, apperr.ErrFileExists) || !errors.Is(err, ErrFileExists) {
			t.Fatalf("expected file exists error, got %v", err)
		}

		got, _ := os.ReadFile(path)
		if !bytes.Equal(got, original) {
			t.Errorf("existing file changed to %q", got)
		}
	})

	t.Run("enabled overwrite replaces bytes exactly", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "1.json")
		if err := os.WriteFile(path, original, 0600); err != nil {
			t.Fatal(err)
		}

		if _, err := NewWriter(dir, true).Write(1, ExtJSON, replacement); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, _ := os.ReadFile(path)
		if !bytes.Equal(got, replacement) {
			t.Errorf("file contains %q, want %q", got, replacement)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 {
			t.Errorf("expected no temporary files left, got %d entries", len(entries))
		}
	})

	t.Run("enabled overwrite creates missing files", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path, err := NewWriter(dir, true).Write(7, ExtPNG, replacement)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != 0644 {
			t.Errorf("unexpected mode %v", info.Mode().Perm())
		}
	})
}
