// Package output writes page artifacts as <dir>/<page>.<ext>.
//
// All artifact kinds share one overwrite policy. With overwrite disabled an
// existing file is never touched. With overwrite enabled the new content is
// written to a temporary file in the same directory and renamed over the
// destination, so readers never observe a truncated artifact.
package output

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/nao1215/pageocr/internal/apperr"
)

// Artifact extensions.
const (
	ExtPNG  = "png"
	ExtJSON = "json"
	ExtText = "txt"
)

// ErrFileExists is the cause of a refused overwrite.
var ErrFileExists = errors.New("file already exists (use --force to overwrite)")

// Writer writes page artifacts into Dir.
type Writer struct {
	// Dir is created on first write.
	Dir string

	// Overwrite allows existing artifacts to be replaced.
	Overwrite bool

	dirReady bool
}

// NewWriter creates a Writer.
func NewWriter(dir string, overwrite bool) *Writer {
	return &Writer{Dir: dir, Overwrite: overwrite}
}

// Path returns the artifact path for page and ext.
func (w *Writer) Path(page int, ext string) string {
	return filepath.Join(w.Dir, strconv.Itoa(page)+"."+ext)
}

// Write stores data as the ext artifact of page and returns its path.
func (w *Writer) Write(page int, ext string, data []byte) (string, error) {
	if err := w.ensureDir(); err != nil {
		return "", err
	}

	path := w.Path(page, ext)
	if w.Overwrite {
		return path, replaceFile(path, data)
	}
	return path, createFile(path, data)
}

func (w *Writer) ensureDir() error {
	if w.dirReady {
		return nil
	}
	// MkdirAll succeeds when the directory already exists.
	if err := os.MkdirAll(w.Dir, 0750); err != nil {
		return apperr.FileSystem("create output directory "+w.Dir, err)
	}
	w.dirReady = true
	return nil
}

// createFile writes a new file and fails if path exists. A partial file
// left by a failed write is removed.
func createFile(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644) //nolint:gosec // artifacts are meant to be shared
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return apperr.FileExists("write "+path, ErrFileExists)
		}
		return apperr.FileSystem("write artifact "+path, err)
	}

	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = apperr.FileSystem("close artifact "+path, cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return apperr.FileSystem("write artifact "+path, err)
	}
	return nil
}

// replaceFile atomically replaces path with data.
func replaceFile(path string, data []byte) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return apperr.FileSystem("create temporary artifact "+path, err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return apperr.FileSystem("write artifact "+path, err)
	}
	if err := tmp.Chmod(0644); err != nil {
		return apperr.FileSystem("chmod artifact "+path, err)
	}
	if err := tmp.Close(); err != nil {
		return apperr.FileSystem("close artifact "+path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return apperr.FileSystem("replace artifact "+path, err)
	}
	return nil
}
