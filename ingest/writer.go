package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Writer persists upload payloads as flat files under a single root
// directory. Callers hand it names that already passed the naming policy;
// it still re-checks containment itself and refuses anything that would
// resolve outside the root.
type Writer struct {
	root string
}

// NewWriter resolves and creates the storage root.
func NewWriter(root string) (*Writer, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &Writer{root: abs}, nil
}

// Root returns the absolute storage root path.
func (w *Writer) Root() string {
	return w.root
}

// Resolve maps a stored filename to its absolute path, failing when the
// name carries separators or traversal sequences that would escape the
// root. The serving side uses the same check before returning bytes.
func (w *Writer) Resolve(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: unsafe filename %q", ErrStorage, name)
	}
	path := filepath.Join(w.root, name)
	if filepath.Dir(path) != w.root {
		return "", fmt.Errorf("%w: path %q escapes storage root", ErrStorage, name)
	}
	return path, nil
}

// Write streams the payload to a temporary file in the root and renames it
// into place, so readers never observe partial content under the final
// name. At most limit bytes are written; one more byte than the limit
// aborts the write. Returns the byte count on success.
func (w *Writer) Write(name string, r io.Reader, limit int64) (int64, error) {
	path, err := w.Resolve(name)
	if err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(w.root, ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("%w: create temp file: %v", ErrStorage, err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	var src io.Reader = r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}
	n, err := io.Copy(tmp, src)
	if err != nil {
		cleanup()
		return 0, fmt.Errorf("%w: write payload: %v", ErrStorage, err)
	}
	if limit > 0 && n > limit {
		cleanup()
		return 0, ErrTooLarge
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("%w: close temp file: %v", ErrStorage, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("%w: finalize %q: %v", ErrStorage, name, err)
	}
	return n, nil
}

// Remove deletes a stored file, tolerating absence.
func (w *Writer) Remove(name string) error {
	path, err := w.Resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: remove %q: %v", ErrStorage, name, err)
	}
	return nil
}
