package storage

import (
	"os"
	"path/filepath"
)

// AtomicWriter provides atomic file write operations using temp file + rename.
// The target file is never left in a partially-written state: either the
// previous content (or nothing) remains, or the complete new content.
type AtomicWriter struct {
	path    string
	tmpPath string
	file    *os.File
	done    bool
}

// NewAtomicWriter creates a writer for atomic file updates.
// The writer creates a temporary file in the same directory as the target,
// and on Commit(), atomically renames it to replace the target.
func NewAtomicWriter(path string) (*AtomicWriter, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &StorageError{Op: "create", Path: dir, Err: err}
	}

	tmpFile, err := os.CreateTemp(dir, ".ytextract-*.tmp")
	if err != nil {
		return nil, &StorageError{Op: "create", Path: path, Err: err}
	}

	return &AtomicWriter{
		path:    path,
		tmpPath: tmpFile.Name(),
		file:    tmpFile,
	}, nil
}

// Write writes data to the temporary file.
func (w *AtomicWriter) Write(p []byte) (n int, err error) {
	return w.file.Write(p)
}

// Commit atomically replaces the target file with the temporary file.
// The file is synced before the rename.
func (w *AtomicWriter) Commit() error {
	if w.done {
		return nil
	}
	w.done = true

	if err := w.file.Sync(); err != nil {
		w.file.Close()
		os.Remove(w.tmpPath)
		return &StorageError{Op: "commit", Path: w.path, Err: err}
	}
	if err := w.file.Close(); err != nil {
		os.Remove(w.tmpPath)
		return &StorageError{Op: "commit", Path: w.path, Err: err}
	}
	if err := os.Chmod(w.tmpPath, 0o644); err != nil {
		os.Remove(w.tmpPath)
		return &StorageError{Op: "commit", Path: w.path, Err: err}
	}
	if err := os.Rename(w.tmpPath, w.path); err != nil {
		os.Remove(w.tmpPath)
		return &StorageError{Op: "commit", Path: w.path, Err: err}
	}
	return nil
}

// Abort discards the temporary file without committing. It is safe to call
// after Commit, which makes `defer w.Abort()` the usual cleanup.
func (w *AtomicWriter) Abort() error {
	if w.done {
		return nil
	}
	w.done = true
	w.file.Close()
	return os.Remove(w.tmpPath)
}
