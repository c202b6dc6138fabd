// Package storage provides crash-safe file output primitives: atomic
// replace-on-commit writers and advisory locks.
package storage

// StorageError wraps file operation failures with the path involved.
type StorageError struct {
	Op   string // "create", "write", "commit", "lock", "unlock"
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return "storage: " + e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }
