package index

import (
	"fmt"
	"strings"
)

// Backend names a Store implementation.
type Backend string

const (
	// BackendMemory keeps the index in process memory. It cannot be
	// reopened once the process exits.
	BackendMemory Backend = "memory"
	// BackendSQLite stores the index in a SQLite database file.
	BackendSQLite Backend = "sqlite"
	// BackendBleve stores the index in a bleve full-text index.
	BackendBleve Backend = "bleve"
)

// Backends lists the supported backends.
func Backends() []Backend {
	return []Backend{BackendMemory, BackendSQLite, BackendBleve}
}

// ParseBackend parses a backend name case-insensitively.
func ParseBackend(name string) (Backend, error) {
	b := Backend(strings.ToLower(strings.TrimSpace(name)))
	switch b {
	case BackendMemory, BackendSQLite, BackendBleve:
		return b, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

// CreateOptions configures Create.
type CreateOptions struct {
	// Force replaces an existing index instead of failing.
	Force bool

	// SessionID identifies the crawl session writing the index.
	// Backends that record sessions generate one when empty.
	SessionID string
}

// Create returns a writable, empty store for backend rooted at dir.
func Create(backend Backend, dir string, opts CreateOptions) (Store, error) {
	switch backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendSQLite:
		return CreateSQLite(dir, opts)
	case BackendBleve:
		return CreateBleve(dir, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// Open returns the committed, read-only store for backend rooted at dir.
func Open(backend Backend, dir string) (Store, error) {
	switch backend {
	case BackendMemory:
		return nil, fmt.Errorf("%w: memory indexes do not persist", ErrIndexNotFound)
	case BackendSQLite:
		return OpenSQLite(dir)
	case BackendBleve:
		return OpenBleve(dir)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// Exists reports whether a persisted index for backend is present in dir.
func Exists(backend Backend, dir string) bool {
	switch backend {
	case BackendSQLite:
		return sqliteExists(dir)
	case BackendBleve:
		return bleveExists(dir)
	default:
		return false
	}
}
