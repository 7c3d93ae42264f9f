package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Backend selects how the draft blob is kept on disk.
type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendFile   Backend = "file"
	BackendMemory Backend = "memory"
)

func ParseBackend(s string) (Backend, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(s))) {
	case "", BackendSQLite:
		return BackendSQLite, nil
	case BackendFile:
		return BackendFile, nil
	case BackendMemory:
		return BackendMemory, nil
	default:
		return "", fmt.Errorf("unknown storage backend: %s (want sqlite|file|memory)", s)
	}
}

const sqliteFileName = "draft.sqlite"

// Store is a directory holding the local draft storage.
type Store struct {
	Dir     string
	Backend Backend
}

func (s Store) Ensure() error {
	if strings.TrimSpace(s.Dir) == "" {
		return fmt.Errorf("store: no directory configured")
	}
	return os.MkdirAll(s.Dir, 0o755)
}

// KV opens the key-value capability for the configured backend.
func (s Store) KV() (KV, error) {
	backend := s.Backend
	if backend == "" {
		backend = BackendSQLite
	}
	if backend == BackendMemory {
		return NewMemKV(), nil
	}
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	switch backend {
	case BackendSQLite:
		return SQLiteKV{Path: filepath.Join(filepath.Clean(s.Dir), sqliteFileName)}, nil
	case BackendFile:
		return FileKV{Dir: filepath.Join(filepath.Clean(s.Dir), "kv")}, nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", backend)
	}
}
