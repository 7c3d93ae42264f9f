package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// FileKV keeps each value in its own file under Dir.
type FileKV struct {
	Dir string
}

func (k FileKV) Location() string { return k.Dir }

func (k FileKV) path(key string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':':
			return '_'
		}
		return r
	}, key)
	return filepath.Join(k.Dir, name+".json")
}

func (k FileKV) Get(_ context.Context, key string) (string, bool, error) {
	b, err := os.ReadFile(k.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(b), true, nil
}

func (k FileKV) Set(_ context.Context, key, val string) error {
	if err := os.MkdirAll(k.Dir, 0o755); err != nil {
		return err
	}
	p := k.path(key)
	return atomicWriteFile(k.Dir, filepath.Base(p)+".*.tmp", p, []byte(val), 0o644)
}

func (k FileKV) Remove(_ context.Context, key string) error {
	if err := os.Remove(k.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
