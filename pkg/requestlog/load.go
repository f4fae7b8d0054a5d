package requestlog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/getmockd/reqdiff/pkg/config"
)

// IsDatabase reports whether path names a SQLite journal by its extension
// (.db, .sqlite or .sqlite3).
func IsDatabase(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// LoadFile reads captured entries, oldest first. JSON and YAML files hold
// one entry or an array of them and are read verbatim, without environment
// expansion; SQLite journals are read whole.
func LoadFile(path string) ([]*Entry, error) {
	if IsDatabase(path) {
		return loadDatabase(path)
	}
	entries, err := config.LoadListRaw[*Entry](path)
	if err != nil {
		return nil, fmt.Errorf("loading captures: %w", err)
	}
	out := entries[:0]
	for _, e := range entries {
		if e != nil {
			out = append(out, e)
		}
	}
	return out, nil
}

func loadDatabase(path string) ([]*Entry, error) {
	// Opening would create a missing database.
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", config.ErrFileNotFound, path)
		}
		return nil, err
	}
	db, err := OpenSQLite(path, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	entries, err := db.ListContext(context.Background(), nil)
	if err != nil {
		return nil, fmt.Errorf("loading captures: %w", err)
	}
	slices.Reverse(entries)
	return entries, nil
}

// LoadInto reads every file matching the patterns into store, in file order.
// It returns the number of entries loaded.
func LoadInto(store Logger, patterns ...string) (int, error) {
	paths, err := config.ExpandGlobs(patterns)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, path := range paths {
		entries, err := LoadFile(path)
		if err != nil {
			return n, err
		}
		for _, e := range entries {
			store.Log(e)
			n++
		}
	}
	return n, nil
}

// SaveFile writes entries to path: a SQLite journal for database
// extensions, JSON or YAML otherwise.
func SaveFile(path string, entries []*Entry) error {
	if !IsDatabase(path) {
		return config.SaveFile(path, entries)
	}
	db, err := OpenSQLite(path, nil)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := db.LogContext(context.Background(), e); err != nil {
			_ = db.Close()
			return err
		}
	}
	return db.Close()
}
