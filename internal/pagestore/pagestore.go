// Package pagestore is the filesystem adapter mapping a page's identity
// (table, base/tail, column, page index) to a byte blob on disk.
package pagestore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hnakae/lstore/internal/page"
)

// ErrAbsent signals that a page file does not exist. It is a normal,
// non-fatal outcome — callers translate it to "none" per spec §4.2.
var ErrAbsent = errors.New("pagestore: page absent")

// Store maps (table, is_base, column, page_index) to on-disk page files
// rooted at a single data directory.
type Store struct {
	root string
}

// New returns a Store rooted at dataDir (the "<path>/data" directory from
// spec §6).
func New(dataDir string) *Store {
	return &Store{root: dataDir}
}

// PagePath returns the deterministic path for a page.
func (s *Store) PagePath(table string, isBase bool, col, idx int) string {
	subdir, prefix := "tail", "tail"
	if isBase {
		subdir, prefix = "base", "base"
	}
	filename := fmt.Sprintf("%s_col%d_pg%d.bin", prefix, col, idx)
	return filepath.Join(s.root, table, subdir, filename)
}

// ReadPageBytes reads raw page bytes from disk. Returns ErrAbsent if the
// file does not exist; any other I/O failure is returned as a wrapped,
// fatal error.
func (s *Store) ReadPageBytes(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrAbsent
		}
		return nil, fmt.Errorf("pagestore: read %s: %w", path, err)
	}
	if len(b) != page.Size {
		return nil, fmt.Errorf("pagestore: %s: %w", path, page.ErrBadSize)
	}
	return b, nil
}

// WritePageBytes writes raw page bytes to disk, creating parent directories
// on demand. Whole-page rewrites between flushes are tolerated; atomicity
// across process crashes is out of scope (spec §1: no crash-recovery log).
func (s *Store) WritePageBytes(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("pagestore: mkdir for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("pagestore: write %s: %w", path, err)
	}
	return nil
}
