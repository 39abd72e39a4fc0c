// Package engine wires the page store, buffer pool, and per-table
// metadata into a single Database lifecycle, plus a cron-scheduled
// checkpointer for periodic durability.
package engine

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/hnakae/lstore/internal/bufferpool"
	"github.com/hnakae/lstore/internal/config"
	"github.com/hnakae/lstore/internal/pagestore"
	"github.com/hnakae/lstore/internal/table"
)

// ErrTableExists is returned by CreateTable for a name already in use.
var ErrTableExists = errors.New("engine: table already exists")

// ErrNoSuchTable is returned by GetTable for an unknown name.
var ErrNoSuchTable = errors.New("engine: no such table")

// Database owns one data directory's page store, buffer pool, and table
// registry, plus the background checkpointer that keeps them durable.
type Database struct {
	// SessionID uniquely identifies this open and is stamped into the
	// engine's log lines. It is not written into the table metadata files.
	SessionID uuid.UUID

	cfg   config.EngineConfig
	store *pagestore.Store
	pool  *bufferpool.Pool

	mu     sync.Mutex
	tables map[string]*table.Table

	checkpointer *Checkpointer
}

// Open loads or initializes a Database rooted at cfg.DataDir, rehydrating
// every table whose metadata.json is found there, and starts the
// background checkpointer.
func Open(cfg config.EngineConfig) (*Database, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("engine: mkdir data dir: %w", err)
	}

	store := pagestore.New(cfg.DataDir)
	pool := bufferpool.New(store, cfg.BufferPoolPages)

	db := &Database{
		SessionID: uuid.New(),
		cfg:       cfg,
		store:     store,
		pool:      pool,
		tables:    make(map[string]*table.Table),
	}

	entries, err := os.ReadDir(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("engine: scan data dir: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		if _, err := os.Stat(filepath.Join(cfg.DataDir, name, "metadata.json")); err != nil {
			continue
		}
		t, err := table.LoadFromDisk(cfg.DataDir, name, pool)
		if err != nil {
			log.Printf("engine[%s]: skipping table %q: %v", db.SessionID, name, err)
			continue
		}
		db.tables[name] = t
	}

	log.Printf("engine[%s]: opened %s (%d tables, %d buffer pool pages)",
		db.SessionID, cfg.DataDir, len(db.tables), cfg.BufferPoolPages)

	db.checkpointer = NewCheckpointer(db, cfg.CheckpointInterval)
	db.checkpointer.Start()

	return db, nil
}

// CreateTable registers a new, empty table.
func (db *Database) CreateTable(name string, numColumns, keyIndex int) (*table.Table, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.tables[name]; ok {
		return nil, ErrTableExists
	}
	t := table.New(name, numColumns, keyIndex, db.pool)
	db.tables[name] = t
	return t, nil
}

// GetTable returns a previously created or rehydrated table by name.
func (db *Database) GetTable(name string) (*table.Table, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	t, ok := db.tables[name]
	if !ok {
		return nil, ErrNoSuchTable
	}
	return t, nil
}

// ListTables returns every registered table's name.
func (db *Database) ListTables() []string {
	db.mu.Lock()
	defer db.mu.Unlock()
	names := make([]string, 0, len(db.tables))
	for name := range db.tables {
		names = append(names, name)
	}
	return names
}

// Flush writes every dirty buffer pool frame and every table's metadata
// to disk. Called by the checkpointer on its schedule, and by Close.
func (db *Database) Flush() error {
	db.mu.Lock()
	tables := make([]*table.Table, 0, len(db.tables))
	for _, t := range db.tables {
		tables = append(tables, t)
	}
	db.mu.Unlock()

	if err := db.pool.FlushAll(); err != nil {
		return fmt.Errorf("engine: flush buffer pool: %w", err)
	}
	for _, t := range tables {
		if err := t.FlushMetadata(db.cfg.DataDir); err != nil {
			return fmt.Errorf("engine: flush metadata for %q: %w", t.Name, err)
		}
	}
	return nil
}

// Close stops the checkpointer and performs one final flush.
func (db *Database) Close() error {
	if db.checkpointer != nil {
		db.checkpointer.Stop()
	}
	log.Printf("engine[%s]: closing, flushing %d tables", db.SessionID, len(db.tables))
	return db.Flush()
}

// Stats is a snapshot of engine state, returned to cmd/lstoreserver's
// admin surface.
type Stats struct {
	SessionID     string
	DataDir       string
	ResidentPages int
	TableCount    int
}

// Stats returns a point-in-time snapshot of engine state.
func (db *Database) Stats() Stats {
	db.mu.Lock()
	n := len(db.tables)
	db.mu.Unlock()
	return Stats{
		SessionID:     db.SessionID.String(),
		DataDir:       db.cfg.DataDir,
		ResidentPages: db.pool.Resident(),
		TableCount:    n,
	}
}
