// Package lstore is the programmatic API surface of the storage engine:
// open a Database, create tables, and run queries and transactions
// against them. Internal packages implement the mechanics; this package
// just re-exports the types an embedding program needs.
package lstore

import (
	"github.com/hnakae/lstore/internal/config"
	"github.com/hnakae/lstore/internal/engine"
	"github.com/hnakae/lstore/internal/query"
	"github.com/hnakae/lstore/internal/table"
	"github.com/hnakae/lstore/internal/txn"
)

// Database owns one data directory's tables and background checkpointer.
type Database = engine.Database

// EngineConfig configures a Database's data directory, buffer pool size,
// and checkpoint interval.
type EngineConfig = config.EngineConfig

// Table is one table's in-memory record directory and index set.
type Table = table.Table

// Record is a projected tuple returned from a query.
type Record = table.Record

// Query executes insert/update/delete/select/sum/increment against a
// single table.
type Query = query.Query

// Transaction queues a script of queries and runs them under strict
// two-phase locking with no-wait conflict handling and undo-based
// rollback.
type Transaction = txn.Transaction

// Worker runs a fixed list of transactions serially on one goroutine.
type Worker = txn.Worker

// DefaultConfig returns the configuration used when no YAML file is
// supplied to Open.
func DefaultConfig() EngineConfig { return config.Default() }

// LoadConfig reads an EngineConfig from a YAML file at path, falling back
// to DefaultConfig() if the file does not exist.
func LoadConfig(path string) (EngineConfig, error) { return config.Load(path) }

// Open loads or initializes a Database per cfg.
func Open(cfg EngineConfig) (*Database, error) { return engine.Open(cfg) }

// NewQuery returns a Query bound to t.
func NewQuery(t *Table) *Query { return query.New(t) }

// NewTransaction allocates a transaction with a fresh, process-unique id.
func NewTransaction() *Transaction { return txn.New() }

// NewWorker returns a worker over the given transactions.
func NewWorker(transactions []*Transaction) *Worker { return txn.NewWorker(transactions) }
