// Command lstorebench is a randomized correctness and throughput driver:
// it opens a Database, creates a table, loads a configurable number of
// random rows, runs randomized select/update/increment transactions across
// several Workers, then reports commit/abort counts. It only touches the public lstore
// API surface, exercising the engine the way an embedding program would.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"

	"github.com/hnakae/lstore"
)

var (
	flagDataDir   = flag.String("datadir", "./bench-data", "data directory for the benchmark run")
	flagRows      = flag.Int("rows", 1000, "number of rows to insert")
	flagWorkers   = flag.Int("workers", 4, "number of concurrent transaction workers")
	flagTxnPerJob = flag.Int("txns", 200, "transactions per worker after the initial load")
	flagSeed      = flag.Int64("seed", 3562901, "random seed")
)

const numColumns = 5
const keyIndex = 0

func main() {
	flag.Parse()
	rng := rand.New(rand.NewSource(*flagSeed))

	cfg := lstore.DefaultConfig()
	cfg.DataDir = *flagDataDir

	db, err := lstore.Open(cfg)
	if err != nil {
		log.Fatalf("lstorebench: open: %v", err)
	}
	defer db.Close()

	tbl, err := db.CreateTable("bench", numColumns, keyIndex)
	if err != nil {
		log.Fatalf("lstorebench: create table: %v", err)
	}
	q := lstore.NewQuery(tbl)

	keys := loadRows(q, rng, *flagRows)
	fmt.Printf("loaded %d rows\n", len(keys))

	workers := make([]*lstore.Worker, 0, *flagWorkers)
	for w := 0; w < *flagWorkers; w++ {
		txns := make([]*lstore.Transaction, 0, *flagTxnPerJob)
		for i := 0; i < *flagTxnPerJob; i++ {
			txns = append(txns, randomTransaction(q, tbl, rng, keys))
		}
		worker := lstore.NewWorker(txns)
		worker.Run()
		workers = append(workers, worker)
	}

	committed, total := 0, 0
	for _, worker := range workers {
		worker.Join()
		committed += worker.Result
		total += len(worker.Stats)
	}

	fmt.Printf("transactions: %d committed, %d aborted, %d total\n", committed, total-committed, total)

	if err := db.Flush(); err != nil {
		log.Printf("lstorebench: flush: %v", err)
		os.Exit(1)
	}
}

func loadRows(q *lstore.Query, rng *rand.Rand, n int) []int64 {
	keys := make([]int64, 0, n)
	seen := make(map[int64]struct{}, n)
	for len(keys) < n {
		k := int64(92106429 + rng.Intn(n*2))
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		row := []int64{k, int64(rng.Intn(20)), int64(rng.Intn(20)), int64(rng.Intn(20)), int64(rng.Intn(20))}
		if !q.Insert(nil, row) {
			continue
		}
		keys = append(keys, k)
	}
	return keys
}

func randomTransaction(q *lstore.Query, tbl *lstore.Table, rng *rand.Rand, keys []int64) *lstore.Transaction {
	tx := lstore.NewTransaction()
	key := keys[rng.Intn(len(keys))]

	switch rng.Intn(4) {
	case 0:
		var out []*lstore.Record
		tx.AddSelect(q, tbl, key, fullMask(), &out)
	case 1:
		cols := make([]*int64, numColumns)
		v := int64(rng.Intn(20))
		cols[1+rng.Intn(numColumns-1)] = &v
		tx.AddUpdate(q, tbl, key, cols)
	case 2:
		tx.AddIncrement(q, tbl, key, 1+rng.Intn(numColumns-1))
	default:
		var out []*lstore.Record
		tx.AddSelect(q, tbl, key, fullMask(), &out)
	}
	return tx
}

func fullMask() []int {
	m := make([]int, numColumns)
	for i := range m {
		m[i] = 1
	}
	return m
}
