package engine

import (
	"testing"
	"time"

	"github.com/hnakae/lstore/internal/config"
)

func testConfig(t *testing.T) config.EngineConfig {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.CheckpointInterval = time.Hour // keep the checkpointer quiet during tests
	return cfg
}

func TestOpenCreateTableAndGetTable(t *testing.T) {
	db, err := Open(testConfig(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	tbl, err := db.CreateTable("grades", 3, 0)
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	if tbl.NumColumns != 3 {
		t.Fatalf("expected 3 columns, got %d", tbl.NumColumns)
	}

	got, err := db.GetTable("grades")
	if err != nil {
		t.Fatalf("GetTable: %v", err)
	}
	if got != tbl {
		t.Fatal("expected GetTable to return the same table instance")
	}
}

func TestCreateTableDuplicateNameFails(t *testing.T) {
	db, err := Open(testConfig(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	if _, err := db.CreateTable("grades", 2, 0); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	if _, err := db.CreateTable("grades", 2, 0); err != ErrTableExists {
		t.Fatalf("expected ErrTableExists, got %v", err)
	}
}

func TestGetTableUnknownFails(t *testing.T) {
	db, err := Open(testConfig(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	if _, err := db.GetTable("nope"); err != ErrNoSuchTable {
		t.Fatalf("expected ErrNoSuchTable, got %v", err)
	}
}

func TestFlushAndRehydrateAcrossOpen(t *testing.T) {
	cfg := testConfig(t)

	db, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	tbl, err := db.CreateTable("grades", 2, 0)
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	if _, err := tbl.InsertNewBase(1, []int64{1, 42}, 1000); err != nil {
		t.Fatalf("InsertNewBase: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db2, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open (reload): %v", err)
	}
	defer db2.Close()

	reloaded, err := db2.GetTable("grades")
	if err != nil {
		t.Fatalf("GetTable (reload): %v", err)
	}
	if _, ok := reloaded.Lookup(1); !ok {
		t.Fatal("expected row to survive close/reopen")
	}
}

func TestStatsReportsTableCount(t *testing.T) {
	db, err := Open(testConfig(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	db.CreateTable("a", 1, 0)
	db.CreateTable("b", 1, 0)

	stats := db.Stats()
	if stats.TableCount != 2 {
		t.Fatalf("expected 2 tables, got %d", stats.TableCount)
	}
	if stats.SessionID == "" {
		t.Fatal("expected a non-empty session id")
	}
}
