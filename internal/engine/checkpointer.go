package engine

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Checkpointer flushes a Database to disk on a fixed interval, giving the
// engine periodic durability without a write-ahead log — an addition to,
// not a replacement for, flush-on-clean-shutdown.
type Checkpointer struct {
	db       *Database
	interval time.Duration
	cron     *cron.Cron
}

// NewCheckpointer returns a checkpointer that flushes db every interval.
func NewCheckpointer(db *Database, interval time.Duration) *Checkpointer {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Checkpointer{
		db:       db,
		interval: interval,
		cron:     cron.New(),
	}
}

// Start registers the checkpoint job and starts the cron scheduler.
func (c *Checkpointer) Start() {
	spec := "@every " + c.interval.String()
	if _, err := c.cron.AddFunc(spec, c.runCheckpoint); err != nil {
		log.Printf("engine[%s]: checkpointer disabled, bad interval %q: %v", c.db.SessionID, spec, err)
		return
	}
	c.cron.Start()
}

// Stop halts the scheduler, waiting for any in-flight checkpoint.
func (c *Checkpointer) Stop() {
	ctx := c.cron.Stop()
	<-ctx.Done()
}

func (c *Checkpointer) runCheckpoint() {
	if err := c.db.Flush(); err != nil {
		log.Printf("engine[%s]: checkpoint failed: %v", c.db.SessionID, err)
		return
	}
	log.Printf("engine[%s]: checkpoint complete", c.db.SessionID)
}
