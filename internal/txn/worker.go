package txn

import "sync"

// Worker runs a fixed list of transactions serially on one goroutine,
// mirroring the original TransactionWorker's single background thread.
type Worker struct {
	transactions []*Transaction

	mu      sync.Mutex
	running bool
	done    chan struct{}

	Stats  []bool
	Result int
}

// NewWorker returns a worker over the given transactions.
func NewWorker(transactions []*Transaction) *Worker {
	return &Worker{transactions: append([]*Transaction(nil), transactions...)}
}

// Add appends a transaction to the worker's list. Must be called before Run.
func (w *Worker) Add(tx *Transaction) {
	w.transactions = append(w.transactions, tx)
}

// Run launches the worker's goroutine. Calling Run again while that
// goroutine is still running is a no-op, matching the original's
// "_running" guard; once it has finished, Run starts a new pass.
func (w *Worker) Run() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.done = make(chan struct{})
	w.mu.Unlock()

	go func() {
		defer close(w.done)
		stats := make([]bool, 0, len(w.transactions))
		committed := 0
		for _, tx := range w.transactions {
			ok := tx.Run()
			stats = append(stats, ok)
			if ok {
				committed++
			}
		}

		w.mu.Lock()
		w.Stats = stats
		w.Result = committed
		w.running = false
		w.mu.Unlock()
	}()
}

// Join blocks until the worker's goroutine has finished.
func (w *Worker) Join() {
	w.mu.Lock()
	done := w.done
	w.mu.Unlock()
	if done != nil {
		<-done
	}
}
