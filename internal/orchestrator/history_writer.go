package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aristath/zappy/internal/persistence"
)

// HistoryWriter appends completed runs to a Store from a background
// goroutine, so saving history never delays or fails a run.
type HistoryWriter struct {
	store    persistence.Store
	recordCh chan persistence.BlogRecord
	retry    RetryConfig
	timeout  time.Duration
	logger   *slog.Logger
	done     chan struct{}

	mu      sync.RWMutex
	started bool
	closed  bool
}

// NewHistoryWriter creates a writer with the given queue size.
func NewHistoryWriter(store persistence.Store, bufferSize int, retry RetryConfig, logger *slog.Logger) *HistoryWriter {
	if bufferSize <= 0 {
		bufferSize = 16
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryWriter{
		store:    store,
		recordCh: make(chan persistence.BlogRecord, bufferSize),
		retry:    retry,
		timeout:  10 * time.Second,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start launches the writer goroutine. It drains the queue until Stop is
// called or ctx is cancelled.
func (w *HistoryWriter) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return
	}
	w.started = true
	go w.handleRecords(ctx)
}

func (w *HistoryWriter) handleRecords(ctx context.Context) {
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			return
		case rec, ok := <-w.recordCh:
			if !ok {
				return
			}
			w.write(ctx, rec)
		}
	}
}

func (w *HistoryWriter) write(ctx context.Context, rec persistence.BlogRecord) {
	attempts := 0
	err := withRetry(ctx, w.retry, func() error {
		attempts++
		actx, cancel := context.WithTimeout(ctx, w.timeout)
		defer cancel()
		r := rec
		return w.store.Append(actx, &r)
	})
	if err != nil {
		w.logger.Error("history append failed", "keyword", rec.Keyword, "attempts", attempts, "error", err)
		return
	}
	w.logger.Info("saved to history", "keyword", rec.Keyword, "title", rec.Title)
}

// Submit queues rec without blocking. It returns false when the queue is
// full or the writer has been stopped.
func (w *HistoryWriter) Submit(rec persistence.BlogRecord) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return false
	}
	select {
	case w.recordCh <- rec:
		return true
	default:
		return false
	}
}

// Stop closes the queue and blocks until queued records are written.
func (w *HistoryWriter) Stop() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.recordCh)
	}
	started := w.started
	w.mu.Unlock()

	if started {
		<-w.done
	}
}
