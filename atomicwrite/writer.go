// Package atomicwrite replaces file contents without ever exposing a
// half-written file. New bytes land in a uniquely named temp file in the
// target's directory and are renamed into place, so a concurrent reader
// observes either the old complete content or the new complete content.
// Transient failures are retried with caller-configurable backoff, and a
// rotating set of timestamped backups can be kept.
package atomicwrite

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/confdock/settings/backing"
)

// DefaultMaxAttempts bounds a Write when Options.MaxAttempts is zero.
const DefaultMaxAttempts = 3

// Options configures a Writer. The zero value gives bounded retries with
// linear backoff and no backups.
type Options struct {
	// MaxAttempts is the total number of write attempts before the last
	// error is surfaced. Zero means DefaultMaxAttempts.
	MaxAttempts int

	// RetryDelay maps a 1-based failed-attempt number to the backoff
	// before the next attempt. Nil means 100ms times the attempt number.
	RetryDelay func(attempt int) time.Duration

	// BackupMaxCount is how many timestamped .bak copies to retain.
	// Zero disables backups.
	BackupMaxCount int

	// Logger receives retry and backup diagnostics. Nil means
	// slog.Default.
	Logger *slog.Logger
}

// Writer performs atomic replacement writes against one backing store.
// Concurrent Write calls on the same Writer serialize through its mutex;
// independent Writers (independent settings instances) do not contend.
type Writer struct {
	store  backing.Store
	opts   Options
	logger *slog.Logger
	mu     sync.Mutex
}

// New creates a Writer over store.
func New(store backing.Store, opts Options) *Writer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.RetryDelay == nil {
		opts.RetryDelay = func(attempt int) time.Duration {
			return time.Duration(attempt) * 100 * time.Millisecond
		}
	}
	return &Writer{store: store, opts: opts, logger: logger}
}

// Write atomically replaces the file at path with data. On failure the
// write is retried after a backoff delay, up to the configured attempt
// bound; the backoff observes ctx so a cancelled save does not spin
// through its remaining retry budget.
func (w *Writer) Write(ctx context.Context, path string, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	// One backup per Write, not per attempt: a retried save must not
	// burn retention slots on identical copies.
	if w.opts.BackupMaxCount > 0 && w.store.Exists(path) {
		if err := w.rotateBackups(path); err != nil {
			return fmt.Errorf("rotate backups for %s: %w", path, err)
		}
	}

	var lastErr error
	for attempt := 1; attempt <= w.opts.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(w.opts.RetryDelay(attempt - 1)):
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = w.writeOnce(path, data)
		if lastErr == nil {
			return nil
		}
		w.logger.Warn("settings write attempt failed",
			"path", path, "attempt", attempt, "error", lastErr)
	}
	return fmt.Errorf("write %s after %d attempt(s): %w", path, w.opts.MaxAttempts, lastErr)
}

// writeOnce performs one temp+rename sequence.
func (w *Writer) writeOnce(path string, data []byte) error {
	if err := w.store.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure directory: %w", err)
	}
	tmp := stampedName(path, "")
	if err := w.store.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := w.store.Replace(tmp, path); err != nil {
		// Never leave the temp behind; the original target is intact.
		if rmErr := w.store.Remove(tmp); rmErr != nil {
			w.logger.Warn("temp file left behind", "path", tmp, "error", rmErr)
		}
		return fmt.Errorf("replace target: %w", err)
	}
	return nil
}

// lastStamp makes timestamps strictly increasing within the process, so
// temp and backup names never collide and sort lexically by age.
var lastStamp atomic.Int64

func monotonicStamp() int64 {
	for {
		now := time.Now().UnixNano()
		prev := lastStamp.Load()
		if now <= prev {
			now = prev + 1
		}
		if lastStamp.CompareAndSwap(prev, now) {
			return now
		}
	}
}

// stampedName builds "{base}_{stamp}{ext}{suffix}" next to path. The
// stamp is zero-padded so lexical order equals creation order.
func stampedName(path, suffix string) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	return fmt.Sprintf("%s_%020d%s%s", base, monotonicStamp(), ext, suffix)
}
