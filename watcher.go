package settings

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// fileWatcher watches one settings file for external changes. Events are
// debounced: a burst of writes inside the throttle window collapses into
// a single onChange call. All onChange calls run on the watcher's own
// coordinator goroutine, never re-entrantly from fsnotify's delivery
// thread.
type fileWatcher struct {
	watcher  *fsnotify.Watcher
	path     string // watched file (the directory is what fsnotify tracks)
	throttle time.Duration
	onChange func()
	logger   *slog.Logger

	cancel   context.CancelFunc
	doneCh   chan struct{}
	timerMu  sync.Mutex
	timer    *time.Timer
	stopOnce sync.Once
}

// newFileWatcher creates a watcher for path. The containing directory
// must exist; callers treat an error here as "watching unavailable" and
// degrade rather than fail.
func newFileWatcher(path string, throttle time.Duration, logger *slog.Logger, onChange func()) (*fileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}
	return &fileWatcher{
		watcher:  watcher,
		path:     filepath.Clean(path),
		throttle: throttle,
		onChange: onChange,
		logger:   logger,
		doneCh:   make(chan struct{}),
	}, nil
}

// start launches the coordinator goroutine.
func (fw *fileWatcher) start() {
	ctx, cancel := context.WithCancel(context.Background())
	fw.cancel = cancel
	go fw.run(ctx)
}

// stop shuts the watcher down and waits for the coordinator to exit.
// Idempotent.
func (fw *fileWatcher) stop() {
	fw.stopOnce.Do(func() {
		if fw.cancel != nil {
			fw.cancel()
			<-fw.doneCh
		} else {
			close(fw.doneCh)
		}
		fw.watcher.Close()
	})
}

func (fw *fileWatcher) run(ctx context.Context) {
	defer close(fw.doneCh)

	fireCh := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			fw.stopTimer()
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if !fw.matches(event) {
				continue
			}
			fw.resetTimer(fireCh)

		case <-fireCh:
			fw.onChange()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("settings watch error", "path", fw.path, "error", err)
		}
	}
}

// matches filters directory events down to mutations of the watched file.
func (fw *fileWatcher) matches(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	return filepath.Clean(event.Name) == fw.path
}

// resetTimer restarts the debounce timer, draining a timer that already
// fired so stale signals never double-deliver.
func (fw *fileWatcher) resetTimer(fireCh chan struct{}) {
	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()

	if fw.timer != nil {
		if !fw.timer.Stop() {
			select {
			case <-fireCh:
			default:
			}
		}
	}
	fw.timer = time.AfterFunc(fw.throttle, func() {
		select {
		case fireCh <- struct{}{}:
		default:
		}
	})
}

func (fw *fileWatcher) stopTimer() {
	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()
	if fw.timer != nil {
		fw.timer.Stop()
		fw.timer = nil
	}
}
