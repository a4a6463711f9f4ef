package settings

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/confdock/settings/atomicwrite"
	"github.com/confdock/settings/backing"
	"github.com/confdock/settings/location"
	"github.com/confdock/settings/migrate"
	"github.com/confdock/settings/section"
)

// Store owns one cached settings value of type T and the machinery to
// load and durably save it: location resolution happens once at
// construction, every save goes through the atomic writer, and external
// file changes refresh the cache through a debounced watch.
//
// Get and Save are safe for concurrent use. Values handed out or taken
// in are cloned, so callers always mutate private copies; the cached
// value is only ever replaced wholesale.
type Store[T any] struct {
	name    string
	path    string
	sect    section.Path
	codec   section.Codec
	backing backing.Store
	writer  *atomicwrite.Writer
	logger  *slog.Logger

	migrator *migrate.Migrator
	factory  migrate.Factory // non-nil only when *T is migrate.Versioned

	validate  func(T) []string
	cloneFn   func(T) T
	defaultFn func() T

	// saveMu serializes the read-merge-write-swap sequence of Save, so
	// concurrent saves cannot leave the cache holding one value while the
	// file holds another, and listeners observe saves in write order.
	saveMu sync.Mutex

	// mu guards the fields below. It is held only for lookups and
	// pointer swaps, never across file I/O, so slow disk writes cannot
	// block readers.
	mu        sync.RWMutex
	cached    *T
	lastDoc   []byte // full document as last written/loaded by this store
	listeners map[int]func(T)
	nextID    int

	watcher   *fileWatcher
	closeOnce sync.Once
}

// New builds a Store from cfg. Location resolution runs here, so an
// unwritable candidate set fails at configuration-build time rather than
// on first use. Filesystem watching starts when the backing store
// supports it; otherwise the store degrades to save-driven notification
// only, with a logged notice.
func New[T any](cfg Config[T]) (*Store[T], error) {
	if cfg.Name == "" {
		return nil, ErrNameRequired
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("settings", cfg.Name)

	codec := cfg.Codec
	if codec == nil {
		codec = section.JSON()
	}
	store := cfg.Backing
	if store == nil {
		store = backing.OS()
	}

	sect, err := section.ParsePath(cfg.Section)
	if err != nil {
		return nil, fmt.Errorf("section path %q: %w", cfg.Section, err)
	}

	defaultName := cfg.DefaultFileName
	if defaultName == "" {
		defaultName = cfg.Name
	}
	resolver := location.NewResolver(store, logger)
	path, err := resolver.Resolve(cfg.Candidates, defaultName, codec.Ext())
	if err != nil {
		return nil, fmt.Errorf("resolve location for %q: %w", cfg.Name, err)
	}

	s := &Store[T]{
		name:    cfg.Name,
		path:    path,
		sect:    sect,
		codec:   codec,
		backing: store,
		writer: atomicwrite.New(store, atomicwrite.Options{
			MaxAttempts:    cfg.MaxAttempts,
			RetryDelay:     cfg.RetryDelay,
			BackupMaxCount: cfg.BackupMaxCount,
			Logger:         logger,
		}),
		logger:    logger,
		validate:  cfg.Validate,
		cloneFn:   cfg.Clone,
		defaultFn: cfg.Default,
		listeners: make(map[int]func(T)),
	}

	if _, ok := any(new(T)).(migrate.Versioned); ok {
		s.migrator = migrate.NewMigrator(cfg.Chain, codec, logger)
		s.factory = func() migrate.Versioned {
			p := new(T)
			*p = s.defaultValue()
			return any(p).(migrate.Versioned)
		}
	} else if cfg.Chain != nil && cfg.Chain.Len() > 0 {
		logger.Warn("migration chain configured but settings type carries no version; chain ignored")
	}

	if !cfg.DisableWatch {
		s.startWatch(cfg.ChangeThrottle)
	}
	return s, nil
}

// startWatch attaches the debounced file watcher. Unavailable watch
// capability is a documented limitation, not an error: external edits go
// unnoticed until the next explicit reload, while Save-driven cache
// updates and notifications keep working.
func (s *Store[T]) startWatch(throttle time.Duration) {
	if !s.backing.Watchable() {
		s.logger.Info("backing store not watchable; external edits surface on next reload")
		return
	}
	if throttle <= 0 {
		throttle = DefaultChangeThrottle
	}
	// fsnotify needs the directory to exist before it can be watched.
	if err := s.backing.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		s.logger.Warn("file watching unavailable", "error", err)
		return
	}
	w, err := newFileWatcher(s.path, throttle, s.logger, s.handleExternalChange)
	if err != nil {
		s.logger.Warn("file watching unavailable", "error", err)
		return
	}
	s.watcher = w
	w.start()
}

// Name returns the instance name.
func (s *Store[T]) Name() string { return s.name }

// Path returns the resolved settings file path.
func (s *Store[T]) Path() string { return s.path }

// Get returns the current settings value, loading it on first access.
// The result is a private copy. A missing file, missing section, or
// unparsable document yields the configured default value; only a broken
// migration chain is surfaced as an error.
func (s *Store[T]) Get(ctx context.Context) (T, error) {
	s.mu.RLock()
	cached := s.cached
	s.mu.RUnlock()
	if cached != nil {
		return s.clone(*cached), nil
	}

	value, doc, err := s.load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	s.mu.Lock()
	if s.cached == nil {
		s.cached = &value
		s.lastDoc = doc
	}
	out := s.clone(*s.cached)
	s.mu.Unlock()
	return out, nil
}

// Save validates v, merges it into the shared document at this store's
// section, writes the result atomically, replaces the cache, and
// notifies listeners, all before returning, so a Get issued after Save
// completes always observes the new value. Concurrent Save calls
// serialize, so the cache and the on-disk file always reflect the same
// save. On any failure before the final rename the cache and the
// on-disk file are unchanged.
func (s *Store[T]) Save(ctx context.Context, v T) error {
	if s.validate != nil {
		if failures := s.validate(v); len(failures) > 0 {
			return &ValidationError{Name: s.name, Failures: failures}
		}
	}

	stored := s.clone(v)
	sub, err := s.marshal(&stored)
	if err != nil {
		return fmt.Errorf("marshal settings %q: %w", s.name, err)
	}

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	var doc []byte
	if s.backing.Exists(s.path) {
		// Best effort: a vanished or unreadable document merges as empty.
		doc, _ = s.backing.ReadFile(s.path)
	}
	merged, err := s.codec.Merge(doc, s.sect, sub)
	if err != nil {
		return fmt.Errorf("merge section %q: %w", s.sect, err)
	}

	if err := s.writer.Write(ctx, s.path, merged); err != nil {
		return err
	}

	s.mu.Lock()
	s.cached = &stored
	s.lastDoc = merged
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	for _, notify := range listeners {
		notify(s.clone(stored))
	}
	return nil
}

// Reload discards the cache and re-reads the file, notifying listeners
// with the fresh value.
func (s *Store[T]) Reload(ctx context.Context) error {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
	return s.reload(ctx, true)
}

// Flush re-saves the cached value. A store with nothing cached is a
// no-op.
func (s *Store[T]) Flush(ctx context.Context) error {
	s.mu.RLock()
	cached := s.cached
	s.mu.RUnlock()
	if cached == nil {
		return nil
	}
	return s.Save(ctx, s.clone(*cached))
}

// OnChange registers a listener invoked with the new value after every
// successful save and after every debounced external-change reload.
// Listeners run synchronously; one must not call Save or Flush on its
// own store. The returned function unsubscribes it.
func (s *Store[T]) OnChange(listener func(T)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = listener
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Close stops the file watcher and drops all listeners. The store
// remains usable for Get and Save.
func (s *Store[T]) Close() error {
	s.closeOnce.Do(func() {
		if s.watcher != nil {
			s.watcher.stop()
		}
		s.mu.Lock()
		s.listeners = make(map[int]func(T))
		s.mu.Unlock()
	})
	return nil
}

// handleExternalChange runs on the watcher's coordinator goroutine after
// the debounce window closes. Changes that match the bytes this store
// itself just wrote are ignored, so a save does not echo as a second
// notification.
func (s *Store[T]) handleExternalChange() {
	doc, err := s.backing.ReadFile(s.path)
	if err == nil {
		s.mu.RLock()
		own := bytes.Equal(doc, s.lastDoc)
		s.mu.RUnlock()
		if own {
			return
		}
	}
	s.logger.Debug("external settings change detected", "path", s.path)
	if err := s.reload(context.Background(), true); err != nil {
		s.logger.Warn("reload after external change failed, keeping last known good", "error", err)
	}
}

// reload loads from disk and swaps the cache. Listeners fire only when
// notify is set.
func (s *Store[T]) reload(ctx context.Context, notify bool) error {
	value, doc, err := s.load(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cached = &value
	s.lastDoc = doc
	var listeners []func(T)
	if notify {
		listeners = s.snapshotListeners()
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(s.clone(value))
	}
	return nil
}

// load resolves the full read path: file -> section -> (migrated) value.
// Structural problems degrade to the default value; a broken migration
// chain is the one fatal condition.
func (s *Store[T]) load(ctx context.Context) (T, []byte, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, nil, err
	}

	doc, err := s.backing.ReadFile(s.path)
	if err != nil {
		return s.defaultValue(), nil, nil
	}

	sub, err := s.codec.Extract(doc, s.sect)
	if err != nil {
		// "File exists but section is new" is a normal state.
		if !errors.Is(err, section.ErrSectionNotFound) {
			s.logger.Warn("settings document unreadable, using defaults", "error", err)
		}
		return s.defaultValue(), doc, nil
	}

	value, err := s.decode(sub)
	if err != nil {
		var missing *migrate.MissingLinkError
		if errors.As(err, &missing) {
			return zero, nil, err
		}
		s.logger.Warn("settings section unreadable, using defaults", "error", err)
		return s.defaultValue(), doc, nil
	}
	return value, doc, nil
}

// decode turns a raw sub-document into a T, migrating when the type is
// versioned.
func (s *Store[T]) decode(sub []byte) (T, error) {
	var zero T
	if s.factory != nil {
		out, err := s.migrator.Load(sub, s.factory)
		if err != nil {
			return zero, err
		}
		typed, ok := any(out).(*T)
		if !ok {
			return zero, fmt.Errorf("migration produced %T, want %T", out, zero)
		}
		return *typed, nil
	}

	value := s.defaultValue()
	if err := s.codec.Unmarshal(sub, &value); err != nil {
		return zero, err
	}
	return value, nil
}

// marshal serializes the value, stamping the stored version tag first so
// the document always records the schema it was written as.
func (s *Store[T]) marshal(v *T) ([]byte, error) {
	if stamper, ok := any(v).(migrate.Stamper); ok {
		if versioned, ok := any(v).(migrate.Versioned); ok {
			stamper.SetStoredVersion(versioned.SettingsVersion())
		}
	}
	return s.codec.Marshal(v)
}

func (s *Store[T]) defaultValue() T {
	if s.defaultFn != nil {
		return s.defaultFn()
	}
	var zero T
	return zero
}

// clone copies a value crossing the cache boundary. The default strategy
// round-trips through the codec, which deep-copies maps and slices.
func (s *Store[T]) clone(v T) T {
	if s.cloneFn != nil {
		return s.cloneFn(v)
	}
	data, err := s.codec.Marshal(&v)
	if err != nil {
		return v
	}
	out := new(T)
	if err := s.codec.Unmarshal(data, out); err != nil {
		return v
	}
	return *out
}

// snapshotListeners copies the listener set; called with mu held so
// callbacks run without the lock.
func (s *Store[T]) snapshotListeners() []func(T) {
	out := make([]func(T), 0, len(s.listeners))
	for _, fn := range s.listeners {
		out = append(out, fn)
	}
	return out
}
