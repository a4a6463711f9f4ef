// Package location reduces a set of candidate settings paths to the one
// concrete file path an instance will read and write. Candidates carry an
// explicit priority; ties break on current writability and then on
// registration order, so resolution is deterministic.
package location

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"github.com/confdock/settings/backing"
)

// ErrNoWritableLocation indicates that no candidate directory is even
// theoretically writable. Surfaced at configuration-build time.
var ErrNoWritableLocation = errors.New("no writable settings location among candidates")

// Candidate is one (path, priority) pair under consideration. Higher
// priority wins; ties fall through to writability checks.
type Candidate struct {
	Path     string
	Priority int
}

// AtPath builds a candidate naming an explicit file.
func AtPath(file string, priority int) Candidate {
	return Candidate{Path: file, Priority: priority}
}

// InDir builds a candidate placing fileName inside dir.
func InDir(dir, fileName string, priority int) Candidate {
	return Candidate{Path: filepath.Join(dir, fileName), Priority: priority}
}

// InExecutableDir builds a candidate next to the running binary. When the
// executable path cannot be determined the working directory is used.
func InExecutableDir(fileName string, priority int) Candidate {
	return Candidate{Path: filepath.Join(executableDir(), fileName), Priority: priority}
}

// InUserConfigDir builds a candidate inside the per-OS user configuration
// directory, namespaced by appName.
func InUserConfigDir(appName, fileName string, priority int) (Candidate, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return Candidate{}, fmt.Errorf("user config dir: %w", err)
	}
	return Candidate{Path: filepath.Join(dir, appName, fileName), Priority: priority}, nil
}

// Resolver ranks candidates against a backing store.
type Resolver struct {
	store  backing.Store
	logger *slog.Logger
}

// NewResolver creates a resolver over store. A nil logger falls back to
// slog.Default.
func NewResolver(store backing.Store, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{store: store, logger: logger}
}

// Writability classes, best first. Candidates scoring unwritable are
// never chosen.
const (
	classExistsWritable  = 3
	classDirProbeOK      = 2
	classAncestorProbeOK = 1
	classUnwritable      = 0
)

// Resolve picks the winning path. Ranking, descending: explicit priority,
// then file-exists-and-opens-for-write, then containing-directory probe,
// then nearest-existing-ancestor probe, then registration order. An empty candidate set synthesizes a single
// candidate named defaultName in the executable directory. When the
// winner has no file extension, ext (the codec's canonical extension) is
// appended.
func (r *Resolver) Resolve(candidates []Candidate, defaultName, ext string) (string, error) {
	if len(candidates) == 0 {
		candidates = []Candidate{InExecutableDir(defaultName, 0)}
	}

	type ranked struct {
		Candidate
		class int
		order int
	}
	rankedCands := make([]ranked, 0, len(candidates))
	for i, c := range candidates {
		rankedCands = append(rankedCands, ranked{
			Candidate: c,
			class:     r.classify(c.Path),
			order:     i,
		})
	}
	sort.SliceStable(rankedCands, func(i, j int) bool {
		a, b := rankedCands[i], rankedCands[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if a.class != b.class {
			return a.class > b.class
		}
		return a.order < b.order
	})

	for _, c := range rankedCands {
		if c.class == classUnwritable {
			continue
		}
		path := c.Path
		if filepath.Ext(path) == "" {
			path += ext
		}
		r.logger.Debug("settings location resolved",
			"path", path, "priority", c.Priority, "candidates", len(candidates))
		return path, nil
	}
	return "", fmt.Errorf("%w: %d candidate(s) checked", ErrNoWritableLocation, len(candidates))
}

// classify scores one candidate path. A missing containing directory is
// not disqualifying: the writer creates missing directories on first
// save, so the nearest existing ancestor is probed instead and the
// candidate ranks one tier below a probe of the directory itself.
func (r *Resolver) classify(path string) int {
	if r.store.Exists(path) && r.store.CanOpenWrite(path) {
		return classExistsWritable
	}
	dir := filepath.Dir(path)
	if r.store.Exists(dir) {
		if r.probeDir(dir) {
			return classDirProbeOK
		}
		return classUnwritable
	}
	if anc, ok := r.existingAncestor(dir); ok && r.probeDir(anc) {
		return classAncestorProbeOK
	}
	return classUnwritable
}

// probeDir checks writability by creating and removing a uniquely named
// file inside dir.
func (r *Resolver) probeDir(dir string) bool {
	probe := filepath.Join(dir, ".probe_"+uuid.NewString())
	if err := r.store.WriteFile(probe, nil, 0o600); err != nil {
		return false
	}
	if err := r.store.Remove(probe); err != nil {
		r.logger.Warn("probe file left behind", "path", probe, "error", err)
	}
	return true
}

// existingAncestor walks dir upward to the closest directory that
// exists in the backing store.
func (r *Resolver) existingAncestor(dir string) (string, bool) {
	for !r.store.Exists(dir) {
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
	return dir, true
}

func executableDir() string {
	exe, err := os.Executable()
	if err != nil {
		wd, _ := os.Getwd()
		return wd
	}
	return filepath.Dir(exe)
}
