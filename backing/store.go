// Package backing abstracts the minimal filesystem capability the
// persistence engine depends on: existence checks, whole-file reads and
// writes, and atomic replacement. It carries no knowledge of settings
// types or formats.
package backing

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Store is the file-existence/open/replace capability the engine is built
// on. Implementations must be safe for concurrent use.
type Store interface {
	// Exists reports whether path names an existing file or directory.
	Exists(path string) bool

	// ReadFile returns the full contents of the file at path.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to path, creating the file if needed.
	WriteFile(path string, data []byte, perm os.FileMode) error

	// Replace moves oldpath onto newpath, replacing any existing file.
	// On stores that support it the replacement is atomic.
	Replace(oldpath, newpath string) error

	// MkdirAll creates dir and any missing parents.
	MkdirAll(dir string, perm os.FileMode) error

	// Remove deletes the file at path.
	Remove(path string) error

	// Stat returns file metadata for path.
	Stat(path string) (os.FileInfo, error)

	// ReadDir lists the entries of dir.
	ReadDir(dir string) ([]os.FileInfo, error)

	// CanOpenWrite reports whether the existing file at path can be
	// opened for writing right now.
	CanOpenWrite(path string) bool

	// Watchable reports whether OS-level file change notifications work
	// against this store. Only the real filesystem qualifies.
	Watchable() bool
}

type fsStore struct {
	fs        afero.Fs
	watchable bool
}

// OS returns a Store backed by the real filesystem.
func OS() Store {
	return &fsStore{fs: afero.NewOsFs(), watchable: true}
}

// Mem returns an in-memory Store. Useful in tests; file change
// notifications are unavailable against it.
func Mem() Store {
	return &fsStore{fs: afero.NewMemMapFs()}
}

// FromFs wraps an arbitrary afero filesystem as a Store. The result is
// not watchable.
func FromFs(fs afero.Fs) Store {
	return &fsStore{fs: fs}
}

func (s *fsStore) Exists(path string) bool {
	_, err := s.fs.Stat(path)
	return err == nil
}

func (s *fsStore) ReadFile(path string) ([]byte, error) {
	return afero.ReadFile(s.fs, path)
}

func (s *fsStore) WriteFile(path string, data []byte, perm os.FileMode) error {
	return afero.WriteFile(s.fs, path, data, perm)
}

// Replace prefers a plain rename, which replaces the target atomically on
// POSIX filesystems. Stores whose rename refuses to clobber an existing
// target (the in-memory filesystem does this) fall back to remove+rename.
func (s *fsStore) Replace(oldpath, newpath string) error {
	err := s.fs.Rename(oldpath, newpath)
	if err == nil {
		return nil
	}
	if _, statErr := s.fs.Stat(newpath); statErr != nil {
		return err
	}
	if rmErr := s.fs.Remove(newpath); rmErr != nil {
		return err
	}
	return s.fs.Rename(oldpath, newpath)
}

func (s *fsStore) MkdirAll(dir string, perm os.FileMode) error {
	return s.fs.MkdirAll(dir, perm)
}

func (s *fsStore) Remove(path string) error {
	return s.fs.Remove(path)
}

func (s *fsStore) Stat(path string) (os.FileInfo, error) {
	return s.fs.Stat(path)
}

func (s *fsStore) ReadDir(dir string) ([]os.FileInfo, error) {
	return afero.ReadDir(s.fs, dir)
}

func (s *fsStore) CanOpenWrite(path string) bool {
	f, err := s.fs.OpenFile(filepath.Clean(path), os.O_WRONLY, 0)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

func (s *fsStore) Watchable() bool {
	return s.watchable
}
