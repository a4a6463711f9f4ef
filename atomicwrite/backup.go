package atomicwrite

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

const backupSuffix = ".bak"

// rotateBackups copies the current target to a fresh timestamped backup
// and prunes the oldest copies beyond the retention count. Called with
// the writer mutex held, before the temp file is written.
func (w *Writer) rotateBackups(path string) error {
	data, err := w.store.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read target for backup: %w", err)
	}
	bak := stampedName(path, backupSuffix)
	if err := w.store.WriteFile(bak, data, 0o644); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	return w.prune(path, w.opts.BackupMaxCount)
}

// ListBackups returns the backup files for path, oldest first. Backup
// names embed a zero-padded timestamp, so lexical order is age order.
func (w *Writer) ListBackups(path string) ([]string, error) {
	dir := filepath.Dir(path)
	entries, err := w.store.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	ext := filepath.Ext(path)
	prefix := strings.TrimSuffix(filepath.Base(path), ext) + "_"
	suffix := ext + backupSuffix

	var backups []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() && strings.HasPrefix(name, prefix) && strings.HasSuffix(name, suffix) {
			backups = append(backups, filepath.Join(dir, name))
		}
	}
	sort.Strings(backups)
	return backups, nil
}

// PruneBackups deletes all but the keep most recent backups for path.
func (w *Writer) PruneBackups(path string, keep int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.prune(path, keep)
}

func (w *Writer) prune(path string, keep int) error {
	backups, err := w.ListBackups(path)
	if err != nil {
		return err
	}
	if keep < 0 {
		keep = 0
	}
	for len(backups) > keep {
		victim := backups[0]
		if err := w.store.Remove(victim); err != nil {
			return fmt.Errorf("prune backup %s: %w", victim, err)
		}
		w.logger.Debug("pruned settings backup", "path", victim)
		backups = backups[1:]
	}
	return nil
}
