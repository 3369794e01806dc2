package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// snapshotPrefix/snapshotExt name the rolling snapshot files written under
// the store's snapshots directory, e.g. snapshots/snapshot_000420.db.
const (
	snapshotPrefix = "snapshot_"
	snapshotExt    = ".db"
)

// Snapshot writes a consistent, file-level copy of the database as it
// stands at tick, using SQLite's VACUUM INTO so the copy is taken without
// holding a long-lived lock against concurrent readers. Once written, it
// enforces the configured retention window by deleting the oldest
// snapshots beyond options.SnapshotRetention.
//
// This serializes a full point-in-time execution state for bootstrapping;
// the "serialize" step is SQLite's own VACUUM INTO rather than a
// field-by-field dump, since the authoritative state already lives in the
// database.
func (s *Store) Snapshot(ctx context.Context, tick int, dir string) (string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s%06d%s", snapshotPrefix, tick, snapshotExt))

	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, path); err != nil {
		return "", fmt.Errorf("failed to snapshot database at tick %d: %w", tick, err)
	}
	if err := s.enforceRetention(dir); err != nil {
		return path, fmt.Errorf("snapshot written but retention cleanup failed: %w", err)
	}
	return path, nil
}

func (s *Store) enforceRetention(dir string) error {
	if s.options.SnapshotRetention <= 0 {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to list snapshot directory: %w", err)
	}
	var ticks []int
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasPrefix(name, snapshotPrefix) || !strings.HasSuffix(name, snapshotExt) {
			continue
		}
		mid := strings.TrimSuffix(strings.TrimPrefix(name, snapshotPrefix), snapshotExt)
		tick, err := strconv.Atoi(mid)
		if err != nil {
			continue
		}
		ticks = append(ticks, tick)
	}
	sort.Ints(ticks)
	excess := len(ticks) - s.options.SnapshotRetention
	for i := 0; i < excess; i++ {
		stale := filepath.Join(dir, fmt.Sprintf("%s%06d%s", snapshotPrefix, ticks[i], snapshotExt))
		if err := os.Remove(stale); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove stale snapshot %s: %w", stale, err)
		}
	}
	return nil
}
