package engine

import "context"

// maybeSnapshot writes snapshots/snapshot_<tick>.db every SnapshotInterval
// ticks, delegating the file-level copy and retention pruning to
// storage.Store.Snapshot. A snapshot failure is swallowed: it's a
// disaster-recovery convenience, not part of the commit's durability
// contract; only a storage write failure is tick-fatal.
func (e *Engine) maybeSnapshot(ctx context.Context, tick int) {
	interval := e.cfg.Storage.SnapshotInterval
	dir := e.cfg.Storage.SnapshotDir
	if interval <= 0 || dir == "" || tick%interval != 0 {
		return
	}
	_, _ = e.store.Snapshot(ctx, tick, dir)
}
