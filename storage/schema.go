// Package storage holds the authoritative SQLite-backed state for a
// townloop world: sparse cells, polymorphic objects, agents, inventories,
// conversations, invitations, structures and named places. It also owns
// the append-only event log used for audit (never replayed) and the
// rolling snapshot policy used for disaster recovery.
//
// WAL-mode SQLite is opened with tunable pragmas, the schema is created
// idempotently with CREATE TABLE IF NOT EXISTS, and all writes from one
// logical unit (here: one tick) commit as a single transaction.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Options configures the SQLite store.
type Options struct {
	QueryTimeout      time.Duration
	PragmaJournalMode string
	PragmaSyncMode    string
	MaxConnections    int
	// SnapshotRetention is how many rolling snapshots to keep.
	SnapshotRetention int
}

// DefaultOptions returns sensible defaults for local and test use.
func DefaultOptions() Options {
	return Options{
		QueryTimeout:      30 * time.Second,
		PragmaJournalMode: "WAL",
		PragmaSyncMode:    "NORMAL",
		MaxConnections:    10,
		SnapshotRetention: 5,
	}
}

// Store is the authoritative relational store for one world.
type Store struct {
	db      *sql.DB
	dbPath  string
	mutex   sync.RWMutex
	options Options
	log     *EventLog
}

// Open opens (creating if needed) the SQLite database at dbPath and its
// companion append-only event log at logPath.
func Open(dbPath, logPath string, options Options) (*Store, error) {
	if options.MaxConnections == 0 {
		options = DefaultOptions()
	}
	s := &Store{dbPath: dbPath, options: options}
	if err := s.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize sqlite store: %w", err)
	}
	eventLog, err := OpenEventLog(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}
	s.log = eventLog
	return s, nil
}

func (s *Store) initialize() error {
	dsn := fmt.Sprintf("%s?_journal_mode=%s&_sync=%s&_foreign_keys=1&_timeout=5000",
		s.dbPath, s.options.PragmaJournalMode, s.options.PragmaSyncMode)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(s.options.MaxConnections)
	db.SetMaxIdleConns(s.options.MaxConnections / 2)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), s.options.QueryTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	s.db = db
	return s.createSchema(ctx)
}

// LastSeq reports the highest event sequence number persisted so far,
// used by the engine to bootstrap its in-memory counter on startup.
func (s *Store) LastSeq() (int64, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.log.LastSeq()
}

// Close closes the database handle and the event log file.
func (s *Store) Close() error {
	var err error
	if s.db != nil {
		err = s.db.Close()
	}
	if s.log != nil {
		if lerr := s.log.Close(); lerr != nil && err == nil {
			err = lerr
		}
	}
	return err
}

func (s *Store) createSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`,
		`CREATE TABLE IF NOT EXISTS world_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			tick INTEGER NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			weather TEXT NOT NULL,
			replay_hash TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS cells (
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			terrain TEXT NOT NULL,
			walls TEXT NOT NULL DEFAULT '',
			doors TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (x, y)
		)`,
		`CREATE TABLE IF NOT EXISTS objects (
			id TEXT PRIMARY KEY,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			kind TEXT NOT NULL,
			created_tick INTEGER NOT NULL,
			created_by TEXT NOT NULL,
			extras TEXT NOT NULL DEFAULT '{}'
		)`,
		`CREATE INDEX IF NOT EXISTS idx_objects_pos ON objects(x, y)`,
		`CREATE TABLE IF NOT EXISTS agents (
			name TEXT PRIMARY KEY,
			model_id TEXT NOT NULL,
			personality TEXT NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			facing TEXT NOT NULL,
			sleeping INTEGER NOT NULL DEFAULT 0,
			session_id TEXT NOT NULL DEFAULT '',
			last_turn_tick INTEGER NOT NULL DEFAULT 0,
			journey TEXT NOT NULL DEFAULT '',
			known_agents TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS inventory_stacks (
			agent_name TEXT NOT NULL,
			kind TEXT NOT NULL,
			count INTEGER NOT NULL,
			PRIMARY KEY (agent_name, kind)
		)`,
		`CREATE TABLE IF NOT EXISTS inventory_items (
			unique_id TEXT PRIMARY KEY,
			agent_name TEXT NOT NULL,
			kind TEXT NOT NULL,
			properties TEXT NOT NULL DEFAULT '{}'
		)`,
		`CREATE TABLE IF NOT EXISTS named_places (
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			name TEXT NOT NULL,
			PRIMARY KEY (x, y)
		)`,
		`CREATE TABLE IF NOT EXISTS structures (
			id TEXT PRIMARY KEY,
			interior TEXT NOT NULL,
			creators TEXT NOT NULL,
			is_private INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS conversations (
			id TEXT PRIMARY KEY,
			privacy TEXT NOT NULL,
			started_tick INTEGER NOT NULL,
			ended_tick INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS conversation_participants (
			conversation_id TEXT NOT NULL,
			agent_name TEXT NOT NULL,
			last_turn_tick INTEGER NOT NULL,
			PRIMARY KEY (conversation_id, agent_name)
		)`,
		`CREATE TABLE IF NOT EXISTS conversation_turns (
			conversation_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			speaker TEXT NOT NULL,
			text TEXT NOT NULL,
			tick INTEGER NOT NULL,
			PRIMARY KEY (conversation_id, seq)
		)`,
		`CREATE TABLE IF NOT EXISTS conversation_invitations (
			id TEXT PRIMARY KEY,
			inviter TEXT NOT NULL,
			invitee TEXT NOT NULL,
			privacy TEXT NOT NULL,
			created_tick INTEGER NOT NULL,
			status TEXT NOT NULL
		)`,
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO world_state (id, tick, width, height, weather) VALUES (1, 0, 0, 0, 'clear')`); err != nil {
		return err
	}
	return tx.Commit()
}
