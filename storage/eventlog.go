package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/townloop/engine/domain"
)

// EventLog is the human-readable, append-only audit log (events.jsonl).
// It is never read back by the engine on startup (recovery uses the
// database only); its sole purpose is human audit and the
// replay-equivalence check.
//
// Each line is length-framed ("<byte-count>\n<json line>\n") so a
// process killed mid-write leaves a detectable, discardable partial
// frame on reopen, rather than a JSON parse error or silent corruption.
type EventLog struct {
	mu   sync.Mutex
	file *os.File
	path string
}

// OpenEventLog opens (creating if necessary) the event log file for
// appending.
func OpenEventLog(path string) (*EventLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log %s: %w", path, err)
	}
	return &EventLog{file: f, path: path}, nil
}

// Path returns the event log's file path.
func (l *EventLog) Path() string {
	return l.path
}

// Close closes the underlying file.
func (l *EventLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// Append writes each event as one length-framed line. All events are
// written before the call returns, but no fsync is forced per-event;
// callers append under the same transaction envelope as the DB commit
// and should call Sync afterward.
func (l *EventLog) Append(events []domain.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var sb strings.Builder
	for _, e := range events {
		line, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to marshal event for log: %w", err)
		}
		sb.WriteString(strconv.Itoa(len(line)))
		sb.WriteByte('\n')
		sb.Write(line)
		sb.WriteByte('\n')
	}
	if _, err := l.file.WriteString(sb.String()); err != nil {
		return fmt.Errorf("failed to append to event log: %w", err)
	}
	return nil
}

// Sync forces the event log to stable storage.
func (l *EventLog) Sync() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Sync()
}

// LastSeq reports the highest sequence number appended so far by reading
// the log back (an audit-only read, used solely to bootstrap the
// in-memory sequence counter on engine startup — authoritative state
// reconstruction still comes from Store.Load alone).
func (l *EventLog) LastSeq() (int64, error) {
	events, err := ReadAllEvents(l.path)
	if err != nil {
		return 0, err
	}
	var max int64
	for _, e := range events {
		if e.Seq > max {
			max = e.Seq
		}
	}
	return max, nil
}

// Size reports the current length of the log file, used to support
// rollback-by-truncation when a tick's database commit fails after its
// events were already appended to the log.
func (l *EventLog) Size() (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	info, err := l.file.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Truncate rolls the log file back to a previously recorded size. Used to
// undo a partially-applied tick when the paired database transaction
// fails, keeping the log and the database in lockstep: on any failure
// both are rolled back together.
func (l *EventLog) Truncate(size int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.file.Truncate(size); err != nil {
		return err
	}
	_, err := l.file.Seek(size, 0)
	return err
}

// ReadAllEvents replays the event log for audit purposes only (never used by the
// engine to reconstruct state). It detects and discards a torn trailing
// frame: if the final length header's byte count does not match the bytes
// actually present, that last (partial) record is dropped rather than
// causing a read error.
func ReadAllEvents(path string) ([]domain.Event, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open event log %s: %w", path, err)
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	var out []domain.Event
	for {
		header, err := reader.ReadString('\n')
		if err != nil {
			// EOF with no (or partial) header: nothing more to discard,
			// or a torn frame header — either way, stop cleanly.
			break
		}
		header = strings.TrimSuffix(header, "\n")
		n, err := strconv.Atoi(header)
		if err != nil || n < 0 {
			// Not a valid frame header; treat remainder as torn and stop.
			break
		}
		buf := make([]byte, n)
		read, err := io.ReadFull(reader, buf)
		if err != nil || read != n {
			// Torn write: fewer bytes than the frame promised. Discard.
			break
		}
		// consume the trailing newline after the JSON payload, if present.
		if nl, err := reader.ReadByte(); err == nil && nl != '\n' {
			// Unexpected: no trailing newline means a torn frame too.
			break
		}
		var ev domain.Event
		if err := json.Unmarshal(buf, &ev); err != nil {
			break
		}
		out = append(out, ev)
	}
	return out, nil
}
