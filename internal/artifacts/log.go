package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// EventLogName is the session event log file name inside a run's
// output directory.
const EventLogName = "events.ndjson"

// EventLog writes session events as newline-delimited JSON (NDJSON).
type EventLog struct {
	mu     sync.Mutex
	file   *os.File
	enc    *json.Encoder
	path   string
	closed bool
}

// NewEventLog creates a log writing NDJSON to dir/events.ndjson.
// Parent directories are created automatically.
func NewEventLog(dir string) (*EventLog, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating session output directory: %w", err)
	}

	path := filepath.Join(dir, EventLogName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening session event log: %w", err)
	}

	return &EventLog{
		file: f,
		enc:  json.NewEncoder(f),
		path: path,
	}, nil
}

// Path returns the log file path.
func (l *EventLog) Path() string { return l.path }

// Log writes a single event as one JSON line. Events logged after
// Close are dropped.
func (l *EventLog) Log(event Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	return l.enc.Encode(event)
}

// Close flushes and closes the underlying file.
func (l *EventLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.file.Close()
}
