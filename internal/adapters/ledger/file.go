package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"signalwatcher/internal/ports"
)

// FileLedger implements the ports.SentLedger interface as a JSON array of
// trade IDs on local disk, oldest first. Retention is bounded: after any
// record, only the most recent entries are kept.
type FileLedger struct {
	path      string
	retention int
	logger    ports.Logger

	mu      sync.Mutex
	entries []string
	index   map[string]struct{}
}

// Config holds configuration for the file ledger.
type Config struct {
	Path      string
	Retention int // Maximum number of IDs kept; older ones are evicted
	Logger    ports.Logger
}

// New creates a file ledger and loads any existing state. A missing or
// corrupt file is never fatal: the ledger starts empty and overwrites the
// file on the next record.
func New(cfg Config) (*FileLedger, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for file ledger")
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("%w: ledger path is required", ports.ErrConfigurationError)
	}
	if cfg.Retention <= 0 {
		return nil, fmt.Errorf("%w: ledger retention must be positive", ports.ErrConfigurationError)
	}

	l := &FileLedger{
		path:      cfg.Path,
		retention: cfg.Retention,
		logger:    cfg.Logger,
		index:     make(map[string]struct{}),
	}
	l.load()
	return l, nil
}

func (l *FileLedger) load() {
	ctx := context.Background()
	raw, err := os.ReadFile(l.path)
	if err != nil {
		if !os.IsNotExist(err) {
			l.logger.Warn(ctx, "Could not read sent-trades ledger, starting empty", map[string]interface{}{"path": l.path, "error": err.Error()})
		}
		return
	}
	var entries []string
	if err := json.Unmarshal(raw, &entries); err != nil {
		l.logger.Warn(ctx, "Corrupt sent-trades ledger, starting empty", map[string]interface{}{"path": l.path, "error": err.Error()})
		return
	}
	l.entries = entries
	for _, id := range entries {
		l.index[id] = struct{}{}
	}
	l.logger.Info(ctx, "Sent-trades ledger loaded", map[string]interface{}{"path": l.path, "entries": len(entries)})
}

// Has reports whether the identity has been recorded.
func (l *FileLedger) Has(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.index[id]
	return ok
}

// Record adds the identity and persists synchronously. Recording an ID that
// is already present is a no-op.
func (l *FileLedger) Record(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.index[id]; ok {
		return nil
	}
	l.entries = append(l.entries, id)
	l.index[id] = struct{}{}

	// Keep only the most recent IDs so the file stays bounded while the
	// recent-collision window is preserved.
	if len(l.entries) > l.retention {
		evicted := l.entries[:len(l.entries)-l.retention]
		l.entries = l.entries[len(l.entries)-l.retention:]
		for _, old := range evicted {
			delete(l.index, old)
		}
	}
	return l.persist()
}

// persist writes the ledger to disk. Caller must hold l.mu.
func (l *FileLedger) persist() error {
	data, err := json.MarshalIndent(l.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding ledger: %w", err)
	}
	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating ledger directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(l.path, data, 0644); err != nil {
		return fmt.Errorf("writing ledger %s: %w", l.path, err)
	}
	return nil
}

// Len returns the number of retained entries.
func (l *FileLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
