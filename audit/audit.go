/*
Package audit keeps an append-only journal of ledger operations.

PURPOSE:
  Every operation the ledger runs, successful or failed, becomes one
  immutable Entry. The journal answers "who did what to whose balance,
  and when" after the fact. The ledger itself never reads the journal;
  losing it loses history, not balances.

IMPLEMENTATIONS:
  - Memory: Unbounded in-process journal, used in tests and as a fallback
  - sqlite.Log: Durable journal in a SQLite file (see audit/sqlite)

WRITE PATH:
  Entries are produced by the Recorder (recorder.go), which listens to the
  ledger's operation log and appends in the background so the request path
  never waits on journal I/O.
*/
package audit

import (
	"context"
	"sync"
	"time"
)

// DefaultQueryLimit caps journal reads when the caller does not give a
// limit of their own.
const DefaultQueryLimit = 50

// Entry is one journaled operation. Entries are immutable once appended.
type Entry struct {
	ID         string
	At         time.Time
	Actor      string
	Operation  string
	EmployeeID string
	Status     string
	Detail     string
	Error      string
}

// Filter narrows a journal query. Zero-valued fields match everything;
// a non-positive Limit falls back to DefaultQueryLimit.
type Filter struct {
	EmployeeID string
	Operation  string
	Status     string
	Limit      int
}

// Matches reports whether the entry passes the filter's field constraints.
// Limit is not part of the match.
func (f Filter) Matches(e Entry) bool {
	if f.EmployeeID != "" && e.EmployeeID != f.EmployeeID {
		return false
	}
	if f.Operation != "" && e.Operation != f.Operation {
		return false
	}
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	return true
}

// Log is an append-only journal of operation entries.
type Log interface {
	// Append journals one entry.
	Append(ctx context.Context, e Entry) error

	// Query returns matching entries, newest first.
	Query(ctx context.Context, f Filter) ([]Entry, error)

	// Close releases any underlying resources.
	Close() error
}

// =============================================================================
// IN-MEMORY JOURNAL
// =============================================================================

// Memory is an in-process Log. Entries live for the lifetime of the
// process. Safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewMemory returns an empty in-memory journal.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Append(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *Memory) Query(_ context.Context, f Filter) ([]Entry, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit > len(m.entries) {
		limit = len(m.entries)
	}
	out := make([]Entry, 0, limit)
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if f.Matches(m.entries[i]) {
			out = append(out, m.entries[i])
		}
	}
	return out, nil
}

// Len returns the number of journaled entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *Memory) Close() error { return nil }
