/*
records.go - Record store with per-employee critical sections

PURPOSE:
  Holds every employee Record in memory and serializes access per employee.
  Concurrency is the whole point of this file: operations against different
  employees run in parallel, while two operations against the same employee
  are strictly ordered.

LOCKING DISCIPLINE:
  Each employee gets a dedicated cell with its own RWMutex, built once at
  construction. The roster is fixed after seeding, so the cell map itself
  is never written after NewRecordStore returns and needs no lock of its
  own. Reads take the cell read-lock and return a copy; mutations take the
  write-lock, work on a clone, and commit the clone only on success.
*/
package ledger

import (
	"fmt"
	"sync"
)

// cell pairs one employee's record with the lock that guards it.
type cell struct {
	mu  sync.RWMutex
	rec Record
}

// RecordStore is the in-memory home of all employee records.
//
// The store is safe for concurrent use. The set of employees is fixed at
// construction; operations referencing an unknown identifier fail with a
// NotFoundError rather than creating a record.
type RecordStore struct {
	cells map[EmployeeID]*cell
	order []EmployeeID
}

// NewRecordStore seeds a store from the roster. Seed order is preserved
// and becomes the iteration order of Directory.
func NewRecordStore(seed []SeedRecord) (*RecordStore, error) {
	s := &RecordStore{
		cells: make(map[EmployeeID]*cell, len(seed)),
		order: make([]EmployeeID, 0, len(seed)),
	}
	for _, sr := range seed {
		if sr.ID == "" {
			return nil, fmt.Errorf("seed: empty employee id")
		}
		if _, dup := s.cells[sr.ID]; dup {
			return nil, fmt.Errorf("seed: duplicate employee %q", sr.ID)
		}
		if sr.Balance < 0 {
			return nil, fmt.Errorf("seed: employee %q has negative balance %d", sr.ID, sr.Balance)
		}
		history := make([]Date, len(sr.History))
		copy(history, sr.History)
		s.cells[sr.ID] = &cell{rec: Record{Balance: sr.Balance, History: history}}
		s.order = append(s.order, sr.ID)
	}
	return s, nil
}

// Len returns the number of employees in the roster.
func (s *RecordStore) Len() int { return len(s.order) }

// Get returns a copy of the employee's record.
func (s *RecordStore) Get(id EmployeeID) (Record, error) {
	c, ok := s.cells[id]
	if !ok {
		return Record{}, &NotFoundError{EmployeeID: id}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rec.Clone(), nil
}

// Mutate runs fn against a clone of the employee's record under the
// employee's exclusive lock. The clone replaces the stored record only
// when fn returns nil; any error leaves the store untouched. The committed
// record is returned as a copy.
//
// fn must not block on other ledger state: it runs inside the critical
// section.
func (s *RecordStore) Mutate(id EmployeeID, fn func(r *Record) error) (Record, error) {
	c, ok := s.cells[id]
	if !ok {
		return Record{}, &NotFoundError{EmployeeID: id}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	next := c.rec.Clone()
	if err := fn(&next); err != nil {
		return Record{}, err
	}
	c.rec = next
	return next.Clone(), nil
}

// Directory snapshots every employee in seed order. Each row is read under
// its own cell lock, so the listing is per-employee consistent but not a
// point-in-time snapshot of the whole store.
func (s *RecordStore) Directory() []DirectoryEntry {
	out := make([]DirectoryEntry, 0, len(s.order))
	for _, id := range s.order {
		c := s.cells[id]
		c.mu.RLock()
		out = append(out, DirectoryEntry{
			EmployeeID:   id,
			Balance:      c.rec.Balance,
			HistoryCount: len(c.rec.History),
		})
		c.mu.RUnlock()
	}
	return out
}
