/*
Package ledger implements the in-memory leave ledger.

PURPOSE:
  This package contains the core state and operations for tracking
  per-employee leave balances and leave-date history. The ledger is the
  single source of truth: every balance change goes through one of the
  operations defined here, under a per-employee critical section.

KEY CONCEPTS IN THIS FILE (types.go):
  - EmployeeID: Type-safe identifier keying the ledger
  - Record: The balance/history pair tracked per employee
  - SeedRecord: One employee in the initial roster
  - Receipts: Structured results returned by each operation

DESIGN PRINCIPLES:
  1. Fixed roster: Employees are seeded once at startup. Operations against
     unknown identifiers fail with ErrEmployeeNotFound and never create
     records implicitly.
  2. Copy-out ownership: Records returned to callers are detached copies.
     No caller ever holds a mutable reference into the store.
  3. All-or-nothing: A failed operation leaves the ledger exactly as it was.
  4. Failures are data: Operations return typed errors from a small
     taxonomy; nothing panics across the package boundary.

USAGE:
  records, _ := ledger.NewRecordStore(seed)
  svc := ledger.NewService(records)
  receipt, err := svc.ApplyLeave(ledger.ApplyRequest{
      EmployeeID: "E001",
      Date:       "2025-03-01",
      Days:       2,
  })

SEE ALSO:
  - date.go: Calendar-date parsing and expansion
  - records.go: The record store and its locking discipline
  - service.go: The ledger operations
  - errors.go: Error taxonomy
*/
package ledger

import "github.com/shopspring/decimal"

// =============================================================================
// IDENTIFIERS
// =============================================================================

// EmployeeID is an opaque, case-sensitive key into the ledger.
// Identifiers must pre-exist in the seed roster to be operated on.
type EmployeeID string

// =============================================================================
// EMPLOYEE RECORD
// =============================================================================

// Record is the balance/history pair tracked for one employee.
//
// History is insertion-ordered (oldest first) and permits duplicates: two
// separate applications may both consume the same calendar date.
type Record struct {
	Balance int
	History []Date
}

// Clone returns a deep copy. The copy shares no backing storage with the
// original, so mutating one never affects the other.
func (r Record) Clone() Record {
	history := make([]Date, len(r.History))
	copy(history, r.History)
	return Record{Balance: r.Balance, History: history}
}

// HistoryCount returns the number of consumed leave dates on record.
func (r Record) HistoryCount() int { return len(r.History) }

// SeedRecord describes one employee in the initial roster.
type SeedRecord struct {
	ID      EmployeeID
	Balance int
	History []Date
}

// =============================================================================
// OPERATION REQUESTS AND RECEIPTS
// =============================================================================

// DefaultHistoryLimit is applied when a history listing is requested with a
// non-positive limit.
const DefaultHistoryLimit = 20

// BalanceSummary reports an employee's current balance.
type BalanceSummary struct {
	EmployeeID   EmployeeID
	Balance      int
	HistoryCount int
}

// ApplyRequest asks for leave starting at Date for Days consecutive
// calendar days. Date is the raw caller input and is validated by the
// operation; Days must be at least 1.
type ApplyRequest struct {
	EmployeeID EmployeeID
	Date       string
	Days       int
	Reason     string
}

// ApplyReceipt reports a successful leave application.
type ApplyReceipt struct {
	EmployeeID   EmployeeID
	AppliedDates []Date
	Days         int
	NewBalance   int
}

// CancelReceipt reports a successful cancellation. Exactly one history
// entry was removed and exactly one day was refunded.
type CancelReceipt struct {
	EmployeeID    EmployeeID
	CancelledDate Date
	NewBalance    int
}

// History is a page of leave dates, most recent first.
type History struct {
	EmployeeID EmployeeID
	Entries    []Date
	Total      int
}

// AdjustRequest is an administrative balance correction. AdminID identifies
// the caller for the operation log only; it is not authenticated.
type AdjustRequest struct {
	AdminID    string
	EmployeeID EmployeeID
	Delta      int
	Note       string
}

// AdjustReceipt reports the balance after an administrative adjustment.
// Clamped is true when the delta would have driven the balance negative
// and it was held at zero instead.
type AdjustReceipt struct {
	EmployeeID EmployeeID
	NewBalance int
	Clamped    bool
}

// =============================================================================
// DIRECTORY PROJECTIONS
// =============================================================================

// DirectoryEntry is one row of the employee directory.
type DirectoryEntry struct {
	EmployeeID   EmployeeID
	Balance      int
	HistoryCount int
}

// Summary aggregates the directory for administrative reporting.
// AverageBalance is exact decimal arithmetic, not a float.
type Summary struct {
	Employees       int
	TotalBalance    int
	TotalLeaveTaken int
	AverageBalance  decimal.Decimal
}
