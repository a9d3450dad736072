/*
service.go - Ledger operations

PURPOSE:
  Implements every operation the ledger supports. Each mutation runs as an
  all-or-nothing step inside the employee's critical section: validation
  failures and rejections leave both balance and history exactly as they
  were.

OPERATIONS:
  - CheckBalance: Current balance for one employee
  - ApplyLeave: Consume N days and record N consecutive dates
  - CancelLeave: Remove one history entry and refund exactly one day
  - LeaveHistory: Most-recent-first page of leave dates
  - AdjustBalance: Administrative correction, clamped at zero
  - ListEmployees / DirectorySummary: Directory projections

VALIDATION ORDER:
  Input checks run before the employee lookup, so a malformed date against
  an unknown employee reports the date problem. State checks (balance,
  history membership) run last, inside the critical section.
*/
package ledger

import (
	"math"

	"github.com/shopspring/decimal"
)

// Service exposes the ledger operations over a RecordStore.
//
// The service itself does no I/O: attached OperationLoggers observe every
// operation and connect the ledger to logging, auditing, and the change
// feed without the core depending on any of them.
type Service struct {
	records *RecordStore
	loggers []OperationLogger
}

// NewService wraps a record store with the ledger operations.
func NewService(records *RecordStore, opts ...ServiceOption) *Service {
	s := &Service{records: records}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// =============================================================================
// READ OPERATIONS
// =============================================================================

// CheckBalance returns the employee's current balance.
func (s *Service) CheckBalance(id EmployeeID) (BalanceSummary, error) {
	rec, err := s.records.Get(id)
	if err != nil {
		s.fail(OpCheckBalance, id, "", err)
		return BalanceSummary{}, err
	}
	out := BalanceSummary{
		EmployeeID:   id,
		Balance:      rec.Balance,
		HistoryCount: rec.HistoryCount(),
	}
	s.emit(OperationLog{
		Operation:  OpCheckBalance,
		EmployeeID: id,
		NewBalance: rec.Balance,
		Status:     StatusOK,
	})
	return out, nil
}

// LeaveHistory returns up to limit leave dates, most recent first. A
// non-positive limit falls back to DefaultHistoryLimit. Total always
// reports the full history length regardless of the page size.
func (s *Service) LeaveHistory(id EmployeeID, limit int) (History, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	rec, err := s.records.Get(id)
	if err != nil {
		s.fail(OpLeaveHistory, id, "", err)
		return History{}, err
	}
	n := limit
	if n > len(rec.History) {
		n = len(rec.History)
	}
	entries := make([]Date, 0, n)
	for i := len(rec.History) - 1; i >= 0 && len(entries) < n; i-- {
		entries = append(entries, rec.History[i])
	}
	s.emit(OperationLog{
		Operation:  OpLeaveHistory,
		EmployeeID: id,
		Status:     StatusOK,
	})
	return History{EmployeeID: id, Entries: entries, Total: len(rec.History)}, nil
}

// ListEmployees returns the directory in roster order.
func (s *Service) ListEmployees() []DirectoryEntry {
	dir := s.records.Directory()
	s.emit(OperationLog{Operation: OpListEmployees, Status: StatusOK})
	return dir
}

// DirectorySummary aggregates the directory. The average is computed in
// decimal arithmetic and rounded to two places.
func (s *Service) DirectorySummary() Summary {
	dir := s.records.Directory()
	sum := Summary{Employees: len(dir), AverageBalance: decimal.Zero}
	for _, e := range dir {
		sum.TotalBalance += e.Balance
		sum.TotalLeaveTaken += e.HistoryCount
	}
	if sum.Employees > 0 {
		sum.AverageBalance = decimal.NewFromInt(int64(sum.TotalBalance)).
			Div(decimal.NewFromInt(int64(sum.Employees))).
			Round(2)
	}
	return sum
}

// =============================================================================
// MUTATIONS
// =============================================================================

// ApplyLeave consumes req.Days from the balance and appends the expanded
// consecutive dates to the history. The date expansion is calendar-exact:
// month, year, and leap-day boundaries roll over correctly, and the span
// is built inside the critical section only once the balance admits the
// request.
//
// Re-applying for a date already in the history is allowed and records
// the date again.
func (s *Service) ApplyLeave(req ApplyRequest) (ApplyReceipt, error) {
	start, err := ParseDate(req.Date)
	if err != nil {
		s.fail(OpApplyLeave, req.EmployeeID, "", err)
		return ApplyReceipt{}, err
	}
	if req.Days < 1 {
		err := &InvalidQuantityError{Days: req.Days}
		s.fail(OpApplyLeave, req.EmployeeID, "", err)
		return ApplyReceipt{}, err
	}

	var (
		receipt ApplyReceipt
		dates   []Date
	)
	_, err = s.records.Mutate(req.EmployeeID, func(r *Record) error {
		if req.Days > r.Balance {
			return &InsufficientBalanceError{
				EmployeeID: req.EmployeeID,
				Requested:  req.Days,
				Available:  r.Balance,
			}
		}
		dates = start.Span(req.Days)
		r.Balance -= req.Days
		r.History = append(r.History, dates...)
		receipt = ApplyReceipt{
			EmployeeID:   req.EmployeeID,
			AppliedDates: dates,
			Days:         req.Days,
			NewBalance:   r.Balance,
		}
		return nil
	})
	if err != nil {
		s.fail(OpApplyLeave, req.EmployeeID, "", err)
		return ApplyReceipt{}, err
	}
	s.emit(OperationLog{
		Operation:  OpApplyLeave,
		EmployeeID: req.EmployeeID,
		Dates:      dates,
		Days:       req.Days,
		NewBalance: receipt.NewBalance,
		Reason:     req.Reason,
		Status:     StatusOK,
	})
	return receipt, nil
}

// CancelLeave removes the first history entry matching date and refunds
// exactly one day. Multi-day applications are cancelled one date at a
// time.
func (s *Service) CancelLeave(id EmployeeID, date string) (CancelReceipt, error) {
	day, err := ParseDate(date)
	if err != nil {
		s.fail(OpCancelLeave, id, "", err)
		return CancelReceipt{}, err
	}

	var receipt CancelReceipt
	_, err = s.records.Mutate(id, func(r *Record) error {
		idx := -1
		for i, d := range r.History {
			if d.Equal(day) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return &NoSuchLeaveEntryError{EmployeeID: id, Date: day}
		}
		r.History = append(r.History[:idx], r.History[idx+1:]...)
		r.Balance++
		receipt = CancelReceipt{
			EmployeeID:    id,
			CancelledDate: day,
			NewBalance:    r.Balance,
		}
		return nil
	})
	if err != nil {
		s.fail(OpCancelLeave, id, "", err)
		return CancelReceipt{}, err
	}
	s.emit(OperationLog{
		Operation:  OpCancelLeave,
		EmployeeID: id,
		Dates:      []Date{day},
		NewBalance: receipt.NewBalance,
		Status:     StatusOK,
	})
	return receipt, nil
}

// AdjustBalance applies a signed administrative delta. A delta that would
// drive the balance negative clamps the result to zero; the receipt says
// so via Clamped. A positive delta too large to add without integer
// overflow fails as an invalid quantity. AdminID is recorded, not
// authenticated.
func (s *Service) AdjustBalance(req AdjustRequest) (AdjustReceipt, error) {
	var receipt AdjustReceipt
	_, err := s.records.Mutate(req.EmployeeID, func(r *Record) error {
		if req.Delta > 0 && r.Balance > math.MaxInt-req.Delta {
			return &DeltaOverflowError{
				EmployeeID: req.EmployeeID,
				Delta:      req.Delta,
				Balance:    r.Balance,
			}
		}
		clamped := false
		r.Balance += req.Delta
		if r.Balance < 0 {
			r.Balance = 0
			clamped = true
		}
		receipt = AdjustReceipt{
			EmployeeID: req.EmployeeID,
			NewBalance: r.Balance,
			Clamped:    clamped,
		}
		return nil
	})
	if err != nil {
		s.fail(OpAdjustBalance, req.EmployeeID, req.AdminID, err)
		return AdjustReceipt{}, err
	}
	s.emit(OperationLog{
		Operation:  OpAdjustBalance,
		EmployeeID: req.EmployeeID,
		Actor:      req.AdminID,
		Delta:      req.Delta,
		NewBalance: receipt.NewBalance,
		Reason:     req.Note,
		Status:     StatusOK,
	})
	return receipt, nil
}

// =============================================================================
// OPERATION LOG FANOUT
// =============================================================================

func (s *Service) emit(l OperationLog) {
	for _, lg := range s.loggers {
		lg.LogOperation(l)
	}
}

func (s *Service) fail(op string, id EmployeeID, actor string, err error) {
	s.emit(OperationLog{
		Operation:  op,
		EmployeeID: id,
		Actor:      actor,
		Status:     StatusError,
		Err:        err,
	})
}
