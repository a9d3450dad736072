/*
errors.go - Error taxonomy for ledger operations

PURPOSE:
  Defines the sentinel errors operations return and the structured error
  types that carry context (who, what, how much). Callers branch with
  errors.Is against the sentinels or with the predicates at the bottom of
  this file; they never parse message strings.

ERROR CATEGORIES:
  - Lookup: ErrEmployeeNotFound
  - Validation: ErrInvalidDate, ErrInvalidQuantity
  - Domain: ErrInsufficientBalance, ErrNoSuchLeaveEntry
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	// ErrEmployeeNotFound indicates the identifier is not in the roster.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrInvalidDate indicates a date input that is not a real calendar
	// date in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidQuantity indicates a day count below the minimum of 1.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrInsufficientBalance indicates a request for more days than the
	// employee has available.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrNoSuchLeaveEntry indicates a cancellation for a date with no
	// matching history entry.
	ErrNoSuchLeaveEntry = errors.New("no such leave entry")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// NotFoundError reports an unknown employee identifier.
type NotFoundError struct {
	EmployeeID EmployeeID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("employee %q not found", e.EmployeeID)
}

func (e *NotFoundError) Unwrap() error { return ErrEmployeeNotFound }

// InvalidDateError reports a date input that failed validation. Input is
// the raw string as received from the caller.
type InvalidDateError struct {
	Input string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %q: want YYYY-MM-DD", e.Input)
}

func (e *InvalidDateError) Unwrap() error { return ErrInvalidDate }

// InvalidQuantityError reports a day count below 1.
type InvalidQuantityError struct {
	Days int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %d: must be at least 1", e.Days)
}

func (e *InvalidQuantityError) Unwrap() error { return ErrInvalidQuantity }

// DeltaOverflowError reports an administrative delta too large to add to
// the balance without integer overflow. The balance is unchanged when
// this is returned.
type DeltaOverflowError struct {
	EmployeeID EmployeeID
	Delta      int
	Balance    int
}

func (e *DeltaOverflowError) Error() string {
	return fmt.Sprintf("delta %d overflows balance %d for %q", e.Delta, e.Balance, e.EmployeeID)
}

func (e *DeltaOverflowError) Unwrap() error { return ErrInvalidQuantity }

// InsufficientBalanceError reports a request that exceeds the available
// balance. The balance is unchanged when this is returned.
type InsufficientBalanceError struct {
	EmployeeID EmployeeID
	Requested  int
	Available  int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance for %q: requested %d, available %d",
		e.EmployeeID, e.Requested, e.Available)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// NoSuchLeaveEntryError reports a cancellation against a date that does
// not appear in the employee's history.
type NoSuchLeaveEntryError struct {
	EmployeeID EmployeeID
	Date       Date
}

func (e *NoSuchLeaveEntryError) Error() string {
	return fmt.Sprintf("no leave entry on %s for %q", e.Date, e.EmployeeID)
}

func (e *NoSuchLeaveEntryError) Unwrap() error { return ErrNoSuchLeaveEntry }

// =============================================================================
// PREDICATES
// =============================================================================

// IsNotFound reports whether err is a lookup failure, for either an
// unknown employee or a missing history entry.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) || errors.Is(err, ErrNoSuchLeaveEntry)
}

// IsClientError reports whether err is attributable to the caller's input
// rather than to ledger state or infrastructure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInsufficientBalance) ||
		IsNotFound(err)
}
