/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the ledger's domain types from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific defaulting (days, history limit)
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

ENVELOPE:
  Every response body carries an explicit "ok" flag. Successes inline the
  payload next to it; failures carry {ok:false, error:{code, message}}.
  The flag always agrees with the HTTP status.

DEFAULTING:
  ApplyLeaveRequest.Days is a pointer so an omitted field (defaults to 1)
  is distinguishable from an explicit zero (rejected with 400).

SEE ALSO:
  - handlers.go: Uses these types
  - server.go: Router setup and middleware
*/
package api

import (
	"time"

	"github.com/warp/leave-ledger/audit"
	"github.com/warp/leave-ledger/ledger"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// EmployeeDTO is one directory row.
type EmployeeDTO struct {
	EmployeeID   string `json:"employee_id"`
	Balance      int    `json:"balance"`
	HistoryCount int    `json:"history_count"`
}

// EmployeeListDTO is the directory listing response.
type EmployeeListDTO struct {
	OK        bool          `json:"ok"`
	Employees []EmployeeDTO `json:"employees"`
	Count     int           `json:"count"`
}

// SummaryDTO aggregates the directory.
type SummaryDTO struct {
	OK              bool    `json:"ok"`
	Employees       int     `json:"employees"`
	TotalBalance    int     `json:"total_balance"`
	TotalLeaveTaken int     `json:"total_leave_taken"`
	AverageBalance  float64 `json:"average_balance"`
}

// BalanceDTO is the balance check response.
type BalanceDTO struct {
	OK           bool   `json:"ok"`
	EmployeeID   string `json:"employee_id"`
	Balance      int    `json:"balance"`
	HistoryCount int    `json:"history_count"`
}

// HistoryDTO is one page of leave history, most recent first. Total is
// the full history length, not the page size.
type HistoryDTO struct {
	OK         bool     `json:"ok"`
	EmployeeID string   `json:"employee_id"`
	Entries    []string `json:"entries"`
	Total      int      `json:"total"`
}

// ApplyLeaveRequest is the request body to apply for leave.
type ApplyLeaveRequest struct {
	Date   string `json:"date"`
	Days   *int   `json:"days,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// ApplyReceiptDTO is the response after applying for leave.
type ApplyReceiptDTO struct {
	OK           bool     `json:"ok"`
	EmployeeID   string   `json:"employee_id"`
	AppliedDates []string `json:"applied_dates"`
	Days         int      `json:"days"`
	NewBalance   int      `json:"new_balance"`
}

// CancelReceiptDTO is the response after cancelling one leave date.
type CancelReceiptDTO struct {
	OK            bool   `json:"ok"`
	EmployeeID    string `json:"employee_id"`
	CancelledDate string `json:"cancelled_date"`
	NewBalance    int    `json:"new_balance"`
}

// AdjustmentRequest is the admin request body to correct a balance.
type AdjustmentRequest struct {
	AdminID    string `json:"admin_id"`
	EmployeeID string `json:"employee_id"`
	Delta      int    `json:"delta"`
	Note       string `json:"note,omitempty"`
}

// AdjustReceiptDTO is the response after a balance adjustment.
type AdjustReceiptDTO struct {
	OK         bool   `json:"ok"`
	EmployeeID string `json:"employee_id"`
	NewBalance int    `json:"new_balance"`
	Clamped    bool   `json:"clamped"`
}

// AuditEntryDTO is one audit journal row.
type AuditEntryDTO struct {
	ID         string `json:"id"`
	At         string `json:"at"`
	Actor      string `json:"actor,omitempty"`
	Operation  string `json:"operation"`
	EmployeeID string `json:"employee_id,omitempty"`
	Status     string `json:"status"`
	Detail     string `json:"detail,omitempty"`
	Error      string `json:"error,omitempty"`
}

// AuditListDTO is the audit query response, newest first.
type AuditListDTO struct {
	OK      bool            `json:"ok"`
	Entries []AuditEntryDTO `json:"entries"`
	Count   int             `json:"count"`
}

// HealthDTO is the health probe response.
type HealthDTO struct {
	Status    string `json:"status"`
	Employees int    `json:"employees"`
}

// ErrorBody names a failure from the ledger's error taxonomy.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	OK    bool      `json:"ok"`
	Error ErrorBody `json:"error"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toEmployeeListDTO(dir []ledger.DirectoryEntry) EmployeeListDTO {
	rows := make([]EmployeeDTO, len(dir))
	for i, e := range dir {
		rows[i] = EmployeeDTO{
			EmployeeID:   string(e.EmployeeID),
			Balance:      e.Balance,
			HistoryCount: e.HistoryCount,
		}
	}
	return EmployeeListDTO{OK: true, Employees: rows, Count: len(rows)}
}

func toSummaryDTO(sum ledger.Summary) SummaryDTO {
	return SummaryDTO{
		OK:              true,
		Employees:       sum.Employees,
		TotalBalance:    sum.TotalBalance,
		TotalLeaveTaken: sum.TotalLeaveTaken,
		AverageBalance:  sum.AverageBalance.InexactFloat64(),
	}
}

func toBalanceDTO(b ledger.BalanceSummary) BalanceDTO {
	return BalanceDTO{
		OK:           true,
		EmployeeID:   string(b.EmployeeID),
		Balance:      b.Balance,
		HistoryCount: b.HistoryCount,
	}
}

func toHistoryDTO(h ledger.History) HistoryDTO {
	return HistoryDTO{
		OK:         true,
		EmployeeID: string(h.EmployeeID),
		Entries:    ledger.FormatDates(h.Entries),
		Total:      h.Total,
	}
}

func toApplyReceiptDTO(r ledger.ApplyReceipt) ApplyReceiptDTO {
	return ApplyReceiptDTO{
		OK:           true,
		EmployeeID:   string(r.EmployeeID),
		AppliedDates: ledger.FormatDates(r.AppliedDates),
		Days:         r.Days,
		NewBalance:   r.NewBalance,
	}
}

func toCancelReceiptDTO(r ledger.CancelReceipt) CancelReceiptDTO {
	return CancelReceiptDTO{
		OK:            true,
		EmployeeID:    string(r.EmployeeID),
		CancelledDate: r.CancelledDate.String(),
		NewBalance:    r.NewBalance,
	}
}

func toAdjustReceiptDTO(r ledger.AdjustReceipt) AdjustReceiptDTO {
	return AdjustReceiptDTO{
		OK:         true,
		EmployeeID: string(r.EmployeeID),
		NewBalance: r.NewBalance,
		Clamped:    r.Clamped,
	}
}

func toAuditListDTO(entries []audit.Entry) AuditListDTO {
	rows := make([]AuditEntryDTO, len(entries))
	for i, e := range entries {
		rows[i] = AuditEntryDTO{
			ID:         e.ID,
			At:         e.At.Format(time.RFC3339),
			Actor:      e.Actor,
			Operation:  e.Operation,
			EmployeeID: e.EmployeeID,
			Status:     e.Status,
			Detail:     e.Detail,
			Error:      e.Error,
		}
	}
	return AuditListDTO{OK: true, Entries: rows, Count: len(rows)}
}
