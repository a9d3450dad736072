/*
handlers.go - HTTP API handlers for the leave ledger

PURPOSE:
  Exposes the ledger via REST API. Handles HTTP request/response, JSON
  serialization, and delegates to the ledger service.

ENDPOINTS:
  Employees:
    GET    /api/employees                       List the directory
    GET    /api/employees/summary               Directory aggregates
    GET    /api/employees/{id}/balance          Check balance
    GET    /api/employees/{id}/history?limit=   Leave history (default 20)

  Leaves:
    POST   /api/employees/{id}/leaves           Apply for leave
    DELETE /api/employees/{id}/leaves/{date}    Cancel one leave date

  Admin:
    POST   /api/admin/adjustments               Manual balance adjustment
    GET    /api/audit                           Query the audit journal

  Operational:
    GET    /health                              Liveness probe
    GET    /metrics                             Prometheus scrape

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate and default input at the DTO edge
  3. Call the ledger service
  4. Serialize receipt or error envelope

ERROR HANDLING:
  Ledger errors are mapped onto HTTP statuses:
  - 400: invalid date, invalid quantity, malformed body
  - 404: unknown employee, no matching leave entry
  - 409: insufficient balance
  - 500: anything unrecognized (logged; never a ledger outcome)

SECURITY NOTE:
  No authentication. admin_id on adjustments is recorded in the audit
  journal, not verified.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/warp/leave-ledger/audit"
	"github.com/warp/leave-ledger/ledger"
)

// Error codes carried in the error envelope.
const (
	codeBadRequest          = "bad_request"
	codeInvalidDate         = "invalid_date"
	codeInvalidQuantity     = "invalid_quantity"
	codeEmployeeNotFound    = "employee_not_found"
	codeNoSuchLeaveEntry    = "no_such_leave_entry"
	codeInsufficientBalance = "insufficient_balance"
	codeInternal            = "internal"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *ledger.Service
	Audit   audit.Log
	Logger  zerolog.Logger

	// SinkDrops reports dropped-entry counts for the asynchronous
	// sinks, refreshed on each /metrics scrape. Keyed by sink name.
	SinkDrops map[string]DropFunc
}

// NewHandler creates a new handler around the ledger service.
func NewHandler(svc *ledger.Service, journal audit.Log, logger zerolog.Logger) *Handler {
	return &Handler{
		Service:   svc,
		Audit:     journal,
		Logger:    logger,
		SinkDrops: make(map[string]DropFunc),
	}
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns the directory in roster order.
// GET /api/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toEmployeeListDTO(h.Service.ListEmployees()))
}

// GetSummary returns directory aggregates.
// GET /api/employees/summary
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toSummaryDTO(h.Service.DirectorySummary()))
}

// GetBalance returns one employee's balance.
// GET /api/employees/{id}/balance
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	bal, err := h.Service.CheckBalance(ledger.EmployeeID(id))
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(bal))
}

// GetHistory returns one employee's leave history, most recent first.
// GET /api/employees/{id}/history?limit=
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	hist, err := h.Service.LeaveHistory(ledger.EmployeeID(id), limit)
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toHistoryDTO(hist))
}

// =============================================================================
// LEAVE HANDLERS
// =============================================================================

// ApplyLeave applies for leave starting at the given date. An omitted
// days field defaults to a single day.
// POST /api/employees/{id}/leaves
func (h *Handler) ApplyLeave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req ApplyLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return
	}

	days := 1
	if req.Days != nil {
		days = *req.Days
	}

	receipt, err := h.Service.ApplyLeave(ledger.ApplyRequest{
		EmployeeID: ledger.EmployeeID(id),
		Date:       req.Date,
		Days:       days,
		Reason:     req.Reason,
	})
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toApplyReceiptDTO(receipt))
}

// CancelLeave cancels one previously recorded leave date.
// DELETE /api/employees/{id}/leaves/{date}
func (h *Handler) CancelLeave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	date := chi.URLParam(r, "date")

	receipt, err := h.Service.CancelLeave(ledger.EmployeeID(id), date)
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCancelReceiptDTO(receipt))
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// CreateAdjustment applies a signed administrative balance delta.
// POST /api/admin/adjustments
func (h *Handler) CreateAdjustment(w http.ResponseWriter, r *http.Request) {
	var req AdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return
	}
	if req.EmployeeID == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "employee_id is required")
		return
	}

	receipt, err := h.Service.AdjustBalance(ledger.AdjustRequest{
		AdminID:    req.AdminID,
		EmployeeID: ledger.EmployeeID(req.EmployeeID),
		Delta:      req.Delta,
		Note:       req.Note,
	})
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAdjustReceiptDTO(receipt))
}

// QueryAudit returns audit journal entries, newest first.
// GET /api/audit?employee_id=&operation=&status=&limit=
func (h *Handler) QueryAudit(w http.ResponseWriter, r *http.Request) {
	f := audit.Filter{
		EmployeeID: r.URL.Query().Get("employee_id"),
		Operation:  r.URL.Query().Get("operation"),
		Status:     r.URL.Query().Get("status"),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "limit must be an integer")
			return
		}
		f.Limit = n
	}

	entries, err := h.Audit.Query(r.Context(), f)
	if err != nil {
		h.Logger.Error().Err(err).Msg("audit query failed")
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to query audit journal")
		return
	}
	writeJSON(w, http.StatusOK, toAuditListDTO(entries))
}

// =============================================================================
// OPERATIONAL HANDLERS
// =============================================================================

// Health reports liveness and the roster size.
// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthDTO{
		Status:    "ok",
		Employees: h.Service.DirectorySummary().Employees,
	})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{OK: false, Error: ErrorBody{Code: code, Message: message}})
}

// writeLedgerError maps the ledger error taxonomy onto HTTP statuses.
// Anything outside the taxonomy is a bug worth a log line, not a client
// problem.
func (h *Handler) writeLedgerError(w http.ResponseWriter, err error) {
	status, code := http.StatusInternalServerError, codeInternal
	switch {
	case errors.Is(err, ledger.ErrInvalidDate):
		status, code = http.StatusBadRequest, codeInvalidDate
	case errors.Is(err, ledger.ErrInvalidQuantity):
		status, code = http.StatusBadRequest, codeInvalidQuantity
	case errors.Is(err, ledger.ErrEmployeeNotFound):
		status, code = http.StatusNotFound, codeEmployeeNotFound
	case errors.Is(err, ledger.ErrNoSuchLeaveEntry):
		status, code = http.StatusNotFound, codeNoSuchLeaveEntry
	case errors.Is(err, ledger.ErrInsufficientBalance):
		status, code = http.StatusConflict, codeInsufficientBalance
	default:
		h.Logger.Error().Err(err).Msg("unexpected ledger error")
	}
	writeError(w, status, code, err.Error())
}
