/*
handlers_test.go - Unit tests for API handlers

Tests for:
- Routing and status codes through the real router
- DTO defaulting (days, history limit)
- Error envelope and taxonomy-to-status mapping
- Audit queries and operational endpoints
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/warp/leave-ledger/audit"
	"github.com/warp/leave-ledger/ledger"
)

func newTestRouter(t *testing.T) (http.Handler, *Handler) {
	t.Helper()

	store, err := ledger.NewRecordStore([]ledger.SeedRecord{
		{ID: "E001", Balance: 18, History: []ledger.Date{
			ledger.MustParseDate("2024-12-25"),
			ledger.MustParseDate("2025-01-01"),
		}},
		{ID: "E002", Balance: 20},
	})
	if err != nil {
		t.Fatalf("Failed to seed record store: %v", err)
	}

	svc := ledger.NewService(store, ledger.WithOperationLogger(MetricsLogger{}))
	h := NewHandler(svc, audit.NewMemory(), zerolog.Nop())
	return NewRouter(h), h
}

func doRequest(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		buf = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode response body: %v", err)
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	decodeJSON(t, rec, &resp)
	if resp.OK {
		t.Error("Error response should have ok=false")
	}
	return resp
}

// =============================================================================
// DIRECTORY ENDPOINTS
// =============================================================================

func TestListEmployees(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/employees", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp EmployeeListDTO
	decodeJSON(t, rec, &resp)
	if !resp.OK {
		t.Error("Expected ok=true")
	}
	if resp.Count != 2 || len(resp.Employees) != 2 {
		t.Fatalf("Expected 2 employees, got count=%d len=%d", resp.Count, len(resp.Employees))
	}
	if resp.Employees[0].EmployeeID != "E001" || resp.Employees[0].Balance != 18 || resp.Employees[0].HistoryCount != 2 {
		t.Errorf("Unexpected first row: %+v", resp.Employees[0])
	}
	if resp.Employees[1].EmployeeID != "E002" || resp.Employees[1].Balance != 20 {
		t.Errorf("Unexpected second row: %+v", resp.Employees[1])
	}
}

func TestGetSummary(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/employees/summary", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp SummaryDTO
	decodeJSON(t, rec, &resp)
	if resp.Employees != 2 {
		t.Errorf("Expected 2 employees, got %d", resp.Employees)
	}
	if resp.TotalBalance != 38 {
		t.Errorf("Expected total balance 38, got %d", resp.TotalBalance)
	}
	if resp.TotalLeaveTaken != 2 {
		t.Errorf("Expected total leave taken 2, got %d", resp.TotalLeaveTaken)
	}
	if resp.AverageBalance != 19 {
		t.Errorf("Expected average balance 19, got %v", resp.AverageBalance)
	}
}

// =============================================================================
// BALANCE AND HISTORY ENDPOINTS
// =============================================================================

func TestGetBalance(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/employees/E001/balance", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp BalanceDTO
	decodeJSON(t, rec, &resp)
	if !resp.OK || resp.EmployeeID != "E001" || resp.Balance != 18 || resp.HistoryCount != 2 {
		t.Errorf("Unexpected balance response: %+v", resp)
	}
}

func TestGetBalance_UnknownEmployee(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/employees/E999/balance", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}

	resp := decodeError(t, rec)
	if resp.Error.Code != codeEmployeeNotFound {
		t.Errorf("Expected code %q, got %q", codeEmployeeNotFound, resp.Error.Code)
	}
	if !strings.Contains(resp.Error.Message, "E999") {
		t.Errorf("Message should name the employee: %q", resp.Error.Message)
	}
}

func TestGetHistory(t *testing.T) {
	// GIVEN: E001 seeded with two leave dates
	router, _ := newTestRouter(t)

	// WHEN: Fetching the full history
	rec := doRequest(t, router, http.MethodGet, "/api/employees/E001/history", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	// THEN: Entries are most recent first
	var resp HistoryDTO
	decodeJSON(t, rec, &resp)
	if resp.Total != 2 {
		t.Errorf("Expected total 2, got %d", resp.Total)
	}
	if len(resp.Entries) != 2 || resp.Entries[0] != "2025-01-01" || resp.Entries[1] != "2024-12-25" {
		t.Errorf("Unexpected entries: %v", resp.Entries)
	}
}

func TestGetHistory_LimitTruncates(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/employees/E001/history?limit=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp HistoryDTO
	decodeJSON(t, rec, &resp)
	if len(resp.Entries) != 1 || resp.Entries[0] != "2025-01-01" {
		t.Errorf("Expected just the newest entry, got %v", resp.Entries)
	}
	if resp.Total != 2 {
		t.Errorf("Total should report the full history length, got %d", resp.Total)
	}
}

func TestGetHistory_BadLimit(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/employees/E001/history?limit=abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error.Code != codeBadRequest {
		t.Errorf("Expected code %q, got %q", codeBadRequest, resp.Error.Code)
	}
}

func TestGetHistory_EmptyHistoryRendersEmptyArray(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/employees/E002/history", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"entries":[]`) {
		t.Errorf("Empty history should render as [], got %s", rec.Body.String())
	}
}

// =============================================================================
// APPLY LEAVE
// =============================================================================

func TestApplyLeave(t *testing.T) {
	// GIVEN: E001 with balance 18
	router, _ := newTestRouter(t)

	// WHEN: Applying for two days from March 1st
	rec := doRequest(t, router, http.MethodPost, "/api/employees/E001/leaves",
		ApplyLeaveRequest{Date: "2025-03-01", Days: intPtr(2), Reason: "family visit"})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// THEN: The receipt lists both consecutive dates and the new balance
	var resp ApplyReceiptDTO
	decodeJSON(t, rec, &resp)
	if !resp.OK || resp.EmployeeID != "E001" || resp.Days != 2 || resp.NewBalance != 16 {
		t.Errorf("Unexpected receipt: %+v", resp)
	}
	if len(resp.AppliedDates) != 2 || resp.AppliedDates[0] != "2025-03-01" || resp.AppliedDates[1] != "2025-03-02" {
		t.Errorf("Unexpected applied dates: %v", resp.AppliedDates)
	}

	// AND: The balance endpoint agrees
	var bal BalanceDTO
	decodeJSON(t, doRequest(t, router, http.MethodGet, "/api/employees/E001/balance", nil), &bal)
	if bal.Balance != 16 || bal.HistoryCount != 4 {
		t.Errorf("Expected balance 16 with 4 history entries, got %+v", bal)
	}
}

func TestApplyLeave_DaysDefaultsToOne(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/employees/E001/leaves",
		ApplyLeaveRequest{Date: "2025-03-01"})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ApplyReceiptDTO
	decodeJSON(t, rec, &resp)
	if resp.Days != 1 || resp.NewBalance != 17 {
		t.Errorf("Omitted days should default to 1: %+v", resp)
	}
	if len(resp.AppliedDates) != 1 || resp.AppliedDates[0] != "2025-03-01" {
		t.Errorf("Unexpected applied dates: %v", resp.AppliedDates)
	}
}

func TestApplyLeave_ExplicitZeroDaysRejected(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/employees/E001/leaves",
		ApplyLeaveRequest{Date: "2025-03-01", Days: intPtr(0)})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error.Code != codeInvalidQuantity {
		t.Errorf("Expected code %q, got %q", codeInvalidQuantity, resp.Error.Code)
	}
}

func TestApplyLeave_InvalidDate(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/employees/E001/leaves",
		ApplyLeaveRequest{Date: "03/01/2025"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error.Code != codeInvalidDate {
		t.Errorf("Expected code %q, got %q", codeInvalidDate, resp.Error.Code)
	}
}

func TestApplyLeave_InsufficientBalance(t *testing.T) {
	// GIVEN: E002 with balance 20
	router, _ := newTestRouter(t)

	// WHEN: Requesting 21 days
	rec := doRequest(t, router, http.MethodPost, "/api/employees/E002/leaves",
		ApplyLeaveRequest{Date: "2025-03-01", Days: intPtr(21)})

	// THEN: 409 with the insufficient_balance code
	if rec.Code != http.StatusConflict {
		t.Fatalf("Expected 409, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error.Code != codeInsufficientBalance {
		t.Errorf("Expected code %q, got %q", codeInsufficientBalance, resp.Error.Code)
	}

	// AND: The balance is untouched
	var bal BalanceDTO
	decodeJSON(t, doRequest(t, router, http.MethodGet, "/api/employees/E002/balance", nil), &bal)
	if bal.Balance != 20 || bal.HistoryCount != 0 {
		t.Errorf("Rejected request must not change the record: %+v", bal)
	}
}

func TestApplyLeave_HugeDayCount(t *testing.T) {
	// GIVEN: E002 with balance 20
	router, _ := newTestRouter(t)

	// WHEN: Requesting an astronomically large day count
	rec := doRequest(t, router, http.MethodPost, "/api/employees/E002/leaves",
		ApplyLeaveRequest{Date: "2025-03-01", Days: intPtr(1 << 50)})

	// THEN: 409 with the insufficient_balance code
	if rec.Code != http.StatusConflict {
		t.Fatalf("Expected 409, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error.Code != codeInsufficientBalance {
		t.Errorf("Expected code %q, got %q", codeInsufficientBalance, resp.Error.Code)
	}

	// AND: The balance is untouched
	var bal BalanceDTO
	decodeJSON(t, doRequest(t, router, http.MethodGet, "/api/employees/E002/balance", nil), &bal)
	if bal.Balance != 20 {
		t.Errorf("Rejected request must not change the balance: %+v", bal)
	}
}

func TestApplyLeave_UnknownEmployee(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/employees/E999/leaves",
		ApplyLeaveRequest{Date: "2025-03-01"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error.Code != codeEmployeeNotFound {
		t.Errorf("Expected code %q, got %q", codeEmployeeNotFound, resp.Error.Code)
	}
}

func TestApplyLeave_MalformedBody(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/employees/E001/leaves",
		strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error.Code != codeBadRequest {
		t.Errorf("Expected code %q, got %q", codeBadRequest, resp.Error.Code)
	}
}

// =============================================================================
// CANCEL LEAVE
// =============================================================================

func TestCancelLeave(t *testing.T) {
	// GIVEN: E001 seeded with leave on Christmas Day
	router, _ := newTestRouter(t)

	// WHEN: Cancelling it
	rec := doRequest(t, router, http.MethodDelete, "/api/employees/E001/leaves/2024-12-25", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// THEN: Exactly one day is refunded
	var resp CancelReceiptDTO
	decodeJSON(t, rec, &resp)
	if !resp.OK || resp.CancelledDate != "2024-12-25" || resp.NewBalance != 19 {
		t.Errorf("Unexpected receipt: %+v", resp)
	}

	// AND: The date is gone from the history
	var hist HistoryDTO
	decodeJSON(t, doRequest(t, router, http.MethodGet, "/api/employees/E001/history", nil), &hist)
	if len(hist.Entries) != 1 || hist.Entries[0] != "2025-01-01" {
		t.Errorf("Unexpected history after cancel: %v", hist.Entries)
	}
}

func TestCancelLeave_NoSuchEntry(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodDelete, "/api/employees/E001/leaves/2025-07-04", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}
	resp := decodeError(t, rec)
	if resp.Error.Code != codeNoSuchLeaveEntry {
		t.Errorf("Expected code %q, got %q", codeNoSuchLeaveEntry, resp.Error.Code)
	}
	if !strings.Contains(resp.Error.Message, "2025-07-04") {
		t.Errorf("Message should name the date: %q", resp.Error.Message)
	}
}

func TestCancelLeave_InvalidDate(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodDelete, "/api/employees/E001/leaves/garbage", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error.Code != codeInvalidDate {
		t.Errorf("Expected code %q, got %q", codeInvalidDate, resp.Error.Code)
	}
}

// =============================================================================
// ADMIN ENDPOINTS
// =============================================================================

func TestCreateAdjustment(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/admin/adjustments",
		AdjustmentRequest{AdminID: "hr-lead", EmployeeID: "E002", Delta: 5, Note: "service award"})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp AdjustReceiptDTO
	decodeJSON(t, rec, &resp)
	if !resp.OK || resp.EmployeeID != "E002" || resp.NewBalance != 25 || resp.Clamped {
		t.Errorf("Unexpected receipt: %+v", resp)
	}
}

func TestCreateAdjustment_ClampsAtZero(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/admin/adjustments",
		AdjustmentRequest{AdminID: "hr-lead", EmployeeID: "E002", Delta: -25})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp AdjustReceiptDTO
	decodeJSON(t, rec, &resp)
	if resp.NewBalance != 0 || !resp.Clamped {
		t.Errorf("Expected clamped zero balance, got %+v", resp)
	}
}

func TestCreateAdjustment_MissingEmployeeID(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/admin/adjustments",
		AdjustmentRequest{AdminID: "hr-lead", Delta: 1})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error.Code != codeBadRequest {
		t.Errorf("Expected code %q, got %q", codeBadRequest, resp.Error.Code)
	}
}

func TestCreateAdjustment_UnknownEmployee(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/admin/adjustments",
		AdjustmentRequest{AdminID: "hr-lead", EmployeeID: "E999", Delta: 1})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}
}

// =============================================================================
// AUDIT ENDPOINT
// =============================================================================

func TestQueryAudit(t *testing.T) {
	// GIVEN: Three journal entries appended in order
	router, h := newTestRouter(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	seed := []audit.Entry{
		{ID: "a1", At: base, Operation: "apply_leave", EmployeeID: "E001", Status: "ok"},
		{ID: "a2", At: base.Add(time.Minute), Operation: "check_balance", EmployeeID: "E002", Status: "ok"},
		{ID: "a3", At: base.Add(2 * time.Minute), Operation: "apply_leave", EmployeeID: "E002", Status: "error", Error: "insufficient balance"},
	}
	for _, e := range seed {
		if err := h.Audit.Append(ctx, e); err != nil {
			t.Fatalf("Failed to append audit entry: %v", err)
		}
	}

	// WHEN: Querying without filters
	rec := doRequest(t, router, http.MethodGet, "/api/audit", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	// THEN: All entries come back newest first
	var resp AuditListDTO
	decodeJSON(t, rec, &resp)
	if resp.Count != 3 {
		t.Fatalf("Expected 3 entries, got %d", resp.Count)
	}
	if resp.Entries[0].ID != "a3" || resp.Entries[2].ID != "a1" {
		t.Errorf("Entries should be newest first: %v", resp.Entries)
	}
	if resp.Entries[0].At != "2025-03-01T09:02:00Z" {
		t.Errorf("Unexpected timestamp rendering: %q", resp.Entries[0].At)
	}
}

func TestQueryAudit_Filters(t *testing.T) {
	router, h := newTestRouter(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	seed := []audit.Entry{
		{ID: "a1", At: base, Operation: "apply_leave", EmployeeID: "E001", Status: "ok"},
		{ID: "a2", At: base.Add(time.Minute), Operation: "apply_leave", EmployeeID: "E002", Status: "error"},
		{ID: "a3", At: base.Add(2 * time.Minute), Operation: "cancel_leave", EmployeeID: "E001", Status: "ok"},
	}
	for _, e := range seed {
		if err := h.Audit.Append(ctx, e); err != nil {
			t.Fatalf("Failed to append audit entry: %v", err)
		}
	}

	var resp AuditListDTO
	decodeJSON(t, doRequest(t, router, http.MethodGet, "/api/audit?employee_id=E001", nil), &resp)
	if resp.Count != 2 || resp.Entries[0].ID != "a3" || resp.Entries[1].ID != "a1" {
		t.Errorf("Unexpected employee filter result: %+v", resp)
	}

	decodeJSON(t, doRequest(t, router, http.MethodGet, "/api/audit?status=error", nil), &resp)
	if resp.Count != 1 || resp.Entries[0].ID != "a2" {
		t.Errorf("Unexpected status filter result: %+v", resp)
	}

	decodeJSON(t, doRequest(t, router, http.MethodGet, "/api/audit?operation=apply_leave&limit=1", nil), &resp)
	if resp.Count != 1 || resp.Entries[0].ID != "a2" {
		t.Errorf("Unexpected combined filter result: %+v", resp)
	}
}

func TestQueryAudit_BadLimit(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/audit?limit=many", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
}

func TestQueryAudit_OversizedLimit(t *testing.T) {
	// GIVEN: A single journal entry
	router, h := newTestRouter(t)
	err := h.Audit.Append(context.Background(), audit.Entry{
		ID: "a1", At: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		Operation: "apply_leave", EmployeeID: "E001", Status: "ok",
	})
	if err != nil {
		t.Fatalf("Failed to append audit entry: %v", err)
	}

	// WHEN: Querying with a limit far beyond the journal size
	rec := doRequest(t, router, http.MethodGet, "/api/audit?limit=1152921504606846976", nil)

	// THEN: The journal bounds the result
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var resp AuditListDTO
	decodeJSON(t, rec, &resp)
	if resp.Count != 1 || resp.Entries[0].ID != "a1" {
		t.Errorf("Unexpected result: %+v", resp)
	}
}

// =============================================================================
// OPERATIONAL ENDPOINTS
// =============================================================================

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp HealthDTO
	decodeJSON(t, rec, &resp)
	if resp.Status != "ok" || resp.Employees != 2 {
		t.Errorf("Unexpected health response: %+v", resp)
	}
}

func TestMetrics(t *testing.T) {
	// GIVEN: One counted operation and a sink reporting drops
	router, h := newTestRouter(t)
	h.SinkDrops["audit"] = func() uint64 { return 7 }
	doRequest(t, router, http.MethodGet, "/api/employees/E001/balance", nil)

	// WHEN: Scraping
	rec := doRequest(t, router, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	// THEN: The scrape carries the operation counter and the drop gauge
	body := rec.Body.String()
	if !strings.Contains(body, `leave_ledger_operations_total{operation="check_balance",status="ok"}`) {
		t.Error("Scrape should include the operations counter")
	}
	if !strings.Contains(body, `leave_sink_dropped_entries{sink="audit"} 7`) {
		t.Error("Scrape should include the sink drop gauge")
	}
}

func intPtr(n int) *int {
	return &n
}
