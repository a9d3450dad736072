package ledger

// Operation names as they appear in logs, audit entries, and the change
// feed.
const (
	OpCheckBalance  = "check_balance"
	OpApplyLeave    = "apply_leave"
	OpCancelLeave   = "cancel_leave"
	OpLeaveHistory  = "leave_history"
	OpAdjustBalance = "admin_adjust_balance"
	OpListEmployees = "list_employees"
)

// Operation outcome labels.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// OperationLog describes one completed ledger operation, successful or
// not. Fields that do not apply to an operation are left zero.
type OperationLog struct {
	Operation  string
	EmployeeID EmployeeID
	Actor      string
	Dates      []Date
	Days       int
	Delta      int
	NewBalance int
	Reason     string
	Status     string
	Err        error
}

// OperationLogger receives a log for every operation the service runs.
//
// Implementations must not block: the service calls LogOperation inline on
// the request path. Sinks that do I/O should hand the log off to a
// background writer.
type OperationLogger interface {
	LogOperation(l OperationLog)
}

// ServiceOption configures a Service at construction.
type ServiceOption func(*Service)

// WithOperationLogger attaches a logger to the service. The option can be
// given multiple times; loggers are invoked in the order attached.
func WithOperationLogger(l OperationLogger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.loggers = append(s.loggers, l)
		}
	}
}
