/*
recorder.go - Background journal writer

PURPOSE:
  Bridges the ledger's operation log to a Log implementation without
  putting journal I/O on the request path. LogOperation converts the
  operation into an Entry and hands it to a buffered channel; a single
  background goroutine drains the channel and appends.

BACKPRESSURE:
  The hand-off never blocks. When the buffer is full the entry is dropped
  and counted; balances are never held hostage to a slow journal.

LIFECYCLE:
  rec := audit.NewRecorder(journal)
  rec.Start()
  defer rec.Stop() // drains buffered entries before returning
*/
package audit

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/warp/leave-ledger/ledger"
)

// DefaultRecorderBuffer is the channel capacity between the request path
// and the background writer.
const DefaultRecorderBuffer = 256

// appendTimeout bounds a single journal append.
const appendTimeout = 5 * time.Second

// Recorder turns ledger operation logs into journal entries. It
// implements ledger.OperationLogger.
type Recorder struct {
	journal Log
	logger  zerolog.Logger
	clock   func() time.Time
	newID   func() string

	ch      chan Entry
	stop    chan struct{}
	wg      sync.WaitGroup
	stopped sync.Once
	dropped atomic.Uint64
}

// RecorderOption configures a Recorder at construction.
type RecorderOption func(*Recorder)

// WithRecorderBuffer sets the hand-off buffer size.
func WithRecorderBuffer(n int) RecorderOption {
	return func(r *Recorder) {
		if n > 0 {
			r.ch = make(chan Entry, n)
		}
	}
}

// WithRecorderLogger routes the recorder's own diagnostics (append
// failures, drop counts) to the given logger.
func WithRecorderLogger(logger zerolog.Logger) RecorderOption {
	return func(r *Recorder) { r.logger = logger }
}

// WithRecorderClock overrides the timestamp source.
func WithRecorderClock(clock func() time.Time) RecorderOption {
	return func(r *Recorder) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// NewRecorder builds a recorder over the journal. Call Start before use
// and Stop on shutdown.
func NewRecorder(journal Log, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		journal: journal,
		logger:  zerolog.Nop(),
		clock:   time.Now,
		newID:   uuid.NewString,
		ch:      make(chan Entry, DefaultRecorderBuffer),
		stop:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start launches the background writer.
func (r *Recorder) Start() {
	r.wg.Add(1)
	go r.run()
}

// Stop drains buffered entries, waits for the writer to finish, and
// reports how many entries were dropped over the recorder's lifetime.
// Safe to call more than once.
func (r *Recorder) Stop() {
	r.stopped.Do(func() { close(r.stop) })
	r.wg.Wait()
	if n := r.Dropped(); n > 0 {
		r.logger.Warn().Uint64("dropped", n).Msg("audit entries dropped under load")
	}
}

// Dropped returns the number of entries discarded because the buffer was
// full.
func (r *Recorder) Dropped() uint64 {
	return r.dropped.Load()
}

// LogOperation converts the operation into a journal entry and hands it
// to the background writer. Never blocks.
func (r *Recorder) LogOperation(l ledger.OperationLog) {
	e := r.entryFrom(l)
	select {
	case r.ch <- e:
	default:
		r.dropped.Add(1)
	}
}

func (r *Recorder) run() {
	defer r.wg.Done()
	for {
		select {
		case e := <-r.ch:
			r.append(e)
		case <-r.stop:
			// Drain whatever made it into the buffer before shutdown.
			for {
				select {
				case e := <-r.ch:
					r.append(e)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) append(e Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
	defer cancel()

	if err := r.journal.Append(ctx, e); err != nil {
		r.logger.Error().
			Err(err).
			Str("operation", e.Operation).
			Str("employee_id", e.EmployeeID).
			Msg("audit append failed")
	}
}

// =============================================================================
// ENTRY CONVERSION
// =============================================================================

func (r *Recorder) entryFrom(l ledger.OperationLog) Entry {
	e := Entry{
		ID:         r.newID(),
		At:         r.clock().UTC(),
		Actor:      l.Actor,
		Operation:  l.Operation,
		EmployeeID: string(l.EmployeeID),
		Status:     l.Status,
		Detail:     detail(l),
	}
	if l.Err != nil {
		e.Error = l.Err.Error()
	}
	return e
}

// detail renders a one-line human summary of a successful operation.
func detail(l ledger.OperationLog) string {
	if l.Status != ledger.StatusOK {
		return ""
	}

	var d string
	switch l.Operation {
	case ledger.OpApplyLeave:
		d = fmt.Sprintf("applied %d day(s): %s",
			l.Days, strings.Join(ledger.FormatDates(l.Dates), ", "))
	case ledger.OpCancelLeave:
		if len(l.Dates) == 1 {
			d = fmt.Sprintf("cancelled %s, balance %d", l.Dates[0], l.NewBalance)
		}
	case ledger.OpAdjustBalance:
		d = fmt.Sprintf("delta %+d, balance %d", l.Delta, l.NewBalance)
	case ledger.OpCheckBalance:
		d = fmt.Sprintf("balance %d", l.NewBalance)
	}
	if d != "" && l.Reason != "" {
		d += " (" + l.Reason + ")"
	}
	return d
}
