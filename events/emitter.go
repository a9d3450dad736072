/*
emitter.go - Bridge from the operation log to the change feed

PURPOSE:
  Listens to the ledger's operation log, keeps only successful mutations,
  and publishes them in the background. The hand-off never blocks the
  request path; under sustained backpressure events are dropped and
  counted rather than queued without bound.
*/
package events

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/warp/leave-ledger/ledger"
)

// DefaultEmitterBuffer is the channel capacity between the request path
// and the background publisher.
const DefaultEmitterBuffer = 256

// publishTimeout bounds a single delivery attempt.
const publishTimeout = 10 * time.Second

// Emitter publishes ledger mutations as events. It implements
// ledger.OperationLogger; reads and failed operations are ignored.
type Emitter struct {
	publisher Publisher
	logger    zerolog.Logger
	clock     func() time.Time

	ch      chan Event
	stop    chan struct{}
	wg      sync.WaitGroup
	stopped sync.Once
	dropped atomic.Uint64
}

// EmitterOption configures an Emitter at construction.
type EmitterOption func(*Emitter)

// WithEmitterBuffer sets the hand-off buffer size.
func WithEmitterBuffer(n int) EmitterOption {
	return func(e *Emitter) {
		if n > 0 {
			e.ch = make(chan Event, n)
		}
	}
}

// WithEmitterLogger routes the emitter's own diagnostics to the given
// logger.
func WithEmitterLogger(logger zerolog.Logger) EmitterOption {
	return func(e *Emitter) { e.logger = logger }
}

// WithEmitterClock overrides the event timestamp source.
func WithEmitterClock(clock func() time.Time) EmitterOption {
	return func(e *Emitter) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// NewEmitter builds an emitter over the publisher. Call Start before use
// and Stop on shutdown.
func NewEmitter(publisher Publisher, opts ...EmitterOption) *Emitter {
	e := &Emitter{
		publisher: publisher,
		logger:    zerolog.Nop(),
		clock:     time.Now,
		ch:        make(chan Event, DefaultEmitterBuffer),
		stop:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start launches the background publisher.
func (e *Emitter) Start() {
	e.wg.Add(1)
	go e.run()
}

// Stop drains buffered events and waits for in-flight publishes. Safe to
// call more than once.
func (e *Emitter) Stop() {
	e.stopped.Do(func() { close(e.stop) })
	e.wg.Wait()
	if n := e.Dropped(); n > 0 {
		e.logger.Warn().Uint64("dropped", n).Msg("change feed events dropped under load")
	}
}

// Dropped returns the number of events discarded because the buffer was
// full.
func (e *Emitter) Dropped() uint64 {
	return e.dropped.Load()
}

// LogOperation converts a successful mutation into an event and hands it
// to the background publisher. Never blocks.
func (e *Emitter) LogOperation(l ledger.OperationLog) {
	ev, ok := eventFrom(l, e.clock().UTC())
	if !ok {
		return
	}
	select {
	case e.ch <- ev:
	default:
		e.dropped.Add(1)
	}
}

func (e *Emitter) run() {
	defer e.wg.Done()
	for {
		select {
		case ev := <-e.ch:
			e.publish(ev)
		case <-e.stop:
			for {
				select {
				case ev := <-e.ch:
					e.publish(ev)
				default:
					return
				}
			}
		}
	}
}

func (e *Emitter) publish(ev Event) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := e.publisher.Publish(ctx, ev); err != nil {
		e.logger.Error().
			Err(err).
			Str("type", ev.Type).
			Str("employee_id", ev.EmployeeID).
			Msg("change feed publish failed")
	}
}

// eventFrom maps a mutation's operation log to its feed event. Reads and
// failures map to nothing.
func eventFrom(l ledger.OperationLog, at time.Time) (Event, bool) {
	if l.Status != ledger.StatusOK {
		return Event{}, false
	}

	ev := Event{
		EmployeeID: string(l.EmployeeID),
		NewBalance: l.NewBalance,
		Actor:      l.Actor,
		OccurredAt: at,
	}
	switch l.Operation {
	case ledger.OpApplyLeave:
		ev.Type = TypeLeaveApplied
		ev.Dates = ledger.FormatDates(l.Dates)
		ev.Days = l.Days
	case ledger.OpCancelLeave:
		ev.Type = TypeLeaveCancelled
		ev.Dates = ledger.FormatDates(l.Dates)
	case ledger.OpAdjustBalance:
		ev.Type = TypeBalanceAdjusted
		ev.Delta = l.Delta
	default:
		return Event{}, false
	}
	return ev, true
}
