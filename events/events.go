/*
Package events broadcasts successful ledger mutations to downstream
consumers.

PURPOSE:
  Payroll, reporting, and notification systems want to know when a
  balance changes without polling the API. Each successful mutation
  becomes one Event on the change feed; reads and failed operations
  produce nothing.

DELIVERY:
  Best-effort. The feed is a side channel: a slow or dead broker never
  blocks or fails a ledger operation. Consumers needing the full record
  should read the audit journal instead.
*/
package events

import (
	"context"
	"time"
)

// Event types carried on the feed.
const (
	TypeLeaveApplied    = "leave_applied"
	TypeLeaveCancelled  = "leave_cancelled"
	TypeBalanceAdjusted = "balance_adjusted"
)

// Event is one balance change, in wire form.
type Event struct {
	Type       string    `json:"type"`
	EmployeeID string    `json:"employee_id"`
	Dates      []string  `json:"dates,omitempty"`
	Days       int       `json:"days,omitempty"`
	Delta      int       `json:"delta,omitempty"`
	NewBalance int       `json:"new_balance"`
	Actor      string    `json:"actor,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher delivers events to the feed's transport.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Noop is a Publisher that discards everything. Used when the feed is
// disabled.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }
