package events_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-ledger/events"
	"github.com/warp/leave-ledger/ledger"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// capturePublisher records every published event.
type capturePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (c *capturePublisher) Publish(_ context.Context, e events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
	return nil
}

func (c *capturePublisher) Close() error { return nil }

func (c *capturePublisher) all() []events.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]events.Event, len(c.events))
	copy(out, c.events)
	return out
}

func newTestEmitter(t *testing.T) (*events.Emitter, *capturePublisher) {
	t.Helper()
	pub := &capturePublisher{}
	em := events.NewEmitter(pub,
		events.WithEmitterClock(func() time.Time {
			return time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)
		}),
	)
	em.Start()
	t.Cleanup(em.Stop)
	return em, pub
}

// =============================================================================
// CONVERSION TESTS
// =============================================================================

func TestEmitter_ApplyBecomesLeaveApplied(t *testing.T) {
	em, pub := newTestEmitter(t)

	em.LogOperation(ledger.OperationLog{
		Operation:  ledger.OpApplyLeave,
		EmployeeID: "E001",
		Dates: []ledger.Date{
			ledger.MustParseDate("2025-03-01"),
			ledger.MustParseDate("2025-03-02"),
		},
		Days:       2,
		NewBalance: 16,
		Status:     ledger.StatusOK,
	})
	em.Stop()

	got := pub.all()
	require.Len(t, got, 1)

	ev := got[0]
	assert.Equal(t, events.TypeLeaveApplied, ev.Type)
	assert.Equal(t, "E001", ev.EmployeeID)
	assert.Equal(t, []string{"2025-03-01", "2025-03-02"}, ev.Dates)
	assert.Equal(t, 2, ev.Days)
	assert.Equal(t, 16, ev.NewBalance)
	assert.Equal(t, time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC), ev.OccurredAt)
}

func TestEmitter_CancelBecomesLeaveCancelled(t *testing.T) {
	em, pub := newTestEmitter(t)

	em.LogOperation(ledger.OperationLog{
		Operation:  ledger.OpCancelLeave,
		EmployeeID: "E001",
		Dates:      []ledger.Date{ledger.MustParseDate("2025-03-01")},
		NewBalance: 17,
		Status:     ledger.StatusOK,
	})
	em.Stop()

	got := pub.all()
	require.Len(t, got, 1)
	assert.Equal(t, events.TypeLeaveCancelled, got[0].Type)
	assert.Equal(t, []string{"2025-03-01"}, got[0].Dates)
	assert.Equal(t, 17, got[0].NewBalance)
}

func TestEmitter_AdjustBecomesBalanceAdjusted(t *testing.T) {
	em, pub := newTestEmitter(t)

	em.LogOperation(ledger.OperationLog{
		Operation:  ledger.OpAdjustBalance,
		EmployeeID: "E002",
		Actor:      "hr-lead",
		Delta:      -25,
		NewBalance: 0,
		Status:     ledger.StatusOK,
	})
	em.Stop()

	got := pub.all()
	require.Len(t, got, 1)
	assert.Equal(t, events.TypeBalanceAdjusted, got[0].Type)
	assert.Equal(t, -25, got[0].Delta)
	assert.Equal(t, "hr-lead", got[0].Actor)
}

func TestEmitter_IgnoresReadsAndFailures(t *testing.T) {
	// Reads and failed mutations never reach the feed.

	em, pub := newTestEmitter(t)

	em.LogOperation(ledger.OperationLog{
		Operation: ledger.OpCheckBalance, EmployeeID: "E001", Status: ledger.StatusOK,
	})
	em.LogOperation(ledger.OperationLog{
		Operation: ledger.OpLeaveHistory, EmployeeID: "E001", Status: ledger.StatusOK,
	})
	em.LogOperation(ledger.OperationLog{
		Operation: ledger.OpListEmployees, Status: ledger.StatusOK,
	})
	em.LogOperation(ledger.OperationLog{
		Operation:  ledger.OpApplyLeave,
		EmployeeID: "E001",
		Status:     ledger.StatusError,
		Err:        ledger.ErrInsufficientBalance,
	})
	em.Stop()

	assert.Empty(t, pub.all())
	assert.Zero(t, em.Dropped())
}

// =============================================================================
// BACKPRESSURE TESTS
// =============================================================================

func TestEmitter_DropsWhenBufferFull(t *testing.T) {
	pub := &capturePublisher{}
	em := events.NewEmitter(pub, events.WithEmitterBuffer(1))

	for i := 0; i < 3; i++ {
		em.LogOperation(ledger.OperationLog{
			Operation:  ledger.OpAdjustBalance,
			EmployeeID: "E001",
			Delta:      1,
			Status:     ledger.StatusOK,
		})
	}
	assert.Equal(t, uint64(2), em.Dropped())

	em.Start()
	em.Stop()
	assert.Len(t, pub.all(), 1)
}

// =============================================================================
// SERVICE INTEGRATION
// =============================================================================

func TestEmitter_AttachedToService(t *testing.T) {
	// GIVEN: A ledger service wired to the change feed
	// WHEN: Mutations and reads run
	// THEN: Exactly the successful mutations are published, in order

	pub := &capturePublisher{}
	em := events.NewEmitter(pub)
	em.Start()

	records, err := ledger.NewRecordStore([]ledger.SeedRecord{
		{ID: "E001", Balance: 18},
	})
	require.NoError(t, err)
	svc := ledger.NewService(records, ledger.WithOperationLogger(em))

	_, err = svc.ApplyLeave(ledger.ApplyRequest{EmployeeID: "E001", Date: "2025-03-01", Days: 2})
	require.NoError(t, err)
	_, err = svc.CheckBalance("E001")
	require.NoError(t, err)
	_, err = svc.CancelLeave("E001", "2025-03-02")
	require.NoError(t, err)
	_, err = svc.ApplyLeave(ledger.ApplyRequest{EmployeeID: "E001", Date: "2025-04-01", Days: 99})
	require.True(t, errors.Is(err, ledger.ErrInsufficientBalance))

	em.Stop()

	got := pub.all()
	require.Len(t, got, 2)
	assert.Equal(t, events.TypeLeaveApplied, got[0].Type)
	assert.Equal(t, events.TypeLeaveCancelled, got[1].Type)
}
