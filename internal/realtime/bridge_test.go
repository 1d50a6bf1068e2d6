package realtime

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// recordingInvalidator captures invalidation calls for assertions
type recordingInvalidator struct {
	mu    sync.Mutex
	calls [][]string
}

func (r *recordingInvalidator) InvalidateTags(tags ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, tags)
}

func (r *recordingInvalidator) snapshot() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]string, len(r.calls))
	copy(out, r.calls)
	return out
}

func (r *recordingInvalidator) waitForCalls(t *testing.T, n int) [][]string {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if calls := r.snapshot(); len(calls) >= n {
			return calls
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d invalidation calls, got %d", n, len(r.snapshot()))
	return nil
}

func TestBridge_TransactionInsertInvalidatesFinancialTags(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()

	inv := &recordingInvalidator{}
	bridge := NewBridge(hub, inv, zap.NewNop())
	bridge.Start()
	defer bridge.Stop()

	hub.Publish(Event{Table: "transactions", Op: OpInsert, After: map[string]interface{}{"amount": 1200.0}})

	calls := inv.waitForCalls(t, 1)
	assert.Len(t, calls, 1, "exactly one invalidation per event")
	assert.ElementsMatch(t, []string{"transactions", "financial-summary"}, calls[0])
}

func TestBridge_DealEventInvalidatesBoardAndAnalytics(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()

	inv := &recordingInvalidator{}
	bridge := NewBridge(hub, inv, zap.NewNop())
	bridge.Start()
	defer bridge.Stop()

	hub.Publish(Event{Table: "deals", Op: OpUpdate})

	calls := inv.waitForCalls(t, 1)
	assert.ElementsMatch(t, []string{"deals", "deals-kanban", "sales-analytics"}, calls[0])
}

func TestBridge_IgnoresUnwatchedTables(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()

	inv := &recordingInvalidator{}
	bridge := NewBridge(hub, inv, zap.NewNop())
	bridge.Start()

	hub.Publish(Event{Table: "uploaded_files", Op: OpInsert})
	hub.Publish(Event{Table: "transactions", Op: OpDelete})

	calls := inv.waitForCalls(t, 1)
	assert.Len(t, calls, 1)
	assert.Contains(t, calls[0], "transactions")

	bridge.Stop()
}

func TestBridge_StopDetachesAndIsIdempotent(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()

	inv := &recordingInvalidator{}
	bridge := NewBridge(hub, inv, zap.NewNop())
	bridge.Start()

	assert.Equal(t, 1, hub.SubscriberCount())

	bridge.Stop()
	bridge.Stop()

	assert.Equal(t, 0, hub.SubscriberCount())

	// Events after Stop never reach the invalidator
	hub.Publish(Event{Table: "deals", Op: OpInsert})
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, inv.snapshot())
}
