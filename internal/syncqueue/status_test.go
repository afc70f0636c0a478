package syncqueue_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/meistrid/go-catalog-sync/internal/syncqueue"
)

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		name string
		from syncqueue.Status
		to   syncqueue.Status
		ok   bool
	}{
		{name: "pending to processing", from: syncqueue.StatusPending, to: syncqueue.StatusProcessing, ok: true},
		{name: "retrying to processing", from: syncqueue.StatusRetrying, to: syncqueue.StatusProcessing, ok: true},
		{name: "processing to completed", from: syncqueue.StatusProcessing, to: syncqueue.StatusCompleted, ok: true},
		{name: "processing to retrying", from: syncqueue.StatusProcessing, to: syncqueue.StatusRetrying, ok: true},
		{name: "processing to failed", from: syncqueue.StatusProcessing, to: syncqueue.StatusFailed, ok: true},
		{name: "pending cannot complete directly", from: syncqueue.StatusPending, to: syncqueue.StatusCompleted, ok: false},
		{name: "failed is terminal", from: syncqueue.StatusFailed, to: syncqueue.StatusProcessing, ok: false},
		{name: "completed is terminal", from: syncqueue.StatusCompleted, to: syncqueue.StatusProcessing, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			c.Assert(syncqueue.CanTransition(tt.from, tt.to), qt.Equals, tt.ok)
		})
	}
}

func TestStatusTerminal(t *testing.T) {
	c := qt.New(t)

	c.Assert(syncqueue.StatusCompleted.Terminal(), qt.IsTrue)
	c.Assert(syncqueue.StatusFailed.Terminal(), qt.IsTrue)
	c.Assert(syncqueue.StatusPending.Terminal(), qt.IsFalse)
	c.Assert(syncqueue.StatusProcessing.Terminal(), qt.IsFalse)
	c.Assert(syncqueue.StatusRetrying.Terminal(), qt.IsFalse)
}
