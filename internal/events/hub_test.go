package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := NewHub()
	go h.Run(ctx)
	return h
}

func receive(t *testing.T, s *Subscriber) Event {
	t.Helper()
	select {
	case evt, ok := <-s.C:
		require.True(t, ok, "subscriber channel closed")
		return evt
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestHub_Broadcast(t *testing.T) {
	h := startHub(t)
	a := h.Subscribe()
	b := h.Subscribe()

	require.Eventually(t, func() bool { return h.SubscriberCount() == 2 }, time.Second, 5*time.Millisecond)

	h.Publish(Event{Type: JobUpdated, ID: "job-1"})

	for _, s := range []*Subscriber{a, b} {
		evt := receive(t, s)
		assert.Equal(t, JobUpdated, evt.Type)
		assert.Equal(t, "job-1", evt.ID)
		assert.False(t, evt.At.IsZero())
	}
}

func TestHub_Unsubscribe(t *testing.T) {
	h := startHub(t)
	s := h.Subscribe()
	require.Eventually(t, func() bool { return h.SubscriberCount() == 1 }, time.Second, 5*time.Millisecond)

	h.Unsubscribe(s)
	require.Eventually(t, func() bool { return h.SubscriberCount() == 0 }, time.Second, 5*time.Millisecond)

	_, ok := <-s.C
	assert.False(t, ok)
}

func TestHub_ShutdownClosesSubscribers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub()
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	s := h.Subscribe()
	require.Eventually(t, func() bool { return h.SubscriberCount() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	_, ok := <-s.C
	assert.False(t, ok)
}

func TestHub_NilSafe(t *testing.T) {
	var h *Hub
	h.Publish(Event{Type: JobCreated})
	h.Unsubscribe(nil)
	assert.Equal(t, 0, h.SubscriberCount())
}

func TestHub_UnsubscribeAfterStopDoesNotBlock(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub()
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()

	subs := make([]*Subscriber, 200)
	for i := range subs {
		subs[i] = h.Subscribe()
	}
	require.Eventually(t, func() bool { return h.SubscriberCount() == len(subs) }, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-stopped

	done := make(chan struct{})
	go func() {
		for _, s := range subs {
			h.Unsubscribe(s)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Unsubscribe blocked after the hub stopped")
	}

	_, ok := <-subs[0].C
	assert.False(t, ok)
	late := h.Subscribe()
	_, ok = <-late.C
	assert.False(t, ok, "subscribing to a stopped hub yields a closed channel")
}
