package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSubscriber records every event it receives.
type mockSubscriber struct {
	events []Event
	mu     sync.Mutex
	closed bool
}

func (m *mockSubscriber) Send(event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *mockSubscriber) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockSubscriber) snapshot() ([]Event, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...), m.closed
}

func newTestBroker() *Broker {
	logger := zerolog.Nop()
	return NewBroker(&logger)
}

// TestBroker_SubscribeBeforeRun checks that registration never waits on the loop.
func TestBroker_SubscribeBeforeRun(t *testing.T) {
	b := newTestBroker()

	done := make(chan struct{})
	go func() {
		b.Subscribe(&mockSubscriber{})
		b.Subscribe(&mockSubscriber{})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Subscribe blocked without a running event loop")
	}
	assert.Equal(t, 2, b.SubscriberCount())
}

func TestBroker_FanOut(t *testing.T) {
	b := newTestBroker()
	s1, s2 := &mockSubscriber{}, &mockSubscriber{}
	b.Subscribe(s1)
	b.Subscribe(s2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)

	b.Publish(MineralPublished, map[string]any{"identifier": "record.quartz.0x0a0b0c0d"})
	b.Publish(CatalogInvalidated, nil)

	for _, sub := range []*mockSubscriber{s1, s2} {
		require.Eventually(t, func() bool {
			evs, _ := sub.snapshot()
			return len(evs) == 2
		}, time.Second, 5*time.Millisecond)

		evs, _ := sub.snapshot()
		assert.Equal(t, MineralPublished, evs[0].Type)
		assert.Equal(t, CatalogInvalidated, evs[1].Type)
		assert.Less(t, evs[0].Seq, evs[1].Seq)
		assert.False(t, evs[0].Timestamp.IsZero())
	}
	assert.Equal(t, uint64(2), b.EventsPublished())
	assert.Zero(t, b.EventsDropped())
}

func TestBroker_Unsubscribe(t *testing.T) {
	b := newTestBroker()
	sub := &mockSubscriber{}
	b.Subscribe(sub)
	b.Unsubscribe(sub)

	assert.Equal(t, 0, b.SubscriberCount())
	_, closed := sub.snapshot()
	assert.True(t, closed)

	// Unknown subscribers are ignored.
	b.Unsubscribe(&mockSubscriber{})
	assert.Equal(t, 0, b.SubscriberCount())
}

func TestBroker_DropsWhenQueueFull(t *testing.T) {
	b := newTestBroker()
	capacity := cap(b.events)

	for i := 0; i < capacity+3; i++ {
		b.Publish(OrphansSwept, i)
	}

	assert.Equal(t, uint64(capacity), b.EventsPublished())
	assert.Equal(t, uint64(3), b.EventsDropped())
	assert.Equal(t, capacity, b.QueueDepth())
}

func TestBroker_ShutdownClosesSubscribers(t *testing.T) {
	b := newTestBroker()
	sub := &mockSubscriber{}
	b.Subscribe(sub)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(stopped)
	}()
	cancel()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	_, closed := sub.snapshot()
	assert.True(t, closed)
	assert.Equal(t, 0, b.SubscriberCount())
}
