package realtime

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func receiveOne(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case e, ok := <-sub.C:
		require.True(t, ok, "subscription channel closed unexpectedly")
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestHub_PublishReachesInterestedSubscribers(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()

	dealsSub := hub.Subscribe("deals")
	allSub := hub.Subscribe()
	txSub := hub.Subscribe("transactions")

	hub.Publish(Event{Table: "deals", Op: OpInsert})

	e := receiveOne(t, dealsSub)
	assert.Equal(t, "deals", e.Table)
	assert.Equal(t, OpInsert, e.Op)

	e = receiveOne(t, allSub)
	assert.Equal(t, "deals", e.Table)

	select {
	case <-txSub.C:
		t.Fatal("transactions subscriber received a deals event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_SubscriptionCloseDetaches(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()

	sub := hub.Subscribe("deals")
	assert.Equal(t, 1, hub.SubscriberCount())

	sub.Close()
	sub.Close()
	assert.Equal(t, 0, hub.SubscriberCount())

	_, ok := <-sub.C
	assert.False(t, ok, "channel closed after Close")

	// Publishing after detach must not panic
	hub.Publish(Event{Table: "deals", Op: OpDelete})
}

func TestHub_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()

	sub := hub.Subscribe("deals")
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*2; i++ {
			hub.Publish(Event{Table: "deals", Op: OpUpdate})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestHub_CloseClosesAllSubscriptions(t *testing.T) {
	hub := NewHub(zap.NewNop())
	s1 := hub.Subscribe("deals")
	s2 := hub.Subscribe()

	hub.Close()

	_, ok := <-s1.C
	assert.False(t, ok)
	_, ok = <-s2.C
	assert.False(t, ok)

	// Subscribing after close yields an already-closed subscription
	s3 := hub.Subscribe("deals")
	_, ok = <-s3.C
	assert.False(t, ok)
}

func TestHub_ConcurrentPublishAndSubscribe(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			sub := hub.Subscribe("deals")
			sub.Close()
		}()
		go func() {
			defer wg.Done()
			hub.Publish(Event{Table: "deals", Op: OpInsert})
		}()
	}
	wg.Wait()
}
