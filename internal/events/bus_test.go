package events

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishSubscribe(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	bus := NewBus(NewEventLog(db), nil)
	defer bus.Close()

	ch := bus.Subscribe(EventTitleChanged, 10)
	other := bus.Subscribe(EventSyncStarted, 10)

	assert.True(t, bus.Publish(ctx, NewTitleChanged(42, SourceTitleUpdate)))

	select {
	case received := <-ch:
		changed, ok := received.(*TitleChanged)
		require.True(t, ok)
		assert.Equal(t, 42, changed.TitleID())
		assert.Equal(t, SourceTitleUpdate, changed.Source)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	select {
	case e := <-other:
		t.Fatalf("unexpected event %s", e.EventType())
	default:
	}

	persisted, err := NewEventLog(db).Find(ctx, Query{TitleID: 42})
	require.NoError(t, err)
	assert.Len(t, persisted, 1)
}

func TestBus_SubscribeAll(t *testing.T) {
	bus := NewBus(nil, nil)
	defer bus.Close()

	ch := bus.SubscribeAll(10)

	bus.Publish(context.Background(), NewSyncStarted("all", "r1"))
	bus.Publish(context.Background(), NewTitleChanged(1, SourceTitleUpdate))

	received := make([]Event, 0, 2)
	timeout := time.After(time.Second)
	for i := 0; i < 2; i++ {
		select {
		case e := <-ch:
			received = append(received, e)
		case <-timeout:
			t.Fatalf("timeout waiting for event %d", i+1)
		}
	}

	assert.Len(t, received, 2)
}

func TestBus_DropsWhenQueueFull(t *testing.T) {
	bus := NewBus(nil, nil)
	defer bus.Close()

	var dropped atomic.Int32
	bus.OnDrop(func(Event) { dropped.Add(1) })

	ch := bus.Subscribe(EventTitleChanged, 2)
	ctx := context.Background()

	assert.True(t, bus.Publish(ctx, NewTitleChanged(1, SourceTitleUpdate)))
	assert.True(t, bus.Publish(ctx, NewTitleChanged(2, SourceTitleUpdate)))
	assert.False(t, bus.Publish(ctx, NewTitleChanged(3, SourceTitleUpdate)), "publish must not block")
	assert.Equal(t, int32(1), dropped.Load())
	assert.Len(t, ch, 2)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(nil, nil)
	defer bus.Close()

	ch := bus.Subscribe(EventTitleChanged, 10)
	bus.Unsubscribe(ch)

	bus.Publish(context.Background(), NewTitleChanged(1, SourceTitleUpdate))

	_, ok := <-ch
	assert.False(t, ok, "channel should be closed")
}

func TestBus_PublishAfterClose(t *testing.T) {
	bus := NewBus(nil, nil)
	ch := bus.Subscribe(EventTitleChanged, 1)
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())

	assert.False(t, bus.Publish(context.Background(), NewTitleChanged(1, SourceTitleUpdate)))
	_, ok := <-ch
	assert.False(t, ok)
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus(nil, nil)
	defer bus.Close()

	ch := bus.SubscribeAll(100)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			bus.Publish(context.Background(), NewTitleChanged(n, SourceTitleUpdate))
		}(i)
	}
	wg.Wait()

	assert.Len(t, ch, 10)
}
