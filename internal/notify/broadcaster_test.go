package notify

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcaster_FanOut(t *testing.T) {
	b := NewBroadcaster[int]()
	first, unsubFirst := b.Subscribe()
	second, unsubSecond := b.Subscribe()
	defer unsubFirst()
	defer unsubSecond()

	b.Publish(7)

	assert.Equal(t, 7, <-first)
	assert.Equal(t, 7, <-second)
	assert.Equal(t, 2, b.Subscribers())
}

func TestBroadcaster_SlowSubscriberSeesLatest(t *testing.T) {
	b := NewBroadcaster[string]()
	ch, unsub := b.Subscribe()
	defer unsub()

	b.Publish("old")
	b.Publish("new")

	assert.Equal(t, "new", <-ch)
	select {
	case v := <-ch:
		t.Fatalf("unexpected extra value %q", v)
	default:
	}
}

func TestBroadcaster_Unsubscribe(t *testing.T) {
	b := NewBroadcaster[int]()
	ch, unsub := b.Subscribe()

	unsub()
	unsub()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, b.Subscribers())

	// publishing with no subscribers is a no-op
	b.Publish(1)
}

func TestBroadcaster_Close(t *testing.T) {
	b := NewBroadcaster[int]()
	ch, unsub := b.Subscribe()
	b.Close()

	_, open := <-ch
	assert.False(t, open)
	unsub()

	late, _ := b.Subscribe()
	_, open = <-late
	assert.False(t, open)
}

func TestBroadcaster_ConcurrentPublish(t *testing.T) {
	b := NewBroadcaster[int]()
	ch, unsub := b.Subscribe()
	defer unsub()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			b.Publish(v)
		}(i)
	}
	wg.Wait()

	_, ok := <-ch
	require.True(t, ok)
}
