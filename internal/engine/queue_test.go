package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queued(seq int64) queuedJob {
	return queuedJob{job: autoUpdateJob{}, seq: seq}
}

func TestJobQueue_FIFO(t *testing.T) {
	q := newJobQueue()
	for i := int64(1); i <= 3; i++ {
		require.True(t, q.Enqueue(queued(i)))
	}

	for want := int64(1); want <= 3; want++ {
		got, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, want, got.seq)
	}

	_, ok := q.TryDequeue()
	assert.False(t, ok)
}

func TestJobQueue_SignalsOnEnqueue(t *testing.T) {
	q := newJobQueue()
	q.Enqueue(queued(1))
	q.Enqueue(queued(2))

	select {
	case <-q.Wait():
	default:
		t.Fatal("expected a pending signal")
	}

	// Signals coalesce into one.
	select {
	case <-q.Wait():
		t.Fatal("expected no second signal")
	default:
	}
}

func TestJobQueue_Drain(t *testing.T) {
	q := newJobQueue()
	q.Enqueue(queued(1))

	q.Drain()

	select {
	case <-q.Wait():
		t.Fatal("signal should have been drained")
	default:
	}
	assert.Equal(t, 1, q.Len(), "drain discards the signal, not the jobs")
}

func TestJobQueue_Close(t *testing.T) {
	q := newJobQueue()
	q.Enqueue(queued(1))

	done := make(chan struct{})
	go func() {
		<-q.Wait() // consumes the enqueue signal
		<-q.Wait() // returns once closed
		close(done)
	}()

	q.Close()
	q.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waiter not woken by Close")
	}

	assert.True(t, q.Closed())
	assert.False(t, q.Enqueue(queued(2)))

	got, ok := q.TryDequeue()
	require.True(t, ok, "jobs queued before Close are still served")
	assert.Equal(t, int64(1), got.seq)
}

func TestJobQueue_ConcurrentEnqueue(t *testing.T) {
	q := newJobQueue()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(seq int64) {
			defer wg.Done()
			q.Enqueue(queued(seq))
		}(int64(i))
	}
	wg.Wait()

	assert.Equal(t, 100, q.Len())
}
