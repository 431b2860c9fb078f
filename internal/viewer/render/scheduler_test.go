package render

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/folio/internal/engine"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// collector records deliveries in order.
type collector struct {
	mu    sync.Mutex
	specs []Spec
}

func (c *collector) deliver(spec Spec, _ engine.Bitmap) {
	c.mu.Lock()
	c.specs = append(c.specs, spec)
	c.mu.Unlock()
}

func (c *collector) delivered() []Spec {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Spec(nil), c.specs...)
}

func instantRaster(spec Spec) (engine.Bitmap, error) {
	return engine.Bitmap{Width: 1, Height: 1, Stride: 4, Samples: make([]byte, 4)}, nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestTokenDeliverAfterCancel(t *testing.T) {
	tok := NewToken()
	tok.Cancel()

	ran := tok.Deliver(func() { t.Fatal("delivered after cancel") })
	assert.False(t, ran)
	assert.True(t, tok.Cancelled())
}

func TestTokenCancelWaitsForDelivery(t *testing.T) {
	tok := NewToken()
	entered := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool

	go tok.Deliver(func() {
		close(entered)
		<-release
		finished.Store(true)
	})

	<-entered
	go func() {
		time.Sleep(20 * time.Millisecond)
		close(release)
	}()

	tok.Cancel()
	// Cancel must not return while the delivery is still running.
	assert.True(t, finished.Load())
}

func TestSchedulerDebounceCoalesces(t *testing.T) {
	var c collector
	var renders atomic.Int64
	s := NewScheduler(30*time.Millisecond, func(spec Spec) (engine.Bitmap, error) {
		renders.Add(1)
		return instantRaster(spec)
	}, c.deliver, testLogger())
	defer s.Close()

	for i := 0; i < 5; i++ {
		s.Request(Spec{Page: i, Scale: 1})
		time.Sleep(5 * time.Millisecond)
	}

	waitFor(t, func() bool { return len(c.delivered()) == 1 })
	require.Equal(t, int64(1), renders.Load())
	assert.Equal(t, 4, c.delivered()[0].Page)
}

func TestSchedulerRequestNowSkipsDebounce(t *testing.T) {
	var c collector
	s := NewScheduler(time.Hour, instantRaster, c.deliver, testLogger())
	defer s.Close()

	s.Request(Spec{Page: 1, Scale: 1})
	s.RequestNow(Spec{Page: 2, Scale: 1})

	waitFor(t, func() bool { return len(c.delivered()) == 1 })
	// The immediate render also discards the armed request.
	time.Sleep(20 * time.Millisecond)
	got := c.delivered()
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Page)
}

func TestSchedulerSupersededRenderNotDelivered(t *testing.T) {
	var c collector
	started := make(chan int, 2)
	block := make(chan struct{})

	s := NewScheduler(0, func(spec Spec) (engine.Bitmap, error) {
		started <- spec.Page
		if spec.Page == 1 {
			<-block
		}
		return instantRaster(spec)
	}, c.deliver, testLogger())
	defer s.Close()

	s.Request(Spec{Page: 1, Scale: 1})
	<-started

	done := make(chan struct{})
	go func() {
		s.Request(Spec{Page: 2, Scale: 1})
		close(done)
	}()

	// The second request joins the first worker before starting.
	time.Sleep(20 * time.Millisecond)
	close(block)
	<-done
	<-started

	waitFor(t, func() bool { return len(c.delivered()) == 1 })
	assert.Equal(t, 2, c.delivered()[0].Page)
}

func TestSchedulerFlush(t *testing.T) {
	var c collector
	s := NewScheduler(time.Hour, instantRaster, c.deliver, testLogger())
	defer s.Close()

	s.Request(Spec{Page: 3, Scale: 1})
	s.Flush()

	waitFor(t, func() bool { return len(c.delivered()) == 1 })
	assert.Equal(t, 3, c.delivered()[0].Page)
}

func TestSchedulerCloseStopsDelivery(t *testing.T) {
	var c collector
	started := make(chan struct{})
	block := make(chan struct{})

	s := NewScheduler(0, func(spec Spec) (engine.Bitmap, error) {
		close(started)
		<-block
		return instantRaster(spec)
	}, c.deliver, testLogger())

	s.Request(Spec{Page: 1, Scale: 1})
	<-started

	go func() {
		time.Sleep(20 * time.Millisecond)
		close(block)
	}()
	s.Close()

	assert.Empty(t, c.delivered())

	// Requests after Close are ignored.
	s.Request(Spec{Page: 2, Scale: 1})
	s.RequestNow(Spec{Page: 3, Scale: 1})
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, c.delivered())
}
