package thumbs

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/folio/internal/engine"
)

type thumbRecord struct {
	page       int
	generation uint64
}

type sink struct {
	mu      sync.Mutex
	records []thumbRecord
}

func (s *sink) deliver(page int, _ engine.Bitmap, gen uint64) {
	s.mu.Lock()
	s.records = append(s.records, thumbRecord{page: page, generation: gen})
	s.mu.Unlock()
}

func (s *sink) all() []thumbRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]thumbRecord(nil), s.records...)
}

func smallBitmap() engine.Bitmap {
	return engine.Bitmap{Width: 2, Height: 2, Stride: 8, Samples: make([]byte, 16)}
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

func TestRefreshDeliversAllPagesInOrder(t *testing.T) {
	var s sink
	p := NewPipeline(func(page int) (engine.Bitmap, error) {
		return smallBitmap(), nil
	}, s.deliver, zerolog.Nop())
	defer p.Close()

	gen := p.Refresh(4)

	waitFor(t, func() bool { return len(s.all()) == 4 })
	for i, rec := range s.all() {
		assert.Equal(t, i, rec.page)
		assert.Equal(t, gen, rec.generation)
	}
}

func TestRefreshSkipsFailedPages(t *testing.T) {
	var s sink
	p := NewPipeline(func(page int) (engine.Bitmap, error) {
		if page == 1 {
			return engine.Bitmap{}, errors.New("corrupt page")
		}
		return smallBitmap(), nil
	}, s.deliver, zerolog.Nop())
	defer p.Close()

	p.Refresh(3)

	waitFor(t, func() bool { return len(s.all()) == 2 })
	got := s.all()
	assert.Equal(t, 0, got[0].page)
	assert.Equal(t, 2, got[1].page)
}

func TestRefreshSupersedesRunningPass(t *testing.T) {
	var s sink
	block := make(chan struct{})
	started := make(chan struct{}, 8)

	p := NewPipeline(func(page int) (engine.Bitmap, error) {
		started <- struct{}{}
		if page == 0 {
			<-block
		}
		return smallBitmap(), nil
	}, s.deliver, zerolog.Nop())
	defer p.Close()

	first := p.Refresh(3)
	<-started

	refreshed := make(chan uint64)
	go func() {
		refreshed <- p.Refresh(3)
	}()

	time.Sleep(20 * time.Millisecond)
	close(block)
	second := <-refreshed
	require.Greater(t, second, first)

	waitFor(t, func() bool { return len(s.all()) == 3 })
	time.Sleep(20 * time.Millisecond)

	// Every delivered thumbnail belongs to the second pass.
	for _, rec := range s.all() {
		assert.Equal(t, second, rec.generation)
	}
}

func TestCloseStopsDelivery(t *testing.T) {
	var s sink
	block := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once

	p := NewPipeline(func(page int) (engine.Bitmap, error) {
		once.Do(func() { close(started) })
		<-block
		return smallBitmap(), nil
	}, s.deliver, zerolog.Nop())

	p.Refresh(5)
	<-started

	go func() {
		time.Sleep(20 * time.Millisecond)
		close(block)
	}()
	p.Close()

	assert.Empty(t, s.all())
}

func TestScaleToWidth(t *testing.T) {
	src := engine.Bitmap{Width: 100, Height: 40, Stride: 400, Samples: make([]byte, 100*40*4)}

	got := ScaleToWidth(src, 50)
	assert.Equal(t, 50, got.Width)
	assert.Equal(t, 20, got.Height)

	// Already at target width: returned unchanged.
	same := ScaleToWidth(src, 100)
	assert.Equal(t, src.Width, same.Width)
	assert.Equal(t, src.Height, same.Height)
}
