package render

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bnema/folio/internal/engine"
	"github.com/bnema/folio/internal/geom"
)

// Spec is one rasterization request, captured by value when the request is
// made so a later state change cannot alter an in-flight render.
type Spec struct {
	Page           int
	Scale          float64
	Rotation       geom.Rotation
	ScrollToBottom bool
}

// RasterFunc produces the bitmap for a spec. It runs on the worker
// goroutine and may block on the document engine.
type RasterFunc func(spec Spec) (engine.Bitmap, error)

// DeliverFunc receives a finished render. It runs under the worker token's
// mutex and must not call back into the scheduler.
type DeliverFunc func(spec Spec, bmp engine.Bitmap)

// Scheduler coalesces render requests and keeps at most one rasterization
// in flight. A new request supersedes the previous one: its worker is
// cancelled and joined before the replacement starts, so deliveries arrive
// in request order with no duplicates.
type Scheduler struct {
	debounce time.Duration
	raster   RasterFunc
	deliver  DeliverFunc
	logger   zerolog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending Spec
	armed   bool
	closed  bool

	// startMu serializes the cancel-join-replace sequence so two firing
	// requests cannot interleave their workers.
	startMu sync.Mutex
	token   *Token
	done    chan struct{}
}

// NewScheduler returns a scheduler debouncing requests by the given
// duration. A zero debounce fires every request immediately.
func NewScheduler(debounce time.Duration, raster RasterFunc, deliver DeliverFunc, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		debounce: debounce,
		raster:   raster,
		deliver:  deliver,
		logger:   logger.With().Str("component", "render-scheduler").Logger(),
	}
}

// Request schedules a render for spec, restarting the debounce window.
// Only the last spec of a burst is rendered.
func (s *Scheduler) Request(spec Spec) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.debounce <= 0 {
		s.mu.Unlock()
		s.start(spec)
		return
	}

	s.pending = spec
	s.armed = true
	if s.timer == nil {
		s.timer = time.AfterFunc(s.debounce, s.fire)
	} else {
		s.timer.Reset(s.debounce)
	}
	s.mu.Unlock()
}

// RequestNow bypasses the debounce window and also discards any armed
// request, which the immediate render supersedes.
func (s *Scheduler) RequestNow(spec Spec) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.armed = false
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()

	s.start(spec)
}

func (s *Scheduler) fire() {
	s.mu.Lock()
	if s.closed || !s.armed {
		s.mu.Unlock()
		return
	}
	spec := s.pending
	s.armed = false
	s.mu.Unlock()

	s.start(spec)
}

func (s *Scheduler) start(spec Spec) {
	s.startMu.Lock()
	defer s.startMu.Unlock()

	if s.token != nil {
		s.token.Cancel()
		<-s.done
	}

	token := NewToken()
	done := make(chan struct{})
	s.token = token
	s.done = done

	go s.work(spec, token, done)
}

func (s *Scheduler) work(spec Spec, token *Token, done chan struct{}) {
	defer close(done)

	bmp, err := s.raster(spec)
	if err != nil {
		if !token.Cancelled() {
			s.logger.Warn().Err(err).Int("page", spec.Page).Msg("render failed")
		}
		return
	}

	token.Deliver(func() {
		s.deliver(spec, bmp)
	})
}

// Flush renders any armed request immediately instead of waiting out the
// debounce window.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	if s.closed || !s.armed {
		s.mu.Unlock()
		return
	}
	spec := s.pending
	s.armed = false
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()

	s.start(spec)
}

// Close cancels the armed request and the in-flight worker, waiting for the
// worker to exit. No delivery runs after Close returns.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	s.armed = false
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()

	s.startMu.Lock()
	defer s.startMu.Unlock()
	if s.token != nil {
		s.token.Cancel()
		<-s.done
		s.token = nil
	}
}
