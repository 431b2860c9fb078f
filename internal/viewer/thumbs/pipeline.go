// Package thumbs produces page thumbnails in the background. A refresh pass
// walks every page at a reduced scale, emitting thumbnails one by one so
// the sidebar fills progressively; starting a new pass supersedes the old
// one via a generation counter.
package thumbs

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/bnema/folio/internal/engine"
	"github.com/bnema/folio/internal/viewer/render"
)

// RasterFunc renders the thumbnail bitmap for one page. It runs on the
// pipeline goroutine.
type RasterFunc func(page int) (engine.Bitmap, error)

// DeliverFunc receives one finished thumbnail with the generation of the
// pass that produced it.
type DeliverFunc func(page int, bmp engine.Bitmap, generation uint64)

// Pipeline renders thumbnail passes. At most one pass runs at a time; a new
// Refresh cancels and joins the previous pass before starting.
type Pipeline struct {
	raster  RasterFunc
	deliver DeliverFunc
	logger  zerolog.Logger

	mu         sync.Mutex
	generation uint64
	token      *render.Token
	done       chan struct{}
	closed     bool
}

// NewPipeline returns an idle pipeline.
func NewPipeline(raster RasterFunc, deliver DeliverFunc, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		raster:  raster,
		deliver: deliver,
		logger:  logger.With().Str("component", "thumbs").Logger(),
	}
}

// Refresh starts a new pass over pages [0, pageCount). Any running pass is
// cancelled and joined first. Returns the generation of the new pass.
func (p *Pipeline) Refresh(pageCount int) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return p.generation
	}

	if p.token != nil {
		p.token.Cancel()
		<-p.done
	}

	p.generation++
	gen := p.generation
	token := render.NewToken()
	done := make(chan struct{})
	p.token = token
	p.done = done

	go p.run(pageCount, gen, token, done)
	return gen
}

func (p *Pipeline) run(pageCount int, gen uint64, token *render.Token, done chan struct{}) {
	defer close(done)

	for page := 0; page < pageCount; page++ {
		if token.Cancelled() {
			return
		}

		bmp, err := p.raster(page)
		if err != nil {
			// One bad page must not stop the rest of the pass.
			p.logger.Warn().Err(err).Int("page", page).Msg("thumbnail render failed")
			continue
		}

		if !token.Deliver(func() { p.deliver(page, bmp, gen) }) {
			return
		}
	}
}

// Generation returns the generation of the most recent pass.
func (p *Pipeline) Generation() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.generation
}

// Close cancels the running pass and waits for it to exit. No delivery runs
// after Close returns.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	if p.token != nil {
		p.token.Cancel()
		<-p.done
		p.token = nil
	}
}
