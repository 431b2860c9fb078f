package viewer

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bnema/folio/internal/engine"
	"github.com/bnema/folio/internal/geom"
	"github.com/bnema/folio/internal/viewer/event"
	"github.com/bnema/folio/internal/viewer/render"
	"github.com/bnema/folio/internal/viewer/search"
	"github.com/bnema/folio/internal/viewer/thumbs"
)

// Zoom changes below this threshold are ignored to avoid re-rendering on
// no-op zoom input.
const zoomEpsilon = 0.01

// Options configures a session's zoom bounds, debounce windows and
// thumbnail geometry.
type Options struct {
	MinZoom        float64
	MaxZoom        float64
	ZoomStep       float64
	WheelZoomStep  float64
	RenderDebounce time.Duration
	ThumbnailScale float64
	ThumbnailWidth int
}

// DefaultOptions returns the stock viewing parameters.
func DefaultOptions() Options {
	return Options{
		MinZoom:        0.1,
		MaxZoom:        15.0,
		ZoomStep:       1.25,
		WheelZoomStep:  1.15,
		RenderDebounce: 150 * time.Millisecond,
		ThumbnailScale: 0.5,
		ThumbnailWidth: 130,
	}
}

// Session owns one open document: its view state, render scheduling,
// thumbnail stream and search matches.
//
// Locking: mu guards the view state; pageMu serializes every access to the
// document handle, because the engine is not assumed safe for concurrent
// page loads. Methods never call into the scheduler or thumbnail pipeline
// while holding mu, since both join their workers and a joining worker may
// need mu.
type Session struct {
	id     string
	path   string
	title  string
	bus    *event.Bus
	opts   Options
	logger zerolog.Logger

	pageMu sync.Mutex
	doc    engine.Document

	pageCount int

	rectMu sync.Mutex
	rects  map[int]geom.Rect

	mu        sync.Mutex
	state     ViewState
	viewportW float64
	viewportH float64
	displayed bool
	closed    bool

	index  *search.Index
	sched  *render.Scheduler
	thumbs *thumbs.Pipeline
}

// NewSession wraps an open document. The caller keeps ownership of the path
// key; the session takes ownership of the document handle and closes it.
func NewSession(path string, doc engine.Document, bus *event.Bus, opts Options, logger zerolog.Logger) *Session {
	s := &Session{
		id:        path,
		path:      path,
		title:     filepath.Base(path),
		bus:       bus,
		opts:      opts,
		logger:    logger.With().Str("component", "session").Str("document", path).Logger(),
		doc:       doc,
		pageCount: doc.PageCount(),
		rects:     make(map[int]geom.Rect),
		state:     ViewState{ZoomFactor: 1.0},
		index:     search.NewIndex(),
	}
	s.sched = render.NewScheduler(opts.RenderDebounce, s.rasterPage, s.deliverRender, s.logger)
	s.thumbs = thumbs.NewPipeline(s.rasterThumbnail, s.deliverThumbnail, s.logger)
	return s
}

// ID returns the session's registry key.
func (s *Session) ID() string { return s.id }

// Path returns the document's normalized path.
func (s *Session) Path() string { return s.path }

// Title returns the display title, the document's base name.
func (s *Session) Title() string { return s.title }

// PageCount returns the document's page count.
func (s *Session) PageCount() int { return s.pageCount }

// State returns a copy of the current view state.
func (s *Session) State() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Restore seeds the view state from persisted values. Call before the first
// DisplayPage.
func (s *Session) Restore(page int, zoom float64, rotation int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if page >= 0 && page < s.pageCount {
		s.state.PageIndex = page
	}
	s.state.ZoomFactor = geom.ClampZoom(zoom, s.opts.MinZoom, s.opts.MaxZoom)
	s.state.Rotation = geom.NormalizeRotation(rotation)
}

// pageRect returns the unrotated page bounds in document units, loading the
// page once and caching the result.
func (s *Session) pageRect(index int) (geom.Rect, error) {
	s.rectMu.Lock()
	r, ok := s.rects[index]
	s.rectMu.Unlock()
	if ok {
		return r, nil
	}

	s.pageMu.Lock()
	defer s.pageMu.Unlock()
	page, err := s.doc.LoadPage(index)
	if err != nil {
		return geom.Rect{}, err
	}
	r = page.Rect()

	s.rectMu.Lock()
	s.rects[index] = r
	s.rectMu.Unlock()
	return r, nil
}

// baseScaleFor computes the scale that fits the rotated page into the
// viewport at zoom 1.0. Falls back to 1.0 until the viewport is known.
func (s *Session) baseScaleFor(rect geom.Rect, rot geom.Rotation) float64 {
	m := geom.Mapper{PageWidth: rect.Width(), PageHeight: rect.Height()}
	w, h := m.RotatedSize(rot)
	if s.viewportW <= 0 || s.viewportH <= 0 || w <= 0 || h <= 0 {
		return 1.0
	}
	scale := s.viewportW / w
	if v := s.viewportH / h; v < scale {
		scale = v
	}
	return scale
}

// DisplayPage makes the page current and renders it immediately.
func (s *Session) DisplayPage(index int) error {
	return s.displayPage(index, false)
}

func (s *Session) displayPage(index int, scrollToBottom bool) error {
	if index < 0 || index >= s.pageCount {
		return fmt.Errorf("viewer: page %d out of range [0,%d)", index, s.pageCount)
	}

	rect, err := s.pageRect(index)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.state.PageIndex = index
	s.state.BaseScale = s.baseScaleFor(rect, s.state.Rotation)
	s.displayed = true
	spec := s.specLocked(scrollToBottom)
	s.mu.Unlock()

	s.bus.Publish(event.PageChanged{
		SessionEvent: s.evt(),
		Page:         index,
		PageCount:    s.pageCount,
	})
	s.sched.RequestNow(spec)
	return nil
}

// specLocked captures the render request for the current state. mu held.
func (s *Session) specLocked(scrollToBottom bool) render.Spec {
	return render.Spec{
		Page:           s.state.PageIndex,
		Scale:          s.state.RenderScale(),
		Rotation:       s.state.Rotation,
		ScrollToBottom: scrollToBottom,
	}
}

func (s *Session) evt() event.SessionEvent {
	return event.NewSessionEvent(s.id)
}

// SetZoomFactor clamps and applies a zoom factor, scheduling a debounced
// re-render. Changes below the zoom epsilon are ignored.
func (s *Session) SetZoomFactor(z float64) {
	s.mu.Lock()
	if s.closed || !s.displayed {
		s.mu.Unlock()
		return
	}
	clamped := geom.ClampZoom(z, s.opts.MinZoom, s.opts.MaxZoom)
	if diff := clamped - s.state.ZoomFactor; diff < zoomEpsilon && diff > -zoomEpsilon {
		s.mu.Unlock()
		return
	}
	s.state.ZoomFactor = clamped
	spec := s.specLocked(false)
	s.mu.Unlock()

	s.bus.Publish(event.ZoomChanged{SessionEvent: s.evt(), Factor: clamped})
	s.sched.Request(spec)
}

func (s *Session) multiplyZoom(factor float64) {
	s.mu.Lock()
	z := s.state.ZoomFactor * factor
	s.mu.Unlock()
	s.SetZoomFactor(z)
}

// ZoomIn raises the zoom by one button step.
func (s *Session) ZoomIn() { s.multiplyZoom(s.opts.ZoomStep) }

// ZoomOut lowers the zoom by one button step.
func (s *Session) ZoomOut() { s.multiplyZoom(1 / s.opts.ZoomStep) }

// WheelZoom applies one scroll-wheel zoom increment, finer than the button
// step.
func (s *Session) WheelZoom(in bool) {
	if in {
		s.multiplyZoom(s.opts.WheelZoomStep)
	} else {
		s.multiplyZoom(1 / s.opts.WheelZoomStep)
	}
}

// Rotate turns the page by delta degrees (a multiple of 90), recomputes the
// base scale for the new orientation, schedules a re-render and restarts
// the thumbnail stream.
func (s *Session) Rotate(delta int) {
	s.mu.Lock()
	if s.closed || !s.displayed {
		s.mu.Unlock()
		return
	}
	s.state.Rotation = s.state.Rotation.Rotate(delta)
	rot := s.state.Rotation

	if rect, ok := s.cachedRect(s.state.PageIndex); ok {
		s.state.BaseScale = s.baseScaleFor(rect, rot)
	}
	spec := s.specLocked(false)
	s.mu.Unlock()

	s.bus.Publish(event.RotationChanged{SessionEvent: s.evt(), Rotation: rot})
	s.sched.Request(spec)
	s.thumbs.Refresh(s.pageCount)
}

func (s *Session) cachedRect(index int) (geom.Rect, bool) {
	s.rectMu.Lock()
	defer s.rectMu.Unlock()
	r, ok := s.rects[index]
	return r, ok
}

// Resize updates the viewport and schedules a debounced re-render with the
// recomputed base scale.
func (s *Session) Resize(w, h float64) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.viewportW, s.viewportH = w, h
	if !s.displayed {
		s.mu.Unlock()
		return
	}
	if rect, ok := s.cachedRect(s.state.PageIndex); ok {
		s.state.BaseScale = s.baseScaleFor(rect, s.state.Rotation)
	}
	spec := s.specLocked(false)
	s.mu.Unlock()

	s.sched.Request(spec)
}

// FitToPage resets the zoom to 1.0, which renders the page at its base
// scale, exactly filling the viewport.
func (s *Session) FitToPage() {
	s.SetZoomFactor(1.0)
}

// FitToWidth derives the zoom factor that makes the rotated page width fill
// the viewport width.
func (s *Session) FitToWidth() {
	s.mu.Lock()
	if s.closed || !s.displayed || s.state.BaseScale <= 0 || s.viewportW <= 0 {
		s.mu.Unlock()
		return
	}
	rect, ok := s.cachedRect(s.state.PageIndex)
	if !ok {
		s.mu.Unlock()
		return
	}
	m := geom.Mapper{PageWidth: rect.Width(), PageHeight: rect.Height()}
	w, _ := m.RotatedSize(s.state.Rotation)
	base := s.state.BaseScale
	vw := s.viewportW
	s.mu.Unlock()

	if w <= 0 {
		return
	}
	s.SetZoomFactor((vw / w) / base)
}

// ScrollPage turns the page when the viewport scrolls past an edge:
// delta +1 moves forward landing at the top, delta -1 moves back landing at
// the bottom. Reports whether a page turn happened.
func (s *Session) ScrollPage(delta int) bool {
	s.mu.Lock()
	target := s.state.PageIndex + delta
	s.mu.Unlock()

	if target < 0 || target >= s.pageCount {
		return false
	}
	if err := s.displayPage(target, delta < 0); err != nil {
		s.logger.Warn().Err(err).Int("page", target).Msg("page turn failed")
		return false
	}
	return true
}

// rasterPage runs on the render worker: load the requested page and
// rasterize it under the captured transform.
func (s *Session) rasterPage(spec render.Spec) (engine.Bitmap, error) {
	s.pageMu.Lock()
	defer s.pageMu.Unlock()

	page, err := s.doc.LoadPage(spec.Page)
	if err != nil {
		return engine.Bitmap{}, err
	}

	s.rectMu.Lock()
	s.rects[spec.Page] = page.Rect()
	s.rectMu.Unlock()

	return page.Rasterize(engine.Transform{Scale: spec.Scale, Rotation: spec.Rotation})
}

// deliverRender publishes a finished render and the recomputed highlight
// overlay for the rendered page. Runs under the worker token; it touches no
// session state beyond the match index and rect cache, both with their own
// locks.
func (s *Session) deliverRender(spec render.Spec, bmp engine.Bitmap) {
	s.bus.Publish(event.PageRendered{
		SessionEvent:   s.evt(),
		Page:           spec.Page,
		Bitmap:         bmp,
		Scale:          spec.Scale,
		Rotation:       spec.Rotation,
		ScrollToBottom: spec.ScrollToBottom,
	})
	s.publishHighlights(spec.Page, spec.Scale, spec.Rotation)
}

// publishHighlights maps the page's matches into view space at the given
// transform and publishes them. Highlight placement must track the render
// scale, so this runs after every render and after cursor moves.
func (s *Session) publishHighlights(page int, scale float64, rot geom.Rotation) {
	rect, ok := s.cachedRect(page)
	if !ok || scale <= 0 {
		return
	}

	docRects, active := s.index.PageMatches(page)
	m := geom.Mapper{PageWidth: rect.Width(), PageHeight: rect.Height()}
	viewRects := make([]geom.Rect, 0, len(docRects))
	for _, r := range docRects {
		viewRects = append(viewRects, m.ToView(r, scale, rot))
	}

	s.bus.Publish(event.HighlightsUpdated{
		SessionEvent: s.evt(),
		Page:         page,
		Rects:        viewRects,
		Active:       active,
	})
}

// rasterThumbnail renders one page at the thumbnail scale and current
// rotation, normalized to the sidebar width.
func (s *Session) rasterThumbnail(page int) (engine.Bitmap, error) {
	s.mu.Lock()
	rot := s.state.Rotation
	s.mu.Unlock()

	s.pageMu.Lock()
	p, err := s.doc.LoadPage(page)
	if err != nil {
		s.pageMu.Unlock()
		return engine.Bitmap{}, err
	}
	bmp, err := p.Rasterize(engine.Transform{Scale: s.opts.ThumbnailScale, Rotation: rot})
	s.pageMu.Unlock()
	if err != nil {
		return engine.Bitmap{}, err
	}

	return thumbs.ScaleToWidth(bmp, s.opts.ThumbnailWidth), nil
}

func (s *Session) deliverThumbnail(page int, bmp engine.Bitmap, gen uint64) {
	s.bus.Publish(event.ThumbnailReady{
		SessionEvent: s.evt(),
		Page:         page,
		Bitmap:       bmp,
		Landscape:    bmp.Landscape(),
		Generation:   gen,
	})
}

// RefreshThumbnails restarts the thumbnail stream, superseding any pass
// still running.
func (s *Session) RefreshThumbnails() {
	s.thumbs.Refresh(s.pageCount)
}

// Search replaces the match set with the results of a full-document scan.
// An empty query clears the matches. The scan is synchronous; ctx aborts it
// between pages.
func (s *Session) Search(ctx context.Context, query string) error {
	s.index.Reset(query)

	s.mu.Lock()
	page := s.state.PageIndex
	s.mu.Unlock()

	if query == "" {
		s.bus.Publish(event.MatchesUpdated{SessionEvent: s.evt(), Done: true})
		s.bus.Publish(event.HighlightsUpdated{SessionEvent: s.evt(), Page: page, Active: -1})
		return nil
	}

	for i := 0; i < s.pageCount; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		rects, err := s.searchPage(i, query)
		if err != nil {
			s.logger.Warn().Err(err).Int("page", i).Msg("search failed on page")
			continue
		}
		if len(rects) == 0 {
			continue
		}

		if first := s.index.Add(i, rects); first {
			s.GoToMatch(0)
		}
		_, pos, _ := s.index.Current()
		s.bus.Publish(event.MatchesUpdated{
			SessionEvent: s.evt(),
			Query:        query,
			Current:      pos + 1,
			Total:        s.index.Len(),
		})
	}

	_, pos, ok := s.index.Current()
	current := 0
	if ok {
		current = pos + 1
	}
	s.bus.Publish(event.MatchesUpdated{
		SessionEvent: s.evt(),
		Query:        query,
		Current:      current,
		Total:        s.index.Len(),
		Done:         true,
	})
	return nil
}

func (s *Session) searchPage(index int, query string) ([]geom.Rect, error) {
	s.pageMu.Lock()
	defer s.pageMu.Unlock()
	page, err := s.doc.LoadPage(index)
	if err != nil {
		return nil, err
	}
	return page.SearchText(query)
}

// Matches returns the current match count.
func (s *Session) Matches() int { return s.index.Len() }

// PageMatches returns the document-space match rectangles on one page and
// the position of the cursor match within them (-1 when elsewhere).
func (s *Session) PageMatches(page int) ([]geom.Rect, int) {
	return s.index.PageMatches(page)
}

// GoToMatch selects match pos and brings its page into view. Reports
// whether pos was valid.
func (s *Session) GoToMatch(pos int) bool {
	m, ok := s.index.Select(pos)
	if !ok {
		return false
	}
	s.showMatch(m, pos)
	return true
}

// NextMatch advances the match cursor cyclically.
func (s *Session) NextMatch() {
	if m, ok := s.index.Next(); ok {
		_, pos, _ := s.index.Current()
		s.showMatch(m, pos)
	}
}

// PrevMatch steps the match cursor back cyclically.
func (s *Session) PrevMatch() {
	if m, ok := s.index.Prev(); ok {
		_, pos, _ := s.index.Current()
		s.showMatch(m, pos)
	}
}

// showMatch routes to the match's page. A page change re-renders, which
// republishes highlights; staying on the page only recomputes them.
func (s *Session) showMatch(m search.Match, pos int) {
	s.mu.Lock()
	cur := s.state.PageIndex
	scale := s.state.RenderScale()
	rot := s.state.Rotation
	s.mu.Unlock()

	if m.Page != cur {
		if err := s.displayPage(m.Page, false); err != nil {
			s.logger.Warn().Err(err).Int("page", m.Page).Msg("match navigation failed")
			return
		}
	} else {
		s.publishHighlights(cur, scale, rot)
	}

	s.bus.Publish(event.MatchesUpdated{
		SessionEvent: s.evt(),
		Query:        s.index.Query(),
		Current:      pos + 1,
		Total:        s.index.Len(),
	})
}

// SelectText maps a view-space selection back to document space and
// extracts the covered text. Fails with geom.ErrDegenerateScale before the
// first render.
func (s *Session) SelectText(viewRect geom.Rect) (string, error) {
	s.mu.Lock()
	scale := s.state.RenderScale()
	rot := s.state.Rotation
	page := s.state.PageIndex
	s.mu.Unlock()

	rect, ok := s.cachedRect(page)
	if !ok || scale == 0 {
		return "", geom.ErrDegenerateScale
	}

	m := geom.Mapper{PageWidth: rect.Width(), PageHeight: rect.Height()}
	clip, err := m.ToDocument(viewRect, scale, rot)
	if err != nil {
		return "", err
	}

	s.pageMu.Lock()
	p, err := s.doc.LoadPage(page)
	if err != nil {
		s.pageMu.Unlock()
		return "", err
	}
	text, err := p.ExtractText(clip)
	s.pageMu.Unlock()
	if err != nil {
		return "", err
	}

	if text != "" {
		s.bus.Publish(event.NewNotification(s.id, "text copied"))
	}
	return text, nil
}

// ExtractPageText returns the full text of one page.
func (s *Session) ExtractPageText(index int) (string, error) {
	rect, err := s.pageRect(index)
	if err != nil {
		return "", err
	}

	s.pageMu.Lock()
	defer s.pageMu.Unlock()
	page, err := s.doc.LoadPage(index)
	if err != nil {
		return "", err
	}
	return page.ExtractText(rect)
}

// RasterizePage renders one page synchronously at the given scale with the
// session's current rotation, outside the scheduled pipeline. Used for
// printing and one-shot exports.
func (s *Session) RasterizePage(index int, scale float64) (engine.Bitmap, geom.Rect, error) {
	s.mu.Lock()
	rot := s.state.Rotation
	s.mu.Unlock()

	rect, err := s.pageRect(index)
	if err != nil {
		return engine.Bitmap{}, geom.Rect{}, err
	}

	s.pageMu.Lock()
	defer s.pageMu.Unlock()
	page, err := s.doc.LoadPage(index)
	if err != nil {
		return engine.Bitmap{}, geom.Rect{}, err
	}
	bmp, err := page.Rasterize(engine.Transform{Scale: scale, Rotation: rot})
	if err != nil {
		return engine.Bitmap{}, geom.Rect{}, err
	}
	return bmp, rect, nil
}

// Close tears the session down: the render job is cancelled and joined,
// then the thumbnail stream, and only then is the document released, so no
// worker can touch a closed handle. No event for this session is published
// after Close returns.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.sched.Close()
	s.thumbs.Close()

	s.pageMu.Lock()
	defer s.pageMu.Unlock()
	return s.doc.Close()
}
