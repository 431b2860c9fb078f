// Package enginetest provides a scriptable in-memory engine for pipeline
// tests. Pages render instantly unless a delay is configured, which lets
// tests exercise cancellation and supersession deterministically.
package enginetest

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bnema/folio/internal/engine"
	"github.com/bnema/folio/internal/geom"
)

// Engine hands out fake documents keyed by path.
type Engine struct {
	mu   sync.Mutex
	docs map[string]*Document

	// OpenErr, when set, fails every Open call.
	OpenErr error

	opens atomic.Int64
}

// NewEngine returns an engine with no documents registered.
func NewEngine() *Engine {
	return &Engine{docs: make(map[string]*Document)}
}

// AddDocument registers a document with the given number of pages, each
// sized rect in document units.
func (e *Engine) AddDocument(path string, pages int, rect geom.Rect) *Document {
	e.mu.Lock()
	defer e.mu.Unlock()

	doc := &Document{path: path}
	for i := 0; i < pages; i++ {
		doc.Pages = append(doc.Pages, &Page{Index: i, PageRect: rect})
	}
	e.docs[path] = doc
	return doc
}

// Open implements engine.Engine.
func (e *Engine) Open(path string) (engine.Document, error) {
	e.opens.Add(1)
	if e.OpenErr != nil {
		return nil, &engine.OpenError{Path: path, Err: e.OpenErr}
	}

	e.mu.Lock()
	doc, ok := e.docs[path]
	e.mu.Unlock()
	if !ok {
		return nil, &engine.OpenError{Path: path, Err: fmt.Errorf("no such document")}
	}
	return doc, nil
}

// Opens reports how many times Open was called.
func (e *Engine) Opens() int { return int(e.opens.Load()) }

// Document is a fake document backed by scripted pages.
type Document struct {
	path  string
	Pages []*Page

	closed atomic.Bool
}

func (d *Document) PageCount() int { return len(d.Pages) }

func (d *Document) LoadPage(index int) (engine.Page, error) {
	if index < 0 || index >= len(d.Pages) {
		return nil, &engine.LoadError{Page: index, Err: fmt.Errorf("index out of range [0,%d)", len(d.Pages))}
	}
	return d.Pages[index], nil
}

func (d *Document) Close() error {
	d.closed.Store(true)
	return nil
}

// Closed reports whether Close was called.
func (d *Document) Closed() bool { return d.closed.Load() }

// Page is a scriptable fake page.
type Page struct {
	Index    int
	PageRect geom.Rect

	// RenderErr fails every Rasterize call when set.
	RenderErr error
	// RenderDelay makes Rasterize sleep before returning, so tests can
	// overlap a render with a cancellation.
	RenderDelay time.Duration
	// Text is returned by ExtractText regardless of clip when set.
	Text string
	// Matches maps a query to the document-space hit rectangles SearchText
	// reports for it.
	Matches map[string][]geom.Rect

	renders atomic.Int64
}

func (p *Page) Rect() geom.Rect { return p.PageRect }

// Rasterize returns a bitmap whose dimensions follow the page rect under the
// transform, with all samples zero.
func (p *Page) Rasterize(t engine.Transform) (engine.Bitmap, error) {
	p.renders.Add(1)
	if p.RenderDelay > 0 {
		time.Sleep(p.RenderDelay)
	}
	if p.RenderErr != nil {
		return engine.Bitmap{}, &engine.RenderError{Page: p.Index, Err: p.RenderErr}
	}
	if t.Scale <= 0 {
		return engine.Bitmap{}, &engine.RenderError{Page: p.Index, Err: fmt.Errorf("non-positive scale %g", t.Scale)}
	}

	m := geom.Mapper{PageWidth: p.PageRect.Width(), PageHeight: p.PageRect.Height()}
	w, h := m.RotatedSize(t.Rotation)
	pw, ph := int(w*t.Scale), int(h*t.Scale)
	if pw < 1 {
		pw = 1
	}
	if ph < 1 {
		ph = 1
	}
	return engine.Bitmap{
		Samples: make([]byte, pw*ph*4),
		Width:   pw,
		Height:  ph,
		Stride:  pw * 4,
	}, nil
}

func (p *Page) SearchText(query string) ([]geom.Rect, error) {
	if p.Matches == nil {
		return nil, nil
	}
	return p.Matches[strings.ToLower(query)], nil
}

func (p *Page) ExtractText(clip geom.Rect) (string, error) {
	return p.Text, nil
}

// Renders reports how many times Rasterize was called.
func (p *Page) Renders() int { return int(p.renders.Load()) }
