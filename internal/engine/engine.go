// Package engine abstracts the document engine the viewer delegates to for
// opening documents, rasterizing pages, and locating text. The interactive
// pipeline never parses document syntax itself; it requests bitmaps and match
// rectangles through these interfaces and manages the asynchronous lifecycle
// around the requests.
package engine

import "github.com/bnema/folio/internal/geom"

// Transform encodes the rasterization parameters for a page: rotate by
// Rotation first, then scale uniformly. The order matches geom.Mapper.
type Transform struct {
	Scale    float64
	Rotation geom.Rotation
}

// Bitmap is a rasterized page in RGBA order, row-major with the given stride.
type Bitmap struct {
	Samples []byte
	Width   int
	Height  int
	Stride  int
}

// IsZero reports whether the bitmap holds no pixels.
func (b Bitmap) IsZero() bool { return b.Width == 0 || b.Height == 0 }

// Landscape reports whether the bitmap is wider than tall.
func (b Bitmap) Landscape() bool { return b.Width > b.Height }

// Engine opens documents by path.
type Engine interface {
	Open(path string) (Document, error)
}

// Document is one open document handle. Unless an implementation documents
// otherwise, callers must serialize page loads on a single handle.
type Document interface {
	PageCount() int
	LoadPage(index int) (Page, error)
	Close() error
}

// Page is a single loaded page.
type Page interface {
	// Rect returns the page bounds in document units, unrotated.
	Rect() geom.Rect
	// Rasterize renders the page under the given transform.
	Rasterize(t Transform) (Bitmap, error)
	// SearchText returns the document-space rectangles of all occurrences of
	// query on the page, in the engine's natural text order.
	SearchText(query string) ([]geom.Rect, error)
	// ExtractText returns the text intersecting the document-space clip
	// region, in reading order.
	ExtractText(clip geom.Rect) (string, error)
}
