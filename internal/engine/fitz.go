package engine

import (
	"fmt"

	"github.com/gen2brain/go-fitz"

	"github.com/bnema/folio/internal/geom"
)

// Document units are points; go-fitz rasterizes by DPI, so scale 1.0 is 72.
const baseDPI = 72

// Fitz is the MuPDF-backed document engine.
type Fitz struct{}

// NewFitz returns the MuPDF-backed engine.
func NewFitz() *Fitz { return &Fitz{} }

// Open opens the document at path.
func (*Fitz) Open(path string) (Document, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}
	return &fitzDocument{doc: doc, path: path}, nil
}

type fitzDocument struct {
	doc  *fitz.Document
	path string
}

func (d *fitzDocument) PageCount() int { return d.doc.NumPage() }

func (d *fitzDocument) LoadPage(index int) (Page, error) {
	if index < 0 || index >= d.doc.NumPage() {
		return nil, &LoadError{Page: index, Err: fmt.Errorf("index out of range [0,%d)", d.doc.NumPage())}
	}

	bounds, err := d.doc.Bound(index)
	if err != nil {
		return nil, &LoadError{Page: index, Err: err}
	}

	return &fitzPage{
		doc:   d.doc,
		index: index,
		rect: geom.Rect{
			X1: float64(bounds.Dx()),
			Y1: float64(bounds.Dy()),
		},
	}, nil
}

func (d *fitzDocument) Close() error {
	return d.doc.Close()
}

type fitzPage struct {
	doc   *fitz.Document
	index int
	rect  geom.Rect

	// lines is the lazily parsed text layout used for search and clipped
	// extraction; see layout.go.
	lines    []textLine
	layoutOK bool
}

func (p *fitzPage) Rect() geom.Rect { return p.rect }

// Rasterize renders the page at the requested scale and rotates the pixels
// afterwards. Rotating after rasterization is equivalent to pre-rotating the
// transform because the scale is uniform and the rotation a right angle.
func (p *fitzPage) Rasterize(t Transform) (Bitmap, error) {
	if t.Scale <= 0 {
		return Bitmap{}, &RenderError{Page: p.index, Err: fmt.Errorf("non-positive scale %g", t.Scale)}
	}

	img, err := p.doc.ImageDPI(p.index, baseDPI*t.Scale)
	if err != nil {
		return Bitmap{}, &RenderError{Page: p.index, Err: err}
	}

	return Rotate(FromImage(img), int(t.Rotation)), nil
}

func (p *fitzPage) SearchText(query string) ([]geom.Rect, error) {
	lines, err := p.layout()
	if err != nil {
		return nil, err
	}
	return searchLines(lines, query), nil
}

func (p *fitzPage) ExtractText(clip geom.Rect) (string, error) {
	lines, err := p.layout()
	if err != nil {
		return "", err
	}
	return extractLines(lines, clip), nil
}

func (p *fitzPage) layout() ([]textLine, error) {
	if p.layoutOK {
		return p.lines, nil
	}

	src, err := p.doc.HTML(p.index, false)
	if err != nil {
		return nil, fmt.Errorf("engine: page %d text layout: %w", p.index, err)
	}

	lines, err := parseLayoutHTML(src)
	if err != nil {
		return nil, fmt.Errorf("engine: page %d text layout: %w", p.index, err)
	}

	p.lines = lines
	p.layoutOK = true
	return lines, nil
}
