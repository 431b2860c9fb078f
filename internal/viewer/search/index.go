// Package search holds the match set of a document-wide text search and the
// cursor the viewer steps through it with. The index is filled page by page
// as the scan progresses, so navigation works before the scan completes.
package search

import (
	"sync"

	"github.com/bnema/folio/internal/geom"
)

// Match is one occurrence of the query: a page index and the hit rectangle
// in document units.
type Match struct {
	Page int
	Rect geom.Rect
}

// Index is the match set of one search, safe for concurrent use by the
// scan worker and the navigation path.
type Index struct {
	mu      sync.Mutex
	query   string
	matches []Match
	cursor  int
}

// NewIndex returns an empty index with no current match.
func NewIndex() *Index {
	return &Index{cursor: -1}
}

// Reset clears the match set for a new query. The cursor goes back to no
// selection.
func (x *Index) Reset(query string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.query = query
	x.matches = x.matches[:0]
	x.cursor = -1
}

// Query returns the query the current match set belongs to.
func (x *Index) Query() string {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.query
}

// Add appends the hits found on one page, in scan order. It reports whether
// these are the first matches of the scan, which selects the first match.
func (x *Index) Add(page int, rects []geom.Rect) (first bool) {
	if len(rects) == 0 {
		return false
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	first = len(x.matches) == 0
	for _, r := range rects {
		x.matches = append(x.matches, Match{Page: page, Rect: r})
	}
	if first {
		x.cursor = 0
	}
	return first
}

// Len returns the number of matches found so far.
func (x *Index) Len() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.matches)
}

// Current returns the selected match and its 0-based position. ok is false
// when the set is empty.
func (x *Index) Current() (m Match, pos int, ok bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.cursor < 0 || x.cursor >= len(x.matches) {
		return Match{}, 0, false
	}
	return x.matches[x.cursor], x.cursor, true
}

// Next advances the cursor, wrapping to the first match past the end.
func (x *Index) Next() (Match, bool) {
	return x.step(1)
}

// Prev moves the cursor back, wrapping to the last match before the start.
func (x *Index) Prev() (Match, bool) {
	return x.step(-1)
}

func (x *Index) step(delta int) (Match, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	n := len(x.matches)
	if n == 0 {
		return Match{}, false
	}
	x.cursor = ((x.cursor+delta)%n + n) % n
	return x.matches[x.cursor], true
}

// Select moves the cursor to position pos.
func (x *Index) Select(pos int) (Match, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if pos < 0 || pos >= len(x.matches) {
		return Match{}, false
	}
	x.cursor = pos
	return x.matches[pos], true
}

// PageMatches returns the document-space rectangles of all matches on one
// page, in scan order, and the position of the cursor match within that
// list (-1 when the cursor is elsewhere).
func (x *Index) PageMatches(page int) (rects []geom.Rect, active int) {
	x.mu.Lock()
	defer x.mu.Unlock()
	active = -1
	for i, m := range x.matches {
		if m.Page != page {
			continue
		}
		if i == x.cursor {
			active = len(rects)
		}
		rects = append(rects, m.Rect)
	}
	return rects, active
}
