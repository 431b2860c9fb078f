package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/folio/internal/geom"
)

func rect(x float64) geom.Rect {
	return geom.Rect{X0: x, Y0: 0, X1: x + 10, Y1: 10}
}

func TestEmptyIndex(t *testing.T) {
	x := NewIndex()

	_, _, ok := x.Current()
	assert.False(t, ok)
	_, ok = x.Next()
	assert.False(t, ok)
	_, ok = x.Prev()
	assert.False(t, ok)
	assert.Zero(t, x.Len())
}

func TestFirstMatchSelectsCursor(t *testing.T) {
	x := NewIndex()
	x.Reset("fox")

	assert.False(t, x.Add(0, nil))
	assert.True(t, x.Add(1, []geom.Rect{rect(0), rect(20)}))
	assert.False(t, x.Add(2, []geom.Rect{rect(40)}))

	m, pos, ok := x.Current()
	require.True(t, ok)
	assert.Equal(t, 0, pos)
	assert.Equal(t, 1, m.Page)
	assert.Equal(t, 3, x.Len())
}

func TestCyclicNavigation(t *testing.T) {
	x := NewIndex()
	x.Reset("fox")
	x.Add(0, []geom.Rect{rect(0)})
	x.Add(1, []geom.Rect{rect(0)})
	x.Add(2, []geom.Rect{rect(0)})

	// Cursor starts at 0; stepping forward walks 1, 2 and wraps to 0.
	m, ok := x.Next()
	require.True(t, ok)
	assert.Equal(t, 1, m.Page)
	m, _ = x.Next()
	assert.Equal(t, 2, m.Page)
	m, _ = x.Next()
	assert.Equal(t, 0, m.Page)

	// Stepping back from 0 wraps to the last match.
	m, _ = x.Prev()
	assert.Equal(t, 2, m.Page)
}

func TestResetClearsMatches(t *testing.T) {
	x := NewIndex()
	x.Reset("fox")
	x.Add(0, []geom.Rect{rect(0)})

	x.Reset("dog")
	assert.Equal(t, "dog", x.Query())
	assert.Zero(t, x.Len())
	_, _, ok := x.Current()
	assert.False(t, ok)
}

func TestSelect(t *testing.T) {
	x := NewIndex()
	x.Reset("fox")
	x.Add(0, []geom.Rect{rect(0), rect(20)})

	m, ok := x.Select(1)
	require.True(t, ok)
	assert.Equal(t, rect(20), m.Rect)

	_, ok = x.Select(5)
	assert.False(t, ok)
}

func TestPageMatches(t *testing.T) {
	x := NewIndex()
	x.Reset("fox")
	x.Add(0, []geom.Rect{rect(0)})
	x.Add(2, []geom.Rect{rect(10), rect(30)})

	// Cursor sits on the page 0 match, so page 2 has no active entry.
	rects, active := x.PageMatches(2)
	assert.Len(t, rects, 2)
	assert.Equal(t, -1, active)

	rects, active = x.PageMatches(0)
	assert.Len(t, rects, 1)
	assert.Equal(t, 0, active)

	// Moving the cursor to the second page 2 match marks it active there.
	x.Select(2)
	rects, active = x.PageMatches(2)
	assert.Len(t, rects, 2)
	assert.Equal(t, 1, active)

	rects, active = x.PageMatches(1)
	assert.Empty(t, rects)
	assert.Equal(t, -1, active)
}
