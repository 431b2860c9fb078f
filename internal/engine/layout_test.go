package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/folio/internal/geom"
)

const sampleLayout = `<html><body>
<p style="top:100pt;left:50pt;line-height:12pt"><span style="font-family:Times;font-size:10pt">The quick brown fox</span></p>
<p style="top:120pt;left:50pt;line-height:12pt"><span style="font-family:Times;font-size:10pt">jumps over the lazy dog</span></p>
<p style="top:300pt;left:200pt;line-height:14pt"><span style="font-family:Times;font-size:12pt">Fox again: fox fox</span></p>
<p style="left:50pt">no top, skipped</p>
<p style="top:500pt;left:50pt"><span style="font-size:10pt"></span></p>
</body></html>`

func parseSample(t *testing.T) []textLine {
	t.Helper()
	lines, err := parseLayoutHTML(sampleLayout)
	require.NoError(t, err)
	return lines
}

func TestParseLayoutHTML(t *testing.T) {
	lines := parseSample(t)
	require.Len(t, lines, 3)

	assert.Equal(t, "The quick brown fox", lines[0].text)
	assert.Equal(t, 10.0, lines[0].fontSize)
	assert.Equal(t, 100.0, lines[0].rect.Y0)
	assert.Equal(t, 50.0, lines[0].rect.X0)

	// Lines come back in reading order.
	assert.Equal(t, "jumps over the lazy dog", lines[1].text)
	assert.Equal(t, "Fox again: fox fox", lines[2].text)
}

func TestSearchLines(t *testing.T) {
	lines := parseSample(t)

	tests := []struct {
		query string
		want  int
	}{
		{"fox", 4},
		{"FOX", 4},
		{"lazy", 1},
		{"absent", 0},
		{"", 0},
	}

	for _, tt := range tests {
		got := searchLines(lines, tt.query)
		assert.Len(t, got, tt.want, "query %q", tt.query)
	}
}

func TestSearchLinesRectPlacement(t *testing.T) {
	lines := parseSample(t)

	rects := searchLines(lines, "lazy")
	require.Len(t, rects, 1)

	r := rects[0]
	// "jumps over the " is 15 runes at 5pt advance before the hit.
	assert.InDelta(t, 50.0+15*5.0, r.X0, 1e-9)
	assert.InDelta(t, r.X0+4*5.0, r.X1, 1e-9)
	assert.Equal(t, 120.0, r.Y0)
	assert.Greater(t, r.Y1, r.Y0)
}

func TestExtractLines(t *testing.T) {
	lines := parseSample(t)

	// A clip spanning only the first two lines excludes the third.
	got := extractLines(lines, geom.Rect{X0: 0, Y0: 90, X1: 600, Y1: 140})
	assert.Equal(t, "The quick brown fox\njumps over the lazy dog", got)

	assert.Equal(t, "", extractLines(lines, geom.Rect{X0: 0, Y0: 900, X1: 10, Y1: 950}))
}
