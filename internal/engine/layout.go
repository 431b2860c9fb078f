package engine

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/bnema/folio/internal/geom"
)

// MuPDF's HTML output positions every text line absolutely in points, which
// are document units. parseLayoutHTML turns that into a flat line list the
// search and extraction paths share.
//
// Line height and glyph advance are not part of the HTML output, so match
// rectangles are estimated from the span font size: height = fontSize * 1.2,
// advance = fontSize * 0.5 per rune. That places highlights on the right
// line with roughly correct horizontal extent.
// TODO: switch to exact hit quads when go-fitz exposes mupdf's search API.

type textLine struct {
	rect     geom.Rect
	text     string
	fontSize float64
}

const (
	defaultFontSize = 12.0
	lineHeightRatio = 1.2
	advanceRatio    = 0.5
)

func parseLayoutHTML(src string) ([]textLine, error) {
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, err
	}

	var lines []textLine
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "p" {
			if line, ok := parseLine(n); ok {
				lines = append(lines, line)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].rect.Y0 != lines[j].rect.Y0 {
			return lines[i].rect.Y0 < lines[j].rect.Y0
		}
		return lines[i].rect.X0 < lines[j].rect.X0
	})
	return lines, nil
}

func parseLine(p *html.Node) (textLine, bool) {
	style := attr(p, "style")
	top, topOK := styleValue(style, "top")
	left, leftOK := styleValue(style, "left")
	if !topOK || !leftOK {
		return textLine{}, false
	}

	var text strings.Builder
	fontSize := defaultFontSize
	var collect func(n *html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode && n.Data == "span" {
			if size, ok := styleValue(attr(n, "style"), "font-size"); ok {
				fontSize = size
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(p)

	content := strings.TrimRight(text.String(), "\n")
	if content == "" {
		return textLine{}, false
	}

	width := float64(len([]rune(content))) * fontSize * advanceRatio
	return textLine{
		rect: geom.Rect{
			X0: left,
			Y0: top,
			X1: left + width,
			Y1: top + fontSize*lineHeightRatio,
		},
		text:     content,
		fontSize: fontSize,
	}, true
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// styleValue extracts a pt-valued property from an inline style attribute.
func styleValue(style, property string) (float64, bool) {
	for _, decl := range strings.Split(style, ";") {
		key, value, found := strings.Cut(decl, ":")
		if !found || strings.TrimSpace(key) != property {
			continue
		}
		value = strings.TrimSuffix(strings.TrimSpace(value), "pt")
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// searchLines finds all occurrences of query in the line list, case
// insensitively, and estimates a document-space rectangle per hit.
func searchLines(lines []textLine, query string) []geom.Rect {
	if query == "" {
		return nil
	}

	needle := strings.ToLower(query)
	queryRunes := len([]rune(query))

	var rects []geom.Rect
	for _, line := range lines {
		haystack := strings.ToLower(line.text)
		advance := line.fontSize * advanceRatio

		offset := 0
		for {
			idx := strings.Index(haystack[offset:], needle)
			if idx < 0 {
				break
			}
			start := offset + idx
			runeStart := len([]rune(haystack[:start]))

			x0 := line.rect.X0 + float64(runeStart)*advance
			rects = append(rects, geom.Rect{
				X0: x0,
				Y0: line.rect.Y0,
				X1: x0 + float64(queryRunes)*advance,
				Y1: line.rect.Y1,
			})
			offset = start + len(needle)
		}
	}
	return rects
}

// extractLines joins the text of all lines intersecting the clip region, in
// reading order.
func extractLines(lines []textLine, clip geom.Rect) string {
	var parts []string
	for _, line := range lines {
		if line.rect.Intersects(clip) {
			parts = append(parts, strings.TrimSpace(line.text))
		}
	}
	return strings.Join(parts, "\n")
}
