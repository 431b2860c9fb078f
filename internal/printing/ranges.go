// Package printing produces print-ready page rasters outside the
// interactive pipeline: a page-range grammar, orientation selection, and a
// synchronous high-scale raster pass per job.
package printing

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ParsePageRanges parses a 1-based page selection like "1-5, 8, 11-13" into
// sorted unique 0-based page indices. Reversed ranges are swapped, pages
// outside [1, pageCount] are dropped, and anything non-numeric is an error.
// An empty or blank selection means all pages.
func ParsePageRanges(selection string, pageCount int) ([]int, error) {
	selection = strings.TrimSpace(selection)
	if selection == "" {
		pages := make([]int, pageCount)
		for i := range pages {
			pages[i] = i
		}
		return pages, nil
	}

	seen := make(map[int]bool)
	for _, part := range strings.Split(selection, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi, err := parsePart(part)
		if err != nil {
			return nil, err
		}
		if lo > hi {
			lo, hi = hi, lo
		}
		for p := lo; p <= hi; p++ {
			if p >= 1 && p <= pageCount {
				seen[p-1] = true
			}
		}
	}

	pages := make([]int, 0, len(seen))
	for p := range seen {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages, nil
}

func parsePart(part string) (lo, hi int, err error) {
	if a, b, found := strings.Cut(part, "-"); found {
		lo, err = strconv.Atoi(strings.TrimSpace(a))
		if err != nil {
			return 0, 0, fmt.Errorf("printing: invalid page range %q", part)
		}
		hi, err = strconv.Atoi(strings.TrimSpace(b))
		if err != nil {
			return 0, 0, fmt.Errorf("printing: invalid page range %q", part)
		}
		return lo, hi, nil
	}

	p, err := strconv.Atoi(part)
	if err != nil {
		return 0, 0, fmt.Errorf("printing: invalid page number %q", part)
	}
	return p, p, nil
}
