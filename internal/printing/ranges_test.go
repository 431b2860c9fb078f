package printing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePageRanges(t *testing.T) {
	tests := []struct {
		name      string
		selection string
		pageCount int
		want      []int
		wantErr   bool
	}{
		{name: "empty means all", selection: "", pageCount: 3, want: []int{0, 1, 2}},
		{name: "blank means all", selection: "   ", pageCount: 2, want: []int{0, 1}},
		{name: "single page", selection: "2", pageCount: 5, want: []int{1}},
		{name: "simple range", selection: "1-3", pageCount: 5, want: []int{0, 1, 2}},
		{name: "mixed", selection: "1-5, 8, 11-13", pageCount: 20, want: []int{0, 1, 2, 3, 4, 7, 10, 11, 12}},
		{name: "reversed range swapped", selection: "5-1", pageCount: 5, want: []int{0, 1, 2, 3, 4}},
		{name: "out of range dropped", selection: "2-9", pageCount: 4, want: []int{1, 2, 3}},
		{name: "entirely out of range", selection: "10-12", pageCount: 4, want: []int{}},
		{name: "duplicates collapsed", selection: "1-3, 2, 3", pageCount: 5, want: []int{0, 1, 2}},
		{name: "trailing comma ignored", selection: "1,", pageCount: 5, want: []int{0}},
		{name: "junk page", selection: "abc", pageCount: 5, wantErr: true},
		{name: "junk range bound", selection: "1-x", pageCount: 5, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePageRanges(tt.selection, tt.pageCount)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
