package printing

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/folio/internal/engine"
	"github.com/bnema/folio/internal/geom"
)

func fixedRaster(w, h int, rect geom.Rect) RasterFunc {
	return func(page int, scale float64) (engine.Bitmap, geom.Rect, error) {
		return engine.Bitmap{
			Samples: make([]byte, w*h*4),
			Width:   w,
			Height:  h,
			Stride:  w * 4,
		}, rect, nil
	}
}

func TestJobRunDeliversSelectionInOrder(t *testing.T) {
	j := NewJob(fixedRaster(10, 20, geom.Rect{X1: 100, Y1: 200}), zerolog.Nop())

	var pages []int
	err := j.Run(context.Background(), Settings{Selection: "3, 1", Scale: 4}, 5, func(page int, _ engine.Bitmap) error {
		pages = append(pages, page)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, pages)
}

func TestJobAutoOrientationFollowsFirstPage(t *testing.T) {
	// Landscape page: auto resolves to landscape and sheets stay wide.
	j := NewJob(fixedRaster(40, 20, geom.Rect{X1: 200, Y1: 100}), zerolog.Nop())

	err := j.Run(context.Background(), Settings{Orientation: OrientationAuto, Scale: 4}, 1, func(_ int, bmp engine.Bitmap) error {
		assert.True(t, bmp.Landscape())
		return nil
	})
	require.NoError(t, err)
}

func TestJobPortraitRotatesLandscapeSheets(t *testing.T) {
	j := NewJob(fixedRaster(40, 20, geom.Rect{X1: 200, Y1: 100}), zerolog.Nop())

	err := j.Run(context.Background(), Settings{Orientation: OrientationPortrait, Scale: 4}, 1, func(_ int, bmp engine.Bitmap) error {
		assert.False(t, bmp.Landscape())
		assert.Equal(t, 20, bmp.Width)
		assert.Equal(t, 40, bmp.Height)
		return nil
	})
	require.NoError(t, err)
}

func TestJobFailuresAbort(t *testing.T) {
	boom := errors.New("raster exploded")
	j := NewJob(func(page int, scale float64) (engine.Bitmap, geom.Rect, error) {
		return engine.Bitmap{}, geom.Rect{}, boom
	}, zerolog.Nop())

	err := j.Run(context.Background(), Settings{Scale: 4}, 2, func(int, engine.Bitmap) error { return nil })
	assert.ErrorIs(t, err, boom)
}

func TestJobRejectsEmptySelection(t *testing.T) {
	j := NewJob(fixedRaster(10, 10, geom.Rect{X1: 100, Y1: 100}), zerolog.Nop())

	err := j.Run(context.Background(), Settings{Selection: "9-12", Scale: 4}, 3, func(int, engine.Bitmap) error { return nil })
	assert.Error(t, err)

	err = j.Run(context.Background(), Settings{Selection: "1", Scale: 0}, 3, func(int, engine.Bitmap) error { return nil })
	assert.Error(t, err)
}

func TestJobCancelledBetweenPages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	j := NewJob(fixedRaster(10, 10, geom.Rect{X1: 100, Y1: 100}), zerolog.Nop())
	var sheets int
	err := j.Run(ctx, Settings{Scale: 4}, 5, func(int, engine.Bitmap) error {
		sheets++
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, sheets)
}
