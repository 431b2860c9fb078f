package printing

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bnema/folio/internal/engine"
	"github.com/bnema/folio/internal/geom"
)

// Orientation selects the sheet orientation for a job.
type Orientation int

const (
	// OrientationAuto derives the orientation from the first printed
	// page's aspect ratio.
	OrientationAuto Orientation = iota
	OrientationPortrait
	OrientationLandscape
)

// Settings describes one print job.
type Settings struct {
	// Selection is the 1-based page-range expression; empty means all.
	Selection string
	// Orientation of the output sheets.
	Orientation Orientation
	// Scale is the raster magnification; print quality wants it well above
	// screen scale.
	Scale float64
}

// DefaultSettings returns a full-document portrait-or-auto job at 4x.
func DefaultSettings() Settings {
	return Settings{Orientation: OrientationAuto, Scale: 4.0}
}

// RasterFunc produces the bitmap and unrotated page bounds for one page at
// the given scale.
type RasterFunc func(page int, scale float64) (engine.Bitmap, geom.Rect, error)

// SheetFunc consumes one finished sheet in output order.
type SheetFunc func(page int, bmp engine.Bitmap) error

// Job rasterizes a page selection one page at a time. It is synchronous and
// one-shot; it shares nothing with the interactive render pipeline beyond
// the raster source.
type Job struct {
	raster RasterFunc
	logger zerolog.Logger
}

// NewJob returns a job drawing pages from raster.
func NewJob(raster RasterFunc, logger zerolog.Logger) *Job {
	return &Job{
		raster: raster,
		logger: logger.With().Str("component", "printing").Logger(),
	}
}

// Run resolves the page selection and delivers each sheet to emit in order.
// A page that fails to rasterize aborts the job; ctx aborts it between
// pages.
func (j *Job) Run(ctx context.Context, settings Settings, pageCount int, emit SheetFunc) error {
	if settings.Scale <= 0 {
		return fmt.Errorf("printing: non-positive scale %g", settings.Scale)
	}

	pages, err := ParsePageRanges(settings.Selection, pageCount)
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		return fmt.Errorf("printing: selection %q matches no pages", settings.Selection)
	}

	orientation := settings.Orientation
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}

		bmp, rect, err := j.raster(page, settings.Scale)
		if err != nil {
			return fmt.Errorf("printing: page %d: %w", page+1, err)
		}

		if i == 0 && orientation == OrientationAuto {
			orientation = OrientationPortrait
			if rect.Width() > rect.Height() {
				orientation = OrientationLandscape
			}
		}
		bmp = orient(bmp, orientation)

		if err := emit(page, bmp); err != nil {
			return err
		}
		j.logger.Debug().Int("page", page+1).Msg("sheet rasterized")
	}
	return nil
}

// orient turns a bitmap so its aspect matches the sheet orientation.
func orient(bmp engine.Bitmap, o Orientation) engine.Bitmap {
	switch o {
	case OrientationPortrait:
		if bmp.Landscape() {
			return engine.Rotate(bmp, 90)
		}
	case OrientationLandscape:
		if !bmp.Landscape() {
			return engine.Rotate(bmp, 270)
		}
	}
	return bmp
}
