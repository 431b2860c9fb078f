package config

import (
	"errors"
	"fmt"
)

// Validate checks configuration invariants that the viewing pipeline depends on.
func (c *Config) Validate() error {
	var errs []error

	if c.Viewer.MinZoom <= 0 {
		errs = append(errs, fmt.Errorf("viewer.min_zoom must be positive, got %g", c.Viewer.MinZoom))
	}
	if c.Viewer.MaxZoom <= c.Viewer.MinZoom {
		errs = append(errs, fmt.Errorf("viewer.max_zoom (%g) must exceed viewer.min_zoom (%g)",
			c.Viewer.MaxZoom, c.Viewer.MinZoom))
	}
	if c.Viewer.ZoomStep <= 1 {
		errs = append(errs, fmt.Errorf("viewer.zoom_step must be greater than 1, got %g", c.Viewer.ZoomStep))
	}
	if c.Viewer.WheelZoomStep <= 1 {
		errs = append(errs, fmt.Errorf("viewer.wheel_zoom_step must be greater than 1, got %g", c.Viewer.WheelZoomStep))
	}
	if c.Viewer.RenderDebounce <= 0 {
		errs = append(errs, errors.New("viewer.render_debounce must be positive"))
	}
	if c.Viewer.ThumbnailScale <= 0 || c.Viewer.ThumbnailScale > 1 {
		errs = append(errs, fmt.Errorf("viewer.thumbnail_scale must be in (0, 1], got %g", c.Viewer.ThumbnailScale))
	}
	if c.Viewer.ThumbnailWidth <= 0 {
		errs = append(errs, errors.New("viewer.thumbnail_width must be positive"))
	}
	if c.Printing.RasterScale <= 0 {
		errs = append(errs, errors.New("printing.raster_scale must be positive"))
	}

	return errors.Join(errs...)
}
