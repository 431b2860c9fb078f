// Package viewer composes the viewing pipeline: per-document sessions owning
// view state, render scheduling, thumbnails and search, and the registry of
// open sessions. Workers never touch session state directly; they publish
// typed events that the control loop applies.
package viewer

import "github.com/bnema/folio/internal/geom"

// ViewState is the view configuration of one open document, owned
// exclusively by its session.
type ViewState struct {
	PageIndex  int
	Rotation   geom.Rotation
	BaseScale  float64
	ZoomFactor float64
}

// RenderScale is the total magnification applied when rasterizing. It is
// zero until the first base-scale computation, and must never be used to
// invert a transform while zero.
func (v ViewState) RenderScale() float64 {
	return v.BaseScale * v.ZoomFactor
}
