package thumbs

import (
	"image"

	xdraw "golang.org/x/image/draw"

	"github.com/bnema/folio/internal/engine"
)

// ScaleToWidth resizes a bitmap to the target width, preserving aspect
// ratio. Sidebar cells have a fixed width, so rendered thumbnails are
// normalized here rather than guessing the render scale per page.
func ScaleToWidth(b engine.Bitmap, width int) engine.Bitmap {
	if b.IsZero() || width <= 0 || b.Width == width {
		return b
	}

	height := b.Height * width / b.Width
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.ApproxBiLinear.Scale(dst, dst.Rect, b.ToImage(), image.Rect(0, 0, b.Width, b.Height), xdraw.Src, nil)

	return engine.FromImage(dst)
}
