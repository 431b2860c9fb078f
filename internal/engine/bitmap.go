package engine

import "image"

const pixelSize = 4 // RGBA

// FromImage converts an image into a Bitmap, copying into RGBA order.
func FromImage(img image.Image) Bitmap {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return Bitmap{
			Samples: rgba.Pix,
			Width:   rgba.Rect.Dx(),
			Height:  rgba.Rect.Dy(),
			Stride:  rgba.Stride,
		}
	}

	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			dst.Set(x-bounds.Min.X, y-bounds.Min.Y, img.At(x, y))
		}
	}
	return Bitmap{Samples: dst.Pix, Width: dst.Rect.Dx(), Height: dst.Rect.Dy(), Stride: dst.Stride}
}

// ToImage wraps the bitmap in an image.RGBA without copying.
func (b Bitmap) ToImage() *image.RGBA {
	return &image.RGBA{
		Pix:    b.Samples,
		Stride: b.Stride,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// Rotate returns the bitmap rotated clockwise by the given right angle.
// Rotation 0 returns the bitmap unchanged.
func Rotate(b Bitmap, rotation int) Bitmap {
	rot := ((rotation % 360) + 360) % 360
	if rot == 0 || b.IsZero() {
		return b
	}

	srcW, srcH := b.Width, b.Height
	dstW, dstH := srcW, srcH
	if rot == 90 || rot == 270 {
		dstW, dstH = srcH, srcW
	}

	dst := Bitmap{
		Samples: make([]byte, dstW*dstH*pixelSize),
		Width:   dstW,
		Height:  dstH,
		Stride:  dstW * pixelSize,
	}

	for dy := 0; dy < dstH; dy++ {
		for dx := 0; dx < dstW; dx++ {
			var sx, sy int
			switch rot {
			case 90:
				sx, sy = dy, srcH-1-dx
			case 180:
				sx, sy = srcW-1-dx, srcH-1-dy
			case 270:
				sx, sy = srcW-1-dy, dx
			}
			so := sy*b.Stride + sx*pixelSize
			do := dy*dst.Stride + dx*pixelSize
			copy(dst.Samples[do:do+pixelSize], b.Samples[so:so+pixelSize])
		}
	}
	return dst
}
