package gfx

import (
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"
)

// Pixel content helpers. ImageDesc.Content and UpdateImage take raw
// RGBA8 bytes; these helpers produce them from image.Image values so
// applications can feed decoded PNGs or generated images straight into
// an image resource.

// RGBA8Bytes converts src to tightly packed RGBA8 pixel data, the layout
// PixelFormatRGBA8 images expect. The source is copied, never aliased.
func RGBA8Bytes(src image.Image) []byte {
	b := src.Bounds()
	rgba, ok := src.(*image.RGBA)
	if !ok || rgba.Stride != b.Dx()*4 {
		tmp := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		xdraw.Draw(tmp, tmp.Bounds(), src, b.Min, xdraw.Src)
		return tmp.Pix
	}
	out := make([]byte, len(rgba.Pix))
	copy(out, rgba.Pix)
	return out
}

// ScaledRGBA8Bytes converts src to RGBA8 pixel data scaled to the given
// extent with bilinear filtering. Useful for fitting arbitrary images to
// a fixed texture size.
func ScaledRGBA8Bytes(src image.Image, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: scale target %dx%d", ErrInvalidDescriptor, width, height)
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst.Pix, nil
}

// MipChainRGBA8 generates a full mip chain from RGBA8 base-level data.
// Level 0 is the input (copied); each following level halves both
// dimensions, clamped at 1, down to 1x1, using bilinear reduction. The
// returned slice length is the mip count to declare in ImageDesc.
func MipChainRGBA8(data []byte, width, height int) ([][]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: mip base %dx%d", ErrInvalidDescriptor, width, height)
	}
	if len(data) != width*height*4 {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d RGBA8 base level",
			ErrInvalidDescriptor, len(data), width, height)
	}

	level := image.NewRGBA(image.Rect(0, 0, width, height))
	copy(level.Pix, data)

	chain := [][]byte(nil)
	base := make([]byte, len(data))
	copy(base, data)
	chain = append(chain, base)

	for width > 1 || height > 1 {
		width = max(width/2, 1)
		height = max(height/2, 1)
		next := image.NewRGBA(image.Rect(0, 0, width, height))
		xdraw.BiLinear.Scale(next, next.Bounds(), level, level.Bounds(), xdraw.Src, nil)
		chain = append(chain, next.Pix)
		level = next
	}
	return chain, nil
}
