package gfx

import (
	"image"
	"image/color"
	"testing"
)

func solidRGBA(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestRGBA8Bytes(t *testing.T) {
	src := solidRGBA(4, 2, color.RGBA{R: 255, A: 255})
	data := RGBA8Bytes(src)
	if len(data) != 4*2*4 {
		t.Fatalf("len = %d, want %d", len(data), 4*2*4)
	}
	if data[0] != 255 || data[1] != 0 || data[3] != 255 {
		t.Errorf("first pixel = %v, want opaque red", data[:4])
	}
	// Mutating the result must not touch the source.
	data[0] = 0
	if src.Pix[0] != 255 {
		t.Error("RGBA8Bytes aliased the source pixels")
	}
}

func TestRGBA8BytesNonRGBASource(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 2, 2))
	src.SetGray(0, 0, color.Gray{Y: 128})
	data := RGBA8Bytes(src)
	if len(data) != 2*2*4 {
		t.Fatalf("len = %d, want 16", len(data))
	}
	if data[3] != 255 {
		t.Errorf("alpha = %d, want 255", data[3])
	}
}

func TestScaledRGBA8Bytes(t *testing.T) {
	src := solidRGBA(8, 8, color.RGBA{G: 255, A: 255})
	data, err := ScaledRGBA8Bytes(src, 4, 4)
	if err != nil {
		t.Fatalf("ScaledRGBA8Bytes() error = %v", err)
	}
	if len(data) != 4*4*4 {
		t.Fatalf("len = %d, want 64", len(data))
	}
	if data[1] != 255 {
		t.Errorf("green channel = %d, want 255 preserved by scaling", data[1])
	}
	if _, err := ScaledRGBA8Bytes(src, 0, 4); err == nil {
		t.Error("zero width: want error")
	}
}

func TestMipChainRGBA8(t *testing.T) {
	base := RGBA8Bytes(solidRGBA(8, 4, color.RGBA{B: 255, A: 255}))
	chain, err := MipChainRGBA8(base, 8, 4)
	if err != nil {
		t.Fatalf("MipChainRGBA8() error = %v", err)
	}
	// 8x4 -> 4x2 -> 2x1 -> 1x1
	wantSizes := []int{8 * 4 * 4, 4 * 2 * 4, 2 * 1 * 4, 1 * 1 * 4}
	if len(chain) != len(wantSizes) {
		t.Fatalf("mip count = %d, want %d", len(chain), len(wantSizes))
	}
	for i, want := range wantSizes {
		if len(chain[i]) != want {
			t.Errorf("level %d size = %d, want %d", i, len(chain[i]), want)
		}
	}
	tail := chain[len(chain)-1]
	if tail[2] != 255 {
		t.Errorf("1x1 level = %v, want solid blue preserved", tail)
	}

	if _, err := MipChainRGBA8(base[:8], 8, 4); err == nil {
		t.Error("short data: want error")
	}
}
