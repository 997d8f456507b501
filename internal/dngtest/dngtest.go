// Package dngtest decodes an assembled DNG through a standard TIFF
// decoder and compares its dimensions with what the renderer produced.
// Bit depth and sample values are not compared.
package dngtest

import (
	"bytes"
	"fmt"
	"image"

	_ "golang.org/x/image/tiff"
)

// Decoded is what DecodeDNG extracts from an assembled frame for
// comparison against the render.Output it came from.
type Decoded struct {
	Width, Height int
	Gray          []uint32 // one sample per pixel, at the decoder's native depth
}

// DecodeDNG decodes a little-endian TIFF/DNG byte stream produced by
// internal/dng.Assemble using the golang.org/x/image TIFF decoder, passing
// the stream through unchanged and reading the first channel of each
// pixel. Whether that decoder accepts the CFA PhotometricInterpretation
// Assemble writes is not checked by this package's tests.
func DecodeDNG(data []byte) (Decoded, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Decoded{}, fmt.Errorf("dngtest: decode: %w", err)
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return Decoded{}, fmt.Errorf("dngtest: invalid dimensions %dx%d", w, h)
	}

	out := Decoded{Width: w, Height: h, Gray: make([]uint32, w*h)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, _, _, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			out.Gray[y*w+x] = r
		}
	}
	return out, nil
}

// VerifyGeometry reports whether a decoded DNG's dimensions match the
// width and height the renderer reported for the same frame.
func VerifyGeometry(d Decoded, wantWidth, wantHeight int) error {
	if d.Width != wantWidth || d.Height != wantHeight {
		return fmt.Errorf("dngtest: geometry mismatch: decoded %dx%d, want %dx%d", d.Width, d.Height, wantWidth, wantHeight)
	}
	return nil
}
