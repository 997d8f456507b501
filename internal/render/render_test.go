package render

import (
	"testing"

	"github.com/motioncam/dngpipe/internal/bitpack"
	"github.com/motioncam/dngpipe/internal/settings"
)

func flatBayer(w, h int, v uint16) []uint16 {
	out := make([]uint16, w*h)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestRenderDisabledOptionsPreservesLevels(t *testing.T) {
	s := settings.Default()
	in := Input{
		Bayer:        flatBayer(16, 16, 2048),
		FullWidth:    16,
		FullHeight:   16,
		Settings:     s,
		DynamicWhite: 4095,
		StaticWhite:  4095,
	}
	out, err := Render(in)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out.Width%4 != 0 || out.Height%4 != 0 {
		t.Fatalf("output dims not 4-aligned: %dx%d", out.Width, out.Height)
	}
	if out.DstWhite != 4095 || out.DstBlack != ([4]float64{}) {
		t.Fatalf("destination levels changed: white %v black %v, want 4095 and zeros", out.DstWhite, out.DstBlack)
	}
	unpacked, err := bitpack.Unpack(out.Packed, out.Width*out.Height, out.EncodeBits)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	for i, v := range unpacked {
		if v > uint16(out.DstWhite) {
			t.Fatalf("sample %d = %d exceeds dstWhite %v", i, v, out.DstWhite)
		}
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	s := settings.Default()
	s.Options |= settings.OptLogTransform
	s.LogTransform = settings.LogTransformReduceBy2Bit

	makeInput := func() Input {
		return Input{
			Bayer:        flatBayer(16, 16, 1500),
			FullWidth:    16,
			FullHeight:   16,
			Settings:     s,
			DynamicWhite: 4095,
			StaticWhite:  4095,
		}
	}

	a, err := Render(makeInput())
	if err != nil {
		t.Fatalf("Render a: %v", err)
	}
	b, err := Render(makeInput())
	if err != nil {
		t.Fatalf("Render b: %v", err)
	}
	if string(a.Packed) != string(b.Packed) {
		t.Fatal("two renders with identical settings produced different bytes")
	}
}

func TestClampsRoundDownTo4(t *testing.T) {
	if v := roundDownTo4(18); v != 16 {
		t.Fatalf("roundDownTo4(18) = %d, want 16", v)
	}
}
