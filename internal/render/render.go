// Package render implements the raw-domain frame pipeline: crop, level
// selection, lens-shading application, the log2 transfer curve with
// triangular dithering, and bit-depth repacking into the buffer the DNG
// writer wraps.
package render

import (
	"errors"
	"fmt"

	"github.com/motioncam/dngpipe/internal/bitpack"
	"github.com/motioncam/dngpipe/internal/settings"
	"github.com/motioncam/dngpipe/internal/shading"
)

// ErrEncodeOverflow indicates a rendered sample exceeded dstWhite after
// clamping, which should be unreachable — clamping happens immediately
// before this check — and signals a renderer bug rather than bad input.
var ErrEncodeOverflow = errors.New("render: pixel exceeds destination white level after clamp")

// Input is everything Render needs for one frame. Bayer holds fullW*fullH
// unpacked 16-bit samples in row-major order; the four-element level and
// plane arrays are indexed by a sample's position within its 2x2 CFA tile
// (top-left, top-right, bottom-left, bottom-right), not by color.
type Input struct {
	Bayer        []uint16
	FullWidth    int
	FullHeight   int
	Settings     settings.RenderSettings

	DynamicBlack [4]float64
	DynamicWhite float64
	StaticBlack  [4]float64
	StaticWhite  float64

	ShadingMap *shading.Map // nil disables vignette correction regardless of settings

	FrameISO           float64
	FrameExposureTime  float64
	ContainerBaseline  float64 // median(iso*exposureTime) across the container

	FrameNumber int
}

// Output is the rendered, packed result plus everything the DNG writer
// needs to describe it.
type Output struct {
	Packed           []byte
	Width, Height    int
	EncodeBits       int
	DstBlack         [4]float64
	DstWhite         float64
	BaselineExposure float64
	ShadingBaked     bool // true if the gain map was applied to pixels instead of emitted as an opcode
	CropLeft, CropTop int
}

// Render executes the full §4.4 pipeline for one frame.
func Render(in Input) (Output, error) {
	s := in.Settings
	crop := computeCrop(in.FullWidth, in.FullHeight, s)

	quadFlag := s.Options.Has(settings.OptInterpretAsQuadBayer)
	quadBin := quadFlag && crop.Scale == 2

	srcBlack, srcWhite := selectLevels(s, in.DynamicBlack, in.StaticBlack, in.DynamicWhite, in.StaticWhite)
	if quadBin {
		srcWhite *= 4
		for i := range srcBlack {
			srcBlack[i] *= 4
		}
	}

	bakeShading := in.ShadingMap != nil && s.Options.Has(settings.OptApplyVignetteCorrection)
	dstBlack, dstWhite := destinationLevels(s, srcBlack, srcWhite, bakeShading)

	// KeepInput without baked shading leaves pixels linear, the same case
	// dng.LinearizationApplies excludes from the linearization table.
	logEnabled := s.LogTransform != settings.LogTransformDisabled &&
		!(s.LogTransform == settings.LogTransformKeepInput && !bakeShading)

	cfaSize := 2
	if quadFlag && !quadBin {
		cfaSize = 4
	}

	out := make([]uint16, crop.OutW*crop.OutH)
	for oy := 0; oy < crop.OutH; oy++ {
		for ox := 0; ox < crop.OutW; ox++ {
			pos, sum, count := gatherSource(in.Bayer, in.FullWidth, ox, oy, cfaSize, crop, quadBin)
			if count == 0 {
				continue
			}
			sample := sum

			shadingGain := 1.0
			if bakeShading {
				nx := float64(crop.Left+ox*crop.Scale) / float64(in.FullWidth-1)
				ny := float64(crop.Top+oy*crop.Scale) / float64(in.FullHeight-1)
				shadingGain = in.ShadingMap.Sample(nx, ny, pos)
			}

			denom := srcWhite - srcBlack[pos]
			if denom <= 0 {
				denom = 1
			}
			p := (sample - srcBlack[pos]) * shadingGain / denom
			if p < 0 {
				p = 0
			}

			var outVal float64
			if logEnabled {
				d := triangularDither(ox, oy, pos)
				outVal = log2Transfer(p, dstWhite) + d
			} else {
				outVal = p * (dstWhite - dstBlack[pos])
			}
			outVal = clampf(outVal, 0, dstWhite-dstBlack[pos]) + dstBlack[pos]
			if outVal > dstWhite+0.5 {
				return Output{}, fmt.Errorf("render: frame %d pixel (%d,%d): %w", in.FrameNumber, ox, oy, ErrEncodeOverflow)
			}
			out[oy*crop.OutW+ox] = uint16(outVal + 0.5)
		}
	}

	encodeBits := bitpack.RoundUpPackWidth(bitpack.BitsNeeded(uint32(dstWhite)))
	packed, err := bitpack.Pack(out, crop.OutW, crop.OutH, encodeBits)
	if err != nil {
		return Output{}, fmt.Errorf("render: pack frame %d: %w", in.FrameNumber, err)
	}

	return Output{
		Packed:           packed,
		Width:            crop.OutW,
		Height:           crop.OutH,
		EncodeBits:        encodeBits,
		DstBlack:         dstBlack,
		DstWhite:         dstWhite,
		BaselineExposure: baselineExposureEV(s, in.FrameISO, in.FrameExposureTime, in.ContainerBaseline),
		ShadingBaked:     bakeShading,
		CropLeft:         crop.Left,
		CropTop:          crop.Top,
	}, nil
}

// gatherSource resolves one output pixel's CFA tile position and the
// source sample(s) it's built from: a single sample for 1:1 or decimated
// output, or the sum of a 2x2 quad-Bayer cluster when binning.
func gatherSource(bayer []uint16, fullWidth, ox, oy, cfaSize int, crop cropGeometry, quadBin bool) (pos int, sum float64, count int) {
	tileX, tileY := ox%cfaSize, oy%cfaSize
	quadPos := ((tileY/ (cfaSize / 2)) * 2) + (tileX / (cfaSize / 2))
	pos = quadPos % 4

	tileOx, tileOy := ox/cfaSize, oy/cfaSize

	if quadBin {
		subX := (quadPos % 2) * 2
		subY := (quadPos / 2) * 2
		baseX := crop.Left + tileOx*4 + subX
		baseY := crop.Top + tileOy*4 + subY
		for dy := 0; dy < 2; dy++ {
			for dx := 0; dx < 2; dx++ {
				x, y := baseX+dx, baseY+dy
				if x < 0 || y < 0 || x >= fullWidth {
					continue
				}
				idx := y*fullWidth + x
				if idx < 0 || idx >= len(bayer) {
					continue
				}
				sum += float64(bayer[idx])
				count++
			}
		}
		return pos, sum, count
	}

	x := crop.Left + tileOx*cfaSize*crop.Scale + tileX*crop.Scale
	y := crop.Top + tileOy*cfaSize*crop.Scale + tileY*crop.Scale
	if x < 0 || y < 0 || x >= fullWidth {
		return pos, 0, 0
	}
	idx := y*fullWidth + x
	if idx < 0 || idx >= len(bayer) {
		return pos, 0, 0
	}
	return pos, float64(bayer[idx]), 1
}
