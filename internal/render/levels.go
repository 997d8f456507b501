package render

import (
	"strconv"
	"strings"

	"github.com/motioncam/dngpipe/internal/bitpack"
	"github.com/motioncam/dngpipe/internal/settings"
)

// selectLevels resolves the source black/white levels per settings.Levels:
// "Dynamic" uses the dynamic values the caller passes in, "Static" the
// static ones, and anything else is parsed as "<white>/<black>" where black is
// either one shared value or four comma-separated per-position values.
func selectLevels(s settings.RenderSettings, dynamicBlack, staticBlack [4]float64, dynamicWhite, staticWhite float64) ([4]float64, float64) {
	switch s.Levels {
	case "Dynamic":
		return dynamicBlack, dynamicWhite
	case "Static":
		return staticBlack, staticWhite
	default:
		if black, white, ok := parseLevelsOverride(s.Levels); ok {
			return black, white
		}
		return dynamicBlack, dynamicWhite
	}
}

func parseLevelsOverride(s string) (black [4]float64, white float64, ok bool) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return black, 0, false
	}
	w, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return black, 0, false
	}
	blackParts := strings.Split(parts[1], ",")
	switch len(blackParts) {
	case 1:
		b, err := strconv.ParseFloat(strings.TrimSpace(blackParts[0]), 64)
		if err != nil {
			return black, 0, false
		}
		for i := range black {
			black[i] = b
		}
	case 4:
		for i, p := range blackParts {
			b, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return black, 0, false
			}
			black[i] = b
		}
	default:
		return black, 0, false
	}
	return black, w, true
}

// useBitsDelta is the destination-bit-width adjustment table from the
// original renderer's preprocessData: KeepInput is a no-op, each ReduceBy
// mode carves out the named number of bits, and every other mode —
// including Disabled, which only reaches here when shading is baked
// without an explicit log mode — gets two bits of headroom.
func useBitsDelta(mode settings.LogTransformMode) int {
	switch mode {
	case settings.LogTransformKeepInput:
		return 0
	case settings.LogTransformReduceBy2Bit:
		return -2
	case settings.LogTransformReduceBy4Bit:
		return -4
	case settings.LogTransformReduceBy6Bit:
		return -6
	case settings.LogTransformReduceBy8Bit:
		return -8
	default:
		return 2
	}
}

// destinationLevels implements the renderer's §4.4 step 3: derive
// dstBlack/dstWhite from the source levels, the vignette/log settings, and
// whether the shading map is being baked directly into pixel values.
func destinationLevels(s settings.RenderSettings, srcBlack [4]float64, srcWhite float64, bakeShading bool) (dstBlack [4]float64, dstWhite float64) {
	logExplicit := s.LogTransform != settings.LogTransformDisabled && s.LogTransform != settings.LogTransformKeepInput

	switch {
	case bakeShading:
		delta := 2
		if s.Options.Has(settings.OptNormalizeShadingMap) {
			delta = 4
		} else {
			delta = useBitsDelta(s.LogTransform)
		}
		useBits := clampBits(bitpack.BitsNeeded(uint32(srcWhite)) + delta)
		return [4]float64{}, float64(uint64(1)<<uint(useBits) - 1)

	case logExplicit:
		useBits := clampBits(bitpack.BitsNeeded(uint32(srcWhite)) + useBitsDelta(s.LogTransform))
		return [4]float64{}, float64(uint64(1)<<uint(useBits) - 1)

	default:
		return srcBlack, srcWhite
	}
}

func clampBits(bits int) int {
	if bits > 16 {
		return 16
	}
	if bits < 1 {
		return 1
	}
	return bits
}
